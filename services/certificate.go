package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	log "github.com/sirupsen/logrus"
	"github.com/ze-parceiro/simulator_api/engine"
	"github.com/ze-parceiro/simulator_api/model"
	"github.com/ze-parceiro/simulator_api/shared"
)

// Archiver stores certificate documents and hands back a download link.
type Archiver interface {
	Enabled() bool
	UploadFile(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) (*minio.UploadInfo, error)
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

type CertificateService struct {
	appContext.DefaultService

	archive Archiver
	now     func() time.Time
}

const CERTIFICATE_SVC = "certificate_svc"

const certificateLinkExpiry = 7 * 24 * time.Hour

func NewCertificateService(archive Archiver) *CertificateService {
	return &CertificateService{archive: archive, now: time.Now}
}

func (svc CertificateService) Id() string {
	return CERTIFICATE_SVC
}

func (svc *CertificateService) Configure(ctx *appContext.Context) error {
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *CertificateService) Start() error {
	if m, ok := svc.Service(MINIO_SVC).(*MinIOService); ok {
		svc.archive = m
	}
	return nil
}

// Issue builds the completion certificate for a finished play and archives it
// when object storage is configured. Archive failures do not prevent issuing.
func (svc *CertificateService) Issue(ctx context.Context, player *model.Player, sessionID string, state engine.State) *model.Certificate {
	id, _ := uuid.NewV7()
	cert := &model.Certificate{
		ID:         id.String(),
		SessionID:  sessionID,
		PlayerCode: player.Code,
		PlayerName: player.Name,
		Score:      state.Stats.Score,
		TotalTime:  state.Stats.SessionTime,
		Accuracy:   state.Stats.Accuracy,
		KPIs: model.KPISet{
			Availability:   state.KPIs.Availability,
			AcceptanceRate: state.KPIs.AcceptanceRate,
			DeliveryTime:   state.KPIs.DeliveryTime,
			Rating:         state.KPIs.Rating,
		},
		IssuedAt: svc.now(),
	}

	if svc.archive == nil || !svc.archive.Enabled() {
		return cert
	}

	body, err := shared.JSONAPI.Marshal(cert)
	if err != nil {
		log.WithError(err).Warn("Failed to encode certificate")
		return cert
	}

	objectName := fmt.Sprintf("certificates/%s/%s.json", player.Code, cert.ID)
	if _, err := svc.archive.UploadFile(ctx, objectName, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		log.WithFields(log.Fields{
			"certificate_id": cert.ID,
			"error":          err.Error(),
		}).Warn("Failed to archive certificate")
		return cert
	}

	url, err := svc.archive.GetFileURL(ctx, objectName, certificateLinkExpiry)
	if err != nil {
		log.WithError(err).Warn("Failed to sign certificate link")
		return cert
	}
	cert.DownloadURL = url
	return cert
}
