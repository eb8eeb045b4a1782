package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"github.com/ze-parceiro/simulator_api/dto"
)

// JWTService signs the play handle returned at login. The token only
// addresses an in-memory play; it is not an authentication mechanism.
type JWTService struct {
	context.DefaultService

	TokenDuration time.Duration
	jwtSecretKey  string
}

type PlayClaims struct {
	PlayID     string `json:"play_id"`
	PlayerCode string `json:"player_code"`
	jwt.RegisteredClaims
}

const JWT_SVC = "jwt_svc"

func NewJWTService(secret string, duration time.Duration) *JWTService {
	return &JWTService{jwtSecretKey: secret, TokenDuration: duration}
}

func (svc JWTService) Id() string {
	return JWT_SVC
}

func (svc *JWTService) Configure(ctx *context.Context) error {
	svc.TokenDuration = 12 * time.Hour
	if v := os.Getenv("PLAY_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			svc.TokenDuration = d
		}
	}
	svc.jwtSecretKey = os.Getenv("JWT_SECRET")
	return svc.DefaultService.Configure(ctx)
}

func (svc *JWTService) Start() error {
	if svc.jwtSecretKey == "" {
		log.Warn("JWT_SECRET not set, using an ephemeral development secret")
		svc.jwtSecretKey = fmt.Sprintf("dev-%d", time.Now().UnixNano())
	}
	return nil
}

func (svc *JWTService) VerifyPlayToken(tokenString string) (*PlayClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PlayClaims{}, svc.getJWTKey)
	if err != nil {
		return nil, fmt.Errorf("invalid play token: %w", err)
	}
	claims, ok := token.Claims.(*PlayClaims)
	if !ok || !token.Valid || claims.PlayID == "" {
		return nil, errors.New("unsupported JWT format")
	}
	return claims, nil
}

func (svc *JWTService) getJWTKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	return []byte(svc.jwtSecretKey), nil
}

func (svc *JWTService) IssuePlayToken(playID, playerCode string) (*dto.TokenPair, error) {
	now := time.Now()
	claims := &PlayClaims{
		PlayID:     playID,
		PlayerCode: playerCode,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(svc.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "ze-simulator",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(svc.jwtSecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %v", err)
	}

	return &dto.TokenPair{
		AccessToken: tokenString,
		ExpiresIn:   int64(svc.TokenDuration.Seconds()),
	}, nil
}

func (svc *JWTService) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return "", errors.New("invalid authorization header format")
	}

	return authHeader[7:], nil
}

func (svc *JWTService) ResolvePlay(tokenString string) (string, string, error) {
	claims, err := svc.VerifyPlayToken(tokenString)
	if err != nil {
		return "", "", err
	}
	return claims.PlayID, claims.PlayerCode, nil
}
