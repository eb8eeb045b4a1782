package store

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

// Fallback runs an operation against the remote store and retries it on the
// local store when the remote fails.
type Fallback struct {
	Remote Store
	Local  Store

	// OnFallback is called each time an operation is served by the local store.
	OnFallback func(op string, code ErrorCode)
}

func NewFallback(remote, local Store) *Fallback {
	return &Fallback{Remote: remote, Local: local}
}

// Run calls fn with the remote store, then with the local one if that failed.
// The returned error is the local failure, or the remote one when no local
// store is configured.
func (f *Fallback) Run(ctx context.Context, op string, fn func(ctx context.Context, s Store) error) error {
	var remoteErr error
	if f.Remote != nil {
		remoteErr = fn(ctx, f.Remote)
		if remoteErr == nil {
			return nil
		}
		f.logRemote(op, remoteErr)
	} else {
		remoteErr = NewError(ErrorRemoteUnavailable, "remote", op, ErrNotConfigured)
	}

	if f.Local == nil {
		return remoteErr
	}
	if f.OnFallback != nil {
		f.OnFallback(op, CodeOf(remoteErr, ErrorRemoteUnavailable))
	}

	localErr := fn(ctx, f.Local)
	if localErr == nil {
		return nil
	}
	if !IsNotFound(localErr) {
		log.WithFields(log.Fields{
			"op":    op,
			"store": f.Local.Name(),
			"error": localErr.Error(),
		}).Warn("Local store failed")
	}
	return localErr
}

// Each calls fn on every configured store and collects per-store errors.
// It is used for reads that merge both tiers.
func (f *Fallback) Each(ctx context.Context, op string, fn func(ctx context.Context, s Store) error) (remoteErr, localErr error) {
	if f.Remote != nil {
		if remoteErr = fn(ctx, f.Remote); remoteErr != nil {
			f.logRemote(op, remoteErr)
		}
	} else {
		remoteErr = NewError(ErrorRemoteUnavailable, "remote", op, ErrNotConfigured)
	}
	if f.Local != nil {
		if localErr = fn(ctx, f.Local); localErr != nil {
			log.WithFields(log.Fields{
				"op":    op,
				"store": f.Local.Name(),
				"error": localErr.Error(),
			}).Warn("Local store failed")
		}
	} else {
		localErr = NewError(ErrorLocalUnavailable, "local", op, ErrNotConfigured)
	}
	return remoteErr, localErr
}

func (f *Fallback) logRemote(op string, err error) {
	entry := log.WithFields(log.Fields{
		"op":    op,
		"store": f.Remote.Name(),
		"code":  CodeOf(err, ErrorRemoteUnavailable),
		"error": err.Error(),
	})
	switch {
	case errors.Is(err, ErrNotConfigured):
		entry.Debug("Remote store not configured, using local store")
	case CodeOf(err, ErrorRemoteUnavailable) == ErrorNotFound:
		entry.Debug("Not found in remote store, trying local store")
	case CodeOf(err, ErrorRemoteUnavailable) == ErrorRemoteRejected:
		entry.Warn("Remote store rejected operation, using local store")
	default:
		entry.Warn("Remote store unavailable, using local store")
	}
}
