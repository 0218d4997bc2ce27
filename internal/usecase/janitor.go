package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Janitor periodically removes expired verification codes and sessions.
type Janitor struct {
	auth     AuthService
	sessions SessionService
	interval time.Duration
	log      *zap.Logger
}

func NewJanitor(auth AuthService, sessions SessionService, interval time.Duration, log *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Janitor{
		auth:     auth,
		sessions: sessions,
		interval: interval,
		log:      log.With(zap.String("service", "janitor")),
	}
}

// Run blocks until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			j.log.Info("Janitor stopped")
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

func (j *Janitor) RunOnce(ctx context.Context) {
	codes, err := j.auth.PurgeExpiredCodes(ctx)
	if err != nil {
		j.log.Error("Failed to purge verification codes", zap.Error(err))
	}

	sessions, err := j.sessions.PurgeExpired(ctx)
	if err != nil {
		j.log.Error("Failed to purge sessions", zap.Error(err))
	}

	if codes > 0 || sessions > 0 {
		j.log.Info("Expired records purged", zap.Int64("codes", codes), zap.Int64("sessions", sessions))
	}
}
