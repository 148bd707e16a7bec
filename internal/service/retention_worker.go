package service

import (
	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RetentionWorker periodically deletes read alerts that have aged past the
// retention window. Unread alerts are never touched.
type RetentionWorker struct {
	alerts   *AlertService
	userRepo domain.UserRepository
	schedule string
	cron     *cron.Cron
	logger   zerolog.Logger
}

// NewRetentionWorker creates a new RetentionWorker
func NewRetentionWorker(alerts *AlertService, userRepo domain.UserRepository, schedule string) *RetentionWorker {
	return &RetentionWorker{
		alerts:   alerts,
		userRepo: userRepo,
		schedule: schedule,
		cron:     cron.New(),
		logger:   log.With().Str("component", "retention_worker").Logger(),
	}
}

// Start registers the cleanup job and starts the scheduler.
func (w *RetentionWorker) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.RunOnce); err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info().Str("schedule", w.schedule).Msg("Started alert retention worker")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (w *RetentionWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.logger.Info().Msg("Stopped alert retention worker")
}

// RunOnce sweeps all users. Exported so it can be triggered manually.
func (w *RetentionWorker) RunOnce() {
	userIDs, err := w.userRepo.ListIDs()
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to list users for alert cleanup")
		return
	}

	var total int64
	for _, userID := range userIDs {
		deleted, err := w.alerts.CleanupOld(userID)
		if err != nil {
			w.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("Alert cleanup failed for user")
			continue
		}
		total += deleted
	}

	w.logger.Info().Int64("deleted", total).Int("users", len(userIDs)).Msg("Alert retention sweep finished")
}
