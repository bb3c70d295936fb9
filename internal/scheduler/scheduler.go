package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ShishMikhail/MoyGrafik-bot/internal/engine"
)

// Sender is a minimal interface the scheduler needs to send a text message.
// telegram.Router will implement this (method: SendMessage).
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// NotificationLog records the outcome of each send attempt.
type NotificationLog interface {
	LogNotification(ctx context.Context, telegramID int64, message, status string, at time.Time) error
}

// Scheduler periodically asks the engine for due reminders and dispatches
// them. Ticks run sequentially; a tick finishes its full scan before the
// next one starts.
type Scheduler struct {
	engine        *engine.Engine
	log           *zap.Logger
	sender        Sender
	notifications NotificationLog
	interval      time.Duration
}

// New creates a new Scheduler. A non-positive interval falls back to 30s.
func New(eng *engine.Engine, log *zap.Logger, sender Sender, notifications NotificationLog, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		engine:        eng,
		log:           log,
		sender:        sender,
		notifications: notifications,
		interval:      interval,
	}
}

// Run starts the loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick performs one scheduling cycle: compute due reminders, send each,
// record the outcome. Failed sends are logged and not retried; the slot
// stays consumed for the day.
func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now()

	due, err := s.engine.Tick(ctx, now)
	if err != nil {
		s.log.Error("reminder scan failed", zap.Error(err))
		return
	}

	for _, in := range due {
		status := "sent"
		if err := s.sender.SendMessage(in.UserID, in.Message); err != nil {
			s.log.Error("send failed",
				zap.Error(err),
				zap.Int64("chatID", in.UserID),
				zap.String("kind", in.Kind.String()),
				zap.String("slot", in.Slot))
			status = "failed"
		}
		if err := s.notifications.LogNotification(ctx, in.UserID, in.Message, status, now); err != nil {
			s.log.Error("notification log failed", zap.Error(err), zap.Int64("chatID", in.UserID))
		}
	}
}
