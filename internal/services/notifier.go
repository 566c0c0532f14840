package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const directSendTimeout = 30 * time.Second

// Notifier dispatches notifications without blocking the caller. Failures
// are logged, never returned.
type Notifier interface {
	NotifyPaymentConfirmed(ctx context.Context, n PaymentNotification)
}

// QueueNotifier hands notifications to the job queue.
type QueueNotifier struct {
	jobs   *JobService
	logger zerolog.Logger
}

func NewQueueNotifier(jobs *JobService, logger zerolog.Logger) *QueueNotifier {
	return &QueueNotifier{jobs: jobs, logger: logger}
}

func (q *QueueNotifier) NotifyPaymentConfirmed(ctx context.Context, n PaymentNotification) {
	task, err := NewPaymentConfirmationTask(n)
	if err == nil {
		err = q.jobs.Enqueue(ctx, task)
	}
	if err != nil {
		q.logger.Error().Err(err).Str("to", n.To).Msg("failed to queue payment confirmation")
	}
}

// DirectNotifier sends from a detached goroutine.
type DirectNotifier struct {
	mailer EmailSender
	logger zerolog.Logger
}

func NewDirectNotifier(mailer EmailSender, logger zerolog.Logger) *DirectNotifier {
	return &DirectNotifier{mailer: mailer, logger: logger}
}

func (d *DirectNotifier) NotifyPaymentConfirmed(_ context.Context, n PaymentNotification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), directSendTimeout)
		defer cancel()
		if err := d.mailer.SendPaymentConfirmation(ctx, n); err != nil {
			d.logger.Error().Err(err).Str("to", n.To).Msg("failed to send payment confirmation")
		}
	}()
}
