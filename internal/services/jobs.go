package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const TaskPaymentConfirmation = "email:payment_confirmation"

func NewPaymentConfirmationTask(n PaymentNotification) (*asynq.Task, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskPaymentConfirmation,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// JobService enqueues email tasks on Redis and runs the workers for them.
type JobService struct {
	client *asynq.Client
	server *asynq.Server
	mailer EmailSender
	logger zerolog.Logger
}

func NewJobService(redisURL string, mailer EmailSender, logger zerolog.Logger) (*JobService, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url for jobs")
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})

	return &JobService{
		client: asynq.NewClient(opt),
		server: server,
		mailer: mailer,
		logger: logger,
	}, nil
}

func (j *JobService) Enqueue(ctx context.Context, task *asynq.Task) error {
	info, err := j.client.EnqueueContext(ctx, task)
	if err != nil {
		return errors.Wrapf(err, "enqueue %s", task.Type())
	}
	j.logger.Debug().Str("task", task.Type()).Str("id", info.ID).Msg("task enqueued")
	return nil
}

// Start launches the workers in the background.
func (j *JobService) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskPaymentConfirmation, j.handlePaymentConfirmation)

	j.logger.Info().Msg("starting background job server")
	return j.server.Start(mux)
}

func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	_ = j.client.Close()
}

func (j *JobService) handlePaymentConfirmation(ctx context.Context, t *asynq.Task) error {
	var n PaymentNotification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		return errors.Wrapf(asynq.SkipRetry, "unmarshal payment confirmation: %v", err)
	}

	log := j.logger.With().Str("type", "payment_confirmation").Str("to", n.To).Logger()
	log.Info().Msg("processing payment confirmation")

	if err := j.mailer.SendPaymentConfirmation(ctx, n); err != nil {
		log.Error().Err(err).Msg("failed to send payment confirmation")
		return err
	}
	log.Info().Msg("sent payment confirmation")
	return nil
}
