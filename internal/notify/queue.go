package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Dispatcher queues a notification after the primary write has committed.
// A failed dispatch never undoes that write.
type Dispatcher interface {
	Dispatch(ctx context.Context, taskType string, payload any) error
}

type AsynqDispatcher struct {
	client *asynq.Client
}

func NewAsynqDispatcher(opt asynq.RedisClientOpt) *AsynqDispatcher {
	return &AsynqDispatcher{client: asynq.NewClient(opt)}
}

func (d *AsynqDispatcher) Dispatch(ctx context.Context, taskType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(defaultHandlerTimeout),
		asynq.Queue("notifications"),
	}
	if id := TaskID(taskType, payload); id != "" {
		opts = append(opts, asynq.TaskID(id))
	}
	_, err = d.client.EnqueueContext(ctx, asynq.NewTask(taskType, b), opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}

// TaskID is "<type>:<record id>" for keyed payloads and empty otherwise.
func TaskID(taskType string, payload any) string {
	k, ok := payload.(Keyed)
	if !ok {
		return ""
	}
	key := k.TaskKey()
	if key == "" {
		return ""
	}
	return taskType + ":" + key
}

func (d *AsynqDispatcher) Close() error {
	return d.client.Close()
}

// NewAsynqServer builds the worker side of AsynqDispatcher.
func NewAsynqServer(opt asynq.RedisClientOpt, n *Notifier, logger *zap.Logger) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 4,
		Queues:      map[string]int{"notifications": 1},
		Logger:      logger.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("notification task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	for _, typ := range []string{TypeBookingCreated, TypeEventRegistered, TypeNewsletterSignup} {
		mux.HandleFunc(typ, func(ctx context.Context, task *asynq.Task) error {
			return n.Handle(ctx, task.Type(), task.Payload())
		})
	}
	return srv, mux
}

// InlineDispatcher runs notifications in a background goroutine when no
// queue is configured.
type InlineDispatcher struct {
	Notifier *Notifier
	Logger   *zap.Logger
	Timeout  time.Duration
}

func (d *InlineDispatcher) Dispatch(_ context.Context, taskType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultHandlerTimeout
	}
	// The request context ends with the response; the send must outlive it.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := d.Notifier.Handle(ctx, taskType, b); err != nil {
			d.Logger.Error("notification failed", zap.String("type", taskType), zap.Error(err))
		}
	}()
	return nil
}
