package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"fsm-backend/internal/bus"
	"fsm-backend/internal/models"
)

// JobUpdater is the slice of storage the consumer needs.
type JobUpdater interface {
	UpdateJobStatus(ctx context.Context, jobID, status, technician string) error
}

// StatusConsumer applies job status updates pushed from field clients over
// the event bus.
type StatusConsumer struct {
	js   nats.JetStreamContext
	jobs JobUpdater
	sub  *nats.Subscription
}

func NewStatusConsumer(js nats.JetStreamContext, jobs JobUpdater) *StatusConsumer {
	return &StatusConsumer{js: js, jobs: jobs}
}

// Start begins consuming status updates from JetStream.
func (c *StatusConsumer) Start(ctx context.Context) error {
	sub, err := c.js.PullSubscribe(
		bus.SubjectJobStatus,
		"fsm-status-processor",
		nats.ManualAck(),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	c.sub = sub

	go c.consumeLoop(ctx)
	log.Println("INFO Job status consumer started")
	return nil
}

func (c *StatusConsumer) Stop() error {
	if c.sub == nil {
		return nil
	}
	return c.sub.Unsubscribe()
}

func (c *StatusConsumer) consumeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := c.sub.Fetch(64, nats.MaxWait(5*time.Second))
		if err != nil {
			if err != nats.ErrTimeout {
				log.Printf("WARN Fetch error: %v", err)
			}
			continue
		}

		for _, msg := range msgs {
			if err := c.apply(ctx, msg.Data); err != nil {
				log.Printf("WARN Status update error: %v", err)
				msg.NakWithDelay(5 * time.Second)
				continue
			}
			msg.Ack()
		}
	}
}

func (c *StatusConsumer) apply(ctx context.Context, data []byte) error {
	var update models.JobStatusUpdate
	if err := msgpack.Unmarshal(data, &update); err != nil {
		return fmt.Errorf("decode status update: %w", err)
	}

	if update.JobID == "" {
		return fmt.Errorf("status update missing job_id")
	}
	if !models.ValidJobStatus(update.Status) {
		return fmt.Errorf("unknown job status %q", update.Status)
	}

	return c.jobs.UpdateJobStatus(ctx, update.JobID, update.Status, update.Technician)
}
