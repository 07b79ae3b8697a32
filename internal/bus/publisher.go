package bus

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"fsm-backend/internal/models"
)

// Publisher emits job lifecycle events. A nil Publisher is a no-op so the
// backend runs unchanged when the bus is not configured.
type Publisher struct {
	js nats.JetStreamContext
}

func NewPublisher(js nats.JetStreamContext) *Publisher {
	return &Publisher{js: js}
}

func (p *Publisher) JobCreated(job *models.Job) error {
	if p == nil {
		return nil
	}

	event := models.JobEvent{
		JobID:     job.ID,
		Title:     job.Title,
		Status:    job.Status,
		CreatedBy: job.CreatedBy,
		TS:        time.Now().Unix(),
	}
	if job.Organization != nil {
		event.Organization = *job.Organization
	}

	data, err := msgpack.Marshal(&event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(SubjectJobCreated, data)
	return err
}
