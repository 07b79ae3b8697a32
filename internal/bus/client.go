package bus

import (
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	StreamName = "FSM_EVENTS"

	SubjectJobCreated = "fsm.jobs.created"
	SubjectJobStatus  = "fsm.jobs.status"
)

type Client struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

// Connect establishes the NATS connection and initializes JetStream.
func Connect(url string) (*Client, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(1 * time.Second),
		nats.ReconnectJitter(500*time.Millisecond, 2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("WARN NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("INFO NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Println("INFO NATS connection closed")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Printf("ERROR NATS error: %v", err)
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	log.Printf("INFO Connected to NATS at %s", nc.ConnectedUrl())

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	if err := ensureInfrastructure(js); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure infrastructure: %w", err)
	}

	return &Client{nc: nc, js: js}, nil
}

// Close drains and closes the NATS connection.
func (c *Client) Close() error {
	return c.nc.Drain()
}

// JS returns the JetStream context.
func (c *Client) JS() nats.JetStreamContext {
	return c.js
}

func ensureInfrastructure(js nats.JetStreamContext) error {
	_, err := js.StreamInfo(StreamName)
	if err == nats.ErrStreamNotFound {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:       StreamName,
			Subjects:   []string{"fsm.jobs.>"},
			Retention:  nats.LimitsPolicy,
			MaxAge:     72 * time.Hour,
			MaxMsgSize: 1 * 1024 * 1024,
			Discard:    nats.DiscardOld,
			Storage:    nats.FileStorage,
		})
		if err != nil {
			return fmt.Errorf("create stream %s: %w", StreamName, err)
		}
		log.Printf("INFO Created JetStream stream %s", StreamName)
	} else if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}

	return nil
}
