// Package audit publishes provisioning confirmations to NATS JetStream.
// Events carry the credential identity and the target coordinates, never
// the password.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/duck-rage/duck-rage/internal/metrics"
	"github.com/duck-rage/duck-rage/pkg/logger"
)

// Event is the payload of a secret.provisioned audit message.
type Event struct {
	ID            uuid.UUID `json:"id"`
	CorrelationID uuid.UUID `json:"correlation_id"`
	EventType     string    `json:"event_type"`
	Service       string    `json:"service"`
	Timestamp     time.Time `json:"timestamp"`

	Backend    string `json:"backend"`
	SecretName string `json:"secret_name"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Database   string `json:"database"`
	User       string `json:"user"`
}

// Publisher wraps a NATS connection and publishes audit events.
type Publisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	service string
}

// New creates a Publisher with JetStream enabled if available.
func New(nc *nats.Conn, subject, service string) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		nc:      nc,
		js:      js,
		subject: subject,
		service: service,
	}, nil
}

// PublishSecretProvisioned emits one secret.provisioned event.
func (p *Publisher) PublishSecretProvisioned(ctx context.Context, ev Event) error {
	ev.EventType = "secret.provisioned"
	ev.Service = p.service
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		logger.S().Errorw("audit.marshal_failed",
			"subject", p.subject,
			"error", err,
		)
		metrics.AuditPublishErrors.WithLabelValues(p.subject).Inc()
		return err
	}

	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header: nats.Header{
			"event_type":     []string{ev.EventType},
			"correlation_id": []string{ev.CorrelationID.String()},
			"service":        []string{p.service},
			"content_type":   []string{"application/json"},
		},
	}

	if _, err := p.js.PublishMsg(msg); err != nil {
		logger.S().Errorw("audit.publish_failed",
			"subject", p.subject,
			"secret_name", ev.SecretName,
			"error", err,
		)
		metrics.AuditPublishErrors.WithLabelValues(p.subject).Inc()
		return err
	}

	logger.S().Infow("audit.publish_success",
		"subject", p.subject,
		"secret_name", ev.SecretName,
	)
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
