package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/pkg/errors"
)

// Event types.
const (
	EventStructureGenerated = "structure.generated"
	EventStructureFailed    = "structure.failed"
	EventStructureMinimized = "structure.minimized"
	EventWorkspaceEvicted   = "workspace.evicted"
)

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	SessionID     string          `json:"session_id"`
	Payload       json.RawMessage `json:"payload"`
}

// StructureGeneratedPayload accompanies structure.generated.
type StructureGeneratedPayload struct {
	Units      int      `json:"units"`
	SMILES     string   `json:"smiles"`
	DurationMs int64    `json:"duration_ms"`
	Artifacts  []string `json:"artifacts,omitempty"`
}

// StructureFailedPayload accompanies structure.failed.
type StructureFailedPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StructureMinimizedPayload accompanies structure.minimized.
type StructureMinimizedPayload struct {
	DurationMs int64 `json:"duration_ms"`
	Bytes      int   `json:"bytes"`
}

// WorkspaceEvictedPayload accompanies workspace.evicted.
type WorkspaceEvictedPayload struct {
	Reason  string    `json:"reason"`
	ModTime time.Time `json:"mod_time"`
}

func NewEventEnvelope(eventType, source, sessionID string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		SessionID:     sessionID,
		Payload:       data,
	}, nil
}

func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	return json.Unmarshal(e.Payload, target)
}

// ToMessage keys the record by session id so one session's events stay ordered.
func (e *EventEnvelope) ToMessage(topic string) (*Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return &Message{
		Topic: topic,
		Key:   []byte(e.SessionID),
		Value: val,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Time: e.Timestamp,
	}, nil
}

// Publisher sends envelopes to one topic.
type Publisher struct {
	producer *Producer
	topic    string
	source   string
	logger   logging.Logger
}

func NewPublisher(producer *Producer, topic string, logger logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Publisher{producer: producer, topic: topic, source: "cdforge", logger: logger.Named("events")}
}

// Publish wraps payload in an envelope and writes it.
func (p *Publisher) Publish(ctx context.Context, eventType, sessionID string, payload interface{}) error {
	env, err := NewEventEnvelope(eventType, p.source, sessionID, payload)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(p.topic)
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		p.logger.Warn("event publish failed",
			logging.String("event_type", eventType),
			logging.String(logging.FieldSessionID, sessionID),
			logging.Err(err))
		return err
	}
	return nil
}

// Close closes the underlying producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}

//Personal.AI order the ending
