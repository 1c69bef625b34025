// Package audit is the fire-and-forget audit side-channel.  Events are
// queued on a bounded buffer and published to RabbitMQ by a background
// worker; a failed or dropped write is logged and never fails the
// operation that emitted it.
package audit

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// QueueName is the durable queue audit events are published to.
const QueueName = "audit.log"

// Event is one audit record.  ActorID is nil for system actions such
// as payment reconciliation.
type Event struct {
    ActorID    *string                `json:"actor_id"`
    ActorType  string                 `json:"actor_type"` // user | system
    Action     string                 `json:"action"`     // e.g. "seat.locked"
    EntityType string                 `json:"entity_type"`
    EntityID   string                 `json:"entity_id"`
    Payload    map[string]interface{} `json:"payload,omitempty"`
    At         string                 `json:"at"` // RFC3339
}

// Sink accepts audit events.  Record must never block the caller and
// must never return an error: audit failures are observability
// problems, not request failures.
type Sink interface {
    Record(ev Event)
}

// UserEvent builds an event for a user action with the current time.
func UserEvent(userID, action, entityType, entityID string, payload map[string]interface{}) Event {
    return Event{
        ActorID:    &userID,
        ActorType:  "user",
        Action:     action,
        EntityType: entityType,
        EntityID:   entityID,
        Payload:    payload,
        At:         time.Now().UTC().Format(time.RFC3339),
    }
}

// SystemEvent builds an event with no actor, for gateway-originated
// transitions.
func SystemEvent(action, entityType, entityID string, payload map[string]interface{}) Event {
    return Event{
        ActorType:  "system",
        Action:     action,
        EntityType: entityType,
        EntityID:   entityID,
        Payload:    payload,
        At:         time.Now().UTC().Format(time.RFC3339),
    }
}

// AsyncSink queues events on a bounded channel consumed by a single
// background worker.  When the buffer is full the event is dropped with
// a log line instead of blocking the request path.
type AsyncSink struct {
    url string
    ch  chan Event
}

// NewAsyncSink starts the worker.  buffer bounds how many events may be
// in flight; 256 is plenty for a single instance.
func NewAsyncSink(url string, buffer int) *AsyncSink {
    if buffer <= 0 {
        buffer = 256
    }
    s := &AsyncSink{url: url, ch: make(chan Event, buffer)}
    go s.run()
    return s
}

// Record enqueues the event without blocking.
func (s *AsyncSink) Record(ev Event) {
    select {
    case s.ch <- ev:
    default:
        log.Printf("audit: buffer full, dropping %s %s/%s", ev.Action, ev.EntityType, ev.EntityID)
    }
}

// Close stops the worker after draining queued events.
func (s *AsyncSink) Close() { close(s.ch) }

func (s *AsyncSink) run() {
    for ev := range s.ch {
        if err := s.publish(ev); err != nil {
            log.Printf("audit: publish failed: %v", err)
        }
    }
}

// publish writes one event to the durable audit queue.  Connection per
// publish keeps the worker stateless; volume is low enough that this
// does not matter.
func (s *AsyncSink) publish(ev Event) error {
    conn, err := amqp.Dial(s.url)
    if err != nil {
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
        return err
    }
    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    return ch.PublishWithContext(ctx, "", QueueName, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    })
}

// LogSink writes events to the process log.  Used when no broker is
// configured and as the test double.
type LogSink struct{}

// Record logs the event.
func (LogSink) Record(ev Event) {
    actor := "system"
    if ev.ActorID != nil {
        actor = *ev.ActorID
    }
    log.Printf("audit: %s actor=%s entity=%s/%s", ev.Action, actor, ev.EntityType, ev.EntityID)
}
