package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bombparty/go/internal/game/events"
)

// Config holds configuration for the JetStream relay
type Config struct {
	URL            string
	StreamName     string
	SubjectPrefix  string // e.g., "bombparty.rooms"
	MaxAge         time.Duration
	QueueSize      int
	PublishTimeout time.Duration
	MaxReconnects  int
	ReconnectWait  time.Duration
}

// DefaultConfig returns default relay configuration
func DefaultConfig() Config {
	return Config{
		URL:            nats.DefaultURL,
		StreamName:     "BOMBPARTY_EVENTS",
		SubjectPrefix:  "bombparty.rooms",
		MaxAge:         24 * time.Hour,
		QueueSize:      1024,
		PublishTimeout: 5 * time.Second,
		MaxReconnects:  -1, // Infinite
		ReconnectWait:  2 * time.Second,
	}
}

// Envelope is the JetStream message body for one room event
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType events.Type     `json:"eventType"`
	RoomID    string          `json:"roomId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// streamPublisher is the part of jetstream.JetStream the relay uses
type streamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type message struct {
	subject string
	id      string
	data    []byte
}

// Publisher relays room events to a JetStream stream. It is a manager sink.
type Publisher struct {
	config Config
	nc     *nats.Conn
	js     streamPublisher
	clock  clockwork.Clock

	mu     sync.Mutex
	closed bool
	queue  chan message
	done   chan struct{}
}

// NewPublisher connects to NATS, ensures the stream and starts publishing
func NewPublisher(ctx context.Context, config Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("bombparty-relay"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	if err := ensureStream(ctx, js, config); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	p := newPublisher(js, config, clockwork.NewRealClock())
	p.nc = nc
	return p, nil
}

func newPublisher(js streamPublisher, config Config, clock clockwork.Clock) *Publisher {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	if config.PublishTimeout <= 0 {
		config.PublishTimeout = DefaultConfig().PublishTimeout
	}

	p := &Publisher{
		config: config,
		js:     js,
		clock:  clock,
		queue:  make(chan message, config.QueueSize),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func ensureStream(ctx context.Context, js jetstream.JetStream, config Config) error {
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        config.StreamName,
		Description: "Bomb party room events",
		Subjects:    []string{config.SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		Storage:     jetstream.FileStorage,
		MaxAge:      config.MaxAge,
		Duplicates:  2 * time.Minute,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("stream", stream.CachedInfo().Config.Name).
		Strs("subjects", stream.CachedInfo().Config.Subjects).
		Msg("JetStream stream ready")
	return nil
}

// Relayed reports whether events of this type leave the process
func Relayed(t events.Type) bool {
	switch t {
	case events.TypeBombTimerUpdate, events.TypeError:
		return false
	}
	return true
}

// Subject builds the subject a room event is published to
func Subject(prefix, roomID string, t events.Type) string {
	return fmt.Sprintf("%s.%s.%s", prefix, roomID, t)
}

// Deliver queues the event for publishing. It never blocks.
func (p *Publisher) Deliver(roomID string, to []string, e events.Event) {
	if !Relayed(e.EventType()) {
		return
	}

	msg, err := p.encode(roomID, e)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to encode relay envelope")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- msg:
	default:
		log.Warn().
			Str("room_id", roomID).
			Str("event_type", string(e.EventType())).
			Msg("relay queue full, dropping event")
	}
}

func (p *Publisher) encode(roomID string, e events.Event) (message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return message{}, fmt.Errorf("failed to marshal %s: %w", e.EventType(), err)
	}

	env := Envelope{
		EventID:   uuid.NewString(),
		EventType: e.EventType(),
		RoomID:    roomID,
		Timestamp: p.clock.Now().UTC(),
		Payload:   payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return message{}, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return message{
		subject: Subject(p.config.SubjectPrefix, roomID, e.EventType()),
		id:      env.EventID,
		data:    data,
	}, nil
}

func (p *Publisher) run() {
	defer close(p.done)
	for msg := range p.queue {
		p.publish(msg)
	}
}

func (p *Publisher) publish(msg message) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.PublishTimeout)
	defer cancel()

	ack, err := p.js.Publish(ctx, msg.subject, msg.data, jetstream.WithMsgID(msg.id))
	if err != nil {
		log.Error().Err(err).Str("subject", msg.subject).Msg("failed to publish room event")
		return
	}
	log.Debug().
		Str("subject", msg.subject).
		Uint64("seq", ack.Sequence).
		Msg("room event published")
}

// Close publishes whatever is queued and disconnects
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			log.Error().Err(err).Msg("failed to drain NATS connection")
		}
	}
	log.Info().Msg("relay publisher closed")
}
