package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/club-events/internal/config"
)

// ErrBrokerUnavailable is returned without dialling while the publisher
// waits out QueueConfig.RetryAfter following a failed connection attempt.
var ErrBrokerUnavailable = errors.New("queue: broker unavailable")

// Publisher sends BookingConfirmedEvent messages to a durable queue.  The
// broker connection is opened lazily and reopened after failures, so a
// broker outage never blocks startup.  Errors are logged and returned to
// allow callers to ignore them without interrupting the request flow.
type Publisher struct {
	cfg config.QueueConfig
	log zerolog.Logger
	now func() time.Time

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

// NewPublisher returns a Publisher for cfg.  Nothing is dialled yet.
func NewPublisher(cfg config.QueueConfig, log zerolog.Logger) *Publisher {
	return &Publisher{
		cfg: cfg,
		log: log.With().Str("component", "queue-publisher").Logger(),
		now: time.Now,
	}
}

// dial opens a broker connection.  The timeout covers the TCP connect and
// the AMQP handshake, so a broker that drops packets fails fast.
func dial(cfg config.QueueConfig) (*amqp.Connection, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return amqp.DialConfig(cfg.URL, amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
}

// PublishBookingConfirmed marshals ev and publishes it as a persistent
// message on the configured queue.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq unavailable")
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, pub); err != nil {
		p.log.Warn().Err(err).Uint64("booking_id", ev.BookingID).Msg("publish failed")
		p.reset()
		return err
	}
	return nil
}

// channel returns the cached channel or dials a new one.  Callers hold mu.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	if p.now().Before(p.retryAt) {
		return nil, ErrBrokerUnavailable
	}
	conn, err := dial(p.cfg)
	if err != nil {
		p.retryAt = p.now().Add(p.cfg.RetryAfter)
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
