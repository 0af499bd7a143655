package syncchan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/georgemunganga/tablepos/internal/logger"
)

// Publisher broadcasts family notifications.
type Publisher interface {
	Publish(ctx context.Context, eventType string) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string) error { return nil }
func (NopPublisher) Close() error                          { return nil }

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher closed")

// AMQPPublisher publishes to a fanout exchange and waits for broker confirms.
// The connection is dialed lazily and re-dialed after the broker goes away, so a
// broker that is down at startup or restarts later only costs the events sent
// while it was unreachable.
type AMQPPublisher struct {
	url      string
	exchange string
	origin   string
	log      *logger.Logger

	mu       sync.Mutex // confirms are matched in publish order
	conn     *amqp.Connection
	ch       *amqp.Channel
	acks     <-chan amqp.Confirmation
	closed   <-chan *amqp.Error
	shutdown bool
}

// NewAMQPPublisher returns a publisher that connects on first use.
func NewAMQPPublisher(url, exchange, origin string, log *logger.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, exchange: exchange, origin: origin, log: log.WithComponent("syncchan")}
}

func declareExchange(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return nil
}

// Run keeps the publisher connected until ctx is done, re-dialing with
// exponential backoff whenever the broker is unreachable or drops the connection.
func (p *AMQPPublisher) Run(ctx context.Context) {
	backoff := minBackoff
	for {
		closed, err := p.ensure()
		if errors.Is(err, ErrPublisherClosed) {
			return
		}
		if err == nil {
			backoff = minBackoff
			select {
			case <-ctx.Done():
				return
			case amqpErr := <-closed:
				p.mu.Lock()
				p.dropLocked(closed)
				p.mu.Unlock()
				if amqpErr != nil {
					p.log.Warn("broker connection lost", "error", amqpErr)
				}
				continue
			}
		}
		p.log.Warn("broker unavailable, retrying", "error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// ensure returns the close notification of the live connection, dialing first if needed.
func (p *AMQPPublisher) ensure() (<-chan *amqp.Error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p.closed, nil
}

func (p *AMQPPublisher) connectLocked() error {
	if p.shutdown {
		return ErrPublisherClosed
	}
	if p.ch != nil && !p.conn.IsClosed() && !p.ch.IsClosed() {
		return nil
	}
	p.resetLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declareExchange(ch, p.exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("enable confirms: %w", err)
	}
	p.conn = conn
	p.ch = ch
	p.acks = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.closed = conn.NotifyClose(make(chan *amqp.Error, 1))
	p.log.Info("broker connected", "exchange", p.exchange)
	return nil
}

// dropLocked resets the connection only if closed still belongs to it.
func (p *AMQPPublisher) dropLocked(closed <-chan *amqp.Error) {
	if p.closed == closed {
		p.resetLocked()
	}
}

func (p *AMQPPublisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch, p.acks, p.closed = nil, nil, nil, nil
}

// Publish sends one notification and waits for the broker ack. A failed publish
// drops the connection so the next call dials again.
func (p *AMQPPublisher) Publish(ctx context.Context, eventType string) error {
	body, err := json.Marshal(Event{Type: eventType, Origin: p.origin, At: time.Now().UTC()})
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connectLocked(); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    time.Now(),
		Type:         eventType,
		Body:         body,
	}); err != nil {
		p.resetLocked()
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	select {
	case conf, ok := <-p.acks:
		if !ok {
			p.resetLocked()
			return errors.New("broker channel closed before confirm")
		}
		if !conf.Ack {
			return fmt.Errorf("publish %s: nack from broker", eventType)
		}
		return nil
	case <-ctx.Done():
		// The pending confirm would pair with the next publish.
		p.resetLocked()
		return ctx.Err()
	}
}

// Close disconnects and stops any further dialing.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shutdown = true
	p.resetLocked()
	return nil
}

// Notifier is what backend services hold: it publishes after a committed write and
// logs failures instead of returning them, so a broker outage never fails a request.
type Notifier struct {
	pub Publisher
	log *logger.Logger
}

func NewNotifier(pub Publisher, log *logger.Logger) *Notifier {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Notifier{pub: pub, log: log.WithComponent("syncchan")}
}

// Notify publishes each event type in order.
func (n *Notifier) Notify(ctx context.Context, events ...string) {
	for _, ev := range events {
		if err := n.pub.Publish(ctx, ev); err != nil {
			n.log.Warn("publish update failed", "event", ev, "error", err)
		}
	}
}

// Recorder collects published event types. Used by service tests.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) Publish(_ context.Context, eventType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
