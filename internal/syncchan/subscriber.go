package syncchan

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/georgemunganga/tablepos/internal/logger"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Subscriber keeps a per-terminal exclusive queue bound to the fanout exchange and
// re-dials after any broker failure. Connection changes are emitted on the bus as
// EventConnection with StatusConnected or StatusDisconnected.
type Subscriber struct {
	url      string
	exchange string
	bus      *Bus
	log      *logger.Logger
}

func NewSubscriber(url, exchange string, bus *Bus, log *logger.Logger) *Subscriber {
	return &Subscriber{url: url, exchange: exchange, bus: bus, log: log.WithComponent("syncchan")}
}

// Connect starts the consume loop in the background. It stops when ctx is cancelled.
func (s *Subscriber) Connect(ctx context.Context) {
	go s.Run(ctx)
}

// Run consumes until ctx is done, reconnecting with exponential backoff.
func (s *Subscriber) Run(ctx context.Context) {
	backoff := minBackoff
	for {
		connected, err := s.consume(ctx)
		if ctx.Err() != nil {
			return
		}
		if connected {
			backoff = minBackoff
			s.emitConnection(StatusDisconnected)
		}
		s.log.Warn("sync channel lost, retrying", "error", err, "backoff", backoff)

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

// consume runs one connection lifetime. connected reports whether the queue was ever bound.
func (s *Subscriber) consume(ctx context.Context) (connected bool, err error) {
	conn, err := amqp.Dial(s.url)
	if err != nil {
		return false, fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return false, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := declareExchange(ch, s.exchange); err != nil {
		return false, err
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return false, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", s.exchange, false, nil); err != nil {
		return false, fmt.Errorf("bind queue: %w", err)
	}
	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return false, fmt.Errorf("consume: %w", err)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	cancelled := ch.NotifyCancel(make(chan string, 1))

	s.log.Info("sync channel connected", "queue", q.Name)
	s.emitConnection(StatusConnected)

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case amqpErr := <-closed:
			return true, fmt.Errorf("connection closed: %v", amqpErr)
		case tag := <-cancelled:
			return true, fmt.Errorf("consumer cancelled: %s", tag)
		case d, ok := <-msgs:
			if !ok {
				return true, fmt.Errorf("delivery channel closed")
			}
			s.handle(d.Body)
		}
	}
}

func (s *Subscriber) handle(body []byte) {
	ev, err := Decode(body)
	if err != nil {
		s.log.Warn("dropping sync message", "error", err)
		return
	}
	s.log.Debug("sync event", "type", ev.Type, "origin", ev.Origin)
	s.bus.Emit(ev)
}

func (s *Subscriber) emitConnection(status string) {
	s.bus.Emit(Event{Type: EventConnection, Status: status, At: time.Now().UTC()})
}
