package syncchan

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/georgemunganga/tablepos/internal/logger"
)

func TestBus_OnAndUnsubscribe(t *testing.T) {
	b := NewBus()
	var orders, bills int
	stop := b.On(EventOrderUpdate, func(Event) { orders++ })
	b.On(EventBillUpdate, func(Event) { bills++ })

	b.Emit(Event{Type: EventOrderUpdate})
	b.Emit(Event{Type: EventBillUpdate})
	stop()
	stop()
	b.Emit(Event{Type: EventOrderUpdate})

	if orders != 1 || bills != 1 {
		t.Errorf("orders=%d bills=%d, want 1/1", orders, bills)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"bill update", `{"type":"BILL_UPDATE","origin":"api"}`, EventBillUpdate, false},
		{"unknown type", `{"type":"PIZZA_UPDATE"}`, "", true},
		{"not json", `BILL_UPDATE`, "", true},
		{"connection is local only", `{"type":"connection","status":"connected"}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Decode([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && ev.Type != tt.want {
				t.Errorf("Type = %q, want %q", ev.Type, tt.want)
			}
		})
	}
}

func TestSubscriber_HandleEmitsDecodedEvents(t *testing.T) {
	b := NewBus()
	var got []string
	for _, name := range UpdateEvents {
		b.On(name, func(ev Event) { got = append(got, ev.Type) })
	}
	s := NewSubscriber("", "pos.updates", b, logger.Nop())

	s.handle([]byte(`{"type":"MENU_UPDATE"}`))
	s.handle([]byte(`garbage`))
	s.handle([]byte(`{"type":"WAITER_CALL"}`))

	if len(got) != 2 || got[0] != EventMenuUpdate || got[1] != EventWaiterCall {
		t.Errorf("got %v", got)
	}
}

// deadBrokerURL points at a port nothing listens on.
func deadBrokerURL(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return "amqp://guest:guest@" + addr + "/"
}

func TestAMQPPublisher_RedialsOnEveryPublish(t *testing.T) {
	p := NewAMQPPublisher(deadBrokerURL(t), "pos.updates", "api", logger.Nop())

	for i := 0; i < 2; i++ {
		err := p.Publish(context.Background(), EventOrderUpdate)
		if err == nil || !strings.Contains(err.Error(), "dial broker") {
			t.Fatalf("publish %d: expected a dial error, got %v", i, err)
		}
	}
	if p.conn != nil || p.ch != nil {
		t.Errorf("failed dial left connection state behind")
	}

	_ = p.Close()
	if err := p.Publish(context.Background(), EventOrderUpdate); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("expected ErrPublisherClosed, got %v", err)
	}
}

func TestAMQPPublisher_RunStops(t *testing.T) {
	p := NewAMQPPublisher(deadBrokerURL(t), "pos.updates", "api", logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run kept dialing after cancel")
	}

	_ = p.Close()
	finished := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Run kept dialing after Close")
	}
}
