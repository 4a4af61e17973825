package queue

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/club-events/internal/config"
)

// silentBroker accepts TCP connections and never answers the AMQP handshake.
func silentBroker(t *testing.T) (addr string, accepted *atomic.Int32) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	accepted = new(atomic.Int32)
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			accepted.Add(1)
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return ln.Addr().String(), accepted
}

func TestPublishUnresponsiveBrokerFailsFast(t *testing.T) {
	addr, accepted := silentBroker(t)
	cfg := config.QueueConfig{
		URL:         "amqp://guest:guest@" + addr + "/",
		Queue:       "booking.confirmed",
		DialTimeout: 200 * time.Millisecond,
		RetryAfter:  time.Hour,
	}
	p := NewPublisher(cfg, zerolog.Nop())
	base := time.Now()
	p.now = func() time.Time { return base }

	start := time.Now()
	if err := p.PublishBookingConfirmed(context.Background(), BookingConfirmedEvent{BookingID: 1}); err == nil {
		t.Fatal("publish to a silent broker succeeded")
	}
	if took := time.Since(start); took > 3*time.Second {
		t.Fatalf("first publish took %v", took)
	}

	// Inside the retry window nothing is dialled.
	start = time.Now()
	err := p.PublishBookingConfirmed(context.Background(), BookingConfirmedEvent{BookingID: 2})
	if !errors.Is(err, ErrBrokerUnavailable) {
		t.Fatalf("second publish err = %v", err)
	}
	if took := time.Since(start); took > 100*time.Millisecond {
		t.Fatalf("second publish took %v", took)
	}
	if n := accepted.Load(); n != 1 {
		t.Fatalf("accepted %d connections, want 1", n)
	}

	p.now = func() time.Time { return base.Add(2 * time.Hour) }
	if err := p.PublishBookingConfirmed(context.Background(), BookingConfirmedEvent{BookingID: 3}); err == nil || errors.Is(err, ErrBrokerUnavailable) {
		t.Fatalf("publish after retry window err = %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for accepted.Load() != 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := accepted.Load(); n != 2 {
		t.Fatalf("accepted %d connections after retry window, want 2", n)
	}
}
