//go:build integration
// +build integration

package natsadapter

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/samirrijal/wayfinder/internal/core/domain"
	"github.com/samirrijal/wayfinder/internal/pkg/config"
)

func natsURL(t *testing.T) string {
	t.Helper()
	cfg, err := config.Load("wayfinder-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg.NATS.URL
}

func expectEvent(t *testing.T, got <-chan []byte) domain.ScreenEvent {
	t.Helper()
	select {
	case data := <-got:
		var ev domain.ScreenEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("no event relayed")
		return domain.ScreenEvent{}
	}
}

func expectNothing(t *testing.T, got <-chan []byte) {
	t.Helper()
	select {
	case data := <-got:
		t.Errorf("unexpected event %s", data)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestIntegration_PublishAndRelay(t *testing.T) {
	url := natsURL(t)
	pub, err := NewPublisher(url)
	if err != nil {
		t.Skipf("nats unavailable: %v", err)
	}
	defer pub.Close()
	if !pub.Healthy() {
		t.Skip("nats not connected")
	}

	conn, err := RawConn(url)
	if err != nil {
		t.Fatal(err)
	}
	sub := NewSubscriber(conn)
	defer sub.Close()

	got := make(chan []byte, 8)
	unsubscribe, err := sub.SubscribeScreenEvents("screen-a", func(data []byte) { got <- data })
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.Flush(); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	other := &domain.ScreenEvent{ScreenID: "screen-b", Kind: domain.EventSearchCompleted, At: time.Now()}
	mine := &domain.ScreenEvent{ScreenID: "screen-a", Kind: domain.EventRouteEstimated, At: time.Now()}
	if err := pub.PublishScreenEvent(ctx, other); err != nil {
		t.Fatal(err)
	}
	if err := pub.PublishScreenEvent(ctx, mine); err != nil {
		t.Fatal(err)
	}

	ev := expectEvent(t, got)
	if ev.ScreenID != "screen-a" || ev.Kind != domain.EventRouteEstimated {
		t.Errorf("unexpected event %+v", ev)
	}
	expectNothing(t, got)

	unsubscribe()
	unsubscribe()
	if err := pub.PublishScreenEvent(ctx, mine); err != nil {
		t.Fatal(err)
	}
	expectNothing(t, got)
}

func TestIntegration_NewPublisherTwiceReusesStream(t *testing.T) {
	url := natsURL(t)
	first, err := NewPublisher(url)
	if err != nil {
		t.Skipf("nats unavailable: %v", err)
	}
	defer first.Close()

	second, err := NewPublisher(url)
	if err != nil {
		t.Fatalf("second publisher should update the existing stream: %v", err)
	}
	second.Close()
}
