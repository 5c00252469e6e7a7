// bus/bus_test.go
package bus

import (
	"context"
	"testing"
	"time"
)

func expectPayload(t *testing.T, sub *Subscription, want any) {
	t.Helper()
	select {
	case got := <-sub.Channel():
		if got.Payload != want {
			t.Errorf("expected payload %v, got %v", want, got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message %v on %s", want, sub.Topic().String())
	}
}

func expectNoMessage(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case got := <-sub.Channel():
		t.Errorf("unexpected message on %s: %v", sub.Topic().String(), got.Payload)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(Topic{"sensor", "light", "value"})
	conn.Publish(conn.NewMessage(Topic{"sensor", "light", "value"}, "hello", false))

	expectPayload(t, sub, "hello")
}

func TestRetainedMessage(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(Topic{"config", "sensor"}, "persist", true))

	// Late subscriber still sees the retained value.
	sub := conn.Subscribe(Topic{"config", "sensor"})
	expectPayload(t, sub, "persist")
}

func TestRetainedCleared(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(Topic{"config", "sensor"}, "persist", true))
	conn.Publish(conn.NewMessage(Topic{"config", "sensor"}, nil, true))

	sub := conn.Subscribe(Topic{"config", "sensor"})
	expectNoMessage(t, sub)
}

func TestWildcard_SingleLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	s1 := c.Subscribe(Topic{"a", "+", "c"})
	s2 := c.Subscribe(Topic{"a", "+", "+"})
	s3 := c.Subscribe(Topic{"a", "b", "+"})
	sNo := c.Subscribe(Topic{"a", "+", "d"})

	c.Publish(c.NewMessage(Topic{"a", "b", "c"}, "m1", false))

	expectPayload(t, s1, "m1")
	expectPayload(t, s2, "m1")
	expectPayload(t, s3, "m1")
	expectNoMessage(t, sNo)

	c.Publish(c.NewMessage(Topic{"a", "x", "y"}, "m2", false))

	expectPayload(t, s2, "m2")
	expectNoMessage(t, s1)
	expectNoMessage(t, s3)
}

func TestWildcard_MultiLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	all := c.Subscribe(Topic{"player", "#"})

	c.Publish(c.NewMessage(Topic{"player", "state"}, "s", false))
	c.Publish(c.NewMessage(Topic{"player", "control", "tone"}, "t", false))

	expectPayload(t, all, "s")
	expectPayload(t, all, "t")
}

func TestWildcard_RetainedDelivery(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	c.Publish(c.NewMessage(Topic{"config", "sensor"}, "a", true))
	c.Publish(c.NewMessage(Topic{"config", "player"}, "b", true))

	sub := c.Subscribe(Topic{"config", "#"})

	got := map[any]bool{}
	for i := 0; i < 2; i++ {
		select {
		case m := <-sub.Channel():
			got[m.Payload] = true
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for retained messages")
		}
	}
	if !got["a"] || !got["b"] {
		t.Errorf("expected both retained payloads, got %v", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")

	sub := c.Subscribe(Topic{"x"})
	sub.Unsubscribe()

	c.Publish(c.NewMessage(Topic{"x"}, "gone", false))
	expectNoMessage(t, sub)
}

func TestQueueOverflow_DropsOldest(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("test")

	sub := c.Subscribe(Topic{"v"})
	for i := 1; i <= 4; i++ {
		c.Publish(c.NewMessage(Topic{"v"}, i, false))
	}

	// Queue depth 2: the two newest survive.
	expectPayload(t, sub, 3)
	expectPayload(t, sub, 4)
}

func TestRequestReply(t *testing.T) {
	b := NewBus(4)
	server := b.NewConnection("server")
	client := b.NewConnection("client")

	reqSub := server.Subscribe(Topic{"svc", "control", "ping"})
	go func() {
		m := <-reqSub.Channel()
		if !m.CanReply() {
			t.Error("request should carry a ReplyTo topic")
			return
		}
		server.Reply(m, "pong", false)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	reply, err := client.RequestWait(ctx, client.NewMessage(Topic{"svc", "control", "ping"}, nil, false))
	if err != nil {
		t.Fatalf("RequestWait: %v", err)
	}
	if reply.Payload != "pong" {
		t.Errorf("expected pong, got %v", reply.Payload)
	}
}

func TestRequestWait_ContextCancelled(t *testing.T) {
	b := NewBus(4)
	client := b.NewConnection("client")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.RequestWait(ctx, client.NewMessage(Topic{"nobody", "home"}, nil, false))
	if err == nil {
		t.Fatal("expected context error for unanswered request")
	}
}

func TestTopicMatch(t *testing.T) {
	cases := []struct {
		pattern  Topic
		concrete Topic
		want     bool
	}{
		{Topic{"a", "b"}, Topic{"a", "b"}, true},
		{Topic{"a", "+"}, Topic{"a", "b"}, true},
		{Topic{"a", "#"}, Topic{"a", "b", "c"}, true},
		{Topic{"a", "#"}, Topic{"a"}, true},
		{Topic{"a", "+"}, Topic{"a"}, false},
		{Topic{"a", "b"}, Topic{"a"}, false},
		{Topic{"a"}, Topic{"a", "b"}, false},
	}
	for _, tc := range cases {
		if got := tc.pattern.Match(tc.concrete); got != tc.want {
			t.Errorf("Match(%s, %s) = %v, want %v", tc.pattern.String(), tc.concrete.String(), got, tc.want)
		}
	}
}
