// bus.go
package bus

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Topic is a path expressed as a token slice, e.g.
// Topic{"sensor", "light", "value"}. Subscriptions may use the wildcard
// tokens "+" (exactly one token) and "#" (any remaining tokens, trailing
// position only). Published topics must be concrete.
type Topic []string

const (
	WildOne = "+"
	WildAll = "#"
)

// Append returns a new Topic with extra tokens added.
func (t Topic) Append(tokens ...string) Topic {
	out := make(Topic, 0, len(t)+len(tokens))
	out = append(out, t...)
	return append(out, tokens...)
}

// String joins tokens with '/'. For diagnostics only.
func (t Topic) String() string {
	s := ""
	for i, tok := range t {
		if i > 0 {
			s += "/"
		}
		s += tok
	}
	return s
}

// Match reports whether a concrete topic matches this (possibly wildcarded)
// subscription pattern.
func (t Topic) Match(concrete Topic) bool {
	for i, tok := range t {
		if tok == WildAll {
			return true
		}
		if i >= len(concrete) {
			return false
		}
		if tok != WildOne && tok != concrete[i] {
			return false
		}
	}
	return len(t) == len(concrete)
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// CanReply reports whether the sender asked for a reply.
func (m *Message) CanReply() bool { return len(m.ReplyTo) > 0 }

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Trie node
// -----------------------------------------------------------------------------

type node struct {
	children map[string]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok string, create bool) *node {
	if n.children == nil {
		if !create {
			return nil
		}
		n.children = make(map[string]*node)
	}
	c, ok := n.children[tok]
	if !ok {
		if !create {
			return nil
		}
		c = &node{}
		n.children[tok] = c
	}
	return c
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu     sync.Mutex
	root   *node
	qLen   int
	nextID uint32
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()

	n := b.root
	for _, tok := range sub.topic {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, sub)

	// Collect retained messages matching the pattern while still holding the
	// lock so a concurrent publish is either retained-delivered or live, not
	// both or neither.
	var retained []*Message
	collectRetained(b.root, sub.topic, &retained)
	b.mu.Unlock()

	for _, m := range retained {
		deliver(sub, m)
	}
}

// collectRetained walks the trie gathering retained messages whose concrete
// topic matches the (possibly wildcarded) pattern.
func collectRetained(n *node, pattern Topic, out *[]*Message) {
	if len(pattern) == 0 {
		if n.retained != nil {
			*out = append(*out, n.retained)
		}
		return
	}
	tok := pattern[0]
	if tok == WildAll {
		collectAllRetained(n, out)
		return
	}
	if tok == WildOne {
		for _, c := range n.children {
			collectRetained(c, pattern[1:], out)
		}
		return
	}
	if c := n.child(tok, false); c != nil {
		collectRetained(c, pattern[1:], out)
	}
}

func collectAllRetained(n *node, out *[]*Message) {
	if n.retained != nil {
		*out = append(*out, n.retained)
	}
	for _, c := range n.children {
		collectAllRetained(c, out)
	}
}

// Publish delivers a message to all subscribers whose pattern matches its
// topic, then stores it when retained. Payload nil clears a retained slot.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()

	var targets []*Subscription
	matchSubs(b.root, msg.Topic, &targets)

	if msg.Retained {
		n := b.root
		for _, tok := range msg.Topic {
			n = n.child(tok, true)
		}
		if msg.Payload == nil {
			n.retained = nil
		} else {
			n.retained = msg
		}
	}
	b.mu.Unlock()

	for _, sub := range targets {
		deliver(sub, msg)
	}
}

// matchSubs collects subscribers whose pattern matches the concrete topic.
func matchSubs(n *node, topic Topic, out *[]*Subscription) {
	if c := n.child(WildAll, false); c != nil {
		*out = append(*out, c.subs...)
	}
	if len(topic) == 0 {
		*out = append(*out, n.subs...)
		return
	}
	if c := n.child(WildOne, false); c != nil {
		matchSubs(c, topic[1:], out)
	}
	if c := n.child(topic[0], false); c != nil {
		matchSubs(c, topic[1:], out)
	}
}

// deliver enqueues without blocking; when the queue is full the oldest
// message is dropped so slow consumers see fresh data.
func deliver(sub *Subscription, msg *Message) {
	select {
	case sub.ch <- msg:
	default:
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var stack []*node
	for _, tok := range sub.topic {
		c := n.child(tok, false)
		if c == nil {
			return
		}
		stack = append(stack, n)
		n = c
	}

	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}

	// Prune empty nodes.
	for i := len(sub.topic) - 1; i >= 0; i-- {
		parent := stack[i]
		key := sub.topic[i]
		child := parent.children[key]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, key)
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

// Connection scopes subscriptions and reply routing to one component.
type Connection struct {
	bus     *Bus
	id      string
	mu      sync.Mutex
	subs    []*Subscription
	nextSeq uint32
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	if id == "" {
		id = "conn" + strconv.FormatUint(uint64(atomic.AddUint32(&b.nextID, 1)), 10)
	}
	return &Connection{bus: b, id: id}
}

// NewMessage builds a message ready for Publish.
func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers a subscription owned by this connection. Retained
// messages matching the pattern are delivered immediately.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.addSubscription(sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}

// Disconnect drops all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, sub := range subs {
		c.bus.unsubscribe(sub)
	}
}

// -----------------------------------------------------------------------------
// Request / reply
// -----------------------------------------------------------------------------

// Reply publishes a response to the message's ReplyTo topic. No-op when the
// sender did not ask for a reply.
func (c *Connection) Reply(orig *Message, payload any, retained bool) {
	if !orig.CanReply() {
		return
	}
	c.Publish(&Message{Topic: orig.ReplyTo, Payload: payload, Retained: retained})
}

// RequestWait publishes msg with a private ReplyTo topic and blocks until a
// reply arrives or ctx is done.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	seq := atomic.AddUint32(&c.nextSeq, 1)
	replyTo := Topic{"reply", c.id, strconv.FormatUint(uint64(seq), 10)}

	sub := c.Subscribe(replyTo)
	defer c.Unsubscribe(sub)

	msg.ReplyTo = replyTo
	c.Publish(msg)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case reply := <-sub.ch:
		return reply, nil
	}
}
