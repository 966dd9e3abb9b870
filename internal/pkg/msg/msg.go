package msg

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Topic is the subject of a broadcast
type Topic int

const (
	// HVDC carries one HVDC line definition per message
	HVDC Topic = iota
	// Generator carries one generator definition per message
	Generator
	// Summary carries the run summary, once per run
	Summary
)

func (t Topic) String() string {
	switch t {
	case HVDC:
		return "hvdc"
	case Generator:
		return "generator"
	case Summary:
		return "summary"
	default:
		return fmt.Sprintf("topic%d", int(t))
	}
}

// Topics lists every topic
var Topics = []Topic{HVDC, Generator, Summary}

// Publisher is an interface for objects that allow subscribtion to their events
type Publisher interface {
	Subscribe(uuid.UUID, Topic) (<-chan Msg, error)
	Unsubscribe(uuid.UUID)
}

// Msg is a payload stamped with its sender and topic
type Msg struct {
	sender  uuid.UUID
	topic   Topic
	payload interface{}
}

// New is the Msg factory function
func New(sender uuid.UUID, topic Topic, payload interface{}) Msg {
	return Msg{sender, topic, payload}
}

// PID returns the sender's PID
func (v Msg) PID() uuid.UUID {
	return v.sender
}

// Topic returns the message topic
func (v Msg) Topic() Topic {
	return v.topic
}

// Payload returns the message data
func (v Msg) Payload() interface{} {
	return v.payload
}

// MarshalJSON encodes the message with its sender and topic
func (v Msg) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PID     uuid.UUID   `json:"pid"`
		Topic   string      `json:"topic"`
		Payload interface{} `json:"payload"`
	}{v.sender, v.topic.String(), v.payload})
}

// Record is the payload published for one launcher result.
type Record struct {
	ID    string      `json:"id"`
	Model string      `json:"model"`
	Data  interface{} `json:"data"`
}

const subscriberBuffer = 50

// ErrClosed is returned when subscribing to a closed PubSub
var ErrClosed = errors.New("publisher closed")

// PubSub broadcasts messages to the subscribers of their topic
type PubSub struct {
	mux         *sync.Mutex
	pid         uuid.UUID
	subscribers map[Topic]map[uuid.UUID]chan Msg
	closed      bool
}

// NewPublisher returns a PubSub publishing under pid
func NewPublisher(pid uuid.UUID) *PubSub {
	return &PubSub{
		mux:         &sync.Mutex{},
		pid:         pid,
		subscribers: make(map[Topic]map[uuid.UUID]chan Msg),
	}
}

// PID returns the publisher PID
func (p *PubSub) PID() uuid.UUID {
	return p.pid
}

// Subscribe returns a channel on which the topic is broadcast to pid
func (p *PubSub) Subscribe(pid uuid.UUID, topic Topic) (<-chan Msg, error) {
	p.mux.Lock()
	defer p.mux.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	subs, ok := p.subscribers[topic]
	if !ok {
		subs = make(map[uuid.UUID]chan Msg)
		p.subscribers[topic] = subs
	}
	if _, ok := subs[pid]; ok {
		return nil, fmt.Errorf("%v already subscribed to %v", pid, topic)
	}
	ch := make(chan Msg, subscriberBuffer)
	subs[pid] = ch
	return ch, nil
}

// Unsubscribe pid from all topics. Its channels are closed.
func (p *PubSub) Unsubscribe(pid uuid.UUID) {
	p.mux.Lock()
	defer p.mux.Unlock()
	for _, subs := range p.subscribers {
		if ch, ok := subs[pid]; ok {
			close(ch)
			delete(subs, pid)
		}
	}
}

// Publish broadcasts payload on topic
func (p *PubSub) Publish(topic Topic, payload interface{}) {
	p.Forward(New(p.pid, topic, payload))
}

// Forward broadcasts m, keeping its original sender
func (p *PubSub) Forward(m Msg) {
	p.mux.Lock()
	defer p.mux.Unlock()
	if p.closed {
		return
	}
	for _, ch := range p.subscribers[m.topic] {
		ch <- m
	}
}

// Close closes every subscriber channel. Later publications are dropped.
func (p *PubSub) Close() {
	p.mux.Lock()
	defer p.mux.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, subs := range p.subscribers {
		for pid, ch := range subs {
			close(ch)
			delete(subs, pid)
		}
	}
}

// Merge redirects every channel into the returned one, which is closed once
// all of them are.
func Merge(chs ...<-chan Msg) <-chan Msg {
	out := make(chan Msg, subscriberBuffer)
	wg := &sync.WaitGroup{}
	wg.Add(len(chs))
	for _, ch := range chs {
		go func(ch <-chan Msg) {
			defer wg.Done()
			for m := range ch {
				out <- m
			}
		}(ch)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// SubscribeAll subscribes pid to every topic of system and merges the channels.
func SubscribeAll(system Publisher, pid uuid.UUID, topics ...Topic) (<-chan Msg, error) {
	chs := make([]<-chan Msg, 0, len(topics))
	for _, topic := range topics {
		ch, err := system.Subscribe(pid, topic)
		if err != nil {
			system.Unsubscribe(pid)
			return nil, err
		}
		chs = append(chs, ch)
	}
	return Merge(chs...), nil
}
