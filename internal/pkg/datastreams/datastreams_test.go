package datastreams

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/dfl_launcher/internal/pkg/config"
	"github.com/ohowland/dfl_launcher/internal/pkg/msg"
	"gotest.tools/v3/assert"
)

type countingHandler struct {
	pid   uuid.UUID
	inbox <-chan msg.Msg
	count *int
	stop  chan bool
}

func (h countingHandler) PID() uuid.UUID { return h.pid }

func (h countingHandler) Process() {
	for {
		select {
		case _, ok := <-h.inbox:
			if !ok {
				return
			}
			*h.count++
		case <-h.stop:
			return
		}
	}
}

func (h countingHandler) Stop() { h.stop <- true }

func TestNewBuildsEnabledHandlers(t *testing.T) {
	pid, _ := uuid.NewUUID()
	pub := msg.NewPublisher(pid)

	handlers, err := New(config.Datastreams{}, pub)
	assert.NilError(t, err)
	assert.Equal(t, len(handlers), 0)

	handlers, err = New(config.Datastreams{
		MQTT: &config.MQTT{Broker: "tcp://127.0.0.1:1"},
		NATS: &config.NATS{Server: "nats://127.0.0.1:1"},
		SQL:  &config.SQL{Driver: "postgres", Server: "127.0.0.1", Port: 1, Username: "u", Database: "d"},
	}, pub)
	assert.NilError(t, err)
	assert.Equal(t, len(handlers), 3)
	assert.Assert(t, handlers[0].PID() != handlers[1].PID())
	assert.Assert(t, handlers[1].PID() != handlers[2].PID())

	_, err = New(config.Datastreams{SQL: &config.SQL{Driver: "oracle"}}, pub)
	assert.ErrorContains(t, err, "oracle")
}

func TestGroupWaitsForClose(t *testing.T) {
	pid, _ := uuid.NewUUID()
	pub := msg.NewPublisher(pid)
	inbox, err := msg.SubscribeAll(pub, pid, msg.Topics...)
	assert.NilError(t, err)

	count := 0
	g := Start([]Handler{countingHandler{pid: pid, inbox: inbox, count: &count, stop: make(chan bool, 1)}})
	pub.Publish(msg.HVDC, msg.Record{ID: "A"})
	pub.Publish(msg.Summary, msg.Record{ID: "summary"})
	pub.Close()

	done := make(chan bool)
	go func() {
		g.Wait()
		done <- true
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handlers did not return")
	}
	assert.Equal(t, count, 2)
}
