package natshandler

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/ohowland/dfl_launcher/internal/pkg/config"
	"github.com/ohowland/dfl_launcher/internal/pkg/msg"

	nats "github.com/nats-io/nats.go"
)

const defaultSubject = "dfl"

type Handler struct {
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config.NATS
	stop   chan bool
}

func (h Handler) PID() uuid.UUID {
	return h.pid
}

// New subscribes a NATS publisher to every result topic of system.
func New(cfg config.NATS, system msg.Publisher) (Handler, error) {
	if cfg.Subject == "" {
		cfg.Subject = defaultSubject
	}

	pid, _ := uuid.NewUUID()

	inbox, err := msg.SubscribeAll(system, pid, msg.Topics...)
	if err != nil {
		return Handler{}, err
	}

	return Handler{
		inbox:  inbox,
		pid:    pid,
		config: cfg,
		stop:   make(chan bool, 1),
	}, nil
}

// Subject is the NATS subject of a topic.
func (h Handler) Subject(topic msg.Topic) string {
	return h.config.Subject + "." + topic.String()
}

func (h *Handler) Stop() {
	h.stop <- true
}

// Process publishes every message until the system closes or Stop is called.
func (h Handler) Process() {
	log.Println("[NATS client] Process Started")
	nc, err := nats.Connect(h.config.Server)
	if err != nil {
		log.Printf("[NATS client] unable to connect to %s: %v", h.config.Server, err)
		h.drain()
		return
	}
	defer nc.Close()

	published := 0
loop:
	for {
		select {
		case m, ok := <-h.inbox:
			if !ok {
				break loop
			}
			data, err := json.Marshal(m)
			if err != nil {
				log.Printf("[NATS client] unable to encode message: %v", err)
				continue
			}
			if err = nc.Publish(h.Subject(m.Topic()), data); err != nil {
				log.Printf("[NATS client] unable to publish to nats server: %v", err)
				continue
			}
			published++

		case <-h.stop:
			break loop
		}
	}
	if err := nc.Flush(); err != nil {
		log.Printf("[NATS client] flush: %v", err)
	}
	log.Printf("[NATS client] Process Shutdown, %d messages published", published)
}

// drain discards the inbox so that publishers never block on this handler.
func (h Handler) drain() {
	for {
		select {
		case _, ok := <-h.inbox:
			if !ok {
				return
			}
		case <-h.stop:
			return
		}
	}
}
