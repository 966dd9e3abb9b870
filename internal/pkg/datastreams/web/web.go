package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/dfl_launcher/internal/pkg/config"
	"github.com/ohowland/dfl_launcher/internal/pkg/msg"
)

const contentType = "application/json; charset=UTF-8"

type Handler struct {
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config.Webhook
	client *http.Client
	stop   chan bool
}

func (h Handler) PID() uuid.UUID {
	return h.pid
}

// New subscribes a webhook poster to every result topic of system.
func New(cfg config.Webhook, system msg.Publisher) (Handler, error) {
	pid, _ := uuid.NewUUID()

	inbox, err := msg.SubscribeAll(system, pid, msg.Topics...)
	if err != nil {
		return Handler{}, err
	}

	return Handler{
		inbox:  inbox,
		pid:    pid,
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		stop:   make(chan bool, 1),
	}, nil
}

// TargetURL is the endpoint receiving a message.
func (h Handler) TargetURL(m msg.Msg) string {
	target := strings.TrimRight(h.config.URL, "/") + "/" + m.Topic().String()
	if r, ok := m.Payload().(msg.Record); ok && r.ID != "" {
		target += "/" + url.PathEscape(r.ID)
	}
	return target
}

func (h *Handler) Stop() {
	h.stop <- true
}

// Process posts every message until the system closes or Stop is called.
// A failed post is logged and the next message is sent.
func (h Handler) Process() {
	log.Println("[Webhook Handler] Process Started")
	posted := 0
loop:
	for {
		select {
		case m, ok := <-h.inbox:
			if !ok {
				break loop
			}
			if err := h.post(m); err != nil {
				log.Println("[Webhook Handler]", err)
				continue
			}
			posted++
		case <-h.stop:
			break loop
		}
	}
	log.Printf("[Webhook Handler] Process Shutdown, %d messages posted", posted)
}

func (h Handler) post(m msg.Msg) error {
	jsonData, err := json.Marshal(m)
	if err != nil {
		return err
	}
	resp, err := h.client.Post(h.TargetURL(m), contentType, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("post %s: %s", h.TargetURL(m), resp.Status)
	}
	return nil
}
