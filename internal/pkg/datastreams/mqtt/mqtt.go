package mqtt

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/dfl_launcher/internal/pkg/config"
	"github.com/ohowland/dfl_launcher/internal/pkg/msg"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultTopicPrefix = "dfl"
	timeout            = 5 * time.Second
)

var connectionLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Printf("[MQTT client] connection lost: %v", err)
}

type Handler struct {
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config.MQTT
	stop   chan bool
}

func (h Handler) PID() uuid.UUID {
	return h.pid
}

// New subscribes an MQTT publisher to every result topic of system.
func New(cfg config.MQTT, system msg.Publisher) (Handler, error) {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = defaultTopicPrefix
	}

	pid, _ := uuid.NewUUID()
	if cfg.ClientID == "" {
		cfg.ClientID = "dfl-" + pid.String()
	}

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

// Topic is the MQTT topic of a launcher topic.
func (h Handler) Topic(topic msg.Topic) string {
	return h.config.TopicPrefix + "/" + topic.String()
}

func (h Handler) clientOptions() *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(h.config.Broker).
		SetClientID(h.config.ClientID).
		SetConnectTimeout(timeout).
		SetConnectionLostHandler(connectionLostHandler)
}

func (h *Handler) Stop() {
	h.stop <- true
}

// Process publishes every message until the system closes or Stop is called.
func (h Handler) Process() {
	log.Println("[MQTT client] Process Started")
	client := mqtt.NewClient(h.clientOptions())
	token := client.Connect()
	if !token.WaitTimeout(timeout) || token.Error() != nil {
		log.Printf("[MQTT client] unable to connect to %s: %v", h.config.Broker, token.Error())
		h.drain()
		return
	}
	defer client.Disconnect(250)

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
				log.Printf("[MQTT client] unable to encode message: %v", err)
				continue
			}
			token := client.Publish(h.Topic(m.Topic()), h.config.QoS, false, data)
			if !token.WaitTimeout(timeout) || token.Error() != nil {
				log.Printf("[MQTT client] unable to publish to broker: %v", token.Error())
				continue
			}
			published++

		case <-h.stop:
			break loop
		}
	}
	log.Printf("[MQTT client] Process Shutdown, %d messages published", published)
}

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
