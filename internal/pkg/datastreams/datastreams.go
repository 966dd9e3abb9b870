/*
datastreams.go Result sinks. Every enabled datastream subscribes to the launcher PubSub and
stores or forwards each published definition.
*/

package datastreams

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/ohowland/dfl_launcher/internal/pkg/config"
	"github.com/ohowland/dfl_launcher/internal/pkg/datastreams/mongodb"
	"github.com/ohowland/dfl_launcher/internal/pkg/datastreams/mqtt"
	"github.com/ohowland/dfl_launcher/internal/pkg/datastreams/natshandler"
	"github.com/ohowland/dfl_launcher/internal/pkg/datastreams/sqldb"
	"github.com/ohowland/dfl_launcher/internal/pkg/datastreams/web"
	"github.com/ohowland/dfl_launcher/internal/pkg/msg"
)

// Handler consumes the messages of a publisher until it closes or Stop is called.
type Handler interface {
	PID() uuid.UUID
	Process()
	Stop()
}

// New builds a handler per enabled datastream, subscribed to system.
func New(cfg config.Datastreams, system msg.Publisher) ([]Handler, error) {
	handlers := make([]Handler, 0)
	if cfg.Mongo != nil {
		h, err := mongodb.New(*cfg.Mongo, system)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, &h)
	}
	if cfg.MQTT != nil {
		h, err := mqtt.New(*cfg.MQTT, system)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, &h)
	}
	if cfg.NATS != nil {
		h, err := natshandler.New(*cfg.NATS, system)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, &h)
	}
	if cfg.SQL != nil {
		h, err := sqldb.New(*cfg.SQL, system)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, &h)
	}
	if cfg.Webhook != nil {
		h, err := web.New(*cfg.Webhook, system)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, &h)
	}
	return handlers, nil
}

// Group runs handlers and waits for their shutdown.
type Group struct {
	handlers []Handler
	wg       *sync.WaitGroup
}

// Start launches every handler process.
func Start(handlers []Handler) Group {
	g := Group{handlers: handlers, wg: &sync.WaitGroup{}}
	for _, h := range handlers {
		g.wg.Add(1)
		go func(h Handler) {
			defer g.wg.Done()
			h.Process()
		}(h)
	}
	log.Printf("[Datastreams] %d handlers started", len(handlers))
	return g
}

// Wait blocks until every handler has returned.
func (g Group) Wait() {
	g.wg.Wait()
}

// Stop asks every handler to return, then waits for them.
func (g Group) Stop() {
	for _, h := range g.handlers {
		h.Stop()
	}
	g.Wait()
}
