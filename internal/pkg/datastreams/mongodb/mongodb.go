package mongodb

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/dfl_launcher/internal/pkg/config"
	"github.com/ohowland/dfl_launcher/internal/pkg/msg"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const timeout = 5 * time.Second

type Handler struct {
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config.Mongo
	stop   chan bool
}

func (h Handler) PID() uuid.UUID {
	return h.pid
}

// New subscribes a MongoDB writer to every result topic of system.
func New(cfg config.Mongo, system msg.Publisher) (Handler, error) {
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

// URI is the connection string of the configured server.
func (h Handler) URI() string {
	return h.config.URI + ":" + h.config.Port
}

// filter selects the document of one record of one run.
func filter(m msg.Msg, r msg.Record) bson.M {
	return bson.M{"run": m.PID().String(), "id": r.ID}
}

// msgToBSON builds the upsert of one record. The record data goes through its
// JSON encoding so that enums are stored by name.
func msgToBSON(m msg.Msg, r msg.Record) (bson.D, error) {
	data, err := json.Marshal(r.Data)
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, err
	}
	return bson.D{
		{Key: "$set", Value: bson.M{
			"run":   m.PID().String(),
			"id":    r.ID,
			"model": r.Model,
			"data":  doc,
		}},
	}, nil
}

func (h *Handler) Stop() {
	h.stop <- true
}

// Process upserts every record in the collection named after its topic.
func (h Handler) Process() {
	log.Println("[Mongo] Process Started")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(h.URI()))
	cancel()
	if err != nil {
		log.Printf("[Mongo] unable to connect to %s: %v", h.URI(), err)
		h.drain()
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		client.Disconnect(ctx)
	}()
	db := client.Database(h.config.Database)

	written := 0
loop:
	for {
		select {
		case m, ok := <-h.inbox:
			if !ok {
				break loop
			}
			r, ok := m.Payload().(msg.Record)
			if !ok {
				log.Printf("[Mongo] unexpected payload %T on %v", m.Payload(), m.Topic())
				continue
			}
			update, err := msgToBSON(m, r)
			if err != nil {
				log.Printf("[Mongo] unable to encode %s: %v", r.ID, err)
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			_, err = db.Collection(m.Topic().String()).UpdateOne(ctx, filter(m, r), update, options.Update().SetUpsert(true))
			cancel()
			if err != nil {
				log.Printf("[Mongo] unable to upsert %s: %v", r.ID, err)
				continue
			}
			written++

		case <-h.stop:
			break loop
		}
	}
	log.Printf("[Mongo] Process Shutdown, %d records written", written)
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
