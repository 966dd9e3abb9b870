package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/dfl_launcher/internal/pkg/config"
	"github.com/ohowland/dfl_launcher/internal/pkg/msg"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

const timeout = 1 * time.Second

// dialect holds what differs between the supported servers.
type dialect struct {
	dsn    func(config.SQL) string
	create string
	upsert string
}

var dialects = map[string]dialect{
	"mysql": {
		dsn: func(c config.SQL) string {
			return fmt.Sprintf("%v:%v@tcp(%v:%v)/%v", c.Username, c.Password, c.Server, c.Port, c.Database)
		},
		create: `CREATE TABLE IF NOT EXISTS definitions(run VARCHAR(36), topic VARCHAR(16), id VARCHAR(255), model VARCHAR(64), data TEXT, PRIMARY KEY (run, topic, id))`,
		upsert: `INSERT INTO definitions (run, topic, id, model, data) VALUES (?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE model = VALUES(model), data = VALUES(data)`,
	},
	"postgres": {
		dsn: func(c config.SQL) string {
			return fmt.Sprintf("postgres://%v:%v@%v:%v/%v?sslmode=disable", c.Username, c.Password, c.Server, c.Port, c.Database)
		},
		create: `CREATE TABLE IF NOT EXISTS definitions(run VARCHAR(36), topic VARCHAR(16), id VARCHAR(255), model VARCHAR(64), data TEXT, PRIMARY KEY (run, topic, id))`,
		upsert: `INSERT INTO definitions (run, topic, id, model, data) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (run, topic, id) DO UPDATE SET model = EXCLUDED.model, data = EXCLUDED.data`,
	},
}

type Handler struct {
	inbox   <-chan msg.Msg
	pid     uuid.UUID
	config  config.SQL
	dialect dialect
	stop    chan bool
}

func (h Handler) PID() uuid.UUID {
	return h.pid
}

// New subscribes a SQL writer to every result topic of system.
func New(cfg config.SQL, system msg.Publisher) (Handler, error) {
	d, ok := dialects[cfg.Driver]
	if !ok {
		return Handler{}, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	pid, _ := uuid.NewUUID()

	inbox, err := msg.SubscribeAll(system, pid, msg.Topics...)
	if err != nil {
		return Handler{}, err
	}

	return Handler{
		inbox:   inbox,
		pid:     pid,
		config:  cfg,
		dialect: d,
		stop:    make(chan bool, 1),
	}, nil
}

func (h *Handler) Stop() {
	h.stop <- true
}

// DSN is the data source name of the configured server.
func (h Handler) DSN() string {
	return h.dialect.dsn(h.config)
}

func (h Handler) DB() (*sql.DB, error) {
	return sql.Open(h.config.Driver, h.DSN())
}

// Process upserts every record in the definitions table.
func (h Handler) Process() {
	log.Println("[SQL] Process Started")
	db, err := h.DB()
	if err == nil {
		err = h.initDBTables(db)
	}
	if err != nil {
		log.Printf("[SQL] unable to open %s database %s: %v", h.config.Driver, h.config.Database, err)
		if db != nil {
			db.Close()
		}
		h.drain()
		return
	}
	defer db.Close()

	written := 0
loop:
	for {
		select {
		case m, ok := <-h.inbox:
			if !ok {
				break loop
			}
			if err := h.updateRow(db, m); err != nil {
				log.Printf("[SQL] error %s update db", err)
				continue
			}
			written++

		case <-h.stop:
			break loop
		}
	}
	log.Printf("[SQL] Process Shutdown, %d records written", written)
}

func (h Handler) initDBTables(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, err := db.ExecContext(ctx, h.dialect.create)
	return err
}

// row returns the column values of a message, in table order.
func row(m msg.Msg) ([]interface{}, error) {
	r, ok := m.Payload().(msg.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T on %v", m.Payload(), m.Topic())
	}
	data, err := json.Marshal(r.Data)
	if err != nil {
		return nil, err
	}
	return []interface{}{m.PID().String(), m.Topic().String(), r.ID, r.Model, string(data)}, nil
}

func (h Handler) updateRow(db *sql.DB, m msg.Msg) error {
	values, err := row(m)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_, err = db.ExecContext(ctx, h.dialect.upsert, values...)
	return err
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
