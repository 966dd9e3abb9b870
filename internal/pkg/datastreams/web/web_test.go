package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ohowland/dfl_launcher/internal/pkg/config"
	"github.com/ohowland/dfl_launcher/internal/pkg/msg"
	"gotest.tools/v3/assert"
)

func TestTargetURL(t *testing.T) {
	pid, _ := uuid.NewUUID()
	h, err := New(config.Webhook{URL: "http://192.168.0.5/results/"}, msg.NewPublisher(pid))
	assert.NilError(t, err)

	assert.Equal(t, h.TargetURL(msg.New(pid, msg.HVDC, msg.Record{ID: "HVDC/1"})), "http://192.168.0.5/results/hvdc/HVDC%2F1")
	assert.Equal(t, h.TargetURL(msg.New(pid, msg.Summary, "raw")), "http://192.168.0.5/results/summary")
}

func TestPublish(t *testing.T) {
	mux := &sync.Mutex{}
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mux.Lock()
		received[r.URL.Path] = string(body)
		mux.Unlock()
		if strings.HasSuffix(r.URL.Path, "G_BAD") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	pid, _ := uuid.NewUUID()
	pub := msg.NewPublisher(pid)
	h, err := New(config.Webhook{URL: srv.URL}, pub)
	assert.NilError(t, err)

	done := make(chan bool)
	go func() {
		h.Process()
		done <- true
	}()

	pub.Publish(msg.Generator, msg.Record{ID: "G_BAD"})
	pub.Publish(msg.Generator, msg.Record{ID: "G1", Model: "NETWORK"})
	pub.Close()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("handler did not stop")
	}

	mux.Lock()
	defer mux.Unlock()
	assert.Equal(t, len(received), 2)
	assert.Assert(t, strings.Contains(received["/generator/G1"], `"model":"NETWORK"`))
}
