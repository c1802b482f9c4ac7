package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/runway/internal/core/store"
)

type row struct {
	ID    string `json:"id"`
	Stage string `json:"stage"`
}

func (r row) EntityID() string { return r.ID }

func newTestClient(t *testing.T, h http.HandlerFunc, mutate ...func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := Config{URL: srv.URL, Key: "anon-key", Retries: 2}
	for _, fn := range mutate {
		fn(&cfg)
	}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	c.backoff = time.Millisecond
	return c
}

func TestNewClient_validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing url", Config{Key: "k"}},
		{"bad scheme", Config{URL: "ftp://x", Key: "k"}},
		{"missing key", Config{URL: "https://x.supabase.co"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestStore_List(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/deals", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "id.asc", r.URL.Query().Get("order"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode([]row{{ID: "d1", Stage: "Lead"}, {ID: "d2", Stage: "Won"}})
	})

	got, err := NewStore[row](c, "deals", "").List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []row{{ID: "d1", Stage: "Lead"}, {ID: "d2", Stage: "Won"}}, got)
}

func TestStore_Get(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "eq.d1" {
			_ = json.NewEncoder(w).Encode([]row{{ID: "d1", Stage: "Lead"}})
			return
		}
		_, _ = w.Write([]byte("[]"))
	})
	s := NewStore[row](c, "deals", "")

	got, err := s.Get(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "Lead", got.Stage)

	_, err = s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_Upsert(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "id", r.URL.Query().Get("on_conflict"))
		assert.Contains(t, r.Header.Get("Prefer"), "resolution=merge-duplicates")

		var body []row
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []row{{ID: "d1", Stage: "Won"}}, body)

		w.WriteHeader(http.StatusCreated)
	})

	err := NewStore[row](c, "deals", "").Upsert(context.Background(), row{ID: "d1", Stage: "Won"})
	assert.NoError(t, err)
}

func TestStore_Upsert_not_retried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := NewStore[row](c, "deals", "").Upsert(context.Background(), row{ID: "d1"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestStore_Delete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Query().Get("id") == "eq.t1" {
			_ = json.NewEncoder(w).Encode([]row{{ID: "t1"}})
			return
		}
		_, _ = w.Write([]byte("[]"))
	})
	s := NewStore[row](c, "tasks", "")

	assert.NoError(t, s.Delete(context.Background(), "t1"))
	assert.ErrorIs(t, s.Delete(context.Background(), "t2"), store.ErrNotFound)
}

func TestClient_retries_temporary_reads(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"d1"}]`))
	})

	got, err := NewStore[row](c, "deals", "").List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_status_error(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"22P02","message":"invalid input syntax","hint":null}`))
	})

	_, err := NewStore[row](c, "deals", "").List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatus)

	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusBadRequest, serr.StatusCode)
	assert.Equal(t, "22P02", serr.Code)
	assert.Equal(t, "supabase: status 400: invalid input syntax", serr.Error())
	assert.False(t, serr.Temporary())
}

func TestClient_timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, func(cfg *Config) {
		cfg.Timeout = 20 * time.Millisecond
		cfg.Retries = 0
	})

	err := NewStore[row](c, "deals", "").Upsert(context.Background(), row{ID: "d1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Invoke(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/functions/v1/generate", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "email", body["action"])

		_, _ = w.Write([]byte(`{"content":"Hi there"}`))
	})

	var out struct {
		Content string `json:"content"`
	}
	err := c.Invoke(context.Background(), "generate", map[string]any{"action": "email"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Hi there", out.Content)
}
