package automation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dom "example.com/mystic-prints/app/internal/domain/workflow"
)

func TestTrigger_PostsPayload(t *testing.T) {
	var got dom.TriggerPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewWebhookClient(time.Second, nil)
	payload := dom.TriggerPayload{Trigger: "manual", Timestamp: "2026-10-17T09:00:00.000Z"}

	require.NoError(t, client.Trigger(context.Background(), srv.URL, payload))
	require.Equal(t, payload, got)
}

func TestTrigger_NonSuccessStatusIsDelivered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow disabled", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewWebhookClient(time.Second, nil)

	require.NoError(t, client.Trigger(context.Background(), srv.URL, dom.TriggerPayload{Trigger: "manual"}))
}

func TestTrigger_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewWebhookClient(time.Second, nil)

	require.Error(t, client.Trigger(context.Background(), url, dom.TriggerPayload{Trigger: "manual"}))
}
