package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "main st", r.URL.Query().Get("address"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", time.Second)

	var out struct {
		Status string `json:"status"`
	}
	err := client.GetJSON(context.Background(), "/geocode/json", url.Values{"address": {"main st"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "OK", out.Status)
}

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "lyft_line", body["ride_type"])

		_, _ = w.Write([]byte(`{"ride_id":"r-1"}`))
	}))
	defer server.Close()

	client := NewClientWithHTTP(server.URL, server.Client())

	var out map[string]string
	err := client.PostJSON(context.Background(), "/rides", map[string]string{"ride_type": "lyft_line"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "r-1", out["ride_id"])
}

func TestClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad address"))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	err := client.PostJSON(context.Background(), "/rides", map[string]string{}, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, "400 - bad address", statusErr.Error())
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	var out map[string]interface{}
	err := client.GetJSON(context.Background(), "/", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_WithExactStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	}))
	defer server.Close()

	base := NewClientWithHTTP(server.URL, server.Client())
	var out map[string]string
	require.NoError(t, base.GetJSON(context.Background(), "/", nil, &out))
	assert.Equal(t, "OK", out["status"])

	strict := base.WithExactStatus(http.StatusOK)
	err := strict.GetJSON(context.Background(), "/", nil, &out)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusAccepted, statusErr.StatusCode)

	// The original client keeps its 2xx policy.
	assert.NoError(t, base.GetJSON(context.Background(), "/", nil, &out))
}
