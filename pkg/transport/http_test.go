package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHTTP_Send(t *testing.T) {
	var gotBody []byte
	var gotType, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"Fresh","command":"ON"}`))
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL+"/api/readings", time.Second, zaptest.NewLogger(t))
	body, err := h.Send(context.Background(), []byte(`{"device_id":"A"}`))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.JSONEq(t, `{"device_id":"A"}`, string(gotBody))
	assert.JSONEq(t, `{"status":"Fresh","command":"ON"}`, string(body))
}

func TestHTTP_NonSuccessStatusIsError(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{name: "bad request", code: http.StatusBadRequest},
		{name: "too many requests", code: http.StatusTooManyRequests},
		{name: "server error", code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer srv.Close()

			_, err := NewHTTP(srv.URL, time.Second, nil).Send(context.Background(), []byte(`{}`))
			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.code, se.Code)
			assert.Contains(t, se.Body, "nope")
		})
	}
}

func TestHTTP_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTP(url, time.Second, nil).Send(context.Background(), []byte(`{}`))
	assert.Error(t, err)
}

func TestHTTP_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTP(srv.URL, 50*time.Millisecond, nil).Send(context.Background(), []byte(`{}`))
	assert.Error(t, err)
}
