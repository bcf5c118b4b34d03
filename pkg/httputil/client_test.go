package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finpulse/pkg/logger"
)

func TestNew(t *testing.T) {
	client := New(logger.NewNop(), 5*time.Second)
	require.NotNil(t, client)

	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	assert.Equal(t, 2, client.retryConfig.MaxRetries)
	assert.True(t, client.retryConfig.Enabled)

	assert.Equal(t, 30*time.Second, New(logger.NewNop(), 0).httpClient.Timeout)
}

func TestWithRetry(t *testing.T) {
	client := New(logger.NewNop(), time.Second).WithRetry(5, 2*time.Second)
	assert.Equal(t, 5, client.retryConfig.MaxRetries)
	assert.Equal(t, 2*time.Second, client.retryConfig.InitialDelay)

	client.DisableRetry()
	assert.False(t, client.retryConfig.Enabled)
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "finpulse/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"symbol":"AAPL","price":187.5}`)
	}))
	defer server.Close()

	var out struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	err := New(logger.NewNop(), time.Second).GetJSON(context.Background(), server.URL, &out)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", out.Symbol)
	assert.Equal(t, 187.5, out.Price)
}

func TestGetJSON_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var out map[string]interface{}
	err := New(logger.NewNop(), time.Second).GetJSON(context.Background(), server.URL, &out)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := New(logger.NewNop(), time.Second).WithRetry(3, time.Millisecond)

	var out map[string]interface{}
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &out))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNoRetryWhenDisabled(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(logger.NewNop(), time.Second).DisableRetry()

	var out map[string]interface{}
	assert.Error(t, client.GetJSON(context.Background(), server.URL, &out))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLocalLimitHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := New(logger.NewNop(), time.Second).WithLocalLimit(0.001, 1)

	var out map[string]interface{}
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &out))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, client.GetJSON(ctx, server.URL, &out), "second request exceeds the bucket")
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.code))
		})
	}
}
