package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(url string) *ResendNotifier {
	n := NewResendNotifier(ResendOptions{
		Endpoint: url,
		APIKey:   "key-123",
		From:     "Echi Time Capsules <capsules@example.com>",
		Timeout:  2 * time.Second,
	})
	n.backoffBase = time.Millisecond
	return n
}

func TestSend_Success(t *testing.T) {
	var gotAuth string
	var gotBody sendRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	err := n.Send(context.Background(), "future@example.com", "It is time", "<p>open it</p>")

	require.NoError(t, err)
	assert.Equal(t, "Bearer key-123", gotAuth)
	assert.Equal(t, []string{"future@example.com"}, gotBody.To)
	assert.Equal(t, "It is time", gotBody.Subject)
}

func TestSend_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	err := n.Send(context.Background(), "future@example.com", "s", "b")

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSend_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid to address"}`))
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	err := n.Send(context.Background(), "not-an-address", "s", "b")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSend_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	err := n.Send(context.Background(), "future@example.com", "s", "b")

	require.Error(t, err)
	// initial attempt + maxRetries
	assert.Equal(t, int32(3), calls.Load())
}
