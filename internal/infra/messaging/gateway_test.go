package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(out io.Writer) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(out)
	return logrus.NewEntry(l)
}

func TestWebhookGateway_Success(t *testing.T) {
	var got webhookRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"message_id":"wamid.42","status":"queued"}`))
	}))
	defer srv.Close()

	gw := NewWebhookGateway(srv.URL, "secret", srv.Client(), testLogger(io.Discard))
	res, err := gw.Send(context.Background(), "+919811111111", "Hi Kiran")

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "wamid.42", res.MessageID)
	assert.Equal(t, webhookRequest{To: "+919811111111", Text: "Hi Kiran"}, got)
}

func TestWebhookGateway_ProviderRejection(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusBadRequest, `{"error":"invalid number"}`, "400"},
		{"failed status", http.StatusOK, `{"status":"failed","error":"opted out"}`, "opted out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			gw := NewWebhookGateway(srv.URL, "", srv.Client(), testLogger(io.Discard))
			res, err := gw.Send(context.Background(), "+91", "x")

			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Contains(t, res.Error, tt.wantErr)
		})
	}
}

func TestWebhookGateway_RespectsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	gw := NewWebhookGateway(srv.URL, "", srv.Client(), testLogger(io.Discard))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := gw.Send(ctx, "+91", "x")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLogGateway(t *testing.T) {
	var buf bytes.Buffer
	gw := NewLogGateway(testLogger(&buf))

	res, err := gw.Send(context.Background(), "+919811111111", "Hi Kiran")

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.MessageID, "dry-run-"))
	assert.Contains(t, buf.String(), "Hi Kiran")
}
