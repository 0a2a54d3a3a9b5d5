package logs

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sarahsindone/sbrp-application/config"
	"github.com/sarahsindone/sbrp-application/pkg/reqctx"
)

func TestMultiHandler_FanOut(t *testing.T) {
	var info, errOnly bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errOnly, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	logger := slog.New(h).With("service", "sbrp")

	logger.Info("report generated", "report_id", "r1")
	logger.Error("publish failed")

	require.Equal(t, 2, bytes.Count(info.Bytes(), []byte("\n")))
	require.Equal(t, 1, bytes.Count(errOnly.Bytes(), []byte("\n")))
	require.Contains(t, info.String(), `"service":"sbrp"`)
	require.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestRequestHandler_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&requestHandler{next: slog.NewJSONHandler(&buf, nil)})

	ctx := reqctx.WithRequestMeta(context.Background(), &reqctx.RequestMeta{
		RequestID:   "req-123",
		RequestedAt: time.Now(),
	})
	logger.InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "req-123", rec["request_id"])

	buf.Reset()
	logger.Info("no request")
	require.NotContains(t, buf.String(), "request_id")
}

func TestLokiPushURL(t *testing.T) {
	tests := []struct {
		name    string
		in      config.LokiConfig
		want    string
		wantErr bool
	}{
		{"appends push path", config.LokiConfig{Endpoint: "http://loki:3100"}, "http://loki:3100/loki/api/v1/push", false},
		{"keeps push path", config.LokiConfig{Endpoint: "http://loki:3100/loki/api/v1/push"}, "http://loki:3100/loki/api/v1/push", false},
		{"basic auth", config.LokiConfig{Endpoint: "https://logs.example.com/", Username: "u", Password: "p"}, "https://u:p@logs.example.com/loki/api/v1/push", false},
		{"empty", config.LokiConfig{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lokiPushURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, parseLevel("warn"))
	require.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
