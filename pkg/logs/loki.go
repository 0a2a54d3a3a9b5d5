package logs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/grafana/loki-client-go/loki"
	slogloki "github.com/samber/slog-loki/v3"

	"github.com/sarahsindone/sbrp-application/config"
	"github.com/sarahsindone/sbrp-application/pkg/reqctx"
)

const lokiPushPath = "/loki/api/v1/push"

func newLokiHandler(cfg *config.Config, level slog.Level) (slog.Handler, func(), error) {
	endpoint, err := lokiPushURL(cfg.Logging.Output.Loki)
	if err != nil {
		return nil, nil, err
	}

	lc, err := loki.NewDefaultConfig(endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("loki config: %w", err)
	}
	lc.TenantID = cfg.Logging.Output.Loki.TenantID

	client, err := loki.New(lc)
	if err != nil {
		return nil, nil, fmt.Errorf("loki client: %w", err)
	}

	h := slogloki.Option{
		Level:  level,
		Client: client,
		AttrFromContext: []func(ctx context.Context) []slog.Attr{
			func(ctx context.Context) []slog.Attr {
				if id := reqctx.RequestIDFromContext(ctx); id != "" {
					return []slog.Attr{slog.String("request_id", id)}
				}
				return nil
			},
		},
	}.NewLokiHandler()

	return h, client.Stop, nil
}

// lokiPushURL appends the push path when missing and carries basic-auth
// credentials as URL user info.
func lokiPushURL(c config.LokiConfig) (string, error) {
	if c.Endpoint == "" {
		return "", fmt.Errorf("loki endpoint is empty")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse loki endpoint: %w", err)
	}
	if !strings.HasSuffix(u.Path, lokiPushPath) {
		u.Path = strings.TrimRight(u.Path, "/") + lokiPushPath
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}
	return u.String(), nil
}
