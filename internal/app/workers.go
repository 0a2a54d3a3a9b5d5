package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/sarahsindone/sbrp-application/config"
	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/pkg/constants"
	"github.com/sarahsindone/sbrp-application/pkg/email"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc     fx.Lifecycle
	NC     *nats.Conn `optional:"true"`
	Store  *repo.Store
	Mailer *email.Client
	Cfg    *config.Config
}

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil {
		slog.Info("nats disabled; report event workers not started")
		return
	}

	var subs []*nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			n := &publishNotifier{
				store:   p.Store,
				mailer:  p.Mailer,
				appName: p.Cfg.Email.AppName,
				baseURL: p.Cfg.Email.BaseURL,
			}
			sub, err := startPublishNotifier(p.NC, n)
			if err != nil {
				return err
			}
			subs = append(subs, sub)

			sub, err = startActivityLogger(p.NC)
			if err != nil {
				return err
			}
			subs = append(subs, sub)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Drain of the connection is handled by ProvideNatsClient
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			return nil
		},
	})
}

// reportIDFromSubject returns the trailing id of "<prefix>.<id>".
func reportIDFromSubject(subject, prefix string) (string, bool) {
	id, ok := strings.CutPrefix(subject, prefix+".")
	if !ok || id == "" || strings.Contains(id, ".") {
		return "", false
	}
	return id, true
}

// ---------------------------------------------------------------------------
// publish_notifier
// ---------------------------------------------------------------------------

func startPublishNotifier(nc *nats.Conn, n *publishNotifier) (*nats.Subscription, error) {
	sub, err := nc.Subscribe(constants.SubjectReportPublished+".*", func(msg *nats.Msg) {
		id, ok := reportIDFromSubject(msg.Subject, constants.SubjectReportPublished)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := n.handle(ctx, id); err != nil {
			slog.Warn("publish_notifier: notification failed", "report_id", id, "err", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("publish_notifier: subscribe: %w", err)
	}
	return sub, nil
}

// publishNotifier e-mails the report author when a report is published.
type publishNotifier struct {
	store   *repo.Store
	mailer  email.Sender
	appName string
	baseURL string
}

func (n *publishNotifier) handle(ctx context.Context, reportID string) error {
	r, err := n.store.Reports.Get(ctx, reportID)
	if err != nil {
		if repo.IsNotFound(err) {
			// deleted between publish and delivery
			return nil
		}
		return fmt.Errorf("load report: %w", err)
	}
	if r.Status != repo.ReportStatusPublished {
		return nil
	}

	author, err := n.store.Users.Get(ctx, r.Metadata.Author)
	if err != nil {
		if repo.IsNotFound(err) {
			slog.Debug("publish_notifier: author has no account", "report_id", reportID, "author", r.Metadata.Author)
			return nil
		}
		return fmt.Errorf("load author: %w", err)
	}

	company := ""
	if cl, err := n.store.Clients.Get(ctx, r.ClientID); err == nil {
		company = cl.CompanyName
	}

	var published time.Time
	if r.PublishedDate != nil {
		published = *r.PublishedDate
	}

	msg := email.BuildReportPublishedEmail(email.ReportEmailData{
		RecipientName: strings.TrimSpace(author.FirstName + " " + author.LastName),
		Email:         author.Email,
		ReportTitle:   r.Title,
		ReportNumber:  r.Metadata.ReportNumber,
		CompanyName:   company,
		ReportURL:     n.reportURL(r),
		PublishedAt:   published,
		AppName:       n.appName,
	})

	if err := n.mailer.Send(ctx, msg); err != nil {
		var disabled email.ErrDisabled
		if errors.As(err, &disabled) {
			return nil
		}
		return err
	}
	slog.Info("publish_notifier: author notified", "report_id", reportID, "to", author.Email)
	return nil
}

func (n *publishNotifier) reportURL(r *repo.Report) string {
	if n.baseURL != "" {
		return strings.TrimRight(n.baseURL, "/") + "/reports/" + r.ID
	}
	if strings.HasPrefix(r.GeneratedPdfURL, "http") {
		return r.GeneratedPdfURL
	}
	return ""
}

// ---------------------------------------------------------------------------
// activity_logger
// ---------------------------------------------------------------------------

func startActivityLogger(nc *nats.Conn) (*nats.Subscription, error) {
	sub, err := nc.Subscribe(constants.SubjectReportPrefix+".>", func(msg *nats.Msg) {
		slog.Info("report event", "subject", msg.Subject, "report_id", string(msg.Data))
	})
	if err != nil {
		return nil, fmt.Errorf("activity_logger: subscribe: %w", err)
	}
	return sub, nil
}
