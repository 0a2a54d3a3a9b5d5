package authorize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	psqlwatcher "github.com/IguteChung/casbin-psql-watcher"
	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	entadapter "github.com/casbin/ent-adapter"
)

// policyLoadHealthy is false after a watcher-triggered reload fails.
var policyLoadHealthy atomic.Bool

func init() {
	policyLoadHealthy.Store(true)
}

// IsPolicyHealthy reports whether the last policy reload succeeded.
func IsPolicyHealthy() bool {
	return policyLoadHealthy.Load()
}

// CleanupFunc releases enforcer resources on shutdown.
type CleanupFunc func(ctx context.Context)

// LoadModel reads the model at path, or DefaultModel when path is empty.
func LoadModel(path string) (model.Model, error) {
	if path == "" {
		return model.NewModelFromString(DefaultModel)
	}
	m, err := model.NewModelFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load casbin model %q: %w", path, err)
	}
	return m, nil
}

// NewEnforcer builds the enforcer for cfg. With cfg.PolicyPath set the
// policy lives in a CSV file; otherwise it is stored in Postgres (dsn) and
// changes from other instances arrive through a LISTEN/NOTIFY watcher.
func NewEnforcer(cfg Config, dsn string) (*casbin.DistributedEnforcer, CleanupFunc, error) {
	m, err := LoadModel(cfg.CasbinModelPath)
	if err != nil {
		return nil, nil, err
	}

	if cfg.PolicyPath != "" {
		return newFileEnforcer(m, cfg.PolicyPath)
	}
	return newPostgresEnforcer(m, dsn)
}

func newFileEnforcer(m model.Model, path string) (*casbin.DistributedEnforcer, CleanupFunc, error) {
	// The file adapter refuses to load a missing file.
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open policy file: %w", err)
	}
	f.Close()

	e, err := casbin.NewDistributedEnforcer(m, fileadapter.NewAdapter(path))
	if err != nil {
		return nil, nil, err
	}
	e.EnableAutoSave(true)
	e.EnableEnforce(true)

	cleanup := func(ctx context.Context) {
		e.StopAutoLoadPolicy()
		slog.Info("casbin enforcer cleanup completed", "adapter", "file")
	}
	return e, cleanup, nil
}

func newPostgresEnforcer(m model.Model, dsn string) (*casbin.DistributedEnforcer, CleanupFunc, error) {
	a, err := entadapter.NewAdapter("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("casbin ent adapter: %w", err)
	}

	e, err := casbin.NewDistributedEnforcer(m, a)
	if err != nil {
		return nil, nil, err
	}

	w, err := psqlwatcher.NewWatcherWithConnString(context.Background(), dsn, psqlwatcher.Option{
		Channel: "casbin_policy_update",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("casbin watcher: %w", err)
	}

	err = w.SetUpdateCallback(func(msg string) {
		slog.Debug("casbin policy update received", "message", msg)
		if err := e.LoadPolicy(); err != nil {
			slog.Error("failed to reload policy after watcher notification", "error", err)
			policyLoadHealthy.Store(false)
			return
		}
		policyLoadHealthy.Store(true)
	})
	if err != nil {
		return nil, nil, err
	}

	if err := e.SetWatcher(w); err != nil {
		return nil, nil, err
	}

	e.EnableAutoSave(true)
	e.EnableEnforce(true)

	cleanup := func(ctx context.Context) {
		slog.Info("closing casbin policy watcher")
		w.Close()
		e.StopAutoLoadPolicy()
		slog.Info("casbin enforcer cleanup completed", "adapter", "postgres")
	}
	return e, cleanup, nil
}
