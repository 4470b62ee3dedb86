package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/diedornot/lifecheck/pkg/config"
	"github.com/diedornot/lifecheck/pkg/mail"
	"github.com/diedornot/lifecheck/pkg/scan"
	"github.com/diedornot/lifecheck/pkg/staleness"
	"github.com/diedornot/lifecheck/pkg/store"
)

func openStore(cfg config.Config, log *zap.SugaredLogger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		if cfg.Store.DSN == "" {
			return nil, fmt.Errorf("store.dsn is required for the postgres driver")
		}
		return store.NewPostgres(cfg.Store.DSN)
	case "supabase":
		if cfg.Store.BaseURL == "" || cfg.Store.ServiceKey == "" {
			return nil, fmt.Errorf("store.baseURL and store.serviceKey are required for the supabase driver")
		}
		return store.NewSupabase(cfg.Store.BaseURL, cfg.Store.ServiceKey, cfg.StoreRequestTimeout()), nil
	case "memory":
		log.Warn("Using in-memory store; all data is lost on exit")
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func buildScanService(cfg config.Config, st store.Store, log *zap.SugaredLogger) (*scan.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("resolving escalation timezone: %w", err)
	}

	scanner := scan.NewScanner(st, staleness.Evaluator{Location: loc}, log,
		cfg.Escalation.MaxConcurrency, cfg.PerUserTimeout())

	renotifyAfter := daysToDuration(cfg.Escalation.RenotifyAfterDays)
	dispatcher := scan.NewDispatcher(mail.NewSender(cfg, log), st, log,
		cfg.BrandingName, renotifyAfter)

	return scan.NewService(scanner, dispatcher, log), nil
}
