package app

import (
	"context"
	"database/sql"

	"dayline/internal/config"
	"dayline/internal/dates"
	"dayline/internal/domain"
	"dayline/internal/engine"
	"dayline/internal/store"
)

// ResolveConfig picks the effective config for a workspace: dayline.yml
// when present, otherwise defaults for the given profile override (or
// "local").
func ResolveConfig(workspace, profileOverride string) (*config.Config, error) {
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		id := profileOverride
		if id == "" {
			id = "local"
		}
		cfg = config.Default(id)
	}
	if profileOverride != "" {
		cfg.Profile.ID = profileOverride
	}
	return cfg, nil
}

// NewSession builds an engine over a fresh store and loads the profile's
// snapshot into it. This is the once-per-session load; streak expiry and
// the daily-counter reset run as part of it.
func NewSession(ctx context.Context, conn *sql.DB, cfg *config.Config, clock dates.Clock) (engine.Engine, error) {
	st := store.New(domain.Counters{DailyGoal: cfg.Profile.DailyGoal})
	e := engine.New(conn, st, cfg)
	e.Clock = clock
	if err := e.Load(ctx); err != nil {
		return engine.Engine{}, err
	}
	return e, nil
}
