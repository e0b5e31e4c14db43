package engine

import (
	"database/sql"
	"time"

	"sigrep/internal/config"
	"sigrep/internal/events"
	"sigrep/internal/repo"
)

type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Config *config.Config
	Now    func() time.Time
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Config: cfg,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) folioPrefix() string {
	if e.Config != nil && e.Config.Reports.FolioPrefix != "" {
		return e.Config.Reports.FolioPrefix
	}
	return "TSR"
}

// Identity is the authenticated caller on whose behalf a pipeline runs.
type Identity struct {
	ID     string
	Nombre string
}
