// Package session stores flash messages in server-side sessions kept in the
// admin database.
package session

import (
	"context"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

const flashKey = "flashes"

// Flash categories, matching the GOV.UK notification banner variants.
const (
	Success = "success"
	Error   = "error"
	Warning = "warning"
	Info    = "info"
)

// Flash is a one-time notification shown on the next page render.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register([]Flash{})
}

// NewManager creates an SCS session manager backed by the application DB.
// The driver parameter selects the appropriate store: "mysql", "postgres", or
// "sqlite3" (default).
func NewManager(db *sqlx.DB, driver string, lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := scs.New()
	switch driver {
	case "mysql":
		sm.Store = mysqlstore.New(db.DB)
	case "postgres":
		sm.Store = postgresstore.New(db.DB)
	default: // sqlite3
		sm.Store = sqlite3store.New(db.DB)
	}
	sm.Lifetime = lifetime
	sm.Cookie.Name = "govuk_admin_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secure
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return sm
}

// Flasher adds and drains flash messages on a session manager.
type Flasher struct {
	sm *scs.SessionManager
}

// NewFlasher returns a Flasher using sm.
func NewFlasher(sm *scs.SessionManager) *Flasher {
	return &Flasher{sm: sm}
}

// Add queues a message for the next page the session renders.
func (f *Flasher) Add(ctx context.Context, category, message string) {
	flashes, _ := f.sm.Get(ctx, flashKey).([]Flash)
	f.sm.Put(ctx, flashKey, append(flashes, Flash{Category: category, Message: message}))
}

// Pop returns and clears the queued messages.
func (f *Flasher) Pop(ctx context.Context) []Flash {
	flashes, _ := f.sm.Pop(ctx, flashKey).([]Flash)
	return flashes
}
