package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/govuk-admin/internal/session"
	"github.com/joestump/govuk-admin/internal/testutil"
)

func TestFlasher_RoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	sm := session.NewManager(db, "sqlite3", time.Hour, false)
	flasher := session.NewFlasher(sm)

	mux := http.NewServeMux()
	mux.HandleFunc("/add", func(w http.ResponseWriter, r *http.Request) {
		flasher.Add(r.Context(), session.Success, "Record was successfully created.")
		flasher.Add(r.Context(), session.Warning, "Ignored filter")
		w.WriteHeader(http.StatusNoContent)
	})
	var popped [][]session.Flash
	mux.HandleFunc("/pop", func(w http.ResponseWriter, r *http.Request) {
		popped = append(popped, flasher.Pop(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
	h := sm.LoadAndSave(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/add", nil))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "govuk_admin_session", cookies[0].Name)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/pop", nil)
		req.AddCookie(cookies[0])
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, popped, 2)
	assert.Equal(t, []session.Flash{
		{Category: session.Success, Message: "Record was successfully created."},
		{Category: session.Warning, Message: "Ignored filter"},
	}, popped[0])
	assert.Empty(t, popped[1], "flashes are shown once")
}
