package admin

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/joestump/govuk-admin/internal/metrics"
	"github.com/joestump/govuk-admin/internal/schema"
	"github.com/joestump/govuk-admin/internal/store"
)

// Action is a bulk operation offered on the list page.
type Action struct {
	Name    string
	Label   string
	Confirm string
}

// Actions returns the bulk actions the view allows.
func (v *ModelView) Actions() []Action {
	if !v.CanDelete {
		return nil
	}
	return []Action{{
		Name:    "delete",
		Label:   "Delete",
		Confirm: "Are you sure you want to delete the selected records?",
	}}
}

// Action returns the named bulk action.
func (v *ModelView) Action(name string) (Action, bool) {
	for _, a := range v.Actions() {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// Deleter removes rows by primary key; *store.RecordStore satisfies it.
type Deleter interface {
	DeleteMany(ctx context.Context, m *schema.Model, ids []string) (int, error)
}

// RunAction applies the named action to the rows with the given keys and
// returns how many were affected.
func (v *ModelView) RunAction(ctx context.Context, records Deleter, name string, ids []string) (int, error) {
	if _, ok := v.Action(name); !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	if len(ids) == 0 {
		return 0, ErrNoSelection
	}

	n, err := records.DeleteMany(ctx, v.Model, ids)
	if err != nil {
		return 0, fmt.Errorf("run %s on %s: %w", name, v.Endpoint, err)
	}
	metrics.ActionsTotal.WithLabelValues(v.Endpoint, name).Inc()
	v.Logger.Info("bulk action", zap.String("action", name), zap.Int("requested", len(ids)), zap.Int("affected", n))
	return n, nil
}

// WriteCSV writes a header row then one row per record using the export
// columns. Values are rendered as plain text, relation keys as labels.
func (v *ModelView) WriteCSV(w io.Writer, rows []store.Record, labels Labels) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(v.ColumnExportList))
	for _, col := range v.ColumnExportList {
		header = append(header, v.ColumnLabel(col))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	line := make([]string, len(v.ColumnExportList))
	for _, rec := range rows {
		for i, col := range v.ColumnExportList {
			line[i] = csvCell(v.FormatText(Cell{View: v, Record: rec, Column: col, Labels: labels}))
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	metrics.ExportsTotal.WithLabelValues(v.Endpoint).Inc()
	return nil
}

// csvCell prefixes values a spreadsheet would evaluate as a formula with a
// single quote. Plain numbers are left alone.
func csvCell(s string) string {
	if s == "" || !strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return s
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s
	}
	return "'" + s
}
