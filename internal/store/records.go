package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/govuk-admin/internal/schema"
)

// Record is one row keyed by column name. Values are whatever the driver
// returned, except []byte which is converted to string.
type Record map[string]any

// ID returns the primary key of r as a string.
func (r Record) ID(m *schema.Model) string {
	return FormatValue(r[m.PrimaryKey])
}

// ListQuery selects a page of rows for a list view.
type ListQuery struct {
	Where        []sq.Sqlizer
	Search       string
	SearchFields []string
	SortField    string
	SortDesc     bool
	// Page is zero-indexed. A PageSize of zero returns every row.
	Page     int
	PageSize int
}

// RecordStore runs CRUD queries for any schema.Model.
type RecordStore struct {
	db *sqlx.DB
}

// NewRecordStore returns a RecordStore on db.
func NewRecordStore(db *sqlx.DB) *RecordStore {
	return &RecordStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *RecordStore) q(query string) string { return s.db.Rebind(query) }

// List returns the rows matching q and the total number of matching rows
// ignoring paging. A page whose offset does not fit in an int lies past the
// last row and yields no rows.
func (s *RecordStore) List(ctx context.Context, m *schema.Model, q ListQuery) ([]Record, int, error) {
	where := s.conditions(q)

	countSQL, countArgs, err := sq.Select("COUNT(*)").From(m.Table).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := s.db.GetContext(ctx, &total, s.q(countSQL), countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", m.Table, err)
	}

	qb := sq.Select(m.Columns()...).From(m.Table).Where(where).OrderBy(orderBy(m, q.SortField, q.SortDesc)...)
	if q.PageSize > 0 {
		if q.Page > math.MaxInt/q.PageSize {
			return nil, total, nil
		}
		qb = qb.Limit(uint64(q.PageSize)).Offset(uint64(q.Page * q.PageSize))
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	records, err := s.selectRecords(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", m.Table, err)
	}
	return records, total, nil
}

func (s *RecordStore) conditions(q ListQuery) sq.And {
	where := sq.And{}
	where = append(where, q.Where...)

	search := strings.TrimSpace(q.Search)
	if search != "" && len(q.SearchFields) > 0 {
		like := "%" + strings.ToLower(search) + "%"
		matches := sq.Or{}
		for _, f := range q.SearchFields {
			matches = append(matches, sq.Expr("LOWER("+f+") LIKE ?", like))
		}
		where = append(where, matches)
	}
	return where
}

// orderBy sorts by field when it is a known column, then by primary key so
// paging is stable.
func orderBy(m *schema.Model, field string, desc bool) []string {
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	if _, ok := m.Field(field); !ok {
		return []string{m.PrimaryKey + " ASC"}
	}
	if field == m.PrimaryKey {
		return []string{m.PrimaryKey + dir}
	}
	return []string{field + dir, m.PrimaryKey + " ASC"}
}

// Count returns the number of rows in m's table.
func (s *RecordStore) Count(ctx context.Context, m *schema.Model) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+m.Table); err != nil {
		return 0, fmt.Errorf("count %s: %w", m.Table, err)
	}
	return n, nil
}

// Get returns the row with primary key id, or ErrNotFound.
func (s *RecordStore) Get(ctx context.Context, m *schema.Model, id string) (Record, error) {
	query, args, err := sq.Select(m.Columns()...).From(m.Table).Where(sq.Eq{m.PrimaryKey: id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}
	records, err := s.selectRecords(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", m.Table, id, err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}

// Create inserts values and returns the new row's primary key. When values
// carries the primary key it is used as-is; otherwise it comes from
// m.NewKey or the database.
func (s *RecordStore) Create(ctx context.Context, m *schema.Model, values Record) (string, error) {
	if _, ok := values[m.PrimaryKey]; !ok && m.NewKey != nil {
		values = copyRecord(values)
		values[m.PrimaryKey] = m.NewKey()
	}
	cols := sortedColumns(values)
	vals := make([]any, 0, len(cols))
	for _, c := range cols {
		vals = append(vals, values[c])
	}

	ib := sq.Insert(m.Table).Columns(cols...).Values(vals...)
	if id, ok := values[m.PrimaryKey]; ok {
		query, args, err := ib.ToSql()
		if err != nil {
			return "", fmt.Errorf("build insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, s.q(query), args...); err != nil {
			return "", wrapWriteErr(fmt.Sprintf("insert %s", m.Table), err)
		}
		return FormatValue(id), nil
	}

	if s.db.DriverName() == "postgres" {
		query, args, err := ib.Suffix("RETURNING " + m.PrimaryKey).ToSql()
		if err != nil {
			return "", fmt.Errorf("build insert: %w", err)
		}
		var id any
		if err := s.db.QueryRowxContext(ctx, s.q(query), args...).Scan(&id); err != nil {
			return "", wrapWriteErr(fmt.Sprintf("insert %s", m.Table), err)
		}
		return FormatValue(id), nil
	}

	query, args, err := ib.ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return "", wrapWriteErr(fmt.Sprintf("insert %s", m.Table), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("insert %s: last insert id: %w", m.Table, err)
	}
	return fmt.Sprint(id), nil
}

// Update sets values on the row with primary key id.
func (s *RecordStore) Update(ctx context.Context, m *schema.Model, id string, values Record) error {
	if _, err := s.Get(ctx, m, id); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	query, args, err := sq.Update(m.Table).SetMap(values).Where(sq.Eq{m.PrimaryKey: id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.q(query), args...); err != nil {
		return wrapWriteErr(fmt.Sprintf("update %s %s", m.Table, id), err)
	}
	return nil
}

// Delete removes the row with primary key id, or returns ErrNotFound.
func (s *RecordStore) Delete(ctx context.Context, m *schema.Model, id string) error {
	n, err := s.DeleteMany(ctx, m, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes every row whose primary key is in ids and returns how
// many were removed.
func (s *RecordStore) DeleteMany(ctx context.Context, m *schema.Model, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sq.Delete(m.Table).Where(sq.Eq{m.PrimaryKey: ids}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", m.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s: rows affected: %w", m.Table, err)
	}
	return int(n), nil
}

// Options returns every row of m as a choice: the primary key as value and
// the display column as label, ordered by label.
func (s *RecordStore) Options(ctx context.Context, m *schema.Model, display string) ([]schema.Choice, error) {
	query, args, err := sq.Select(m.PrimaryKey, display).From(m.Table).OrderBy(display + " ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build options query: %w", err)
	}
	records, err := s.selectRecords(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("options %s: %w", m.Table, err)
	}
	choices := make([]schema.Choice, 0, len(records))
	for _, r := range records {
		choices = append(choices, schema.Choice{
			Value: FormatValue(r[m.PrimaryKey]),
			Label: FormatValue(r[display]),
		})
	}
	return choices, nil
}

// Labels maps each of ids to its display column value.
func (s *RecordStore) Labels(ctx context.Context, m *schema.Model, display string, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sq.Select(m.PrimaryKey, display).From(m.Table).Where(sq.Eq{m.PrimaryKey: ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build labels query: %w", err)
	}
	records, err := s.selectRecords(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("labels %s: %w", m.Table, err)
	}
	for _, r := range records {
		out[FormatValue(r[m.PrimaryKey])] = FormatValue(r[display])
	}
	return out, nil
}

func (s *RecordStore) selectRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryxContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		r := Record{}
		if err := rows.MapScan(r); err != nil {
			return nil, err
		}
		for k, v := range r {
			if b, ok := v.([]byte); ok {
				r[k] = string(b)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func copyRecord(r Record) Record {
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

func sortedColumns(values Record) []string {
	cols := make([]string, 0, len(values))
	for c := range values {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func wrapWriteErr(op string, err error) error {
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueConstraintError detects unique index violations across drivers.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}

// Storage layouts for date values. Dates and timestamps are written as text
// in these layouts so range comparisons behave the same on every driver.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// FormatValue renders a column value as text. Timestamps always include
// their time part; use FormatDate for date-only columns.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(DateTimeLayout)
	default:
		return fmt.Sprint(t)
	}
}

// FormatDate renders a date column value as YYYY-MM-DD.
func FormatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format(DateLayout)
	default:
		s := FormatValue(v)
		if len(s) > len(DateLayout) {
			return s[:len(DateLayout)]
		}
		return s
	}
}

// ParseTime reads a date or timestamp column value. ok is false for NULL or
// unparseable values.
func ParseTime(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	s := FormatValue(v)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{DateTimeLayout, time.RFC3339Nano, "2006-01-02T15:04:05Z", DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
