package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/runnerr0/incidentlens/internal/incident"
)

// Store defines the interface for incident cache operations.
type Store interface {
	AddIncidents(ctx context.Context, source string, records []incident.Record) (int64, error)
	ReplaceIncidents(ctx context.Context, source string, records []incident.Record) (int64, error)
	LoadIncidents(ctx context.Context) ([]incident.Record, error)
	GetIncident(ctx context.Context, caseNumber string) (*incident.Record, error)
	ListImports(ctx context.Context) ([]Import, error)
	Prune(ctx context.Context, q PruneQuery) (int64, error)
	PurgeAll(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	insertImport *sql.Stmt
	getIncident  *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

const incidentColumns = `id, case_number, occurred_at, year, primary_type, description,
	location_description, arrest, domestic, beat, block, district, latitude, longitude`

const insertIncidentSQL = `INSERT INTO incidents (import_id, ` + incidentColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertImport, err = s.db.Prepare(`INSERT INTO imports (source, row_count, imported_at) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}

	s.getIncident, err = s.db.Prepare(`
		SELECT ` + incidentColumns + `
		FROM incidents WHERE case_number = ? ORDER BY seq LIMIT 1
	`)
	if err != nil {
		return err
	}

	return nil
}

// timestampLayout is the stored form of occurred_at. It is fixed width with
// millisecond precision, matching the date filter's unit, so it sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		timestampLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timestampLayout), Valid: true}
}

func nullYear(y int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(y), Valid: y != 0}
}

func nullCoord(f float64) sql.NullFloat64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// AddIncidents stores records in a single transaction, tagged with a new
// import row for source, and returns the import ID.
func (s *SQLiteStore) AddIncidents(ctx context.Context, source string, records []incident.Record) (int64, error) {
	return s.addIncidents(ctx, source, records, false)
}

// ReplaceIncidents deletes every stored incident and import and stores
// records in their place. Both happen in one transaction, so a failed insert
// leaves the previous cache untouched.
func (s *SQLiteStore) ReplaceIncidents(ctx context.Context, source string, records []incident.Record) (int64, error) {
	return s.addIncidents(ctx, source, records, true)
}

func (s *SQLiteStore) addIncidents(ctx context.Context, source string, records []incident.Record, replace bool) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if replace {
		for _, stmt := range purgeStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return 0, fmt.Errorf("replace (%s): %w", stmt, err)
			}
		}
	}

	res, err := tx.StmtContext(ctx, s.insertImport).ExecContext(ctx,
		source, len(records), time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert import: %w", err)
	}
	importID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("import id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertIncidentSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			importID, r.ID, r.CaseNumber, nullTime(r.OccurredAt), nullYear(r.Year),
			r.IncidentType, r.Description, r.LocationType, r.Arrest, r.Domestic,
			r.Beat, r.Block, r.District, nullCoord(r.Latitude), nullCoord(r.Longitude),
		)
		if err != nil {
			return 0, fmt.Errorf("insert incident %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return importID, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIncident(row rowScanner) (incident.Record, error) {
	var (
		r          incident.Record
		occurredAt sql.NullString
		year       sql.NullInt64
		lat, lng   sql.NullFloat64
	)
	if err := row.Scan(
		&r.ID, &r.CaseNumber, &occurredAt, &year, &r.IncidentType, &r.Description,
		&r.LocationType, &r.Arrest, &r.Domestic, &r.Beat, &r.Block, &r.District, &lat, &lng,
	); err != nil {
		return r, err
	}

	if occurredAt.Valid {
		r.OccurredAt, _ = parseTimestamp(occurredAt.String)
	}
	r.Year = int(year.Int64)
	r.Latitude, r.Longitude = math.NaN(), math.NaN()
	if lat.Valid {
		r.Latitude = lat.Float64
	}
	if lng.Valid {
		r.Longitude = lng.Float64
	}
	return r, nil
}

// LoadIncidents returns every stored incident in import order.
func (s *SQLiteStore) LoadIncidents(ctx context.Context) ([]incident.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+incidentColumns+` FROM incidents ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	records := []incident.Record{}
	for rows.Next() {
		r, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// GetIncident retrieves the first stored incident with caseNumber.
func (s *SQLiteStore) GetIncident(ctx context.Context, caseNumber string) (*incident.Record, error) {
	r, err := scanIncident(s.getIncident.QueryRowContext(ctx, caseNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("incident %s not found", caseNumber)
		}
		return nil, fmt.Errorf("get incident: %w", err)
	}
	return &r, nil
}

// ListImports returns every import run, oldest first.
func (s *SQLiteStore) ListImports(ctx context.Context) ([]Import, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source, row_count, imported_at FROM imports ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	imports := []Import{}
	for rows.Next() {
		var im Import
		var ts string
		if err := rows.Scan(&im.ID, &im.Source, &im.RowCount, &ts); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		im.ImportedAt, _ = parseTimestamp(ts)
		imports = append(imports, im)
	}
	return imports, rows.Err()
}

// pruneWhere builds the WHERE clause matching q.
func pruneWhere(q PruneQuery) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if q.MinYear != 0 {
		clauses = append(clauses, "year IS NULL OR year < ?")
		args = append(args, q.MinYear)
	}
	if q.MaxYear != 0 {
		clauses = append(clauses, "year IS NULL OR year > ?")
		args = append(args, q.MaxYear)
	}
	if q.MissingCoords {
		clauses = append(clauses, "latitude IS NULL OR longitude IS NULL")
	}
	return " WHERE (" + strings.Join(clauses, ") OR (") + ")", args
}

// Prune deletes incidents matching q and returns how many matched. With
// DryRun it only counts them.
func (s *SQLiteStore) Prune(ctx context.Context, q PruneQuery) (int64, error) {
	if q.empty() {
		return 0, nil
	}
	where, args := pruneWhere(q)

	if q.DryRun {
		var n int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM incidents"+where, args...).Scan(&n); err != nil {
			return 0, fmt.Errorf("count prunable: %w", err)
		}
		return n, nil
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM incidents"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("prune incidents: %w", err)
	}
	return res.RowsAffected()
}

// purgeStatements empty the cache, children first.
var purgeStatements = []string{
	"DELETE FROM incidents",
	"DELETE FROM imports",
}

// PurgeAll deletes all incidents and the import log.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	for _, stmt := range purgeStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("purge (%s): %w", stmt, err)
		}
	}
	return nil
}

// GetStats returns aggregate statistics about the cache.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN latitude IS NOT NULL AND longitude IS NOT NULL THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(arrest), 0)
		FROM incidents`,
	).Scan(&stats.TotalIncidents, &stats.WithCoords, &stats.Arrests)
	if err != nil {
		return nil, fmt.Errorf("count incidents: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM imports").Scan(&stats.TotalImports)
	if err != nil {
		return nil, fmt.Errorf("count imports: %w", err)
	}

	if stats.TotalIncidents == 0 {
		stats.TopTypes = []CategoryCount{}
		stats.TopLocations = []CategoryCount{}
		return stats, nil
	}

	// Time and year span (either may be entirely NULL)
	var oldest, newest sql.NullString
	var minYear, maxYear sql.NullInt64
	err = s.db.QueryRowContext(ctx,
		"SELECT MIN(occurred_at), MAX(occurred_at), MIN(year), MAX(year) FROM incidents",
	).Scan(&oldest, &newest, &minYear, &maxYear)
	if err != nil {
		return nil, fmt.Errorf("incident span: %w", err)
	}
	if oldest.Valid {
		stats.OldestIncident, _ = parseTimestamp(oldest.String)
	}
	if newest.Valid {
		stats.NewestIncident, _ = parseTimestamp(newest.String)
	}
	stats.MinYear = int(minYear.Int64)
	stats.MaxYear = int(maxYear.Int64)

	if stats.TopTypes, err = s.topCategories(ctx, "primary_type"); err != nil {
		return nil, fmt.Errorf("top types: %w", err)
	}
	if stats.TopLocations, err = s.topCategories(ctx, "location_description"); err != nil {
		return nil, fmt.Errorf("top locations: %w", err)
	}

	return stats, nil
}

// topCategories counts the ten most common non-empty values of column.
// column is always one of the fixed names above, never user input.
func (s *SQLiteStore) topCategories(ctx context.Context, column string) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+column+", COUNT(*) AS cnt FROM incidents WHERE "+column+" <> '' "+
			"GROUP BY "+column+" ORDER BY cnt DESC, MIN(seq) LIMIT 10",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CategoryCount{}
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.insertImport, s.getIncident}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
