package iocache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/schema"
)

// Table names of the artifact store.
const (
	scoreRunsTable = "mlscore_score_runs"
	artifactsTable = "mlscore_artifacts"
)

// storeTables lists the artifact store tables in creation order.
var storeTables = []string{scoreRunsTable, artifactsTable}

// artifactColumns is the column list shared by every artifact query.
const artifactColumns = "id, run_id, name, kind, url, purl, net_score, report_json, metadata_json, created_at"

// ArtifactStoreImpl implements the ArtifactStore interface on a SQL backend.
type ArtifactStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.ArtifactStore = &ArtifactStoreImpl{} // Compile-time check

// NewArtifactStore creates a new ArtifactStore with the specified backend.
func NewArtifactStore(backend schema.DatabaseBackend, connStr string) (contract.ArtifactStore, error) {
	switch backend {
	case schema.NoneBackend:
		return &ArtifactStoreImpl{backend: backend}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}

	db, err := openDB(backend, connStr, GetStoreDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createStoreTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create artifact tables: %w", err)
	}
	return &ArtifactStoreImpl{db: db, backend: backend}, nil
}

// createStoreTables creates the artifact and run tables.
func createStoreTables(db *sql.DB, backend schema.DatabaseBackend) error {
	queries := map[string]string{
		scoreRunsTable: getCreateScoreRunsQuery(backend),
		artifactsTable: getCreateArtifactsQuery(backend),
	}
	for _, table := range storeTables {
		if _, err := db.Exec(queries[table]); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// getCreateScoreRunsQuery returns the CREATE TABLE query for mlscore_score_runs.
func getCreateScoreRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(scoreRunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_urls INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_urls INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_urls INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)
	}
}

// getCreateArtifactsQuery returns the CREATE TABLE query for mlscore_artifacts.
func getCreateArtifactsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(artifactsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id CHAR(32) PRIMARY KEY,
				run_id BIGINT NOT NULL DEFAULT 0,
				name VARCHAR(255) NOT NULL,
				kind VARCHAR(16) NOT NULL,
				url TEXT NOT NULL,
				purl TEXT,
				net_score DOUBLE NOT NULL,
				report_json LONGTEXT NOT NULL,
				metadata_json LONGTEXT NOT NULL,
				created_at DATETIME(6) NOT NULL
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				run_id BIGINT NOT NULL DEFAULT 0,
				name TEXT NOT NULL,
				kind TEXT NOT NULL,
				url TEXT NOT NULL,
				purl TEXT,
				net_score DOUBLE PRECISION NOT NULL,
				report_json TEXT NOT NULL,
				metadata_json TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				run_id INTEGER NOT NULL DEFAULT 0,
				name TEXT NOT NULL,
				kind TEXT NOT NULL,
				url TEXT NOT NULL,
				purl TEXT,
				net_score REAL NOT NULL,
				report_json TEXT NOT NULL,
				metadata_json TEXT NOT NULL,
				created_at TEXT NOT NULL
			);
		`, quoted)
	}
}

// BeginRun creates a new scoring run and returns its unique ID.
func (as *ArtifactStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(scoreRunsTable, as.backend)
	var runID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, quoted)
		err = as.db.QueryRow(query, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quoted)
		var result sql.Result
		result, err = as.db.Exec(query, formatTime(startTime, as.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, contract.WrapError(contract.CodeStorage, err, "failed to insert score run")
	}
	return runID, nil
}

// EndRun updates the scoring run with completion data.
func (as *ArtifactStoreImpl) EndRun(runID int64, endTime time.Time, totalURLs int) error {
	if as.db == nil {
		return nil
	}

	quoted := quoteTableName(scoreRunsTable, as.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, placeholder(as.backend, 1))
	startTime, err := scanTime(as.db.QueryRow(query, runID), as.backend)
	if err != nil {
		return contract.WrapError(contract.CodeStorage, err, "failed to get start_time for run %d", runID)
	}

	p := placeholders(as.backend, 4)
	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_urls = %s WHERE run_id = %s`,
		quoted, p[0], p[1], p[2], p[3])
	durationMs := endTime.Sub(startTime).Milliseconds()
	if _, err := as.db.Exec(update, formatTime(endTime, as.backend), durationMs, totalURLs, runID); err != nil {
		return contract.WrapError(contract.CodeStorage, err, "failed to update score run")
	}
	return nil
}

// SaveArtifact inserts or replaces an artifact record.
func (as *ArtifactStoreImpl) SaveArtifact(runID int64, record schema.ArtifactRecord) error {
	if as.db == nil {
		return nil
	}

	reportJSON, err := json.Marshal(record.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal score report: %w", err)
	}
	metadataJSON, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	args := []any{
		record.ID, runID, record.Name, string(record.Kind), record.URL, record.PURL,
		record.Scores.NetScore.Float64(), string(reportJSON), string(metadataJSON),
		formatTime(record.CreatedAt, as.backend),
	}
	if _, err := as.db.Exec(as.getUpsertArtifactQuery(), args...); err != nil {
		return contract.WrapError(contract.CodeStorage, err, "failed to save artifact %s", record.ID)
	}
	return nil
}

// getUpsertArtifactQuery returns the UPSERT query for the backend.
func (as *ArtifactStoreImpl) getUpsertArtifactQuery() string {
	quoted := quoteTableName(artifactsTable, as.backend)
	values := joinPlaceholders(as.backend, 10)
	switch as.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) AS new
			ON DUPLICATE KEY UPDATE run_id = new.run_id, name = new.name, kind = new.kind, url = new.url, purl = new.purl,
			net_score = new.net_score, report_json = new.report_json, metadata_json = new.metadata_json, created_at = new.created_at`,
			quoted, artifactColumns, values)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT (id) DO UPDATE SET run_id = EXCLUDED.run_id, name = EXCLUDED.name, kind = EXCLUDED.kind, url = EXCLUDED.url,
			purl = EXCLUDED.purl, net_score = EXCLUDED.net_score, report_json = EXCLUDED.report_json,
			metadata_json = EXCLUDED.metadata_json, created_at = EXCLUDED.created_at`,
			quoted, artifactColumns, values)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`, quoted, artifactColumns, values)
	}
}

// GetArtifact returns the record with the given ID.
func (as *ArtifactStoreImpl) GetArtifact(id string) (schema.ArtifactRecord, error) {
	if as.db == nil {
		return schema.ArtifactRecord{}, contract.NewError(contract.CodeNotFound, "artifact %s not found", id)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = %s`,
		artifactColumns, quoteTableName(artifactsTable, as.backend), placeholder(as.backend, 1))
	record, err := as.scanArtifact(as.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.ArtifactRecord{}, contract.NewError(contract.CodeNotFound, "artifact %s not found", id)
	}
	if err != nil {
		return schema.ArtifactRecord{}, contract.WrapError(contract.CodeStorage, err, "failed to read artifact %s", id)
	}
	return record, nil
}

// ListArtifacts returns the newest records first. A non-positive limit returns all records.
func (as *ArtifactStoreImpl) ListArtifacts(limit int) ([]schema.ArtifactRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, id`,
		artifactColumns, quoteTableName(artifactsTable, as.backend))
	var args []any
	if limit > 0 {
		query += " LIMIT " + placeholder(as.backend, 1)
		args = append(args, limit)
	}
	return as.queryArtifacts(query, args...)
}

// FindByName returns records whose name matches the pattern, newest first.
func (as *ArtifactStoreImpl) FindByName(pattern *regexp.Regexp) ([]schema.ArtifactRecord, error) {
	all, err := as.ListArtifacts(0)
	if err != nil {
		return nil, err
	}
	var matched []schema.ArtifactRecord
	for _, record := range all {
		if pattern.MatchString(record.Name) {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

// DeleteArtifact removes a record.
func (as *ArtifactStoreImpl) DeleteArtifact(id string) error {
	if as.db == nil {
		return contract.NewError(contract.CodeNotFound, "artifact %s not found", id)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = %s`, quoteTableName(artifactsTable, as.backend), placeholder(as.backend, 1))
	result, err := as.db.Exec(query, id)
	if err != nil {
		return contract.WrapError(contract.CodeStorage, err, "failed to delete artifact %s", id)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return contract.NewError(contract.CodeNotFound, "artifact %s not found", id)
	}
	return nil
}

// ListRuns returns every scoring run, oldest first.
func (as *ArtifactStoreImpl) ListRuns() ([]schema.ScoreRunRecord, error) {
	if as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, total_urls, config_params FROM %s ORDER BY run_id",
		quoteTableName(scoreRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query score runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ScoreRunRecord
	for rows.Next() {
		var record schema.ScoreRunRecord
		switch as.backend {
		case schema.SQLiteBackend:
			var startStr string
			var endStr *string
			if err := rows.Scan(&record.RunID, &startStr, &endStr, &record.RunDurationMs, &record.TotalURLs, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan score run: %w", err)
			}
			if record.StartTime, err = time.Parse(time.RFC3339Nano, startStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endStr != nil {
				end, err := time.Parse(time.RFC3339Nano, *endStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &end
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &record.TotalURLs, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan score run: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating score runs: %w", err)
	}
	return results, nil
}

// GetStatus returns status information about the artifact store.
func (as *ArtifactStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.db == nil {
		return status, nil
	}

	for _, table := range storeTables {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		if err := as.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRuns = int(status.TableSizes[scoreRunsTable])
	status.TotalArtifacts = int(status.TableSizes[artifactsTable])
	if status.TotalRuns == 0 {
		return status, nil
	}

	runs := quoteTableName(scoreRunsTable, as.backend)
	row := as.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", runs))
	if err := row.Scan(&status.LastRunID); err != nil {
		return status, fmt.Errorf("failed to get last run id: %w", err)
	}
	last, err := scanTime(as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs)), as.backend)
	if err != nil {
		return status, fmt.Errorf("failed to get last run time: %w", err)
	}
	oldest, err := scanTime(as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)), as.backend)
	if err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	status.LastRunTime = last
	status.OldestRunTime = oldest
	return status, nil
}

// Close closes the underlying connection.
func (as *ArtifactStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (as *ArtifactStoreImpl) queryArtifacts(query string, args ...any) ([]schema.ArtifactRecord, error) {
	rows, err := as.db.Query(query, args...)
	if err != nil {
		return nil, contract.WrapError(contract.CodeStorage, err, "failed to query artifacts")
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ArtifactRecord
	for rows.Next() {
		record, err := as.scanArtifact(rows)
		if err != nil {
			return nil, contract.WrapError(contract.CodeStorage, err, "failed to scan artifact")
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artifacts: %w", err)
	}
	return results, nil
}

func (as *ArtifactStoreImpl) scanArtifact(row rowScanner) (schema.ArtifactRecord, error) {
	var (
		record       schema.ArtifactRecord
		runID        int64
		kind         string
		purl         sql.NullString
		netScore     float64
		reportJSON   string
		metadataJSON string
		createdStr   string
		createdTime  time.Time
	)

	dest := []any{&record.ID, &runID, &record.Name, &kind, &record.URL, &purl, &netScore, &reportJSON, &metadataJSON}
	if as.backend == schema.SQLiteBackend {
		dest = append(dest, &createdStr)
	} else {
		dest = append(dest, &createdTime)
	}
	if err := row.Scan(dest...); err != nil {
		return record, err
	}

	if as.backend == schema.SQLiteBackend {
		parsed, err := time.Parse(time.RFC3339Nano, createdStr)
		if err != nil {
			return record, fmt.Errorf("failed to parse created_at: %w", err)
		}
		createdTime = parsed
	}
	record.CreatedAt = createdTime.UTC()
	record.Kind = schema.ArtifactKind(kind)
	record.PURL = purl.String

	if err := json.Unmarshal([]byte(reportJSON), &record.Scores); err != nil {
		return record, fmt.Errorf("failed to decode score report: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &record.Metadata); err != nil {
		return record, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return record, nil
}

// scanTime reads a single time column in the storage format of the backend.
func scanTime(row rowScanner, backend schema.DatabaseBackend) (time.Time, error) {
	if backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

// sqliteTimeFormat is fixed-width so text ordering matches time ordering.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z"

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(sqliteTimeFormat)
	}
	return t
}
