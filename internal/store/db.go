package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"go-etl-builder/internal/model"
)

// ErrNotFound is returned when a source or table does not exist
var ErrNotFound = errors.New("not found")

const sourcesTable = "data_sources"

// DB wraps the SQLite database holding source metadata and loaded tables
type DB struct {
	conn   *sql.DB
	logger *logrus.Logger
}

// Open connects to the database at path and creates the metadata table if needed
func Open(path string, logger *logrus.Logger) (*DB, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: databases shared
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, logger: logger}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	logger.WithField("path", path).Info("Database ready")
	return db, nil
}

// Close releases the connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	sourceTable := `
	CREATE TABLE IF NOT EXISTS data_sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		source_type TEXT NOT NULL,
		original_name TEXT,
		file_path TEXT,
		skip_rows INTEGER NOT NULL DEFAULT 0,
		row_count INTEGER,
		column_count INTEGER,
		status TEXT NOT NULL DEFAULT 'ready',
		created_at DATETIME NOT NULL
	);
	`
	if _, err := db.conn.Exec(sourceTable); err != nil {
		return fmt.Errorf("failed to create data_sources table: %w", err)
	}
	return nil
}

// ------------------- Data sources -------------------

// InsertSource stores the metadata of a new source and returns its ID
func (db *DB) InsertSource(ctx context.Context, src model.NewDataSource) (int64, error) {
	status := src.Status
	if status == "" {
		status = "ready"
	}
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO data_sources (name, source_type, original_name, file_path, skip_rows, row_count, column_count, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		src.Name, src.SourceType, src.OriginalName, src.FilePath, src.SkipRows, src.RowCount, src.ColumnCount, status, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert data source: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read data source id: %w", err)
	}
	db.logger.WithFields(logrus.Fields{"source_id": id, "name": src.Name}).Info("Inserted data source")
	return id, nil
}

const sourceColumns = `id, name, source_type, original_name, file_path, skip_rows, row_count, column_count, status, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row rowScanner) (*model.DataSource, error) {
	var (
		src                    model.DataSource
		originalName, filePath sql.NullString
		rowCount, columnCount  sql.NullInt64
	)
	err := row.Scan(&src.ID, &src.Name, &src.SourceType, &originalName, &filePath,
		&src.SkipRows, &rowCount, &columnCount, &src.Status, &src.CreatedAt)
	if err != nil {
		return nil, err
	}
	if originalName.Valid {
		src.OriginalName = &originalName.String
	}
	if filePath.Valid {
		src.FilePath = &filePath.String
	}
	if rowCount.Valid {
		n := int(rowCount.Int64)
		src.RowCount = &n
	}
	if columnCount.Valid {
		n := int(columnCount.Int64)
		src.ColumnCount = &n
	}
	return &src, nil
}

// ListSources returns every source, newest first
func (db *DB) ListSources(ctx context.Context) ([]model.DataSource, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+sourceColumns+` FROM data_sources ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list data sources: %w", err)
	}
	defer rows.Close()

	sources := []model.DataSource{}
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan data source: %w", err)
		}
		sources = append(sources, *src)
	}
	return sources, rows.Err()
}

// GetSource fetches one source by ID
func (db *DB) GetSource(ctx context.Context, id int64) (*model.DataSource, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM data_sources WHERE id = ?`, id)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: source %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get data source %d: %w", id, err)
	}
	return src, nil
}

// UpdateFilePath records where the raw file of a source was saved
func (db *DB) UpdateFilePath(ctx context.Context, id int64, path string) error {
	return db.updateSource(ctx, id, `UPDATE data_sources SET file_path = ? WHERE id = ?`, path, id)
}

// UpdateShape records the row and column count after a save
func (db *DB) UpdateShape(ctx context.Context, id int64, rows, columns int) error {
	return db.updateSource(ctx, id, `UPDATE data_sources SET row_count = ?, column_count = ? WHERE id = ?`, rows, columns, id)
}

func (db *DB) updateSource(ctx context.Context, id int64, query string, args ...interface{}) error {
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update data source %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: source %d", ErrNotFound, id)
	}
	return nil
}

// DeleteSources removes the metadata rows of the given sources and returns how many existed
func (db *DB) DeleteSources(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := db.conn.ExecContext(ctx, `DELETE FROM data_sources WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete data sources: %w", err)
	}
	n, _ := res.RowsAffected()
	db.logger.WithFields(logrus.Fields{"requested": len(ids), "deleted": n}).Info("Deleted data sources")
	return n, nil
}
