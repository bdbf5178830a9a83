package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"go-etl-builder/internal/model"
	"go-etl-builder/internal/pipeline"
	"go-etl-builder/pkg/utils"
)

// ErrInvalidTableName is returned for table names outside [A-Za-z0-9_]
var ErrInvalidTableName = errors.New("invalid table name")

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidateTableName rejects names that could not be used as a plain identifier
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}
	if strings.EqualFold(name, sourcesTable) || strings.HasPrefix(strings.ToLower(name), "sqlite_") {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidTableName, name)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sqlType maps a column kind to the declared SQL type
func sqlType(kind string) string {
	switch kind {
	case model.KindInt64:
		return "BIGINT"
	case model.KindFloat64:
		return "DOUBLE PRECISION"
	case model.KindBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// sqlValue converts a cell to what the column type stores
func sqlValue(kind string, v interface{}) interface{} {
	if model.IsNull(v) {
		return nil
	}
	switch kind {
	case model.KindFloat64:
		if f, ok := utils.Numeric(v); ok {
			return f
		}
	case model.KindInt64, model.KindBool:
		return v
	}
	return utils.FormatValue(v)
}

// LoadDataset writes ds into table inside one transaction.
// Overwrite drops and recreates the table; append creates it only when missing.
// An empty dataset is logged and nothing is written.
func (db *DB) LoadDataset(ctx context.Context, ds *model.Dataset, table string, mode pipeline.WriteMode) (int, error) {
	if err := ValidateTableName(table); err != nil {
		return 0, err
	}
	log := db.logger.WithFields(logrus.Fields{"table": table, "mode": mode})

	rows := ds.NumRows()
	if rows == 0 || ds.NumColumns() == 0 {
		log.Warn("Dataset is empty, nothing to load")
		return 0, nil
	}

	kinds := make([]string, len(ds.Columns))
	defs := make([]string, len(ds.Columns))
	names := make([]string, len(ds.Columns))
	for i, col := range ds.Columns {
		kinds[i] = model.InferKind(col.Values)
		names[i] = quoteIdent(col.Name)
		defs[i] = names[i] + " " + sqlType(kinds[i])
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin load: %w", err)
	}
	defer tx.Rollback()

	create := "CREATE TABLE "
	switch mode {
	case pipeline.ModeAppend:
		create = "CREATE TABLE IF NOT EXISTS "
	default:
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
			return 0, fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, create+quoteIdent(table)+" ("+strings.Join(defs, ", ")+")"); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+quoteIdent(table)+" ("+strings.Join(names, ", ")+") VALUES ("+placeholders+")")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(ds.Columns))
	for r := 0; r < rows; r++ {
		for c, col := range ds.Columns {
			args[c] = sqlValue(kinds[c], col.Values[r])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d into %s: %w", r, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit load into %s: %w", table, err)
	}
	log.WithField("rows", rows).Info("Loaded dataset into table")
	return rows, nil
}

// ListTables returns the user tables, excluding source metadata
func (db *DB) ListTables(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != ? ORDER BY name`,
		sourcesTable)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (db *DB) tableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	return n > 0, err
}

// ReadTable returns up to limit rows of a table as a dataset
func (db *DB) ReadTable(ctx context.Context, table string, limit int) (*model.Dataset, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}
	exists, err := db.tableExists(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: table %s", ErrNotFound, table)
	}

	rows, err := db.conn.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table)+" LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name()
	}

	ds := model.NewDataset(names...)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}
		for i, c := range columns {
			values[i] = fromSQL(c.DatabaseTypeName(), values[i])
		}
		if err := ds.AppendRow(values...); err != nil {
			return nil, err
		}
	}
	return ds, rows.Err()
}

// fromSQL normalizes a scanned value back to a dataset cell
func fromSQL(declType string, v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case int64:
		if strings.EqualFold(declType, "BOOLEAN") {
			return val != 0
		}
		if strings.HasPrefix(strings.ToUpper(declType), "DOUBLE") {
			return float64(val)
		}
		return val
	default:
		return v
	}
}
