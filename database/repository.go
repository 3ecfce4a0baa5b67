package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Yuki-gilty/drone-manager/models"
)

type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// updatable lists the columns a patch may touch, per table.
var updatable = map[string]map[string]bool{
	"drones":        {"name": true, "type_id": true, "start_date": true, "photo": true, "status": true},
	"parts":         {"name": true, "start_date": true, "manufacturer_id": true, "replacement_history": true},
	"repairs":       {"date": true, "description": true, "part_id": true},
	"drone_types":   {"name": true, "default_parts": true},
	"manufacturers": {"name": true},
	"practice_days": {"date": true, "note": true},
}

// update applies cols to the user's row and stamps updated_at.
func (r *Repository) update(ctx context.Context, table, userID, id string, cols map[string]any) error {
	allowed, ok := updatable[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}

	names := make([]string, 0, len(cols))
	for name := range cols {
		if !allowed[name] {
			return fmt.Errorf("column %s.%s cannot be updated", table, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+3)
	for _, name := range names {
		v, err := columnValue(cols[name])
		if err != nil {
			return err
		}
		sets = append(sets, name+" = ?")
		args = append(args, v)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, now(), id, userID)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND user_id = ?", table, strings.Join(sets, ", "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	return affected(res)
}

func (r *Repository) delete(ctx context.Context, q querier, table, userID, id string) error {
	res, err := q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ? AND user_id = ?", table), id, userID)
	if err != nil {
		return mapError(err)
	}
	return affected(res)
}

func (r *Repository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// columnValue converts a patch value into something the driver accepts.
func columnValue(v any) (any, error) {
	switch val := v.(type) {
	case []models.DefaultPart, []models.ReplacementEntry:
		data, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encode column: %w", err)
		}
		return string(data), nil
	case models.DroneStatus:
		return string(val), nil
	case *string:
		return nullString(val), nil
	default:
		return v, nil
	}
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func toJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	return string(data), nil
}

func now() time.Time {
	return time.Now().UTC()
}
