package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Yuki-gilty/drone-manager/models"
)

const selectParts = `
	SELECT p.id, p.drone_id, p.name, p.start_date, p.manufacturer_id,
		   COALESCE(m.name, ''), p.replacement_history, p.created_at, p.updated_at
	FROM parts p
	LEFT JOIN manufacturers m ON m.id = p.manufacturer_id
`

func scanPart(s scanner) (*models.Part, error) {
	var p models.Part
	var manufacturerID sql.NullString
	var history string
	if err := s.Scan(&p.ID, &p.DroneID, &p.Name, &p.StartDate, &manufacturerID,
		&p.ManufacturerName, &history, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ManufacturerID = ptr(manufacturerID)
	p.ReplacementHistory = make([]models.ReplacementEntry, 0)
	if history != "" {
		if err := json.Unmarshal([]byte(history), &p.ReplacementHistory); err != nil {
			return nil, fmt.Errorf("decode replacement history of part %s: %w", p.ID, err)
		}
	}
	models.EnsureReplacementIDs(p.ID, p.ReplacementHistory)
	return &p, nil
}

type PartFilter struct {
	DroneID        string
	ManufacturerID string
}

func (r *Repository) ListParts(ctx context.Context, userID string, f PartFilter) ([]models.Part, error) {
	query := selectParts + ` WHERE p.user_id = ?`
	args := []any{userID}
	if f.DroneID != "" {
		query += ` AND p.drone_id = ?`
		args = append(args, f.DroneID)
	}
	if f.ManufacturerID != "" {
		query += ` AND p.manufacturer_id = ?`
		args = append(args, f.ManufacturerID)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parts := make([]models.Part, 0)
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, *p)
	}
	return parts, rows.Err()
}

func (r *Repository) GetPart(ctx context.Context, userID, id string) (*models.Part, error) {
	p, err := scanPart(r.db.QueryRowContext(ctx, selectParts+` WHERE p.id = ? AND p.user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *Repository) CreatePart(ctx context.Context, userID string, part *models.Part) error {
	return insertPart(ctx, r.db, userID, part)
}

func insertPart(ctx context.Context, q querier, userID string, part *models.Part) error {
	if part.ReplacementHistory == nil {
		part.ReplacementHistory = make([]models.ReplacementEntry, 0)
	}
	history, err := toJSON(part.ReplacementHistory)
	if err != nil {
		return err
	}
	ts := now()
	_, err = q.ExecContext(ctx, `
		INSERT INTO parts (id, user_id, drone_id, name, start_date, manufacturer_id, replacement_history, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, part.ID, userID, part.DroneID, part.Name, part.StartDate, nullString(part.ManufacturerID), history, ts, ts)
	if err != nil {
		return mapError(err)
	}
	part.CreatedAt, part.UpdatedAt = ts, ts
	return nil
}

func (r *Repository) UpdatePart(ctx context.Context, userID, id string, cols map[string]any) error {
	return r.update(ctx, "parts", userID, id, cols)
}

func (r *Repository) DeletePart(ctx context.Context, userID, id string) error {
	return r.delete(ctx, r.db, "parts", userID, id)
}
