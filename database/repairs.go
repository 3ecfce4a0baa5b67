package database

import (
	"context"
	"database/sql"

	"github.com/Yuki-gilty/drone-manager/models"
)

const selectRepairs = `
	SELECT id, drone_id, part_id, date, description, created_at, updated_at
	FROM repairs
`

func scanRepair(s scanner) (*models.Repair, error) {
	var rep models.Repair
	var partID sql.NullString
	if err := s.Scan(&rep.ID, &rep.DroneID, &partID, &rep.Date, &rep.Description,
		&rep.CreatedAt, &rep.UpdatedAt); err != nil {
		return nil, err
	}
	rep.PartID = ptr(partID)
	return &rep, nil
}

type RepairFilter struct {
	DroneID string
	PartID  string
}

// ListRepairs returns repairs with the latest date first.
func (r *Repository) ListRepairs(ctx context.Context, userID string, f RepairFilter) ([]models.Repair, error) {
	query := selectRepairs + ` WHERE user_id = ?`
	args := []any{userID}
	if f.DroneID != "" {
		query += ` AND drone_id = ?`
		args = append(args, f.DroneID)
	}
	if f.PartID != "" {
		query += ` AND part_id = ?`
		args = append(args, f.PartID)
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	repairs := make([]models.Repair, 0)
	for rows.Next() {
		rep, err := scanRepair(rows)
		if err != nil {
			return nil, err
		}
		repairs = append(repairs, *rep)
	}
	return repairs, rows.Err()
}

func (r *Repository) GetRepair(ctx context.Context, userID, id string) (*models.Repair, error) {
	rep, err := scanRepair(r.db.QueryRowContext(ctx, selectRepairs+` WHERE id = ? AND user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rep, err
}

func (r *Repository) CreateRepair(ctx context.Context, userID string, rep *models.Repair) error {
	return insertRepair(ctx, r.db, userID, rep)
}

func insertRepair(ctx context.Context, q querier, userID string, rep *models.Repair) error {
	ts := now()
	_, err := q.ExecContext(ctx, `
		INSERT INTO repairs (id, user_id, drone_id, part_id, date, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rep.ID, userID, rep.DroneID, nullString(rep.PartID), rep.Date, rep.Description, ts, ts)
	if err != nil {
		return mapError(err)
	}
	rep.CreatedAt, rep.UpdatedAt = ts, ts
	return nil
}

func (r *Repository) UpdateRepair(ctx context.Context, userID, id string, cols map[string]any) error {
	return r.update(ctx, "repairs", userID, id, cols)
}

func (r *Repository) DeleteRepair(ctx context.Context, userID, id string) error {
	return r.delete(ctx, r.db, "repairs", userID, id)
}
