package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Yuki-gilty/drone-manager/models"
)

// selectDrones pre-joins the type name and the part ids so listing drones
// takes one query.
const selectDrones = `
	SELECT d.id, d.name, d.type_id, COALESCE(t.name, ''), d.start_date,
		   d.photo, d.status,
		   COALESCE((SELECT GROUP_CONCAT(p.id) FROM parts p WHERE p.drone_id = d.id), ''),
		   d.created_at, d.updated_at
	FROM drones d
	LEFT JOIN drone_types t ON t.id = d.type_id
`

func scanDrone(s scanner) (*models.Drone, error) {
	var d models.Drone
	var photo sql.NullString
	var status, partIDs string
	if err := s.Scan(&d.ID, &d.Name, &d.Type, &d.TypeName, &d.StartDate,
		&photo, &status, &partIDs, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Photo = photo.String
	d.Status = models.DroneStatus(status)
	if !d.Status.Valid() {
		d.Status = models.DroneReady
	}
	d.Parts = make([]string, 0)
	if partIDs != "" {
		d.Parts = strings.Split(partIDs, ",")
	}
	return &d, nil
}

// ListDrones returns the user's drones, newest first. An empty typeID lists
// all types.
func (r *Repository) ListDrones(ctx context.Context, userID, typeID string) ([]models.Drone, error) {
	query := selectDrones + ` WHERE d.user_id = ?`
	args := []any{userID}
	if typeID != "" {
		query += ` AND d.type_id = ?`
		args = append(args, typeID)
	}
	query += ` ORDER BY d.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drones := make([]models.Drone, 0)
	for rows.Next() {
		d, err := scanDrone(rows)
		if err != nil {
			return nil, err
		}
		drones = append(drones, *d)
	}
	return drones, rows.Err()
}

// GetDrone returns nil when the drone does not exist for the user.
func (r *Repository) GetDrone(ctx context.Context, userID, id string) (*models.Drone, error) {
	row := r.db.QueryRowContext(ctx, selectDrones+` WHERE d.id = ? AND d.user_id = ?`, id, userID)
	d, err := scanDrone(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

// CreateDrone inserts the drone and its initial parts in one transaction.
func (r *Repository) CreateDrone(ctx context.Context, userID string, drone *models.Drone, parts []models.Part) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		ts := now()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO drones (id, user_id, name, type_id, start_date, photo, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, drone.ID, userID, drone.Name, drone.Type, drone.StartDate,
			nullString(&drone.Photo), string(drone.Status), ts, ts)
		if err != nil {
			return mapError(err)
		}
		drone.CreatedAt, drone.UpdatedAt = ts, ts

		for i := range parts {
			if err := insertPart(ctx, tx, userID, &parts[i]); err != nil {
				return err
			}
			drone.Parts = append(drone.Parts, parts[i].ID)
		}
		return nil
	})
}

func (r *Repository) UpdateDrone(ctx context.Context, userID, id string, cols map[string]any) error {
	return r.update(ctx, "drones", userID, id, cols)
}

// DeleteDrone removes the drone. Parts and repairs go with it through the
// ON DELETE CASCADE constraints.
func (r *Repository) DeleteDrone(ctx context.Context, userID, id string) error {
	return r.delete(ctx, r.db, "drones", userID, id)
}
