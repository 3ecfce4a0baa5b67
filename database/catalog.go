package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Yuki-gilty/drone-manager/models"
)

// ==================== DRONE TYPES ====================

const selectDroneTypes = `SELECT id, name, default_parts, created_at, updated_at FROM drone_types`

func scanDroneType(s scanner) (*models.DroneType, error) {
	var dt models.DroneType
	var defaults string
	if err := s.Scan(&dt.ID, &dt.Name, &defaults, &dt.CreatedAt, &dt.UpdatedAt); err != nil {
		return nil, err
	}
	dt.DefaultParts = make([]models.DefaultPart, 0)
	if defaults != "" {
		if err := json.Unmarshal([]byte(defaults), &dt.DefaultParts); err != nil {
			return nil, fmt.Errorf("decode default parts of type %s: %w", dt.ID, err)
		}
	}
	models.EnsureDefaultPartIDs(dt.ID, dt.DefaultParts)
	return &dt, nil
}

func (r *Repository) ListDroneTypes(ctx context.Context, userID string) ([]models.DroneType, error) {
	rows, err := r.db.QueryContext(ctx, selectDroneTypes+` WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]models.DroneType, 0)
	for rows.Next() {
		dt, err := scanDroneType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *dt)
	}
	return types, rows.Err()
}

func (r *Repository) GetDroneType(ctx context.Context, userID, id string) (*models.DroneType, error) {
	dt, err := scanDroneType(r.db.QueryRowContext(ctx, selectDroneTypes+` WHERE id = ? AND user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return dt, err
}

func (r *Repository) CreateDroneType(ctx context.Context, userID string, dt *models.DroneType) error {
	return insertDroneType(ctx, r.db, userID, dt)
}

func insertDroneType(ctx context.Context, q querier, userID string, dt *models.DroneType) error {
	if dt.DefaultParts == nil {
		dt.DefaultParts = make([]models.DefaultPart, 0)
	}
	defaults, err := toJSON(dt.DefaultParts)
	if err != nil {
		return err
	}
	ts := now()
	_, err = q.ExecContext(ctx, `
		INSERT INTO drone_types (id, user_id, name, default_parts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, dt.ID, userID, dt.Name, defaults, ts, ts)
	if err != nil {
		return mapError(err)
	}
	dt.CreatedAt, dt.UpdatedAt = ts, ts
	return nil
}

func (r *Repository) UpdateDroneType(ctx context.Context, userID, id string, cols map[string]any) error {
	return r.update(ctx, "drone_types", userID, id, cols)
}

func (r *Repository) DeleteDroneType(ctx context.Context, userID, id string) error {
	return r.delete(ctx, r.db, "drone_types", userID, id)
}

// DroneTypeInUse reports whether any of the user's drones has the type.
func (r *Repository) DroneTypeInUse(ctx context.Context, userID, id string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM drones WHERE user_id = ? AND type_id = ? LIMIT 1`, userID, id)
}

// ==================== MANUFACTURERS ====================

const selectManufacturers = `SELECT id, name, created_at, updated_at FROM manufacturers`

func scanManufacturer(s scanner) (*models.Manufacturer, error) {
	var m models.Manufacturer
	if err := s.Scan(&m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) ListManufacturers(ctx context.Context, userID string) ([]models.Manufacturer, error) {
	rows, err := r.db.QueryContext(ctx, selectManufacturers+` WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	makers := make([]models.Manufacturer, 0)
	for rows.Next() {
		m, err := scanManufacturer(rows)
		if err != nil {
			return nil, err
		}
		makers = append(makers, *m)
	}
	return makers, rows.Err()
}

func (r *Repository) GetManufacturer(ctx context.Context, userID, id string) (*models.Manufacturer, error) {
	m, err := scanManufacturer(r.db.QueryRowContext(ctx, selectManufacturers+` WHERE id = ? AND user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *Repository) CreateManufacturer(ctx context.Context, userID string, m *models.Manufacturer) error {
	return insertManufacturer(ctx, r.db, userID, m)
}

func insertManufacturer(ctx context.Context, q querier, userID string, m *models.Manufacturer) error {
	ts := now()
	_, err := q.ExecContext(ctx, `
		INSERT INTO manufacturers (id, user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, userID, m.Name, ts, ts)
	if err != nil {
		return mapError(err)
	}
	m.CreatedAt, m.UpdatedAt = ts, ts
	return nil
}

func (r *Repository) UpdateManufacturer(ctx context.Context, userID, id string, cols map[string]any) error {
	return r.update(ctx, "manufacturers", userID, id, cols)
}

func (r *Repository) DeleteManufacturer(ctx context.Context, userID, id string) error {
	return r.delete(ctx, r.db, "manufacturers", userID, id)
}

// ManufacturerInUse reports whether any of the user's parts names the
// manufacturer.
func (r *Repository) ManufacturerInUse(ctx context.Context, userID, id string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM parts WHERE user_id = ? AND manufacturer_id = ? LIMIT 1`, userID, id)
}
