package database

import (
	"context"
	"database/sql"

	"github.com/Yuki-gilty/drone-manager/models"
)

const selectPracticeDays = `SELECT id, date, note, created_at, updated_at FROM practice_days`

func scanPracticeDay(s scanner) (*models.PracticeDay, error) {
	var pd models.PracticeDay
	var note sql.NullString
	if err := s.Scan(&pd.ID, &pd.Date, &note, &pd.CreatedAt, &pd.UpdatedAt); err != nil {
		return nil, err
	}
	pd.Note = ptr(note)
	return &pd, nil
}

func (r *Repository) ListPracticeDays(ctx context.Context, userID string) ([]models.PracticeDay, error) {
	rows, err := r.db.QueryContext(ctx, selectPracticeDays+` WHERE user_id = ? ORDER BY date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make([]models.PracticeDay, 0)
	for rows.Next() {
		pd, err := scanPracticeDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, *pd)
	}
	return days, rows.Err()
}

func (r *Repository) GetPracticeDay(ctx context.Context, userID, id string) (*models.PracticeDay, error) {
	pd, err := scanPracticeDay(r.db.QueryRowContext(ctx, selectPracticeDays+` WHERE id = ? AND user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return pd, err
}

// CreatePracticeDay yields ErrDuplicate when the date is already recorded.
func (r *Repository) CreatePracticeDay(ctx context.Context, userID string, pd *models.PracticeDay) error {
	return insertPracticeDay(ctx, r.db, userID, pd)
}

func insertPracticeDay(ctx context.Context, q querier, userID string, pd *models.PracticeDay) error {
	ts := now()
	_, err := q.ExecContext(ctx, `
		INSERT INTO practice_days (id, user_id, date, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, pd.ID, userID, pd.Date, nullString(pd.Note), ts, ts)
	if err != nil {
		return mapError(err)
	}
	pd.CreatedAt, pd.UpdatedAt = ts, ts
	return nil
}

func (r *Repository) UpdatePracticeDay(ctx context.Context, userID, id string, cols map[string]any) error {
	return r.update(ctx, "practice_days", userID, id, cols)
}

func (r *Repository) DeletePracticeDay(ctx context.Context, userID, id string) error {
	return r.delete(ctx, r.db, "practice_days", userID, id)
}
