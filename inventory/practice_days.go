package inventory

import (
	"context"
	"time"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
)

type practiceDayRow struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r practiceDayRow) model() models.PracticeDay {
	return models.PracticeDay(r)
}

type PracticeDays struct {
	*base
}

// List returns practice days, latest first.
func (r *PracticeDays) List(ctx context.Context) ListResult[models.PracticeDay] {
	q := remote.Query{Resource: remote.PracticeDays, OrderBy: "date", Desc: true}
	return listAs[practiceDayRow, models.PracticeDay](ctx, r.base, "list practice days", q)
}

func (r *PracticeDays) Get(ctx context.Context, id string) (*models.PracticeDay, error) {
	return getAs[practiceDayRow, models.PracticeDay](ctx, r.base, "get practice day", remote.PracticeDays, id)
}

// Add records a practice day. A date can be recorded once.
func (r *PracticeDays) Add(ctx context.Context, in models.PracticeDayInput) (*models.Created, error) {
	uid, err := r.userID(ctx)
	if err != nil {
		r.logFailure("add practice day", err)
		return nil, err
	}
	in.Normalize()
	if err := r.validate(&in); err != nil {
		return nil, err
	}
	if err := r.ensureDateFree(ctx, "add practice day", uid, in.Date, ""); err != nil {
		return nil, err
	}
	id, err := r.insert(ctx, "add practice day", remote.PracticeDays, remote.Row{
		"user_id": uid,
		"date":    in.Date,
		"note":    nullablePtr(in.Note),
	})
	if err != nil {
		return nil, err
	}
	return &models.Created{ID: id, Message: "Practice day recorded"}, nil
}

func (r *PracticeDays) Update(ctx context.Context, id string, patch models.PracticeDayPatch) error {
	if err := r.checkPatch(patch.Validate()); err != nil {
		return err
	}
	if patch.Date.Present() {
		uid, err := r.userID(ctx)
		if err != nil {
			r.logFailure("update practice day", err, "id", id)
			return err
		}
		if err := r.ensureDateFree(ctx, "update practice day", uid, patch.Date.Value, id); err != nil {
			return err
		}
	}
	return r.update(ctx, "update practice day", remote.PracticeDays, id, patch.Columns())
}

func (r *PracticeDays) Remove(ctx context.Context, id string) error {
	if _, err := r.userID(ctx); err != nil {
		r.logFailure("remove practice day", err, "id", id)
		return err
	}
	return r.remove(ctx, "remove practice day", remote.PracticeDays, id)
}

// ensureDateFree fails when another practice day than self is on date.
func (r *PracticeDays) ensureDateFree(ctx context.Context, op, uid, date, self string) error {
	rows, err := r.remote.List(ctx, remote.Query{
		Resource: remote.PracticeDays,
		Filters:  scope(uid, remote.Eq("date", date)),
	})
	if err != nil {
		r.logFailure(op, err, "date", date)
		return err
	}
	for _, row := range rows {
		if row.ID() != self {
			return &remote.Error{Kind: remote.ErrAlreadyExists, Message: "a practice day is already recorded for this date"}
		}
	}
	return nil
}
