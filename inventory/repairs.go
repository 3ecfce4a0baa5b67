package inventory

import (
	"context"
	"time"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
)

type repairRow struct {
	ID          string    `json:"id"`
	DroneID     string    `json:"drone_id"`
	PartID      *string   `json:"part_id"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r repairRow) model() models.Repair {
	return models.Repair(r)
}

type RepairFilter struct {
	DroneID string
	PartID  string
}

type Repairs struct {
	*base
}

// List returns repairs, latest date first.
func (r *Repairs) List(ctx context.Context, f RepairFilter) ListResult[models.Repair] {
	q := remote.Query{Resource: remote.Repairs, OrderBy: "date", Desc: true}
	if f.DroneID != "" {
		q.Filters = append(q.Filters, remote.Eq("drone_id", f.DroneID))
	}
	if f.PartID != "" {
		q.Filters = append(q.Filters, remote.Eq("part_id", f.PartID))
	}
	return listAs[repairRow, models.Repair](ctx, r.base, "list repairs", q)
}

func (r *Repairs) Get(ctx context.Context, id string) (*models.Repair, error) {
	return getAs[repairRow, models.Repair](ctx, r.base, "get repair", remote.Repairs, id)
}

func (r *Repairs) Add(ctx context.Context, in models.RepairInput) (*models.Created, error) {
	uid, err := r.userID(ctx)
	if err != nil {
		r.logFailure("add repair", err)
		return nil, err
	}
	in.Normalize()
	if err := r.validate(&in); err != nil {
		return nil, err
	}
	id, err := r.insert(ctx, "add repair", remote.Repairs, remote.Row{
		"user_id":     uid,
		"drone_id":    in.DroneID,
		"part_id":     nullablePtr(in.PartID),
		"date":        in.Date,
		"description": in.Description,
	})
	if err != nil {
		return nil, err
	}
	return &models.Created{ID: id, Message: "Repair added"}, nil
}

func (r *Repairs) Update(ctx context.Context, id string, patch models.RepairPatch) error {
	if err := r.checkPatch(patch.Validate()); err != nil {
		return err
	}
	return r.update(ctx, "update repair", remote.Repairs, id, patch.Columns())
}

func (r *Repairs) Remove(ctx context.Context, id string) error {
	if _, err := r.userID(ctx); err != nil {
		r.logFailure("remove repair", err, "id", id)
		return err
	}
	return r.remove(ctx, "remove repair", remote.Repairs, id)
}
