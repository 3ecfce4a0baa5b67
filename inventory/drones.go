package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/google/uuid"
)

type droneRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TypeID    string    `json:"type_id"`
	TypeName  string    `json:"type_name"`
	StartDate string    `json:"start_date"`
	Photo     string    `json:"photo"`
	Status    string    `json:"status"`
	PartIDs   []string  `json:"part_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r droneRow) model() models.Drone {
	status := models.DroneStatus(r.Status)
	if !status.Valid() {
		status = models.DroneReady
	}
	parts := r.PartIDs
	if parts == nil {
		parts = make([]string, 0)
	}
	return models.Drone{
		ID:        r.ID,
		Name:      r.Name,
		Type:      r.TypeID,
		TypeName:  r.TypeName,
		StartDate: r.StartDate,
		Photo:     r.Photo,
		Status:    status,
		Parts:     parts,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

var droneEmbeds = []remote.Embed{
	{Resource: remote.DroneTypes, Column: "name", As: "type_name"},
	{Resource: remote.Parts, Column: "id", As: "part_ids", Many: true},
}

type DroneFilter struct {
	TypeID string
}

type Drones struct {
	*base
	types *DroneTypes
}

// List returns the user's drones, newest first.
func (r *Drones) List(ctx context.Context, f DroneFilter) ListResult[models.Drone] {
	q := remote.Query{Resource: remote.Drones, OrderBy: "created_at", Desc: true, Embeds: droneEmbeds}
	if f.TypeID != "" {
		q.Filters = append(q.Filters, remote.Eq("type_id", f.TypeID))
	}
	return listAs[droneRow, models.Drone](ctx, r.base, "list drones", q)
}

func (r *Drones) Get(ctx context.Context, id string) (*models.Drone, error) {
	return getAs[droneRow, models.Drone](ctx, r.base, "get drone", remote.Drones, id, droneEmbeds...)
}

// Add creates a drone together with one part per default part of its type.
func (r *Drones) Add(ctx context.Context, in models.DroneInput) (*models.Created, error) {
	uid, err := r.userID(ctx)
	if err != nil {
		r.logFailure("add drone", err)
		return nil, err
	}
	in.Normalize()
	if err := r.validate(&in); err != nil {
		return nil, err
	}

	droneType, err := r.types.Get(ctx, in.Type)
	if err != nil {
		return nil, err
	}
	if droneType == nil {
		return nil, &remote.Error{Kind: remote.ErrValidation, Message: "invalid drone type"}
	}

	row := remote.Row{
		"user_id":    uid,
		"name":       in.Name,
		"type_id":    in.Type,
		"start_date": in.StartDate,
		"photo":      nullable(in.Photo),
		"status":     string(in.Status),
	}

	id, err := r.insert(ctx, "add drone", remote.Drones, row)
	if err != nil {
		return nil, err
	}
	if r.remote.Features().ExpandsDefaultParts || len(droneType.DefaultParts) == 0 {
		return &models.Created{ID: id, Message: "Drone added"}, nil
	}

	// Part ids are always generated here so that a retried insert shows up
	// as a duplicate instead of a second batch.
	parts := make([]remote.Row, 0, len(droneType.DefaultParts))
	for _, dp := range droneType.DefaultParts {
		parts = append(parts, remote.Row{
			"id":                  uuid.NewString(),
			"user_id":             uid,
			"drone_id":            id,
			"name":                dp.Name,
			"start_date":          in.StartDate,
			"manufacturer_id":     nullablePtr(dp.ManufacturerID),
			"replacement_history": []models.ReplacementEntry{},
		})
	}

	s := saga{b: r.base, op: "add drone"}
	attempts := 0
	err = s.step(ctx, "create default parts", func(ctx context.Context) error {
		attempts++
		_, err := r.remote.Insert(ctx, remote.Parts, parts...)
		if attempts > 1 && errors.Is(err, remote.ErrAlreadyExists) {
			// the batch is one statement, so an earlier attempt committed all of it
			return nil
		}
		return err
	})
	if err != nil {
		s.compensate(ctx, "delete drone", func(ctx context.Context) error {
			return ignoreNotFound(r.remote.Delete(ctx, remote.Drones, id))
		})
		return nil, err
	}
	return &models.Created{ID: id, Message: "Drone added"}, nil
}

func (r *Drones) Update(ctx context.Context, id string, patch models.DronePatch) error {
	if err := r.checkPatch(patch.Validate()); err != nil {
		return err
	}
	if patch.Type.Present() {
		droneType, err := r.types.Get(ctx, patch.Type.Value)
		if err != nil {
			return err
		}
		if droneType == nil {
			return &remote.Error{Kind: remote.ErrValidation, Message: "invalid drone type"}
		}
	}
	return r.update(ctx, "update drone", remote.Drones, id, patch.Columns())
}

// SetStatus changes only the status. Any status may follow any other.
func (r *Drones) SetStatus(ctx context.Context, id string, status models.DroneStatus) error {
	return r.Update(ctx, id, models.DronePatch{Status: models.Set(status)})
}

// Remove deletes the drone, its parts, the repairs of those parts and the
// drone's own repairs.
func (r *Drones) Remove(ctx context.Context, id string) error {
	uid, err := r.userID(ctx)
	if err != nil {
		r.logFailure("remove drone", err, "id", id)
		return err
	}
	if r.remote.Features().CascadesDeletes {
		return r.remove(ctx, "remove drone", remote.Drones, id)
	}

	s := saga{b: r.base, op: "remove drone"}

	var partIDs []string
	err = s.step(ctx, "list parts", func(ctx context.Context) error {
		rows, err := r.remote.List(ctx, remote.Query{Resource: remote.Parts, Filters: scope(uid, remote.Eq("drone_id", id))})
		if err != nil {
			return err
		}
		partIDs = partIDs[:0]
		for _, row := range rows {
			partIDs = append(partIDs, row.ID())
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(partIDs) > 0 {
		err = s.step(ctx, "delete part repairs", func(ctx context.Context) error {
			return r.remote.DeleteWhere(ctx, remote.Repairs, scope(uid, remote.In("part_id", partIDs))...)
		})
		if err != nil {
			return err
		}
	}

	err = s.step(ctx, "delete drone repairs", func(ctx context.Context) error {
		return r.remote.DeleteWhere(ctx, remote.Repairs, scope(uid, remote.Eq("drone_id", id))...)
	})
	if err != nil {
		return err
	}

	err = s.step(ctx, "delete parts", func(ctx context.Context) error {
		return r.remote.DeleteWhere(ctx, remote.Parts, scope(uid, remote.Eq("drone_id", id))...)
	})
	if err != nil {
		return err
	}

	attempts := 0
	return s.step(ctx, "delete drone", func(ctx context.Context) error {
		attempts++
		err := r.remote.Delete(ctx, remote.Drones, id)
		if attempts > 1 {
			// an earlier attempt may have succeeded without us seeing the reply
			return ignoreNotFound(err)
		}
		return err
	})
}

func ignoreNotFound(err error) error {
	if errors.Is(err, remote.ErrNotFound) {
		return nil
	}
	return err
}
