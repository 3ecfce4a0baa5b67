package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/google/uuid"
)

type droneTypeRow struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	DefaultParts []models.DefaultPart `json:"default_parts"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func (r droneTypeRow) model() models.DroneType {
	parts := r.DefaultParts
	if parts == nil {
		parts = make([]models.DefaultPart, 0)
	}
	models.EnsureDefaultPartIDs(r.ID, parts)
	return models.DroneType{
		ID:           r.ID,
		Name:         r.Name,
		DefaultParts: parts,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type DroneTypes struct {
	*base
}

func (r *DroneTypes) List(ctx context.Context) ListResult[models.DroneType] {
	q := remote.Query{Resource: remote.DroneTypes, OrderBy: "created_at", Desc: true}
	return listAs[droneTypeRow, models.DroneType](ctx, r.base, "list drone types", q)
}

func (r *DroneTypes) Get(ctx context.Context, id string) (*models.DroneType, error) {
	return getAs[droneTypeRow, models.DroneType](ctx, r.base, "get drone type", remote.DroneTypes, id)
}

func (r *DroneTypes) Add(ctx context.Context, in models.DroneTypeInput) (*models.Created, error) {
	uid, err := r.userID(ctx)
	if err != nil {
		r.logFailure("add drone type", err)
		return nil, err
	}
	in.Normalize()
	if err := r.validate(&in); err != nil {
		return nil, err
	}
	for i := range in.DefaultParts {
		if in.DefaultParts[i].ID == "" {
			in.DefaultParts[i].ID = uuid.NewString()
		}
	}

	id, err := r.insert(ctx, "add drone type", remote.DroneTypes, remote.Row{
		"user_id":       uid,
		"name":          in.Name,
		"default_parts": in.DefaultParts,
	})
	if err != nil {
		return nil, err
	}
	return &models.Created{ID: id, Message: "Drone type added"}, nil
}

func (r *DroneTypes) Update(ctx context.Context, id string, patch models.DroneTypePatch) error {
	if err := r.checkPatch(patch.Validate()); err != nil {
		return err
	}
	if patch.DefaultParts.Present() {
		for i := range patch.DefaultParts.Value {
			if patch.DefaultParts.Value[i].ID == "" {
				patch.DefaultParts.Value[i].ID = uuid.NewString()
			}
		}
	}
	return r.update(ctx, "update drone type", remote.DroneTypes, id, patch.Columns())
}

// Remove refuses while any drone still uses the type.
func (r *DroneTypes) Remove(ctx context.Context, id string) error {
	uid, err := r.userID(ctx)
	if err != nil {
		r.logFailure("remove drone type", err, "id", id)
		return err
	}
	err = r.ensureUnreferenced(ctx, "remove drone type", uid, remote.Drones, "type_id", id,
		"this drone type is used by drones, cannot delete")
	if err != nil {
		return err
	}
	return r.remove(ctx, "remove drone type", remote.DroneTypes, id)
}

func (r *DroneTypes) AddDefaultPart(ctx context.Context, typeID string, in models.DefaultPartInput) (string, error) {
	if err := r.validate(&in); err != nil {
		return "", err
	}
	dt, err := r.mustGet(ctx, typeID)
	if err != nil {
		return "", err
	}
	entry := models.DefaultPart{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		ManufacturerID: in.ManufacturerID,
	}
	if entry.ManufacturerID != nil && strings.TrimSpace(*entry.ManufacturerID) == "" {
		entry.ManufacturerID = nil
	}
	parts := append(dt.DefaultParts, entry)
	if err := r.update(ctx, "add default part", remote.DroneTypes, typeID, map[string]any{"default_parts": parts}); err != nil {
		return "", err
	}
	return entry.ID, nil
}

func (r *DroneTypes) RemoveDefaultPart(ctx context.Context, typeID, entryID string) error {
	dt, err := r.mustGet(ctx, typeID)
	if err != nil {
		return err
	}
	for i, p := range dt.DefaultParts {
		if p.ID == entryID {
			parts := append(dt.DefaultParts[:i:i], dt.DefaultParts[i+1:]...)
			return r.update(ctx, "remove default part", remote.DroneTypes, typeID, map[string]any{"default_parts": parts})
		}
	}
	return &remote.Error{Kind: remote.ErrNotFound, Message: "default part not found"}
}

func (r *DroneTypes) mustGet(ctx context.Context, id string) (*models.DroneType, error) {
	dt, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dt == nil {
		return nil, &remote.Error{Kind: remote.ErrNotFound, Message: "drone type not found"}
	}
	return dt, nil
}

type manufacturerRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r manufacturerRow) model() models.Manufacturer {
	return models.Manufacturer(r)
}

type Manufacturers struct {
	*base
}

func (r *Manufacturers) List(ctx context.Context) ListResult[models.Manufacturer] {
	q := remote.Query{Resource: remote.Manufacturers, OrderBy: "created_at", Desc: true}
	return listAs[manufacturerRow, models.Manufacturer](ctx, r.base, "list manufacturers", q)
}

func (r *Manufacturers) Get(ctx context.Context, id string) (*models.Manufacturer, error) {
	return getAs[manufacturerRow, models.Manufacturer](ctx, r.base, "get manufacturer", remote.Manufacturers, id)
}

func (r *Manufacturers) Add(ctx context.Context, in models.ManufacturerInput) (*models.Created, error) {
	uid, err := r.userID(ctx)
	if err != nil {
		r.logFailure("add manufacturer", err)
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := r.validate(&in); err != nil {
		return nil, err
	}
	id, err := r.insert(ctx, "add manufacturer", remote.Manufacturers, remote.Row{
		"user_id": uid,
		"name":    in.Name,
	})
	if err != nil {
		return nil, err
	}
	return &models.Created{ID: id, Message: "Manufacturer added"}, nil
}

func (r *Manufacturers) Update(ctx context.Context, id string, patch models.ManufacturerPatch) error {
	if err := r.checkPatch(patch.Validate()); err != nil {
		return err
	}
	return r.update(ctx, "update manufacturer", remote.Manufacturers, id, patch.Columns())
}

// Remove refuses while any part still names the manufacturer.
func (r *Manufacturers) Remove(ctx context.Context, id string) error {
	uid, err := r.userID(ctx)
	if err != nil {
		r.logFailure("remove manufacturer", err, "id", id)
		return err
	}
	err = r.ensureUnreferenced(ctx, "remove manufacturer", uid, remote.Parts, "manufacturer_id", id,
		"this manufacturer is used by parts, cannot delete")
	if err != nil {
		return err
	}
	return r.remove(ctx, "remove manufacturer", remote.Manufacturers, id)
}
