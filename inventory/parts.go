package inventory

import (
	"context"
	"time"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/google/uuid"
)

type partRow struct {
	ID                 string                    `json:"id"`
	DroneID            string                    `json:"drone_id"`
	Name               string                    `json:"name"`
	StartDate          string                    `json:"start_date"`
	ManufacturerID     *string                   `json:"manufacturer_id"`
	ManufacturerName   string                    `json:"manufacturer_name"`
	ReplacementHistory []models.ReplacementEntry `json:"replacement_history"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

func (r partRow) model() models.Part {
	history := r.ReplacementHistory
	if history == nil {
		history = make([]models.ReplacementEntry, 0)
	}
	models.EnsureReplacementIDs(r.ID, history)
	return models.Part{
		ID:                 r.ID,
		DroneID:            r.DroneID,
		Name:               r.Name,
		StartDate:          r.StartDate,
		ManufacturerID:     r.ManufacturerID,
		ManufacturerName:   r.ManufacturerName,
		ReplacementHistory: history,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

var partEmbeds = []remote.Embed{
	{Resource: remote.Manufacturers, Column: "name", As: "manufacturer_name"},
}

type PartFilter struct {
	DroneID        string
	ManufacturerID string
}

type Parts struct {
	*base
}

func (r *Parts) List(ctx context.Context, f PartFilter) ListResult[models.Part] {
	q := remote.Query{Resource: remote.Parts, OrderBy: "created_at", Desc: true, Embeds: partEmbeds}
	if f.DroneID != "" {
		q.Filters = append(q.Filters, remote.Eq("drone_id", f.DroneID))
	}
	if f.ManufacturerID != "" {
		q.Filters = append(q.Filters, remote.Eq("manufacturer_id", f.ManufacturerID))
	}
	return listAs[partRow, models.Part](ctx, r.base, "list parts", q)
}

func (r *Parts) Get(ctx context.Context, id string) (*models.Part, error) {
	return getAs[partRow, models.Part](ctx, r.base, "get part", remote.Parts, id, partEmbeds...)
}

func (r *Parts) Add(ctx context.Context, in models.PartInput) (*models.Created, error) {
	uid, err := r.userID(ctx)
	if err != nil {
		r.logFailure("add part", err)
		return nil, err
	}
	in.Normalize()
	if err := r.validate(&in); err != nil {
		return nil, err
	}
	withNewIDs(in.ReplacementHistory)

	id, err := r.insert(ctx, "add part", remote.Parts, remote.Row{
		"user_id":             uid,
		"drone_id":            in.DroneID,
		"name":                in.Name,
		"start_date":          in.StartDate,
		"manufacturer_id":     nullablePtr(in.ManufacturerID),
		"replacement_history": in.ReplacementHistory,
	})
	if err != nil {
		return nil, err
	}
	return &models.Created{ID: id, Message: "Part added"}, nil
}

func (r *Parts) Update(ctx context.Context, id string, patch models.PartPatch) error {
	if err := r.checkPatch(patch.Validate()); err != nil {
		return err
	}
	if patch.ReplacementHistory.Present() {
		withNewIDs(patch.ReplacementHistory.Value)
	}
	return r.update(ctx, "update part", remote.Parts, id, patch.Columns())
}

// Remove deletes the part and its repairs.
func (r *Parts) Remove(ctx context.Context, id string) error {
	uid, err := r.userID(ctx)
	if err != nil {
		r.logFailure("remove part", err, "id", id)
		return err
	}
	if !r.remote.Features().CascadesDeletes {
		s := saga{b: r.base, op: "remove part"}
		err := s.step(ctx, "delete part repairs", func(ctx context.Context) error {
			return r.remote.DeleteWhere(ctx, remote.Repairs, scope(uid, remote.Eq("part_id", id))...)
		})
		if err != nil {
			return err
		}
	}
	return r.remove(ctx, "remove part", remote.Parts, id)
}

// AddReplacement appends an entry to the part's replacement history and
// returns the new entry's id.
func (r *Parts) AddReplacement(ctx context.Context, partID string, in models.ReplacementInput) (string, error) {
	if err := r.validate(&in); err != nil {
		return "", err
	}
	part, err := r.mustGet(ctx, partID)
	if err != nil {
		return "", err
	}
	entry := models.ReplacementEntry{
		ID:          uuid.NewString(),
		Date:        in.Date,
		Description: in.Description,
		Note:        in.Note,
	}
	history := append(part.ReplacementHistory, entry)
	if err := r.update(ctx, "add replacement", remote.Parts, partID, map[string]any{"replacement_history": history}); err != nil {
		return "", err
	}
	return entry.ID, nil
}

func (r *Parts) UpdateReplacement(ctx context.Context, partID, entryID string, patch models.ReplacementPatch) error {
	if err := r.checkPatch(patch.Validate()); err != nil {
		return err
	}
	part, err := r.mustGet(ctx, partID)
	if err != nil {
		return err
	}
	i := replacementIndex(part.ReplacementHistory, entryID)
	if i < 0 {
		return &remote.Error{Kind: remote.ErrNotFound, Message: "replacement entry not found"}
	}
	part.ReplacementHistory[i] = patch.Apply(part.ReplacementHistory[i])
	return r.update(ctx, "update replacement", remote.Parts, partID, map[string]any{"replacement_history": part.ReplacementHistory})
}

func (r *Parts) RemoveReplacement(ctx context.Context, partID, entryID string) error {
	part, err := r.mustGet(ctx, partID)
	if err != nil {
		return err
	}
	i := replacementIndex(part.ReplacementHistory, entryID)
	if i < 0 {
		return &remote.Error{Kind: remote.ErrNotFound, Message: "replacement entry not found"}
	}
	history := append(part.ReplacementHistory[:i:i], part.ReplacementHistory[i+1:]...)
	return r.update(ctx, "remove replacement", remote.Parts, partID, map[string]any{"replacement_history": history})
}

func (r *Parts) mustGet(ctx context.Context, id string) (*models.Part, error) {
	part, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, &remote.Error{Kind: remote.ErrNotFound, Message: "part not found"}
	}
	return part, nil
}

func replacementIndex(entries []models.ReplacementEntry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func withNewIDs(entries []models.ReplacementEntry) {
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
	}
}
