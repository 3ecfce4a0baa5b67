package services

import (
	"context"
	"errors"

	"github.com/Yuki-gilty/drone-manager/database"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/validator"
	"github.com/google/uuid"
)

// LogbookService manages parts, repairs and practice days. Every id in a
// request body must name one of the caller's own rows.
type LogbookService struct {
	repo      *database.Repository
	validator *validator.Validator
}

func NewLogbookService(repo *database.Repository, v *validator.Validator) *LogbookService {
	return &LogbookService{repo: repo, validator: v}
}

// Parts

func (ls *LogbookService) ListParts(ctx context.Context, userID string, f database.PartFilter) ([]models.Part, error) {
	return ls.repo.ListParts(ctx, userID, f)
}

func (ls *LogbookService) GetPart(ctx context.Context, userID, id string) (*models.Part, error) {
	part, err := ls.repo.GetPart(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, notFound("part")
	}
	return part, nil
}

func (ls *LogbookService) CreatePart(ctx context.Context, userID string, in models.PartInput) (*models.Created, error) {
	in.Normalize()
	if err := ls.validator.Validate(&in); err != nil {
		return nil, invalid(err)
	}
	if err := ls.ownsDrone(ctx, userID, in.DroneID); err != nil {
		return nil, err
	}
	if err := ls.ownsManufacturer(ctx, userID, in.ManufacturerID); err != nil {
		return nil, err
	}

	part := &models.Part{
		ID:                 uuid.New().String(),
		DroneID:            in.DroneID,
		Name:               in.Name,
		StartDate:          in.StartDate,
		ManufacturerID:     in.ManufacturerID,
		ReplacementHistory: withEntryIDs(in.ReplacementHistory),
	}
	if err := ls.repo.CreatePart(ctx, userID, part); err != nil {
		return nil, fromDB(err, "part")
	}
	return &models.Created{ID: part.ID, Message: "Part added"}, nil
}

func (ls *LogbookService) UpdatePart(ctx context.Context, userID, id string, patch models.PartPatch) error {
	if err := checkPatch(patch.Empty(), patch.Validate()); err != nil {
		return err
	}
	if patch.ManufacturerID.Present() {
		if err := ls.ownsManufacturer(ctx, userID, &patch.ManufacturerID.Value); err != nil {
			return err
		}
	}
	if patch.ReplacementHistory.Present() {
		patch.ReplacementHistory.Value = withEntryIDs(patch.ReplacementHistory.Value)
	}
	return fromDB(ls.repo.UpdatePart(ctx, userID, id, patch.Columns()), "part")
}

// DeletePart removes the part and, through the schema, its repairs.
func (ls *LogbookService) DeletePart(ctx context.Context, userID, id string) error {
	return fromDB(ls.repo.DeletePart(ctx, userID, id), "part")
}

// Repairs

func (ls *LogbookService) ListRepairs(ctx context.Context, userID string, f database.RepairFilter) ([]models.Repair, error) {
	return ls.repo.ListRepairs(ctx, userID, f)
}

func (ls *LogbookService) GetRepair(ctx context.Context, userID, id string) (*models.Repair, error) {
	rep, err := ls.repo.GetRepair(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, notFound("repair")
	}
	return rep, nil
}

func (ls *LogbookService) CreateRepair(ctx context.Context, userID string, in models.RepairInput) (*models.Created, error) {
	in.Normalize()
	if err := ls.validator.Validate(&in); err != nil {
		return nil, invalid(err)
	}
	if err := ls.ownsDrone(ctx, userID, in.DroneID); err != nil {
		return nil, err
	}
	if err := ls.ownsPart(ctx, userID, in.PartID); err != nil {
		return nil, err
	}

	rep := &models.Repair{
		ID:          uuid.New().String(),
		DroneID:     in.DroneID,
		PartID:      in.PartID,
		Date:        in.Date,
		Description: in.Description,
	}
	if err := ls.repo.CreateRepair(ctx, userID, rep); err != nil {
		return nil, fromDB(err, "repair")
	}
	return &models.Created{ID: rep.ID, Message: "Repair added"}, nil
}

func (ls *LogbookService) UpdateRepair(ctx context.Context, userID, id string, patch models.RepairPatch) error {
	if err := checkPatch(patch.Empty(), patch.Validate()); err != nil {
		return err
	}
	if patch.PartID.Present() && patch.PartID.Value != "" {
		if err := ls.ownsPart(ctx, userID, &patch.PartID.Value); err != nil {
			return err
		}
	}
	return fromDB(ls.repo.UpdateRepair(ctx, userID, id, patch.Columns()), "repair")
}

func (ls *LogbookService) DeleteRepair(ctx context.Context, userID, id string) error {
	return fromDB(ls.repo.DeleteRepair(ctx, userID, id), "repair")
}

// Practice days

func (ls *LogbookService) ListPracticeDays(ctx context.Context, userID string) ([]models.PracticeDay, error) {
	return ls.repo.ListPracticeDays(ctx, userID)
}

func (ls *LogbookService) GetPracticeDay(ctx context.Context, userID, id string) (*models.PracticeDay, error) {
	pd, err := ls.repo.GetPracticeDay(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if pd == nil {
		return nil, notFound("practice day")
	}
	return pd, nil
}

func (ls *LogbookService) CreatePracticeDay(ctx context.Context, userID string, in models.PracticeDayInput) (*models.Created, error) {
	in.Normalize()
	if err := ls.validator.Validate(&in); err != nil {
		return nil, invalid(err)
	}
	pd := &models.PracticeDay{ID: uuid.New().String(), Date: in.Date, Note: in.Note}
	if err := ls.repo.CreatePracticeDay(ctx, userID, pd); err != nil {
		return nil, practiceDayError(err)
	}
	return &models.Created{ID: pd.ID, Message: "Practice day added"}, nil
}

func (ls *LogbookService) UpdatePracticeDay(ctx context.Context, userID, id string, patch models.PracticeDayPatch) error {
	if err := checkPatch(patch.Empty(), patch.Validate()); err != nil {
		return err
	}
	return practiceDayError(ls.repo.UpdatePracticeDay(ctx, userID, id, patch.Columns()))
}

func (ls *LogbookService) DeletePracticeDay(ctx context.Context, userID, id string) error {
	return fromDB(ls.repo.DeletePracticeDay(ctx, userID, id), "practice day")
}

func practiceDayError(err error) error {
	if errors.Is(err, database.ErrDuplicate) {
		return ErrPracticeDayTaken
	}
	return fromDB(err, "practice day")
}

func (ls *LogbookService) ownsDrone(ctx context.Context, userID, id string) error {
	drone, err := ls.repo.GetDrone(ctx, userID, id)
	if err != nil {
		return err
	}
	if drone == nil {
		return invalidReference("drone")
	}
	return nil
}

func (ls *LogbookService) ownsPart(ctx context.Context, userID string, id *string) error {
	if id == nil {
		return nil
	}
	part, err := ls.repo.GetPart(ctx, userID, *id)
	if err != nil {
		return err
	}
	if part == nil {
		return invalidReference("part")
	}
	return nil
}

func (ls *LogbookService) ownsManufacturer(ctx context.Context, userID string, id *string) error {
	if id == nil {
		return nil
	}
	m, err := ls.repo.GetManufacturer(ctx, userID, *id)
	if err != nil {
		return err
	}
	if m == nil {
		return invalidReference("manufacturer")
	}
	return nil
}

func withEntryIDs(entries []models.ReplacementEntry) []models.ReplacementEntry {
	if entries == nil {
		return []models.ReplacementEntry{}
	}
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.New().String()
		}
	}
	return entries
}
