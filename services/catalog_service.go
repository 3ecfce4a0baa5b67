package services

import (
	"context"
	"strings"

	"github.com/Yuki-gilty/drone-manager/database"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/validator"
	"github.com/google/uuid"
)

// CatalogService manages drone types and manufacturers.
type CatalogService struct {
	repo      *database.Repository
	validator *validator.Validator
}

func NewCatalogService(repo *database.Repository, v *validator.Validator) *CatalogService {
	return &CatalogService{repo: repo, validator: v}
}

func (cs *CatalogService) ListTypes(ctx context.Context, userID string) ([]models.DroneType, error) {
	return cs.repo.ListDroneTypes(ctx, userID)
}

func (cs *CatalogService) GetType(ctx context.Context, userID, id string) (*models.DroneType, error) {
	dt, err := cs.repo.GetDroneType(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if dt == nil {
		return nil, notFound("drone type")
	}
	return dt, nil
}

func (cs *CatalogService) CreateType(ctx context.Context, userID string, in models.DroneTypeInput) (*models.Created, error) {
	in.Normalize()
	if err := cs.validator.Validate(&in); err != nil {
		return nil, invalid(err)
	}
	parts, err := cs.defaultParts(ctx, userID, in.DefaultParts)
	if err != nil {
		return nil, err
	}
	dt := &models.DroneType{ID: uuid.New().String(), Name: in.Name, DefaultParts: parts}
	if err := cs.repo.CreateDroneType(ctx, userID, dt); err != nil {
		return nil, fromDB(err, "drone type")
	}
	return &models.Created{ID: dt.ID, Message: "Drone type added"}, nil
}

func (cs *CatalogService) UpdateType(ctx context.Context, userID, id string, patch models.DroneTypePatch) error {
	if err := checkPatch(patch.Empty(), patch.Validate()); err != nil {
		return err
	}
	if patch.DefaultParts.Present() {
		parts, err := cs.defaultParts(ctx, userID, patch.DefaultParts.Value)
		if err != nil {
			return err
		}
		patch.DefaultParts.Value = parts
	}
	return fromDB(cs.repo.UpdateDroneType(ctx, userID, id, patch.Columns()), "drone type")
}

// DeleteType refuses while any drone still uses the type.
func (cs *CatalogService) DeleteType(ctx context.Context, userID, id string) error {
	inUse, err := cs.repo.DroneTypeInUse(ctx, userID, id)
	if err != nil {
		return err
	}
	if inUse {
		return referenced("this drone type is used by drones, cannot delete")
	}
	return fromDB(cs.repo.DeleteDroneType(ctx, userID, id), "drone type")
}

// defaultParts trims names, assigns missing ids and checks manufacturers.
func (cs *CatalogService) defaultParts(ctx context.Context, userID string, parts []models.DefaultPart) ([]models.DefaultPart, error) {
	out := make([]models.DefaultPart, 0, len(parts))
	for _, p := range parts {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, invalid(validator.ValidationErrors{{Field: "defaultParts", Tag: "required", Message: "default part name is required"}})
		}
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if p.ManufacturerID != nil {
			m, err := cs.repo.GetManufacturer(ctx, userID, *p.ManufacturerID)
			if err != nil {
				return nil, err
			}
			if m == nil {
				return nil, invalidReference("manufacturer")
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (cs *CatalogService) ListManufacturers(ctx context.Context, userID string) ([]models.Manufacturer, error) {
	return cs.repo.ListManufacturers(ctx, userID)
}

func (cs *CatalogService) GetManufacturer(ctx context.Context, userID, id string) (*models.Manufacturer, error) {
	m, err := cs.repo.GetManufacturer(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, notFound("manufacturer")
	}
	return m, nil
}

func (cs *CatalogService) CreateManufacturer(ctx context.Context, userID string, in models.ManufacturerInput) (*models.Created, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := cs.validator.Validate(&in); err != nil {
		return nil, invalid(err)
	}
	m := &models.Manufacturer{ID: uuid.New().String(), Name: in.Name}
	if err := cs.repo.CreateManufacturer(ctx, userID, m); err != nil {
		return nil, fromDB(err, "manufacturer")
	}
	return &models.Created{ID: m.ID, Message: "Manufacturer added"}, nil
}

func (cs *CatalogService) UpdateManufacturer(ctx context.Context, userID, id string, patch models.ManufacturerPatch) error {
	if err := checkPatch(patch.Empty(), patch.Validate()); err != nil {
		return err
	}
	return fromDB(cs.repo.UpdateManufacturer(ctx, userID, id, patch.Columns()), "manufacturer")
}

// DeleteManufacturer refuses while any part still names the manufacturer.
func (cs *CatalogService) DeleteManufacturer(ctx context.Context, userID, id string) error {
	inUse, err := cs.repo.ManufacturerInUse(ctx, userID, id)
	if err != nil {
		return err
	}
	if inUse {
		return referenced("this manufacturer is used by parts, cannot delete")
	}
	return fromDB(cs.repo.DeleteManufacturer(ctx, userID, id), "manufacturer")
}
