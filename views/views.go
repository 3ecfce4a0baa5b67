// Package views derives read-only presentations from the inventory: the
// drone detail page, calendar events and the part templates of a type.
package views

import (
	"context"
	"errors"

	"github.com/Yuki-gilty/drone-manager/inventory"
	"github.com/Yuki-gilty/drone-manager/models"
	"golang.org/x/sync/errgroup"
)

type Views struct {
	store *inventory.Store
}

func New(store *inventory.Store) *Views {
	return &Views{store: store}
}

// RepairLine is a repair with the name of the repaired part, empty for a
// repair of the whole drone.
type RepairLine struct {
	models.Repair
	PartName string `json:"partName"`
}

type DroneDetail struct {
	Drone    models.Drone  `json:"drone"`
	TypeName string        `json:"typeName"`
	Parts    []models.Part `json:"parts"`
	Repairs  []RepairLine  `json:"repairs"`
}

// DroneDetail assembles everything shown for one drone. It returns (nil, nil)
// when the drone does not exist. When a secondary list fails the detail is
// still returned, with the failure in err.
func (v *Views) DroneDetail(ctx context.Context, droneID string) (*DroneDetail, error) {
	var (
		drone    *models.Drone
		droneErr error
		types    inventory.ListResult[models.DroneType]
		makers   inventory.ListResult[models.Manufacturer]
		parts    inventory.ListResult[models.Part]
		repairs  inventory.ListResult[models.Repair]
	)

	var g errgroup.Group
	g.Go(func() error {
		drone, droneErr = v.store.Drones.Get(ctx, droneID)
		return nil
	})
	g.Go(func() error {
		types = v.store.DroneTypes.List(ctx)
		return nil
	})
	g.Go(func() error {
		makers = v.store.Manufacturers.List(ctx)
		return nil
	})
	g.Go(func() error {
		parts = v.store.Parts.List(ctx, inventory.PartFilter{DroneID: droneID})
		return nil
	})
	g.Go(func() error {
		repairs = v.store.Repairs.List(ctx, inventory.RepairFilter{DroneID: droneID})
		return nil
	})
	_ = g.Wait()

	if droneErr != nil {
		return nil, droneErr
	}
	if drone == nil {
		return nil, nil
	}

	typeNames := make(map[string]string, len(types.Items))
	for _, t := range types.Items {
		typeNames[t.ID] = t.Name
	}
	makerNames := make(map[string]string, len(makers.Items))
	for _, m := range makers.Items {
		makerNames[m.ID] = m.Name
	}

	detail := &DroneDetail{
		Drone:    *drone,
		TypeName: typeNames[drone.Type],
		Parts:    make([]models.Part, 0, len(parts.Items)),
		Repairs:  make([]RepairLine, 0, len(repairs.Items)),
	}
	if detail.TypeName == "" {
		detail.TypeName = drone.TypeName
	}

	partNames := make(map[string]string, len(parts.Items))
	for _, p := range parts.Items {
		if p.ManufacturerID != nil {
			if name, ok := makerNames[*p.ManufacturerID]; ok {
				p.ManufacturerName = name
			}
		}
		partNames[p.ID] = p.Name
		detail.Parts = append(detail.Parts, p)
	}
	for _, r := range repairs.Items {
		line := RepairLine{Repair: r}
		if r.PartID != nil {
			line.PartName = partNames[*r.PartID]
		}
		detail.Repairs = append(detail.Repairs, line)
	}

	return detail, errors.Join(types.Err, makers.Err, parts.Err, repairs.Err)
}

// PartTemplates returns the default parts of a drone type, offered when a
// part is added to a drone of that type. An unknown type has none.
func (v *Views) PartTemplates(ctx context.Context, typeID string) ([]models.DefaultPart, error) {
	dt, err := v.store.DroneTypes.Get(ctx, typeID)
	if err != nil {
		return make([]models.DefaultPart, 0), err
	}
	if dt == nil {
		return make([]models.DefaultPart, 0), nil
	}
	return dt.DefaultParts, nil
}
