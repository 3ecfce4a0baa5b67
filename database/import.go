package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/google/uuid"
)

// Import copies an exported snapshot into the user's account in one
// transaction. Types and manufacturers are matched by name; drones, parts and
// repairs always become new rows and are linked through old-to-new id maps.
// Practice days on an already recorded date are skipped.
func (r *Repository) Import(ctx context.Context, userID string, snap models.Snapshot) (*models.ImportResult, error) {
	result := &models.ImportResult{}

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		im := importer{ctx: ctx, tx: tx, userID: userID, result: result}

		makerIDs := make(map[string]string, len(snap.Manufacturers))
		for _, m := range snap.Manufacturers {
			id, err := im.manufacturer(m.Name)
			if err != nil {
				return err
			}
			makerIDs[m.ID] = id
		}
		relink := func(old *string) *string {
			if old == nil {
				return nil
			}
			if id, ok := makerIDs[*old]; ok {
				return &id
			}
			return nil
		}

		typeNames := make(map[string]string, len(snap.DroneTypes))
		for _, t := range snap.DroneTypes {
			typeNames[t.ID] = t.Name
			defaults := make([]models.DefaultPart, 0, len(t.DefaultParts))
			for _, dp := range t.DefaultParts {
				defaults = append(defaults, models.DefaultPart{ID: uuid.NewString(), Name: dp.Name, ManufacturerID: relink(dp.ManufacturerID)})
			}
			if _, err := im.droneType(t.Name, defaults); err != nil {
				return err
			}
		}

		droneIDs := make(map[string]string, len(snap.Drones))
		for _, d := range snap.Drones {
			typeName := d.TypeName
			if typeName == "" {
				typeName = typeNames[d.Type]
			}
			if strings.TrimSpace(typeName) == "" {
				continue
			}
			typeID, err := im.droneType(typeName, nil)
			if err != nil {
				return err
			}
			status := d.Status
			if !status.Valid() {
				status = models.DroneReady
			}
			id := uuid.NewString()
			ts := now()
			_, err = tx.ExecContext(ctx, `
				INSERT INTO drones (id, user_id, name, type_id, start_date, photo, status, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, id, userID, d.Name, typeID, d.StartDate, nullString(&d.Photo), string(status), ts, ts)
			if err != nil {
				return mapError(err)
			}
			droneIDs[d.ID] = id
			result.Drones++
		}

		partIDs := make(map[string]string, len(snap.Parts))
		for _, p := range snap.Parts {
			droneID, ok := droneIDs[p.DroneID]
			if !ok {
				continue
			}
			part := models.Part{
				ID:                 uuid.NewString(),
				DroneID:            droneID,
				Name:               p.Name,
				StartDate:          p.StartDate,
				ManufacturerID:     relink(p.ManufacturerID),
				ReplacementHistory: p.ReplacementHistory,
			}
			models.EnsureReplacementIDs(part.ID, part.ReplacementHistory)
			if err := insertPart(ctx, tx, userID, &part); err != nil {
				return err
			}
			partIDs[p.ID] = part.ID
			result.Parts++
		}

		for _, rep := range snap.Repairs {
			droneID, ok := droneIDs[rep.DroneID]
			if !ok {
				continue
			}
			var partID *string
			if rep.PartID != nil {
				if id, ok := partIDs[*rep.PartID]; ok {
					partID = &id
				}
			}
			repair := models.Repair{
				ID:          uuid.NewString(),
				DroneID:     droneID,
				PartID:      partID,
				Date:        rep.Date,
				Description: rep.Description,
			}
			if err := insertRepair(ctx, tx, userID, &repair); err != nil {
				return err
			}
			result.Repairs++
		}

		for _, pd := range snap.PracticeDays {
			day := models.PracticeDay{ID: uuid.NewString(), Date: pd.Date, Note: pd.Note}
			err := insertPracticeDay(ctx, tx, userID, &day)
			if errors.Is(err, ErrDuplicate) {
				continue
			}
			if err != nil {
				return err
			}
			result.PracticeDays++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type importer struct {
	ctx    context.Context
	tx     *sql.Tx
	userID string
	result *models.ImportResult
}

// droneType returns the id of the user's type with name, creating it when
// missing.
func (im importer) droneType(name string, defaults []models.DefaultPart) (string, error) {
	var id string
	err := im.tx.QueryRowContext(im.ctx, `SELECT id FROM drone_types WHERE user_id = ? AND name = ?`, im.userID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}
	dt := models.DroneType{ID: uuid.NewString(), Name: name, DefaultParts: defaults}
	if err := insertDroneType(im.ctx, im.tx, im.userID, &dt); err != nil {
		return "", err
	}
	im.result.DroneTypes++
	return dt.ID, nil
}

func (im importer) manufacturer(name string) (string, error) {
	var id string
	err := im.tx.QueryRowContext(im.ctx, `SELECT id FROM manufacturers WHERE user_id = ? AND name = ?`, im.userID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}
	m := models.Manufacturer{ID: uuid.NewString(), Name: name}
	if err := insertManufacturer(im.ctx, im.tx, im.userID, &m); err != nil {
		return "", err
	}
	im.result.Manufacturers++
	return m.ID, nil
}
