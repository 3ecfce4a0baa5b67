package services

import (
	"context"
	"testing"

	"github.com/Yuki-gilty/drone-manager/database"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/Yuki-gilty/drone-manager/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	drones  *DroneService
	catalog *CatalogService
	logbook *LogbookService
	userID  string
	droneID string
}

func setupFixture(t *testing.T) fixture {
	t.Helper()
	repo, userID := setupRepo(t)
	v := validator.New()
	f := fixture{
		drones:  NewDroneService(repo, nil, v, nil),
		catalog: NewCatalogService(repo, v),
		logbook: NewLogbookService(repo, v),
		userID:  userID,
	}
	ctx := context.Background()
	dt, err := f.catalog.CreateType(ctx, userID, models.DroneTypeInput{Name: "5inch"})
	require.NoError(t, err)
	d, err := f.drones.Create(ctx, userID, models.DroneInput{Name: "Racer", Type: dt.ID, StartDate: "2024-01-01"})
	require.NoError(t, err)
	f.droneID = d.ID
	return f
}

func TestLogbookService_PartReferences(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	_, err := f.logbook.CreatePart(ctx, f.userID, models.PartInput{DroneID: "other", Name: "Motor", StartDate: "2024-01-01"})
	assert.ErrorIs(t, err, remote.ErrValidation)

	missing := "ghost"
	_, err = f.logbook.CreatePart(ctx, f.userID, models.PartInput{DroneID: f.droneID, Name: "Motor", StartDate: "2024-01-01", ManufacturerID: &missing})
	assert.ErrorIs(t, err, remote.ErrValidation)

	blank := " "
	created, err := f.logbook.CreatePart(ctx, f.userID, models.PartInput{
		DroneID: f.droneID, Name: "Motor", StartDate: "2024-01-01", ManufacturerID: &blank,
		ReplacementHistory: []models.ReplacementEntry{{Date: "2024-02-01", Description: "bell"}},
	})
	require.NoError(t, err)

	part, err := f.logbook.GetPart(ctx, f.userID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, part.ManufacturerID)
	require.Len(t, part.ReplacementHistory, 1)
	assert.NotEmpty(t, part.ReplacementHistory[0].ID)
}

func TestLogbookService_DeletePartRemovesRepairs(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	part, err := f.logbook.CreatePart(ctx, f.userID, models.PartInput{DroneID: f.droneID, Name: "Motor", StartDate: "2024-01-01"})
	require.NoError(t, err)
	_, err = f.logbook.CreateRepair(ctx, f.userID, models.RepairInput{DroneID: f.droneID, PartID: &part.ID, Date: "2024-03-01", Description: "bearing"})
	require.NoError(t, err)
	_, err = f.logbook.CreateRepair(ctx, f.userID, models.RepairInput{DroneID: f.droneID, Date: "2024-03-02", Description: "arm"})
	require.NoError(t, err)

	require.NoError(t, f.logbook.DeletePart(ctx, f.userID, part.ID))

	repairs, err := f.logbook.ListRepairs(ctx, f.userID, database.RepairFilter{DroneID: f.droneID})
	require.NoError(t, err)
	require.Len(t, repairs, 1)
	assert.Equal(t, "arm", repairs[0].Description)

	assert.ErrorIs(t, f.logbook.DeletePart(ctx, f.userID, part.ID), remote.ErrNotFound)
}

func TestLogbookService_PracticeDays(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	empty := ""
	created, err := f.logbook.CreatePracticeDay(ctx, f.userID, models.PracticeDayInput{Date: "2024-06-01", Note: &empty})
	require.NoError(t, err)

	pd, err := f.logbook.GetPracticeDay(ctx, f.userID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, pd.Note, "an empty note is stored as null")

	_, err = f.logbook.CreatePracticeDay(ctx, f.userID, models.PracticeDayInput{Date: "2024-06-01"})
	assert.ErrorIs(t, err, remote.ErrAlreadyExists)

	other, err := f.logbook.CreatePracticeDay(ctx, f.userID, models.PracticeDayInput{Date: "2024-06-02"})
	require.NoError(t, err)
	err = f.logbook.UpdatePracticeDay(ctx, f.userID, other.ID, models.PracticeDayPatch{Date: models.Set("2024-06-01")})
	assert.ErrorIs(t, err, remote.ErrAlreadyExists)
}

func TestCatalogService_DeleteGuards(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	types, err := f.catalog.ListTypes(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.ErrorIs(t, f.catalog.DeleteType(ctx, f.userID, types[0].ID), remote.ErrReferenced)

	maker, err := f.catalog.CreateManufacturer(ctx, f.userID, models.ManufacturerInput{Name: "iFlight"})
	require.NoError(t, err)
	_, err = f.catalog.CreateManufacturer(ctx, f.userID, models.ManufacturerInput{Name: "iFlight"})
	assert.ErrorIs(t, err, remote.ErrAlreadyExists)

	part, err := f.logbook.CreatePart(ctx, f.userID, models.PartInput{DroneID: f.droneID, Name: "Frame", StartDate: "2024-01-01", ManufacturerID: &maker.ID})
	require.NoError(t, err)
	assert.ErrorIs(t, f.catalog.DeleteManufacturer(ctx, f.userID, maker.ID), remote.ErrReferenced)

	require.NoError(t, f.logbook.DeletePart(ctx, f.userID, part.ID))
	require.NoError(t, f.catalog.DeleteManufacturer(ctx, f.userID, maker.ID))

	require.NoError(t, f.drones.Delete(ctx, f.userID, f.droneID))
	require.NoError(t, f.catalog.DeleteType(ctx, f.userID, types[0].ID))
}
