package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func createUser(t *testing.T, repo *Repository, username string) string {
	t.Helper()
	user := &models.User{ID: uuid.NewString(), Username: username, PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user.ID
}

func createType(t *testing.T, repo *Repository, userID, name string, defaults ...models.DefaultPart) string {
	t.Helper()
	dt := &models.DroneType{ID: uuid.NewString(), Name: name, DefaultParts: defaults}
	require.NoError(t, repo.CreateDroneType(context.Background(), userID, dt))
	return dt.ID
}

func createDrone(t *testing.T, repo *Repository, userID, typeID string, parts ...string) *models.Drone {
	t.Helper()
	drone := &models.Drone{ID: uuid.NewString(), Name: "Racer", Type: typeID, StartDate: "2024-01-01", Status: models.DroneReady}
	var rows []models.Part
	for _, name := range parts {
		rows = append(rows, models.Part{ID: uuid.NewString(), DroneID: drone.ID, Name: name, StartDate: drone.StartDate})
	}
	require.NoError(t, repo.CreateDrone(context.Background(), userID, drone, rows))
	return drone
}

func TestRepository_Users(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	id := createUser(t, repo, "pilot")

	user, err := repo.GetUserByUsername(ctx, "pilot")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "hash", user.PasswordHash)

	err = repo.CreateUser(ctx, &models.User{ID: uuid.NewString(), Username: "pilot", PasswordHash: "x"})
	assert.True(t, errors.Is(err, ErrDuplicate))

	missing, err := repo.GetUserByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_DroneJoins(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	userID := createUser(t, repo, "pilot")
	typeID := createType(t, repo, userID, "5inch")

	drone := createDrone(t, repo, userID, typeID, "Motor", "Frame")
	assert.Len(t, drone.Parts, 2)

	drones, err := repo.ListDrones(ctx, userID, "")
	require.NoError(t, err)
	require.Len(t, drones, 1)
	assert.Equal(t, "5inch", drones[0].TypeName)
	assert.ElementsMatch(t, drone.Parts, drones[0].Parts)

	drones, err = repo.ListDrones(ctx, userID, "other-type")
	require.NoError(t, err)
	assert.Empty(t, drones)

	otherUser := createUser(t, repo, "other")
	got, err := repo.GetDrone(ctx, otherUser, drone.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "drones are scoped to their owner")
}

func TestRepository_Update(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	userID := createUser(t, repo, "pilot")
	typeID := createType(t, repo, userID, "5inch")
	drone := createDrone(t, repo, userID, typeID)

	err := repo.UpdateDrone(ctx, userID, drone.ID, models.DronePatch{
		Status: models.Set(models.DroneFaulty),
		Photo:  models.Clear[string](),
	}.Columns())
	require.NoError(t, err)

	got, err := repo.GetDrone(ctx, userID, drone.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DroneFaulty, got.Status)
	assert.Equal(t, "Racer", got.Name)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))

	err = repo.UpdateDrone(ctx, userID, "missing", map[string]any{"name": "x"})
	assert.True(t, errors.Is(err, ErrNotFound))

	err = repo.UpdateDrone(ctx, userID, drone.ID, map[string]any{"user_id": "someone"})
	assert.Error(t, err)

	err = repo.UpdateDrone(ctx, userID, drone.ID, map[string]any{"type_id": "missing"})
	assert.True(t, errors.Is(err, ErrForeignKey))
}

func TestRepository_DeleteDroneCascades(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	userID := createUser(t, repo, "pilot")
	typeID := createType(t, repo, userID, "5inch")
	drone := createDrone(t, repo, userID, typeID, "Motor")

	partID := drone.Parts[0]
	for _, rep := range []models.Repair{
		{ID: uuid.NewString(), DroneID: drone.ID, Date: "2024-02-01", Description: "arm"},
		{ID: uuid.NewString(), DroneID: drone.ID, PartID: &partID, Date: "2024-02-02", Description: "motor"},
	} {
		require.NoError(t, repo.CreateRepair(ctx, userID, &rep))
	}

	err := repo.DeleteDroneType(ctx, userID, typeID)
	assert.True(t, errors.Is(err, ErrForeignKey), "a type in use cannot be deleted")

	require.NoError(t, repo.DeleteDrone(ctx, userID, drone.ID))

	parts, err := repo.ListParts(ctx, userID, PartFilter{})
	require.NoError(t, err)
	assert.Empty(t, parts)
	repairs, err := repo.ListRepairs(ctx, userID, RepairFilter{})
	require.NoError(t, err)
	assert.Empty(t, repairs)

	assert.True(t, errors.Is(repo.DeleteDrone(ctx, userID, drone.ID), ErrNotFound))
}

func TestRepository_PartsAndManufacturers(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	userID := createUser(t, repo, "pilot")
	typeID := createType(t, repo, userID, "5inch")
	drone := createDrone(t, repo, userID, typeID)

	maker := &models.Manufacturer{ID: uuid.NewString(), Name: "T-Motor"}
	require.NoError(t, repo.CreateManufacturer(ctx, userID, maker))

	part := &models.Part{ID: uuid.NewString(), DroneID: drone.ID, Name: "Motor", StartDate: "2024-01-01", ManufacturerID: &maker.ID,
		ReplacementHistory: []models.ReplacementEntry{{Date: "2024-03-01", Description: "bell"}}}
	require.NoError(t, repo.CreatePart(ctx, userID, part))

	got, err := repo.GetPart(ctx, userID, part.ID)
	require.NoError(t, err)
	assert.Equal(t, "T-Motor", got.ManufacturerName)
	require.Len(t, got.ReplacementHistory, 1)
	assert.NotEmpty(t, got.ReplacementHistory[0].ID)

	inUse, err := repo.ManufacturerInUse(ctx, userID, maker.ID)
	require.NoError(t, err)
	assert.True(t, inUse)
	err = repo.DeleteManufacturer(ctx, userID, maker.ID)
	assert.True(t, errors.Is(err, ErrForeignKey), "got %v", err)

	require.NoError(t, repo.UpdatePart(ctx, userID, part.ID, models.PartPatch{ManufacturerID: models.Clear[string]()}.Columns()))
	inUse, err = repo.ManufacturerInUse(ctx, userID, maker.ID)
	require.NoError(t, err)
	assert.False(t, inUse)

	dup := &models.Manufacturer{ID: uuid.NewString(), Name: "T-Motor"}
	assert.True(t, errors.Is(repo.CreateManufacturer(ctx, userID, dup), ErrDuplicate))
}

func TestRepository_PracticeDays(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	userID := createUser(t, repo, "pilot")

	note := "loops"
	require.NoError(t, repo.CreatePracticeDay(ctx, userID, &models.PracticeDay{ID: uuid.NewString(), Date: "2024-05-01", Note: &note}))
	require.NoError(t, repo.CreatePracticeDay(ctx, userID, &models.PracticeDay{ID: uuid.NewString(), Date: "2024-05-03"}))

	err := repo.CreatePracticeDay(ctx, userID, &models.PracticeDay{ID: uuid.NewString(), Date: "2024-05-01"})
	assert.True(t, errors.Is(err, ErrDuplicate))

	days, err := repo.ListPracticeDays(ctx, userID)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-05-03", days[0].Date)
	assert.Nil(t, days[0].Note)
	require.NotNil(t, days[1].Note)
	assert.Equal(t, "loops", *days[1].Note)
}

func TestRepository_Import(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	userID := createUser(t, repo, "pilot")
	createType(t, repo, userID, "5inch")
	require.NoError(t, repo.CreatePracticeDay(ctx, userID, &models.PracticeDay{ID: uuid.NewString(), Date: "2024-01-10"}))

	oldMaker := "m-old"
	oldPart := "p-old"
	snap := models.Snapshot{
		DroneTypes:    []models.DroneType{{ID: "t-old", Name: "5inch"}, {ID: "t-wing", Name: "FPV Wing"}},
		Manufacturers: []models.Manufacturer{{ID: oldMaker, Name: "T-Motor"}},
		Drones: []models.Drone{
			{ID: "d-old", Name: "Racer", TypeName: "5inch", StartDate: "2023-01-01", Status: "faulty"},
			{ID: "d-cine", Name: "Cine", Type: "t-cine-missing", TypeName: "Cinewhoop", StartDate: "2023-02-01"},
		},
		Parts: []models.Part{
			{ID: oldPart, DroneID: "d-old", Name: "Motor", StartDate: "2023-01-01", ManufacturerID: &oldMaker},
			{ID: "p-orphan", DroneID: "d-gone", Name: "Lost", StartDate: "2023-01-01"},
		},
		Repairs: []models.Repair{
			{ID: "r-1", DroneID: "d-old", PartID: &oldPart, Date: "2023-03-01", Description: "motor"},
		},
		PracticeDays: []models.PracticeDay{{Date: "2024-01-10"}, {Date: "2024-01-11"}},
	}

	result, err := repo.Import(ctx, userID, snap)
	require.NoError(t, err)
	assert.Equal(t, models.ImportResult{DroneTypes: 2, Manufacturers: 1, Drones: 2, Parts: 1, Repairs: 1, PracticeDays: 1}, *result)

	types, err := repo.ListDroneTypes(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, types, 3)

	parts, err := repo.ListParts(ctx, userID, PartFilter{})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "T-Motor", parts[0].ManufacturerName)

	repairs, err := repo.ListRepairs(ctx, userID, RepairFilter{})
	require.NoError(t, err)
	require.Len(t, repairs, 1)
	require.NotNil(t, repairs[0].PartID)
	assert.Equal(t, parts[0].ID, *repairs[0].PartID)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, ErrDuplicate},
		{"primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, ErrDuplicate},
		{"foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, ErrForeignKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(mapError(tt.err), tt.want))
		})
	}

	busy := sqlite3.Error{Code: sqlite3.ErrBusy}
	assert.Equal(t, error(busy), mapError(busy))
	assert.NoError(t, mapError(nil))
}

// A RESTRICT violation is reported when the statement finishes, with the
// primary constraint code only.
func TestMapError_RestrictOnDelete(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	userID := createUser(t, repo, "pilot")
	typeID := createType(t, repo, userID, "5inch")
	createDrone(t, repo, userID, typeID)

	err := repo.DeleteDroneType(ctx, userID, typeID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForeignKey), "got %v", err)
	assert.False(t, errors.Is(err, ErrDuplicate))
}
