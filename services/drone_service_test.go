package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Yuki-gilty/drone-manager/database"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/Yuki-gilty/drone-manager/storage"
	"github.com/Yuki-gilty/drone-manager/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePhotoStore keeps objects in memory.
type fakePhotoStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

var _ storage.PhotoStore = (*fakePhotoStore)(nil)

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakePhotoStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakePhotoStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://objects.test/" + key + "?signed", nil
}

func (f *fakePhotoStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakePhotoStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func setupRepo(t *testing.T) (*database.Repository, string) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	user := &models.User{ID: uuid.New().String(), Username: "pilot", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return repo, user.ID
}

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDroneService_CreateExpandsDefaultParts(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()
	v := validator.New()
	catalog := NewCatalogService(repo, v)
	drones := NewDroneService(repo, nil, v, nil)

	maker, err := catalog.CreateManufacturer(ctx, userID, models.ManufacturerInput{Name: " T-Motor "})
	require.NoError(t, err)
	dt, err := catalog.CreateType(ctx, userID, models.DroneTypeInput{
		Name:         "5inch",
		DefaultParts: []models.DefaultPart{{Name: "Motor", ManufacturerID: &maker.ID}, {Name: "Frame"}},
	})
	require.NoError(t, err)

	created, err := drones.Create(ctx, userID, models.DroneInput{Name: " Racer ", Type: dt.ID, StartDate: "2024-04-01"})
	require.NoError(t, err)
	assert.Equal(t, "Drone added", created.Message)

	drone, err := drones.Get(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Racer", drone.Name)
	assert.Equal(t, models.DroneReady, drone.Status)
	assert.Equal(t, "5inch", drone.TypeName)
	assert.Len(t, drone.Parts, 2)

	parts, err := repo.ListParts(ctx, userID, database.PartFilter{DroneID: drone.ID})
	require.NoError(t, err)
	for _, p := range parts {
		assert.Equal(t, "2024-04-01", p.StartDate)
		if p.Name == "Motor" {
			assert.Equal(t, "T-Motor", p.ManufacturerName)
		}
	}
}

func TestDroneService_CreateErrors(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()
	drones := NewDroneService(repo, nil, validator.New(), nil)

	tests := []struct {
		name string
		in   models.DroneInput
		kind error
	}{
		{"missing name", models.DroneInput{Type: "t", StartDate: "2024-01-01"}, remote.ErrValidation},
		{"bad date", models.DroneInput{Name: "x", Type: "t", StartDate: "2024-13-01"}, remote.ErrValidation},
		{"bad status", models.DroneInput{Name: "x", Type: "t", StartDate: "2024-01-01", Status: "broken"}, remote.ErrValidation},
		{"unknown type", models.DroneInput{Name: "x", Type: "t", StartDate: "2024-01-01"}, remote.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := drones.Create(ctx, userID, tt.in)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestDroneService_PhotoLifecycle(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()
	v := validator.New()
	photos := newFakePhotoStore()
	drones := NewDroneService(repo, photos, v, nil)
	dt, err := NewCatalogService(repo, v).CreateType(ctx, userID, models.DroneTypeInput{Name: "Whoop"})
	require.NoError(t, err)

	created, err := drones.Create(ctx, userID, models.DroneInput{
		Name: "Tiny", Type: dt.ID, StartDate: "2024-01-01", Photo: pngDataURI(t, 1600, 900),
	})
	require.NoError(t, err)

	key := storage.PhotoKey(userID, created.ID)
	require.True(t, photos.has(key))
	assert.Equal(t, "image/jpeg", photos.types[key])

	drone, err := drones.Get(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.PhotoURL(created.ID), drone.Photo)

	url, err := drones.PhotoURL(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Contains(t, url, key)

	require.NoError(t, drones.Update(ctx, userID, created.ID, models.DronePatch{Photo: models.Clear[string]()}))
	assert.False(t, photos.has(key), "clearing the photo removes the object")

	_, err = drones.PhotoURL(ctx, userID, created.ID)
	assert.ErrorIs(t, err, remote.ErrNotFound)

	require.NoError(t, drones.Update(ctx, userID, created.ID, models.DronePatch{Photo: models.Set(pngDataURI(t, 10, 10))}))
	require.True(t, photos.has(key))

	require.NoError(t, drones.Delete(ctx, userID, created.ID))
	assert.False(t, photos.has(key))

	_, err = drones.Get(ctx, userID, created.ID)
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

func TestDroneService_Update(t *testing.T) {
	repo, userID := setupRepo(t)
	ctx := context.Background()
	v := validator.New()
	drones := NewDroneService(repo, nil, v, nil)
	dt, err := NewCatalogService(repo, v).CreateType(ctx, userID, models.DroneTypeInput{Name: "Whoop"})
	require.NoError(t, err)
	created, err := drones.Create(ctx, userID, models.DroneInput{Name: "Tiny", Type: dt.ID, StartDate: "2024-01-01"})
	require.NoError(t, err)

	assert.ErrorIs(t, drones.Update(ctx, userID, created.ID, models.DronePatch{}), remote.ErrValidation)
	assert.ErrorIs(t, drones.Update(ctx, userID, created.ID, models.DronePatch{Type: models.Set("nope")}), remote.ErrValidation)
	assert.ErrorIs(t, drones.Update(ctx, userID, "missing", models.DronePatch{Name: models.Set("x")}), remote.ErrNotFound)

	require.NoError(t, drones.SetStatus(ctx, userID, created.ID, models.DroneUnstable))
	drone, err := drones.Get(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DroneUnstable, drone.Status)
}
