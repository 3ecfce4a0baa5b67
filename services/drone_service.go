package services

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Yuki-gilty/drone-manager/database"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/pkg/photo"
	"github.com/Yuki-gilty/drone-manager/storage"
	"github.com/Yuki-gilty/drone-manager/validator"
	"github.com/google/uuid"
)

const photoURLExpiry = 15 * time.Minute

// DroneService handles drones, their default parts and their photos.
type DroneService struct {
	repo      *database.Repository
	photos    storage.PhotoStore
	validator *validator.Validator
	logger    *slog.Logger
}

// NewDroneService creates a drone service. photos may be nil, in which case
// photos stay inline in the drone row.
func NewDroneService(repo *database.Repository, photos storage.PhotoStore, v *validator.Validator, logger *slog.Logger) *DroneService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DroneService{repo: repo, photos: photos, validator: v, logger: logger}
}

func (ds *DroneService) List(ctx context.Context, userID, typeID string) ([]models.Drone, error) {
	return ds.repo.ListDrones(ctx, userID, typeID)
}

func (ds *DroneService) Get(ctx context.Context, userID, id string) (*models.Drone, error) {
	drone, err := ds.repo.GetDrone(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if drone == nil {
		return nil, notFound("drone")
	}
	return drone, nil
}

// Create inserts the drone and one part per default part of its type in a
// single transaction.
func (ds *DroneService) Create(ctx context.Context, userID string, in models.DroneInput) (*models.Created, error) {
	in.Normalize()
	if err := ds.validator.Validate(&in); err != nil {
		return nil, invalid(err)
	}

	droneType, err := ds.repo.GetDroneType(ctx, userID, in.Type)
	if err != nil {
		return nil, err
	}
	if droneType == nil {
		return nil, invalidReference("drone type")
	}

	drone := &models.Drone{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Type:      in.Type,
		StartDate: in.StartDate,
		Photo:     in.Photo,
		Status:    in.Status,
	}

	parts := make([]models.Part, 0, len(droneType.DefaultParts))
	for _, dp := range droneType.DefaultParts {
		makerID, err := ds.liveManufacturer(ctx, userID, dp.ManufacturerID)
		if err != nil {
			return nil, err
		}
		parts = append(parts, models.Part{
			ID:                 uuid.New().String(),
			DroneID:            drone.ID,
			Name:               dp.Name,
			StartDate:          in.StartDate,
			ManufacturerID:     makerID,
			ReplacementHistory: []models.ReplacementEntry{},
		})
	}

	uploaded, err := ds.storePhoto(ctx, userID, drone.ID, &drone.Photo)
	if err != nil {
		return nil, err
	}

	if err := ds.repo.CreateDrone(ctx, userID, drone, parts); err != nil {
		if uploaded {
			ds.deletePhoto(userID, drone.ID)
		}
		return nil, fromDB(err, "drone")
	}
	return &models.Created{ID: drone.ID, Message: "Drone added"}, nil
}

func (ds *DroneService) Update(ctx context.Context, userID, id string, patch models.DronePatch) error {
	if err := checkPatch(patch.Empty(), patch.Validate()); err != nil {
		return err
	}
	if patch.Type.Present() {
		droneType, err := ds.repo.GetDroneType(ctx, userID, patch.Type.Value)
		if err != nil {
			return err
		}
		if droneType == nil {
			return invalidReference("drone type")
		}
	}

	current, err := ds.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if patch.Photo.Present() {
		if _, err := ds.storePhoto(ctx, userID, id, &patch.Photo.Value); err != nil {
			return err
		}
	}

	if err := ds.repo.UpdateDrone(ctx, userID, id, patch.Columns()); err != nil {
		return fromDB(err, "drone")
	}
	if patch.Photo.Set && current.Photo == storage.PhotoURL(id) && patch.Photo.Value != current.Photo {
		ds.deletePhoto(userID, id)
	}
	return nil
}

// SetStatus changes only the status.
func (ds *DroneService) SetStatus(ctx context.Context, userID, id string, status models.DroneStatus) error {
	return ds.Update(ctx, userID, id, models.DronePatch{Status: models.Set(status)})
}

// Delete removes the drone. Its parts and repairs go with it.
func (ds *DroneService) Delete(ctx context.Context, userID, id string) error {
	drone, err := ds.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := ds.repo.DeleteDrone(ctx, userID, id); err != nil {
		return fromDB(err, "drone")
	}
	if drone.Photo == storage.PhotoURL(id) {
		ds.deletePhoto(userID, id)
	}
	return nil
}

// PhotoURL returns a short-lived URL of the drone's stored photo.
func (ds *DroneService) PhotoURL(ctx context.Context, userID, id string) (string, error) {
	drone, err := ds.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if ds.photos == nil || drone.Photo != storage.PhotoURL(id) {
		return "", ErrPhotoNotFound
	}
	return ds.photos.PresignGet(ctx, storage.PhotoKey(userID, id), photoURLExpiry)
}

// storePhoto moves a data URI photo into the object store and rewrites *value
// to the photo's API path. It reports whether an object was written.
func (ds *DroneService) storePhoto(ctx context.Context, userID, droneID string, value *string) (bool, error) {
	if ds.photos == nil || !photo.IsDataURI(*value) {
		return false, nil
	}
	_, data, err := photo.ParseDataURI(*value)
	if err != nil {
		return false, invalid(err)
	}
	compressed, err := photo.Compress(bytes.NewReader(data))
	if err != nil {
		return false, invalid(err)
	}
	contentType, data, err := photo.ParseDataURI(compressed)
	if err != nil {
		return false, err
	}

	key := storage.PhotoKey(userID, droneID)
	if err := ds.photos.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return false, err
	}
	*value = storage.PhotoURL(droneID)
	return true, nil
}

// deletePhoto removes a stored photo. Failures only leave an orphan object.
func (ds *DroneService) deletePhoto(userID, droneID string) {
	if ds.photos == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ds.photos.Delete(ctx, storage.PhotoKey(userID, droneID)); err != nil {
		ds.logger.Warn("delete drone photo failed", "user_id", userID, "drone_id", droneID, "error", err)
	}
}

// liveManufacturer drops a default part's manufacturer that no longer exists.
func (ds *DroneService) liveManufacturer(ctx context.Context, userID string, id *string) (*string, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil, nil
	}
	m, err := ds.repo.GetManufacturer(ctx, userID, *id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	return id, nil
}
