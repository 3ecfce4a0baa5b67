package handlers_test

import (
	"context"
	"net"
	"testing"

	"github.com/Yuki-gilty/drone-manager/inventory"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/Yuki-gilty/drone-manager/remote/api"
	"github.com/Yuki-gilty/drone-manager/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInventoryOverAPI drives the repositories through the HTTP client
// against a listening server.
func TestInventoryOverAPI(t *testing.T) {
	fiberApp, _ := setupTestApp(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go fiberApp.Listener(ln)
	t.Cleanup(func() { fiberApp.Shutdown() })

	ctx := context.Background()
	client, err := api.NewClient("http://" + ln.Addr().String())
	require.NoError(t, err)

	store := inventory.New(client, client, nil)
	assert.Equal(t, inventory.Failed, store.Drones.List(ctx, inventory.DroneFilter{}).Status(), "no session yet")

	_, err = client.Register(ctx, models.RegisterRequest{Username: "pilot", Password: "password123"})
	require.NoError(t, err)

	maker, err := store.Manufacturers.Add(ctx, models.ManufacturerInput{Name: "T-Motor"})
	require.NoError(t, err)
	dt, err := store.DroneTypes.Add(ctx, models.DroneTypeInput{
		Name:         "Racing",
		DefaultParts: []models.DefaultPart{{Name: "Motor", ManufacturerID: &maker.ID}, {Name: "Frame"}},
	})
	require.NoError(t, err)

	drone, err := store.Drones.Add(ctx, models.DroneInput{Name: "Racer", Type: dt.ID, StartDate: "2024-04-01"})
	require.NoError(t, err)

	parts := store.Parts.List(ctx, inventory.PartFilter{DroneID: drone.ID})
	require.NoError(t, parts.Err)
	require.Len(t, parts.Items, 2, "the server expands default parts")

	var motor models.Part
	for _, p := range parts.Items {
		if p.Name == "Motor" {
			motor = p
		}
	}
	assert.Equal(t, "T-Motor", motor.ManufacturerName)

	entryID, err := store.Parts.AddReplacement(ctx, motor.ID, models.ReplacementInput{Date: "2024-05-01", Description: "new bell"})
	require.NoError(t, err)
	got, err := store.Parts.Get(ctx, motor.ID)
	require.NoError(t, err)
	require.Len(t, got.ReplacementHistory, 1)
	assert.Equal(t, entryID, got.ReplacementHistory[0].ID)

	_, err = store.Repairs.Add(ctx, models.RepairInput{DroneID: drone.ID, PartID: &motor.ID, Date: "2024-05-01", Description: "bearing"})
	require.NoError(t, err)
	_, err = store.PracticeDays.Add(ctx, models.PracticeDayInput{Date: "2024-05-01"})
	require.NoError(t, err)
	_, err = store.PracticeDays.Add(ctx, models.PracticeDayInput{Date: "2024-05-01"})
	assert.ErrorIs(t, err, remote.ErrAlreadyExists)

	events, err := views.New(store).EventsForDate(ctx, "2024-05-01")
	require.NoError(t, err)
	assert.Len(t, events, 3)

	err = store.Manufacturers.Remove(ctx, maker.ID)
	assert.ErrorIs(t, err, remote.ErrReferenced)

	require.NoError(t, store.Drones.SetStatus(ctx, drone.ID, models.DroneFaulty))
	d, err := store.Drones.Get(ctx, drone.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DroneFaulty, d.Status)
	assert.Equal(t, "Racing", d.TypeName)

	require.NoError(t, store.Drones.Remove(ctx, drone.ID))
	assert.Equal(t, inventory.Empty, store.Repairs.List(ctx, inventory.RepairFilter{}).Status())

	missing, err := store.Drones.Get(ctx, drone.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, client.Logout(ctx))
	_, err = store.Drones.Add(ctx, models.DroneInput{Name: "Late", Type: dt.ID, StartDate: "2024-04-01"})
	assert.ErrorIs(t, err, remote.ErrAuthRequired)
}
