package views

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Yuki-gilty/drone-manager/inventory"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/Yuki-gilty/drone-manager/remote/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

type fixture struct {
	views   *Views
	mem     *memory.Store
	droneID string
	motorID string
}

func setup(t *testing.T) fixture {
	t.Helper()
	mem := memory.New()
	mem.Seed(remote.Manufacturers, remote.Row{"id": "m-1", "user_id": testUser, "name": "T-Motor"})
	mem.Seed(remote.DroneTypes, remote.Row{
		"id":            "t-1",
		"user_id":       testUser,
		"name":          "5inch",
		"default_parts": []any{"Frame", map[string]any{"name": "Motor", "manufacturerId": "m-1"}},
	})
	mem.Seed(remote.Drones, remote.Row{"id": "d-1", "user_id": testUser, "name": "Racer", "type_id": "t-1", "start_date": "2024-01-01", "status": "ready"})
	mem.Seed(remote.Parts,
		remote.Row{"id": "p-1", "user_id": testUser, "drone_id": "d-1", "name": "Motor", "start_date": "2024-01-01", "manufacturer_id": "m-1",
			"replacement_history": []any{map[string]any{"id": "r-1", "date": "2024-02-10", "description": "new bell"}}},
		remote.Row{"id": "p-orphan", "user_id": testUser, "drone_id": "gone", "name": "Antenna", "start_date": "2024-01-01",
			"replacement_history": []any{map[string]any{"date": "2024-02-10", "description": "snapped"}}},
	)
	mem.Seed(remote.Repairs,
		remote.Row{"id": "rep-1", "user_id": testUser, "drone_id": "d-1", "part_id": "p-1", "date": "2024-02-10", "description": "resolder"},
		remote.Row{"id": "rep-2", "user_id": testUser, "drone_id": "d-1", "date": "2024-02-10", "description": "arm"},
		remote.Row{"id": "rep-3", "user_id": testUser, "drone_id": "d-1", "date": "2024-02-11", "description": "prop"},
	)
	mem.Seed(remote.PracticeDays, remote.Row{"id": "pd-1", "user_id": testUser, "date": "2024-02-10", "note": nil})

	store := inventory.New(mem, remote.StaticIdentity(testUser), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return fixture{views: New(store), mem: mem, droneID: "d-1", motorID: "p-1"}
}

func TestViews_DroneDetail(t *testing.T) {
	f := setup(t)

	detail, err := f.views.DroneDetail(context.Background(), f.droneID)
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Equal(t, "Racer", detail.Drone.Name)
	assert.Equal(t, "5inch", detail.TypeName)
	require.Len(t, detail.Parts, 1)
	assert.Equal(t, "T-Motor", detail.Parts[0].ManufacturerName)

	require.Len(t, detail.Repairs, 3)
	names := map[string]string{}
	for _, r := range detail.Repairs {
		names[r.ID] = r.PartName
	}
	assert.Equal(t, "Motor", names["rep-1"])
	assert.Empty(t, names["rep-2"])
}

func TestViews_DroneDetailMissing(t *testing.T) {
	f := setup(t)
	detail, err := f.views.DroneDetail(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, detail)
}

func TestViews_DroneDetailPartialFailure(t *testing.T) {
	f := setup(t)
	f.mem.FailOn("list", remote.Repairs, remote.NewError(remote.ErrServer, "down"))

	detail, err := f.views.DroneDetail(context.Background(), f.droneID)
	require.NotNil(t, detail)
	assert.True(t, errors.Is(err, remote.ErrServer))
	assert.Len(t, detail.Parts, 1)
	assert.Empty(t, detail.Repairs)
}

func TestViews_EventsForDate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	events, err := f.views.EventsForDate(ctx, "2024-02-10")
	require.NoError(t, err)

	// parts are listed newest first, so the orphan's replacement leads

	var got []string
	for _, e := range events {
		got = append(got, string(e.Type)+": "+e.Label)
	}
	assert.Equal(t, []string{
		"practice: Practice",
		"repair: Racer - Motor repair",
		"repair: Racer repair",
		"replacement: Unknown - Antenna replacement",
		"replacement: Racer - Motor replacement",
	}, got)

	events, err = f.views.EventsForDate(ctx, "2030-01-01")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestViews_PartTemplates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	templates, err := f.views.PartTemplates(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "Frame", templates[0].Name)
	assert.Nil(t, templates[0].ManufacturerID)
	require.NotNil(t, templates[1].ManufacturerID)
	assert.Equal(t, "m-1", *templates[1].ManufacturerID)

	templates, err = f.views.PartTemplates(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestLayoutMonth(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		weekStart time.Weekday
		lead      int
		weeks     int
	}{
		// 2024-02-01 is a Thursday
		{"sunday start", 2024, time.February, time.Sunday, 4, 5},
		{"monday start", 2024, time.February, time.Monday, 3, 5},
		// 2026-02-01 is a Sunday and February 2026 has exactly four weeks
		{"no padding", 2026, time.February, time.Sunday, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := layoutMonth(tt.year, tt.month, tt.weekStart, nil)
			require.Len(t, view.Weeks, tt.weeks)

			for i := 0; i < tt.lead; i++ {
				assert.False(t, view.Weeks[0][i].InMonth)
				assert.Empty(t, view.Weeks[0][i].Date)
			}
			first := view.Weeks[0][tt.lead]
			assert.True(t, first.InMonth)
			assert.Equal(t, time.Date(tt.year, tt.month, 1, 0, 0, 0, 0, time.UTC).Format(models.DateLayout), first.Date)
		})
	}
}

func TestViews_Month(t *testing.T) {
	f := setup(t)

	view, err := f.views.Month(context.Background(), 2024, time.February, time.Sunday)
	require.NoError(t, err)

	var tenth, eleventh Day
	for _, w := range view.Weeks {
		for _, d := range w {
			switch d.Date {
			case "2024-02-10":
				tenth = d
			case "2024-02-11":
				eleventh = d
			}
		}
	}
	assert.Len(t, tenth.Events, 5)
	require.Len(t, eleventh.Events, 1)
	assert.Equal(t, "Racer repair", eleventh.Events[0].Label)
}
