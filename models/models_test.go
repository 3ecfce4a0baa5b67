package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantSet  bool
		wantNull bool
		want     string
	}{
		{name: "absent key", body: `{}`},
		{name: "explicit null", body: `{"note": null}`, wantSet: true, wantNull: true},
		{name: "value", body: `{"note": "windy"}`, wantSet: true, want: "windy"},
		{name: "empty string", body: `{"note": ""}`, wantSet: true, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var patch PracticeDayPatch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &patch))
			assert.Equal(t, tt.wantSet, patch.Note.Set)
			assert.Equal(t, tt.wantNull, patch.Note.Null)
			assert.Equal(t, tt.want, patch.Note.Value)
		})
	}
}

func TestDronePatch_Columns(t *testing.T) {
	patch := DronePatch{
		Name:   Set("  Racer  "),
		Photo:  Clear[string](),
		Status: Set(DroneFaulty),
	}

	cols := patch.Columns()

	assert.Equal(t, "Racer", cols["name"])
	assert.Contains(t, cols, "photo")
	assert.Nil(t, cols["photo"])
	assert.Equal(t, DroneFaulty, cols["status"])
	assert.NotContains(t, cols, "type_id")
	assert.NotContains(t, cols, "start_date")
	assert.False(t, patch.Empty())
	assert.True(t, DronePatch{}.Empty())
}

func TestDronePatch_Validate(t *testing.T) {
	assert.NoError(t, DronePatch{Status: Set(DroneUnstable)}.Validate())
	assert.Error(t, DronePatch{Status: Set(DroneStatus("crashed"))}.Validate())
	assert.Error(t, DronePatch{Name: Set(" ")}.Validate())
	assert.Error(t, DronePatch{StartDate: Set("2024/01/01")}.Validate())
}

func TestPracticeDayPatch_BlankNoteClears(t *testing.T) {
	cols := PracticeDayPatch{Note: Set("  ")}.Columns()
	assert.Contains(t, cols, "note")
	assert.Nil(t, cols["note"])
}

func TestDefaultPart_UnmarshalJSON(t *testing.T) {
	var parts []DefaultPart
	body := `["Motor", {"name": "Frame", "manufacturerId": "m1"}, {"name": "Prop", "manufacturerId": ""}]`
	require.NoError(t, json.Unmarshal([]byte(body), &parts))
	require.Len(t, parts, 3)

	assert.Equal(t, "Motor", parts[0].Name)
	assert.Nil(t, parts[0].ManufacturerID)

	assert.Equal(t, "Frame", parts[1].Name)
	require.NotNil(t, parts[1].ManufacturerID)
	assert.Equal(t, "m1", *parts[1].ManufacturerID)

	assert.Nil(t, parts[2].ManufacturerID)
}

func TestEnsureReplacementIDs(t *testing.T) {
	entries := []ReplacementEntry{
		{Date: "2024-01-01", Description: "motor"},
		{ID: "keep", Date: "2024-02-01", Description: "prop"},
		{Date: "2024-01-01", Description: "motor"},
	}
	again := append([]ReplacementEntry(nil), entries...)

	EnsureReplacementIDs("part-1", entries)
	EnsureReplacementIDs("part-1", again)

	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, "keep", entries[1].ID)
	assert.NotEqual(t, entries[0].ID, entries[2].ID, "identical entries at different positions get distinct ids")
	assert.Equal(t, entries[0].ID, again[0].ID, "ids are stable across reads")
}

func TestReplacementPatch_Apply(t *testing.T) {
	e := ReplacementEntry{ID: "e1", Date: "2024-01-01", Description: "motor", Note: "old"}

	got := ReplacementPatch{Description: Set(" new motor "), Note: Clear[string]()}.Apply(e)

	assert.Equal(t, "e1", got.ID)
	assert.Equal(t, "2024-01-01", got.Date)
	assert.Equal(t, "new motor", got.Description)
	assert.Equal(t, "", got.Note)
}
