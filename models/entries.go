package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var entryNamespace = uuid.MustParse("6f1c2b0e-3d4a-5e8f-9a7b-1c2d3e4f5a6b")

// legacyEntryID derives a stable id for an entry stored without one.
func legacyEntryID(parentID string, index int, content string) string {
	return uuid.NewSHA1(entryNamespace, []byte(fmt.Sprintf("%s/%d/%s", parentID, index, content))).String()
}

// EnsureReplacementIDs fills in ids of legacy replacement entries in place.
func EnsureReplacementIDs(partID string, entries []ReplacementEntry) {
	for i := range entries {
		if entries[i].ID == "" {
			e := entries[i]
			entries[i].ID = legacyEntryID(partID, i, e.Date+"|"+e.Description+"|"+e.Note)
		}
	}
}

// EnsureDefaultPartIDs fills in ids of legacy default parts in place.
func EnsureDefaultPartIDs(typeID string, parts []DefaultPart) {
	for i := range parts {
		if parts[i].ID == "" {
			parts[i].ID = legacyEntryID(typeID, i, parts[i].Name)
		}
	}
}

// Snapshot is an export of a user's data from the local-storage era.
type Snapshot struct {
	DroneTypes    []DroneType    `json:"drone_types"`
	Manufacturers []Manufacturer `json:"manufacturers"`
	Drones        []Drone        `json:"drones"`
	Parts         []Part         `json:"parts"`
	Repairs       []Repair       `json:"repairs"`
	PracticeDays  []PracticeDay  `json:"practice_days"`
}

type ImportResult struct {
	DroneTypes    int `json:"droneTypes"`
	Manufacturers int `json:"manufacturers"`
	Drones        int `json:"drones"`
	Parts         int `json:"parts"`
	Repairs       int `json:"repairs"`
	PracticeDays  int `json:"practiceDays"`
}

// Today returns the current local date in YYYY-MM-DD form.
func Today() string {
	return time.Now().Format(DateLayout)
}

const DateLayout = "2006-01-02"
