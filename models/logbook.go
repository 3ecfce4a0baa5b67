package models

import (
	"strings"
	"time"

	"github.com/Yuki-gilty/drone-manager/validator"
)

// Repair is a repair of a whole drone, or of one of its parts when PartID is set.
type Repair struct {
	ID          string    `json:"id"`
	DroneID     string    `json:"droneId"`
	PartID      *string   `json:"partId"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type RepairInput struct {
	DroneID     string  `json:"droneId" validate:"required"`
	PartID      *string `json:"partId"`
	Date        string  `json:"date" validate:"required,dateformat"`
	Description string  `json:"description" validate:"required"`
}

func (in *RepairInput) Normalize() {
	in.Description = strings.TrimSpace(in.Description)
	in.PartID = blankToNil(in.PartID)
}

type RepairPatch struct {
	Date        Field[string] `json:"date"`
	Description Field[string] `json:"description"`
	PartID      Field[string] `json:"partId"`
}

func (p RepairPatch) Empty() bool {
	return !p.Date.Set && !p.Description.Set && !p.PartID.Set
}

func (p RepairPatch) Validate() error {
	var c validator.Check
	if p.Date.Set {
		c.Date("date", p.Date.Value)
	}
	if p.Description.Set {
		c.Required("description", p.Description.Value)
	}
	return c.Err()
}

func (p RepairPatch) Columns() map[string]any {
	cols := make(map[string]any)
	put(cols, "date", p.Date)
	put(cols, "description", trimmed(p.Description))
	if p.PartID.Present() && strings.TrimSpace(p.PartID.Value) == "" {
		cols["part_id"] = nil
	} else {
		put(cols, "part_id", p.PartID)
	}
	return cols
}

type PracticeDay struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PracticeDayInput struct {
	Date string  `json:"date" validate:"required,dateformat"`
	Note *string `json:"note"`
}

func (in *PracticeDayInput) Normalize() {
	in.Note = blankToNil(in.Note)
}

type PracticeDayPatch struct {
	Date Field[string] `json:"date"`
	Note Field[string] `json:"note"`
}

func (p PracticeDayPatch) Empty() bool {
	return !p.Date.Set && !p.Note.Set
}

func (p PracticeDayPatch) Validate() error {
	var c validator.Check
	if p.Date.Set {
		c.Date("date", p.Date.Value)
	}
	return c.Err()
}

func (p PracticeDayPatch) Columns() map[string]any {
	cols := make(map[string]any)
	put(cols, "date", p.Date)
	if p.Note.Present() && strings.TrimSpace(p.Note.Value) == "" {
		cols["note"] = nil
	} else {
		put(cols, "note", p.Note)
	}
	return cols
}
