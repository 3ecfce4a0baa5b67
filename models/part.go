package models

import (
	"strings"
	"time"

	"github.com/Yuki-gilty/drone-manager/validator"
)

// ReplacementEntry is one recorded replacement of a part.
type ReplacementEntry struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Note        string `json:"note,omitempty"`
}

type Part struct {
	ID                 string             `json:"id"`
	DroneID            string             `json:"droneId"`
	Name               string             `json:"name"`
	StartDate          string             `json:"startDate"`
	ManufacturerID     *string            `json:"manufacturerId"`
	ManufacturerName   string             `json:"manufacturerName,omitempty"`
	ReplacementHistory []ReplacementEntry `json:"replacementHistory"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

type PartInput struct {
	DroneID            string             `json:"droneId" validate:"required"`
	Name               string             `json:"name" validate:"required,max=100"`
	StartDate          string             `json:"startDate" validate:"required,dateformat"`
	ManufacturerID     *string            `json:"manufacturerId"`
	ReplacementHistory []ReplacementEntry `json:"replacementHistory"`
}

func (in *PartInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.ManufacturerID = blankToNil(in.ManufacturerID)
	if in.ReplacementHistory == nil {
		in.ReplacementHistory = make([]ReplacementEntry, 0)
	}
}

type PartPatch struct {
	Name               Field[string]             `json:"name"`
	StartDate          Field[string]             `json:"startDate"`
	ManufacturerID     Field[string]             `json:"manufacturerId"`
	ReplacementHistory Field[[]ReplacementEntry] `json:"replacementHistory"`
}

func (p PartPatch) Empty() bool {
	return !p.Name.Set && !p.StartDate.Set && !p.ManufacturerID.Set && !p.ReplacementHistory.Set
}

func (p PartPatch) Validate() error {
	var c validator.Check
	if p.Name.Set {
		c.Required("name", p.Name.Value)
	}
	if p.StartDate.Set {
		c.Date("startDate", p.StartDate.Value)
	}
	return c.Err()
}

func (p PartPatch) Columns() map[string]any {
	cols := make(map[string]any)
	put(cols, "name", trimmed(p.Name))
	put(cols, "start_date", p.StartDate)
	if p.ManufacturerID.Present() && strings.TrimSpace(p.ManufacturerID.Value) == "" {
		cols["manufacturer_id"] = nil
	} else {
		put(cols, "manufacturer_id", p.ManufacturerID)
	}
	if p.ReplacementHistory.Present() {
		cols["replacement_history"] = p.ReplacementHistory.Value
	} else if p.ReplacementHistory.Null {
		cols["replacement_history"] = []ReplacementEntry{}
	}
	return cols
}

type ReplacementInput struct {
	Date        string `json:"date" validate:"required,dateformat"`
	Description string `json:"description" validate:"required"`
	Note        string `json:"note"`
}

type ReplacementPatch struct {
	Date        Field[string] `json:"date"`
	Description Field[string] `json:"description"`
	Note        Field[string] `json:"note"`
}

func (p ReplacementPatch) Validate() error {
	var c validator.Check
	if p.Date.Set {
		c.Date("date", p.Date.Value)
	}
	if p.Description.Set {
		c.Required("description", p.Description.Value)
	}
	return c.Err()
}

// Apply returns e with the present fields of p applied.
func (p ReplacementPatch) Apply(e ReplacementEntry) ReplacementEntry {
	if p.Date.Present() {
		e.Date = p.Date.Value
	}
	if p.Description.Present() {
		e.Description = strings.TrimSpace(p.Description.Value)
	}
	if p.Note.Set {
		e.Note = p.Note.Value
	}
	return e
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
