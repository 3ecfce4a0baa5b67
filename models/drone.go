package models

import (
	"strings"
	"time"

	"github.com/Yuki-gilty/drone-manager/validator"
)

type DroneStatus string

const (
	DroneReady    DroneStatus = "ready"
	DroneUnstable DroneStatus = "unstable"
	DroneFaulty   DroneStatus = "faulty"
)

func (s DroneStatus) Valid() bool {
	switch s {
	case DroneReady, DroneUnstable, DroneFaulty:
		return true
	}
	return false
}

func (s DroneStatus) Label() string {
	switch s {
	case DroneUnstable:
		return "Unstable"
	case DroneFaulty:
		return "Faulty"
	default:
		return "Ready"
	}
}

type Drone struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	TypeName  string      `json:"typeName,omitempty"`
	StartDate string      `json:"startDate"`
	Photo     string      `json:"photo,omitempty"`
	Status    DroneStatus `json:"status"`
	Parts     []string    `json:"parts"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type DroneInput struct {
	Name      string      `json:"name" validate:"required,max=100"`
	Type      string      `json:"type" validate:"required"`
	StartDate string      `json:"startDate" validate:"required,dateformat"`
	Photo     string      `json:"photo"`
	Status    DroneStatus `json:"status" validate:"omitempty,dronestatus"`
}

// Normalize trims text fields and applies the default status.
func (in *DroneInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = DroneReady
	}
}

type DronePatch struct {
	Name      Field[string]      `json:"name"`
	Type      Field[string]      `json:"type"`
	StartDate Field[string]      `json:"startDate"`
	Photo     Field[string]      `json:"photo"`
	Status    Field[DroneStatus] `json:"status"`
}

func (p DronePatch) Empty() bool {
	return !p.Name.Set && !p.Type.Set && !p.StartDate.Set && !p.Photo.Set && !p.Status.Set
}

func (p DronePatch) Validate() error {
	var c validator.Check
	if p.Name.Set {
		c.Required("name", p.Name.Value)
	}
	if p.Type.Set {
		c.Required("type", p.Type.Value)
	}
	if p.StartDate.Set {
		c.Date("startDate", p.StartDate.Value)
	}
	if p.Status.Set && !p.Status.Value.Valid() {
		c.Fail("status", "dronestatus", "status must be one of: ready, unstable, faulty")
	}
	return c.Err()
}

// Columns maps the present fields to storage column names.
func (p DronePatch) Columns() map[string]any {
	cols := make(map[string]any)
	put(cols, "name", trimmed(p.Name))
	put(cols, "type_id", p.Type)
	put(cols, "start_date", p.StartDate)
	put(cols, "photo", p.Photo)
	put(cols, "status", p.Status)
	return cols
}

func trimmed(f Field[string]) Field[string] {
	if f.Present() {
		f.Value = strings.TrimSpace(f.Value)
	}
	return f
}
