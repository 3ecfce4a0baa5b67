package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Yuki-gilty/drone-manager/validator"
)

// DefaultPart is a part template of a drone type.
type DefaultPart struct {
	ID             string  `json:"id,omitempty"`
	Name           string  `json:"name"`
	ManufacturerID *string `json:"manufacturerId"`
}

// UnmarshalJSON accepts the legacy bare-string form as well as the object form.
func (d *DefaultPart) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*d = DefaultPart{Name: name}
		return nil
	}

	type plain DefaultPart
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.ManufacturerID = blankToNil(p.ManufacturerID)
	*d = DefaultPart(p)
	return nil
}

type DroneType struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	DefaultParts []DefaultPart `json:"defaultParts"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type DroneTypeInput struct {
	Name         string        `json:"name" validate:"required,max=100"`
	DefaultParts []DefaultPart `json:"defaultParts"`
}

func (in *DroneTypeInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.DefaultParts == nil {
		in.DefaultParts = make([]DefaultPart, 0)
	}
}

type DroneTypePatch struct {
	Name         Field[string]        `json:"name"`
	DefaultParts Field[[]DefaultPart] `json:"defaultParts"`
}

func (p DroneTypePatch) Empty() bool {
	return !p.Name.Set && !p.DefaultParts.Set
}

func (p DroneTypePatch) Validate() error {
	var c validator.Check
	if p.Name.Set {
		c.Required("name", p.Name.Value)
	}
	if p.DefaultParts.Present() {
		for _, dp := range p.DefaultParts.Value {
			if strings.TrimSpace(dp.Name) == "" {
				c.Fail("defaultParts", "required", "defaultParts entries need a name")
				break
			}
		}
	}
	return c.Err()
}

func (p DroneTypePatch) Columns() map[string]any {
	cols := make(map[string]any)
	put(cols, "name", trimmed(p.Name))
	if p.DefaultParts.Present() {
		cols["default_parts"] = p.DefaultParts.Value
	} else if p.DefaultParts.Null {
		cols["default_parts"] = []DefaultPart{}
	}
	return cols
}

type DefaultPartInput struct {
	Name           string  `json:"name" validate:"required,max=100"`
	ManufacturerID *string `json:"manufacturerId"`
}

type Manufacturer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ManufacturerInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

type ManufacturerPatch struct {
	Name Field[string] `json:"name"`
}

func (p ManufacturerPatch) Empty() bool { return !p.Name.Set }

func (p ManufacturerPatch) Validate() error {
	var c validator.Check
	if p.Name.Set {
		c.Required("name", p.Name.Value)
	}
	return c.Err()
}

func (p ManufacturerPatch) Columns() map[string]any {
	cols := make(map[string]any)
	put(cols, "name", trimmed(p.Name))
	return cols
}
