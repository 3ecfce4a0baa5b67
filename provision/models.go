package provision

import (
	"time"

	"gorm.io/datatypes"
)

// Table models for the hosted backend. They exist only to describe the
// schema; rows are read and written through the REST API.

// Profile maps a username to the auth user. id is auth.users.id.
type Profile struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"not null;uniqueIndex:profiles_username_key"`
	Email     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

type DroneType struct {
	ID           string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       string         `gorm:"type:uuid;not null;uniqueIndex:drone_types_user_name_key,priority:1"`
	Name         string         `gorm:"not null;uniqueIndex:drone_types_user_name_key,priority:2"`
	DefaultParts datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt    time.Time      `gorm:"not null;default:now()"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()"`
}

type Manufacturer struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:manufacturers_user_name_key,priority:1"`
	Name      string    `gorm:"not null;uniqueIndex:manufacturers_user_name_key,priority:2"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

type Drone struct {
	ID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    string     `gorm:"type:uuid;not null;index"`
	Name      string     `gorm:"not null"`
	TypeID    string     `gorm:"type:uuid;not null;index"`
	Type      *DroneType `gorm:"foreignKey:TypeID;constraint:OnDelete:RESTRICT"`
	StartDate string     `gorm:"type:date;not null"`
	Photo     *string    `gorm:"type:text"`
	Status    string     `gorm:"not null;default:'ready';check:drones_status_check,status IN ('ready','unstable','faulty')"`
	CreatedAt time.Time  `gorm:"not null;default:now()"`
	UpdatedAt time.Time  `gorm:"not null;default:now()"`
}

type Part struct {
	ID                 string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID             string         `gorm:"type:uuid;not null;index"`
	DroneID            string         `gorm:"type:uuid;not null;index"`
	Drone              *Drone         `gorm:"foreignKey:DroneID;constraint:OnDelete:CASCADE"`
	Name               string         `gorm:"not null"`
	StartDate          string         `gorm:"type:date;not null"`
	ManufacturerID     *string        `gorm:"type:uuid;index"`
	Manufacturer       *Manufacturer  `gorm:"foreignKey:ManufacturerID;constraint:OnDelete:RESTRICT"`
	ReplacementHistory datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt          time.Time      `gorm:"not null;default:now()"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()"`
}

type Repair struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      string    `gorm:"type:uuid;not null;index"`
	DroneID     string    `gorm:"type:uuid;not null;index"`
	Drone       *Drone    `gorm:"foreignKey:DroneID;constraint:OnDelete:CASCADE"`
	PartID      *string   `gorm:"type:uuid;index"`
	Part        *Part     `gorm:"foreignKey:PartID;constraint:OnDelete:CASCADE"`
	Date        string    `gorm:"type:date;not null"`
	Description string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;default:now()"`
	UpdatedAt   time.Time `gorm:"not null;default:now()"`
}

type PracticeDay struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:practice_days_user_date_key,priority:1"`
	Date      string    `gorm:"type:date;not null;uniqueIndex:practice_days_user_date_key,priority:2"`
	Note      *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// Models lists the tables in dependency order.
func Models() []any {
	return []any{
		&Profile{},
		&DroneType{},
		&Manufacturer{},
		&Drone{},
		&Part{},
		&Repair{},
		&PracticeDay{},
	}
}

// ownedTables carry a user_id column and the owner-only policy.
var ownedTables = []string{"drone_types", "manufacturers", "drones", "parts", "repairs", "practice_days"}
