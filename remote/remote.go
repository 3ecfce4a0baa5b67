// Package remote defines the contract between the entity repositories and a
// backing store, together with the error model every backend maps into.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
)

// Resource names a remote collection by its table name.
type Resource string

const (
	Drones        Resource = "drones"
	Parts         Resource = "parts"
	Repairs       Resource = "repairs"
	DroneTypes    Resource = "drone_types"
	Manufacturers Resource = "manufacturers"
	PracticeDays  Resource = "practice_days"
	Profiles      Resource = "profiles"
)

// Row is one record keyed by snake_case column names.
type Row map[string]any

// ID returns the row's id column as a string.
func (r Row) ID() string {
	switch v := r["id"].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

type Op string

const (
	OpEq Op = "eq"
	OpIn Op = "in"
	// OpIs matches NULL.
	OpIs Op = "is"
)

type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Eq is an equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// In matches any of values.
func In(column string, values []string) Filter {
	return Filter{Column: column, Op: OpIn, Value: values}
}

// IsNull matches rows where column is NULL.
func IsNull(column string) Filter {
	return Filter{Column: column, Op: OpIs}
}

// Embed asks the backend to join a related resource into each row.
// A to-one embed copies Column of the related row into As; a to-many embed
// collects Column of every related row into a list under As.
type Embed struct {
	Resource Resource
	Column   string
	As       string
	Many     bool
}

type Query struct {
	Resource Resource
	Filters  []Filter
	OrderBy  string
	Desc     bool
	Embeds   []Embed
}

// Features describes what a backend does on its own.
type Features struct {
	// AssignsIDs means inserted rows get their ids from the backend.
	AssignsIDs bool
	// ExpandsDefaultParts means creating a drone also creates the parts of
	// its drone type, atomically.
	ExpandsDefaultParts bool
	// CascadesDeletes means deleting a drone also deletes its parts and repairs,
	// atomically.
	CascadesDeletes bool
}

// Remote is a backing store for the entity repositories.
type Remote interface {
	List(ctx context.Context, q Query) ([]Row, error)
	// Get returns an error of kind ErrNotFound when no row matches. Embeds
	// are joined the same way List joins them.
	Get(ctx context.Context, res Resource, id string, embeds ...Embed) (Row, error)
	// Insert returns the created rows, each carrying at least its id.
	Insert(ctx context.Context, res Resource, rows ...Row) ([]Row, error)
	Update(ctx context.Context, res Resource, id string, patch Row) error
	Delete(ctx context.Context, res Resource, id string) error
	DeleteWhere(ctx context.Context, res Resource, filters ...Filter) error
	Exists(ctx context.Context, res Resource, filters ...Filter) (bool, error)
	Features() Features
}

// Identity resolves the currently authenticated user.
type Identity interface {
	UserID(ctx context.Context) (string, bool)
}

// IdentityFunc adapts a function to Identity.
type IdentityFunc func(ctx context.Context) (string, bool)

func (f IdentityFunc) UserID(ctx context.Context) (string, bool) { return f(ctx) }

// StaticIdentity always resolves to the same user.
func StaticIdentity(userID string) Identity {
	return IdentityFunc(func(context.Context) (string, bool) {
		return userID, userID != ""
	})
}

// DecodeRows converts rows into a slice of column-tagged structs.
func DecodeRows(rows []Row, out any) error {
	if rows == nil {
		rows = []Row{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode rows: %w", err)
	}
	return nil
}

// DecodeRow converts one row into a column-tagged struct.
func DecodeRow(row Row, out any) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	return nil
}

// EncodeRow converts a column-tagged struct into a row.
func EncodeRow(v any) (Row, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return row, nil
}
