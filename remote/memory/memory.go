// Package memory is an in-process remote.Remote. It keeps every resource in a
// map guarded by one mutex and mimics the constraint behavior of the real
// backends, which makes it the store of choice for tests and demos.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/google/uuid"
)

type Option func(*Store)

// WithFeatures sets the features the store reports and emulates.
func WithFeatures(f remote.Features) Option {
	return func(s *Store) { s.features = f }
}

// WithUnique adds a unique constraint over columns of res.
func WithUnique(res remote.Resource, columns ...string) Option {
	return func(s *Store) { s.unique[res] = append(s.unique[res], columns) }
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	tables   map[remote.Resource][]remote.Row
	unique   map[remote.Resource][][]string
	features remote.Features
	failNext []error
	failOn   map[string]error
	calls    []string
	clock    time.Time
}

// New returns an empty store with the constraints of the production schema.
func New(opts ...Option) *Store {
	s := &Store{
		tables: make(map[remote.Resource][]remote.Row),
		unique: make(map[remote.Resource][][]string),
		failOn: make(map[string]error),
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.unique[remote.DroneTypes] = [][]string{{"user_id", "name"}}
	s.unique[remote.Manufacturers] = [][]string{{"user_id", "name"}}
	s.unique[remote.PracticeDays] = [][]string{{"user_id", "date"}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailNext makes the next call fail with err.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, err)
}

// FailOn makes every call of op ("list", "get", "insert", "update", "delete",
// "delete_where", "exists") on res fail with err until cleared with a nil err.
func (s *Store) FailOn(op string, res remote.Resource, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := op + ":" + string(res)
	if err == nil {
		delete(s.failOn, key)
		return
	}
	s.failOn[key] = err
}

// Calls returns the operations performed so far, as "op:resource".
func (s *Store) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Rows returns a copy of every row of res in insertion order.
func (s *Store) Rows(res remote.Resource) []remote.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]remote.Row, 0, len(s.tables[res]))
	for _, row := range s.tables[res] {
		out = append(out, clone(row))
	}
	return out
}

// Seed inserts rows without constraint checks.
func (s *Store) Seed(res remote.Resource, rows ...remote.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		r := clone(row)
		if r.ID() == "" {
			r["id"] = uuid.NewString()
		}
		s.stamp(r)
		s.tables[res] = append(s.tables[res], r)
	}
}

func (s *Store) Features() remote.Features {
	return s.features
}

func (s *Store) enter(op string, res remote.Resource) error {
	s.calls = append(s.calls, op+":"+string(res))
	if len(s.failNext) > 0 {
		err := s.failNext[0]
		s.failNext = s.failNext[1:]
		return err
	}
	if err, ok := s.failOn[op+":"+string(res)]; ok {
		return err
	}
	return nil
}

func (s *Store) List(ctx context.Context, q remote.Query) ([]remote.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("list", q.Resource); err != nil {
		return nil, err
	}

	out := make([]remote.Row, 0)
	for _, row := range s.tables[q.Resource] {
		if matches(row, q.Filters) {
			r := clone(row)
			s.embed(q.Resource, r, q.Embeds)
			out = append(out, r)
		}
	}
	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := fmt.Sprint(out[i][q.OrderBy]), fmt.Sprint(out[j][q.OrderBy])
			if q.Desc {
				return a > b
			}
			return a < b
		})
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, res remote.Resource, id string, embeds ...remote.Embed) (remote.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("get", res); err != nil {
		return nil, err
	}
	i := s.index(res, id)
	if i < 0 {
		return nil, remote.NewError(remote.ErrNotFound, "%s %s not found", res, id)
	}
	r := clone(s.tables[res][i])
	s.embed(res, r, embeds)
	return r, nil
}

func (s *Store) Insert(ctx context.Context, res remote.Resource, rows ...remote.Row) ([]remote.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("insert", res); err != nil {
		return nil, err
	}

	prepared := make([]remote.Row, 0, len(rows))
	for _, row := range rows {
		r := clone(row)
		if r.ID() == "" {
			if !s.features.AssignsIDs {
				return nil, remote.NewError(remote.ErrValidation, "%s: id is required", res)
			}
			r["id"] = uuid.NewString()
		}
		if s.index(res, r.ID()) >= 0 {
			return nil, remote.NewError(remote.ErrAlreadyExists, "%s %s already exists", res, r.ID())
		}
		if err := s.checkUnique(res, r, "", prepared); err != nil {
			return nil, err
		}
		if err := s.checkReferences(res, r); err != nil {
			return nil, err
		}
		s.stamp(r)
		prepared = append(prepared, r)
	}

	s.tables[res] = append(s.tables[res], prepared...)
	out := make([]remote.Row, 0, len(prepared))
	for _, r := range prepared {
		out = append(out, clone(r))
	}

	if res == remote.Drones && s.features.ExpandsDefaultParts {
		for _, drone := range prepared {
			s.expandDefaultParts(drone)
		}
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, res remote.Resource, id string, patch remote.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("update", res); err != nil {
		return err
	}
	i := s.index(res, id)
	if i < 0 {
		return remote.NewError(remote.ErrNotFound, "%s %s not found", res, id)
	}

	updated := clone(s.tables[res][i])
	for k, v := range clone(patch) {
		if k == "id" {
			continue
		}
		updated[k] = v
	}
	if err := s.checkUnique(res, updated, id, nil); err != nil {
		return err
	}
	if err := s.checkReferences(res, updated); err != nil {
		return err
	}
	s.tables[res][i] = updated
	return nil
}

func (s *Store) Delete(ctx context.Context, res remote.Resource, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("delete", res); err != nil {
		return err
	}
	i := s.index(res, id)
	if i < 0 {
		return remote.NewError(remote.ErrNotFound, "%s %s not found", res, id)
	}
	if err := s.checkRestrict(res, id); err != nil {
		return err
	}
	s.tables[res] = append(s.tables[res][:i], s.tables[res][i+1:]...)

	if res == remote.Drones && s.features.CascadesDeletes {
		s.cascadeDrone(id)
	}
	return nil
}

func (s *Store) DeleteWhere(ctx context.Context, res remote.Resource, filters ...remote.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("delete_where", res); err != nil {
		return err
	}
	s.removeWhere(res, filters)
	return nil
}

func (s *Store) Exists(ctx context.Context, res remote.Resource, filters ...remote.Filter) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("exists", res); err != nil {
		return false, err
	}
	for _, row := range s.tables[res] {
		if matches(row, filters) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) removeWhere(res remote.Resource, filters []remote.Filter) []remote.Row {
	kept := s.tables[res][:0]
	var removed []remote.Row
	for _, row := range s.tables[res] {
		if matches(row, filters) {
			removed = append(removed, row)
			continue
		}
		kept = append(kept, row)
	}
	s.tables[res] = kept
	return removed
}

func (s *Store) cascadeDrone(droneID string) {
	parts := s.removeWhere(remote.Parts, []remote.Filter{remote.Eq("drone_id", droneID)})
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		ids = append(ids, p.ID())
	}
	s.removeWhere(remote.Repairs, []remote.Filter{remote.In("part_id", ids)})
	s.removeWhere(remote.Repairs, []remote.Filter{remote.Eq("drone_id", droneID)})
}

func (s *Store) expandDefaultParts(drone remote.Row) {
	i := s.index(remote.DroneTypes, fmt.Sprint(drone["type_id"]))
	if i < 0 {
		return
	}
	defaults, _ := s.tables[remote.DroneTypes][i]["default_parts"].([]any)
	for _, d := range defaults {
		part := remote.Row{
			"id":                  uuid.NewString(),
			"user_id":             drone["user_id"],
			"drone_id":            drone.ID(),
			"start_date":          drone["start_date"],
			"manufacturer_id":     nil,
			"replacement_history": []any{},
		}
		switch v := d.(type) {
		case string:
			part["name"] = v
		case map[string]any:
			part["name"] = v["name"]
			if m, ok := v["manufacturerId"].(string); ok && m != "" {
				part["manufacturer_id"] = m
			}
		}
		s.stamp(part)
		s.tables[remote.Parts] = append(s.tables[remote.Parts], part)
	}
}

func (s *Store) checkUnique(res remote.Resource, row remote.Row, selfID string, pending []remote.Row) error {
	for _, cols := range s.unique[res] {
		candidates := append(append([]remote.Row(nil), s.tables[res]...), pending...)
		for _, other := range candidates {
			if other.ID() == selfID && selfID != "" {
				continue
			}
			same := true
			for _, c := range cols {
				if fmt.Sprint(other[c]) != fmt.Sprint(row[c]) {
					same = false
					break
				}
			}
			if same {
				return remote.NewError(remote.ErrAlreadyExists, "%s: duplicate %v", res, cols)
			}
		}
	}
	return nil
}

// checkReferences rejects rows pointing at missing parents.
func (s *Store) checkReferences(res remote.Resource, row remote.Row) error {
	for _, fk := range []struct {
		to     remote.Resource
		column string
	}{
		{remote.Drones, "drone_id"},
		{remote.DroneTypes, "type_id"},
		{remote.Manufacturers, "manufacturer_id"},
		{remote.Parts, "part_id"},
	} {
		col, many, ok := remote.Relation(res, fk.to)
		if !ok || many || col != fk.column {
			continue
		}
		v, present := row[col]
		if !present || v == nil || v == "" {
			continue
		}
		if s.index(fk.to, fmt.Sprint(v)) < 0 {
			return remote.NewError(remote.ErrValidation, "%s: %s references a missing row", res, col)
		}
	}
	return nil
}

// checkRestrict blocks deleting a drone type or manufacturer that is in use.
func (s *Store) checkRestrict(res remote.Resource, id string) error {
	var child remote.Resource
	switch res {
	case remote.DroneTypes:
		child = remote.Drones
	case remote.Manufacturers:
		child = remote.Parts
	case remote.Drones:
		if s.features.CascadesDeletes {
			return nil
		}
		for _, c := range []remote.Resource{remote.Parts, remote.Repairs} {
			if s.referenced(c, "drone_id", id) {
				return remote.NewError(remote.ErrReferenced, "drones %s is referenced by %s", id, c)
			}
		}
		return nil
	default:
		return nil
	}
	col, _, _ := remote.Relation(child, res)
	if s.referenced(child, col, id) {
		return remote.NewError(remote.ErrReferenced, "%s %s is referenced by %s", res, id, child)
	}
	return nil
}

func (s *Store) referenced(res remote.Resource, column, id string) bool {
	for _, row := range s.tables[res] {
		if fmt.Sprint(row[column]) == id {
			return true
		}
	}
	return false
}

func (s *Store) embed(res remote.Resource, row remote.Row, embeds []remote.Embed) {
	for _, e := range embeds {
		col, many, ok := remote.Relation(res, e.Resource)
		if !ok {
			continue
		}
		if many {
			values := make([]any, 0)
			for _, child := range s.tables[e.Resource] {
				if fmt.Sprint(child[col]) == row.ID() {
					values = append(values, child[e.Column])
				}
			}
			row[e.As] = values
			continue
		}
		row[e.As] = nil
		if v, ok := row[col]; ok && v != nil {
			if i := s.index(e.Resource, fmt.Sprint(v)); i >= 0 {
				row[e.As] = s.tables[e.Resource][i][e.Column]
			}
		}
	}
}

func (s *Store) index(res remote.Resource, id string) int {
	for i, row := range s.tables[res] {
		if row.ID() == id {
			return i
		}
	}
	return -1
}

// timestampLayout is fixed width so that timestamps sort as strings.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// stamp sets created_at from a clock that advances on every insert so that
// ordering by creation time is deterministic.
func (s *Store) stamp(row remote.Row) {
	s.clock = s.clock.Add(time.Millisecond)
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = s.clock.Format(timestampLayout)
	}
}

func matches(row remote.Row, filters []remote.Filter) bool {
	for _, f := range filters {
		v := row[f.Column]
		switch f.Op {
		case remote.OpIs:
			if v != nil {
				return false
			}
		case remote.OpIn:
			values, _ := f.Value.([]string)
			found := false
			for _, want := range values {
				if v != nil && fmt.Sprint(v) == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if v == nil || fmt.Sprint(v) != fmt.Sprint(f.Value) {
				return false
			}
		}
	}
	return true
}

func clone(row remote.Row) remote.Row {
	data, err := json.Marshal(row)
	if err != nil {
		panic(fmt.Sprintf("memory: row is not JSON encodable: %v", err))
	}
	var out remote.Row
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("memory: decode row: %v", err))
	}
	if out == nil {
		out = remote.Row{}
	}
	return out
}
