// Package inventory holds the entity repositories: one per collection, all
// with the same shape, all scoped to the authenticated user.
package inventory

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/Yuki-gilty/drone-manager/validator"
	"github.com/google/uuid"
)

// Store groups the repositories over one backend.
type Store struct {
	Drones        *Drones
	Parts         *Parts
	Repairs       *Repairs
	DroneTypes    *DroneTypes
	Manufacturers *Manufacturers
	PracticeDays  *PracticeDays
}

// New wires every repository to r. A nil logger logs to slog.Default().
func New(r remote.Remote, identity remote.Identity, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	b := &base{
		remote:    r,
		identity:  identity,
		validator: validator.New(),
		logger:    logger,
		now:       time.Now,
	}
	types := &DroneTypes{base: b}
	return &Store{
		Drones:        &Drones{base: b, types: types},
		Parts:         &Parts{base: b},
		Repairs:       &Repairs{base: b},
		DroneTypes:    types,
		Manufacturers: &Manufacturers{base: b},
		PracticeDays:  &PracticeDays{base: b},
	}
}

type ListStatus int

const (
	Loaded ListStatus = iota
	Empty
	Failed
)

func (s ListStatus) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Empty:
		return "empty"
	default:
		return "failed"
	}
}

// ListResult is the outcome of a list call. Items is never nil; when the
// fetch failed it is empty and Err says why.
type ListResult[T any] struct {
	Items []T
	Err   error
}

func (r ListResult[T]) Status() ListStatus {
	switch {
	case r.Err != nil:
		return Failed
	case len(r.Items) == 0:
		return Empty
	default:
		return Loaded
	}
}

func failedList[T any](err error) ListResult[T] {
	return ListResult[T]{Items: make([]T, 0), Err: err}
}

var errAuthRequired = &remote.Error{Kind: remote.ErrAuthRequired, Message: "authentication required, please log in again"}

type base struct {
	remote    remote.Remote
	identity  remote.Identity
	validator *validator.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// userID fails closed when no user is signed in.
func (b *base) userID(ctx context.Context) (string, error) {
	if b.identity == nil {
		return "", errAuthRequired
	}
	id, ok := b.identity.UserID(ctx)
	if !ok || id == "" {
		return "", errAuthRequired
	}
	return id, nil
}

func (b *base) validate(v any) error {
	if err := b.validator.Validate(v); err != nil {
		return &remote.Error{Kind: remote.ErrValidation, Message: err.Error()}
	}
	return nil
}

func (b *base) checkPatch(err error) error {
	if err != nil {
		return &remote.Error{Kind: remote.ErrValidation, Message: err.Error()}
	}
	return nil
}

// newID returns an id for a new row, or "" when the backend assigns one.
func (b *base) newID() string {
	if b.remote.Features().AssignsIDs {
		return ""
	}
	return uuid.NewString()
}

func (b *base) logFailure(op string, err error, attrs ...any) {
	b.logger.Error(op+" failed", append(attrs, "kind", remote.KindOf(err).Error(), "error", err)...)
}

func scope(userID string, filters ...remote.Filter) []remote.Filter {
	return append([]remote.Filter{remote.Eq("user_id", userID)}, filters...)
}

// modeler is implemented by the column-tagged row types.
type modeler[T any] interface {
	model() T
}

func listAs[R modeler[T], T any](ctx context.Context, b *base, op string, q remote.Query) ListResult[T] {
	uid, err := b.userID(ctx)
	if err != nil {
		b.logFailure(op, err)
		return failedList[T](err)
	}
	q.Filters = scope(uid, q.Filters...)

	rows, err := b.remote.List(ctx, q)
	if err != nil {
		b.logFailure(op, err)
		return failedList[T](err)
	}

	var decoded []R
	if err := remote.DecodeRows(rows, &decoded); err != nil {
		err = &remote.Error{Kind: remote.ErrServer, Message: "invalid response from server"}
		b.logFailure(op, err)
		return failedList[T](err)
	}

	items := make([]T, 0, len(decoded))
	for _, r := range decoded {
		items = append(items, r.model())
	}
	return ListResult[T]{Items: items}
}

// getAs returns (nil, nil) when the record does not exist or belongs to
// another user.
func getAs[R modeler[T], T any](ctx context.Context, b *base, op string, res remote.Resource, id string, embeds ...remote.Embed) (*T, error) {
	uid, err := b.userID(ctx)
	if err != nil {
		b.logFailure(op, err, "id", id)
		return nil, err
	}

	row, err := b.remote.Get(ctx, res, id, embeds...)
	if errors.Is(err, remote.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		b.logFailure(op, err, "id", id)
		return nil, err
	}
	if owner, ok := row["user_id"].(string); ok && owner != uid {
		return nil, nil
	}

	var decoded R
	if err := remote.DecodeRow(row, &decoded); err != nil {
		err = &remote.Error{Kind: remote.ErrServer, Message: "invalid response from server"}
		b.logFailure(op, err, "id", id)
		return nil, err
	}
	m := decoded.model()
	return &m, nil
}

// insert creates one row and returns its id.
func (b *base) insert(ctx context.Context, op string, res remote.Resource, row remote.Row) (string, error) {
	if id := b.newID(); id != "" {
		row["id"] = id
	}
	created, err := b.remote.Insert(ctx, res, row)
	if err != nil {
		b.logFailure(op, err)
		return "", err
	}
	if len(created) == 0 || created[0].ID() == "" {
		err := &remote.Error{Kind: remote.ErrServer, Message: "server did not return the new id"}
		b.logFailure(op, err)
		return "", err
	}
	return created[0].ID(), nil
}

// update sends the present columns and always stamps updated_at.
func (b *base) update(ctx context.Context, op string, res remote.Resource, id string, cols map[string]any) error {
	if _, err := b.userID(ctx); err != nil {
		b.logFailure(op, err, "id", id)
		return err
	}
	if len(cols) == 0 {
		return &remote.Error{Kind: remote.ErrValidation, Message: "nothing to update"}
	}
	row := remote.Row(cols)
	row["updated_at"] = b.now().UTC().Format(time.RFC3339Nano)

	if err := b.remote.Update(ctx, res, id, row); err != nil {
		b.logFailure(op, err, "id", id)
		return err
	}
	return nil
}

func (b *base) remove(ctx context.Context, op string, res remote.Resource, id string) error {
	if err := b.remote.Delete(ctx, res, id); err != nil {
		b.logFailure(op, err, "id", id)
		return err
	}
	return nil
}

// ensureUnreferenced blocks a delete while child rows point at id.
func (b *base) ensureUnreferenced(ctx context.Context, op, uid string, child remote.Resource, column, id, message string) error {
	used, err := b.remote.Exists(ctx, child, scope(uid, remote.Eq(column, id))...)
	if err != nil {
		b.logFailure(op, err, "id", id)
		return err
	}
	if used {
		return &remote.Error{Kind: remote.ErrReferenced, Message: message}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullablePtr(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
