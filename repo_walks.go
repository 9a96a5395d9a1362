package walks

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// walkSortColumns is the allowlist of walk sort keys exposed to callers.
var walkSortColumns = map[string]string{
	"id":        "wlk.id",
	"title":     "wlk.title",
	"date_time": "wlk.date_time",
	"location":  "wlk.location",
	"duration":  "wlk.duration",
}

const walkDefaultSort = "wlk.date_time"

// WalkFilter narrows walk listings. The zero value matches everything.
type WalkFilter struct {
	// ActiveOnly keeps the listing to walks still open for joining.
	ActiveOnly bool
	// OwnerID limits results to a single organizer when > 0.
	OwnerID int64
}

// Walks is the persistence surface for walk listings.
type Walks interface {
	GetByID(ctx context.Context, id int64) (*Walk, error)
	List(ctx context.Context, filter WalkFilter, opts ListOptions) (Page[*Walk], error)
	Create(ctx context.Context, walk *Walk) (*Walk, error)
	Update(ctx context.Context, walk *Walk) (*Walk, error)
	Delete(ctx context.Context, id int64) error
}

type walksRepo struct {
	db *bun.DB
}

var (
	_ Walks      = (*walksRepo)(nil)
	_ WalkFinder = (*walksRepo)(nil)
)

// NewWalksRepository builds the bun backed Walks implementation.
func NewWalksRepository(db *bun.DB) Walks {
	return &walksRepo{db: db}
}

func (r *walksRepo) GetByID(ctx context.Context, id int64) (*Walk, error) {
	walk := new(Walk)
	err := r.db.NewSelect().
		Model(walk).
		ModelTableExpr(`"walks" AS "wlk"`).
		Relation("User").
		Where(`"wlk"."id" = ?`, id).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, NotFound("walk", id)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load walk")
	}
	return walk, nil
}

func (r *walksRepo) List(ctx context.Context, filter WalkFilter, opts ListOptions) (Page[*Walk], error) {
	opts = opts.Normalize(walkSortColumns, walkDefaultSort)

	var records []*Walk
	q := r.db.NewSelect().
		Model(&records).
		ModelTableExpr(`"walks" AS "wlk"`).
		Relation("User")

	if filter.ActiveOnly {
		q = q.Where(`"wlk"."is_active" = ?`, true)
	}

	if filter.OwnerID > 0 {
		q = q.Where(`"wlk"."user_id" = ?`, filter.OwnerID)
	}

	total, err := q.
		Order(opts.OrderExpr()).
		Limit(opts.Size).
		Offset(opts.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return Page[*Walk]{}, errors.Wrap(err, errors.CategoryInternal, "failed to list walks")
	}

	return NewPage(records, total, opts), nil
}

func (r *walksRepo) Create(ctx context.Context, walk *Walk) (*Walk, error) {
	now := time.Now()
	walk.CreatedAt = &now
	walk.UpdatedAt = &now

	if _, err := r.db.NewInsert().Model(walk).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create walk")
	}
	return walk, nil
}

func (r *walksRepo) Update(ctx context.Context, walk *Walk) (*Walk, error) {
	now := time.Now()
	walk.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(walk).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update walk")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, NotFound("walk", walk.ID)
	}

	return walk, nil
}

func (r *walksRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*Walk)(nil)).
		Where(`"id" = ?`, id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete walk")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return NotFound("walk", id)
	}

	return nil
}
