package walks

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// userSortColumns is the allowlist of user sort keys exposed to callers.
var userSortColumns = map[string]string{
	"id":         "usr.id",
	"username":   "usr.username",
	"email":      "usr.email",
	"role":       "usr.user_role",
	"created_at": "usr.created_at",
}

const userDefaultSort = "usr.id"

// Users is the persistence surface for accounts. Tx variants run against
// the caller's transaction so guards can count and mutate atomically.
type Users interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	List(ctx context.Context, opts ListOptions) (Page[*User], error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	UpdateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	DeleteTx(ctx context.Context, tx bun.IDB, id int64) error

	ExistsByEmail(ctx context.Context, email string, exceptID int64) (bool, error)
	ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string, exceptID int64) (bool, error)
	CountActiveByRole(ctx context.Context, role UserRole) (int, error)
	CountActiveByRoleTx(ctx context.Context, tx bun.IDB, role UserRole) (int, error)
}

type usersRepo struct {
	db *bun.DB
}

var (
	_ Users           = (*usersRepo)(nil)
	_ CredentialStore = (*usersRepo)(nil)
	_ AdminCounter    = (*usersRepo)(nil)
)

// NewUsersRepository builds the bun backed Users implementation.
func NewUsersRepository(db *bun.DB) Users {
	return &usersRepo{db: db}
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.GetByIDTx(ctx, r.db, id)
}

func (r *usersRepo) GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*User, error) {
	user := new(User)
	err := tx.NewSelect().
		Model(user).
		ModelTableExpr(`"users" AS "usr"`).
		Where(`"usr"."id" = ?`, id).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, NotFound("user", id)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}
	return user, nil
}

// GetByIdentifier resolves a user by email, case insensitive. This is the
// lookup both login and the request gate go through.
func (r *usersRepo) GetByIdentifier(ctx context.Context, identifier string) (*User, error) {
	identifier = strings.TrimSpace(strings.ToLower(identifier))
	if identifier == "" {
		return nil, NotFound("user", identifier)
	}

	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		ModelTableExpr(`"users" AS "usr"`).
		Where(`LOWER("usr"."email") = ?`, identifier).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, NotFound("user", identifier)
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user by identifier")
	}
	return user, nil
}

func (r *usersRepo) List(ctx context.Context, opts ListOptions) (Page[*User], error) {
	opts = opts.Normalize(userSortColumns, userDefaultSort)

	var records []*User
	total, err := r.db.NewSelect().
		Model(&records).
		ModelTableExpr(`"users" AS "usr"`).
		Order(opts.OrderExpr()).
		Limit(opts.Size).
		Offset(opts.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return Page[*User]{}, errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}

	return NewPage(records, total, opts), nil
}

func (r *usersRepo) Register(ctx context.Context, user *User) (*User, error) {
	return r.RegisterTx(ctx, r.db, user)
}

// RegisterTx inserts a new account. Email uniqueness is checked up front
// to surface a conflict rather than a driver error; the unique index on
// the column remains the backstop.
func (r *usersRepo) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	taken, err := r.ExistsByEmailTx(ctx, tx, user.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	now := time.Now()
	user.CreatedAt = &now
	user.UpdatedAt = &now

	if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to register user")
	}

	return user, nil
}

func (r *usersRepo) Update(ctx context.Context, user *User) (*User, error) {
	return r.UpdateTx(ctx, r.db, user)
}

func (r *usersRepo) UpdateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	now := time.Now()
	user.UpdatedAt = &now

	res, err := tx.NewUpdate().
		Model(user).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update user")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, NotFound("user", user.ID)
	}

	return user, nil
}

func (r *usersRepo) DeleteTx(ctx context.Context, tx bun.IDB, id int64) error {
	res, err := tx.NewDelete().
		Model((*User)(nil)).
		Where(`"id" = ?`, id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete user")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return NotFound("user", id)
	}

	return nil
}

func (r *usersRepo) ExistsByEmail(ctx context.Context, email string, exceptID int64) (bool, error) {
	return r.ExistsByEmailTx(ctx, r.db, email, exceptID)
}

func (r *usersRepo) ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string, exceptID int64) (bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	q := tx.NewSelect().
		Model((*User)(nil)).
		ModelTableExpr(`"users" AS "usr"`).
		Where(`LOWER("usr"."email") = ?`, email)

	if exceptID > 0 {
		q = q.Where(`"usr"."id" != ?`, exceptID)
	}

	exists, err := q.Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check email availability")
	}
	return exists, nil
}

func (r *usersRepo) CountActiveByRole(ctx context.Context, role UserRole) (int, error) {
	return r.CountActiveByRoleTx(ctx, r.db, role)
}

func (r *usersRepo) CountActiveByRoleTx(ctx context.Context, tx bun.IDB, role UserRole) (int, error) {
	count, err := tx.NewSelect().
		Model((*User)(nil)).
		ModelTableExpr(`"users" AS "usr"`).
		Where(`"usr"."user_role" = ?`, role).
		Where(`"usr"."is_active" = ?`, true).
		Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to count active users by role")
	}
	return count, nil
}
