package walks_test

import (
	"context"
	"database/sql"
	"io/fs"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	walks "github.com/goliatone/go-walks"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// newUsersTestDB opens an in-memory sqlite database and applies the
// embedded schema, so repository queries run against the same DDL the
// server migrates.
func newUsersTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	schema, err := fs.ReadFile(walks.GetMigrationsFS(), "data/sql/migrations/sqlite/20250601000000_init_schema.up.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	for _, stmt := range strings.Split(string(schema), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply schema %q: %v", stmt, err)
		}
	}

	return db
}

func seedUser(t *testing.T, repo walks.Users, email string, role walks.UserRole, active bool) *walks.User {
	t.Helper()

	user, err := repo.Register(context.Background(), &walks.User{
		Username:     strings.Split(email, "@")[0],
		Email:        email,
		PasswordHash: "$2a$10$not.a.real.hash.but.not.checked.here",
		Role:         role,
		IsActive:     active,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
	return user
}

func TestUsersRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("CountActiveByRole counts only active members of the role", func(t *testing.T) {
		db := newUsersTestDB(t)
		repo := walks.NewUsersRepository(db)

		seedUser(t, repo, "root@example.com", walks.RoleAdmin, true)
		seedUser(t, repo, "retired@example.com", walks.RoleAdmin, false)
		seedUser(t, repo, "walker@example.com", walks.RoleUser, true)

		count, err := repo.CountActiveByRole(ctx, walks.RoleAdmin)
		assert.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = repo.CountActiveByRole(ctx, walks.RoleUser)
		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("GetByIdentifier matches email case insensitively", func(t *testing.T) {
		db := newUsersTestDB(t)
		repo := walks.NewUsersRepository(db)

		seeded := seedUser(t, repo, "walker@example.com", walks.RoleUser, true)

		user, err := repo.GetByIdentifier(ctx, "Walker@Example.COM")
		assert.NoError(t, err)
		assert.Equal(t, seeded.ID, user.ID)
		assert.Equal(t, "walker@example.com", user.Email)

		_, err = repo.GetByIdentifier(ctx, "nobody@example.com")
		assert.True(t, goerrors.IsNotFound(err))
	})

	t.Run("ExistsByEmail honors the exclusion id", func(t *testing.T) {
		db := newUsersTestDB(t)
		repo := walks.NewUsersRepository(db)

		seeded := seedUser(t, repo, "walker@example.com", walks.RoleUser, true)

		taken, err := repo.ExistsByEmail(ctx, "walker@example.com", 0)
		assert.NoError(t, err)
		assert.True(t, taken)

		taken, err = repo.ExistsByEmail(ctx, "Walker@example.com", seeded.ID)
		assert.NoError(t, err)
		assert.False(t, taken, "own address must not count against the owner")

		taken, err = repo.ExistsByEmail(ctx, "free@example.com", 0)
		assert.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("Register rejects a duplicate address", func(t *testing.T) {
		db := newUsersTestDB(t)
		repo := walks.NewUsersRepository(db)

		seedUser(t, repo, "walker@example.com", walks.RoleUser, true)

		_, err := repo.Register(ctx, &walks.User{
			Username:     "impostor",
			Email:        "Walker@example.com",
			PasswordHash: "$2a$10$whatever",
			Role:         walks.RoleUser,
			IsActive:     true,
		})
		assert.ErrorIs(t, err, walks.ErrEmailTaken)
	})

	t.Run("List sorts by the role column", func(t *testing.T) {
		db := newUsersTestDB(t)
		repo := walks.NewUsersRepository(db)

		seedUser(t, repo, "walker@example.com", walks.RoleUser, true)
		seedUser(t, repo, "root@example.com", walks.RoleAdmin, true)

		page, err := repo.List(ctx, walks.ListOptions{Sort: "role", Dir: walks.SortAsc})
		assert.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		if assert.Len(t, page.Items, 2) {
			assert.Equal(t, walks.RoleAdmin, page.Items[0].Role)
			assert.Equal(t, walks.RoleUser, page.Items[1].Role)
		}
	})
}

func TestUpdateUserEmailUniqueness(t *testing.T) {
	ctx := context.Background()

	db := newUsersTestDB(t)
	mgr := walks.NewRepositoryManager(db)
	handler := walks.NewUpdateUserHandler(mgr, walks.NewAdminGuard(mgr.Users()))

	first := seedUser(t, mgr.Users(), "walker@example.com", walks.RoleUser, true)
	second := seedUser(t, mgr.Users(), "other@example.com", walks.RoleUser, true)

	t.Run("taken address is rejected inside the transaction", func(t *testing.T) {
		email := second.Email
		_, err := handler.Execute(ctx, walks.UpdateUserMessage{ID: first.ID, Email: &email})
		assert.ErrorIs(t, err, walks.ErrEmailTaken)
	})

	t.Run("fresh address is applied", func(t *testing.T) {
		email := "renamed@example.com"
		updated, err := handler.Execute(ctx, walks.UpdateUserMessage{ID: first.ID, Email: &email})
		assert.NoError(t, err)
		assert.Equal(t, email, updated.Email)
	})
}

func TestAdminGuardAgainstSchema(t *testing.T) {
	ctx := context.Background()

	db := newUsersTestDB(t)
	repo := walks.NewUsersRepository(db)
	guard := walks.NewAdminGuard(repo)

	only := seedUser(t, repo, "root@example.com", walks.RoleAdmin, true)

	t.Run("sole active admin is protected", func(t *testing.T) {
		err := guard.EnsureCanChangeRole(ctx, db, only, walks.RoleUser)
		assert.ErrorIs(t, err, walks.ErrLastAdmin)

		err = guard.EnsureCanDeactivate(ctx, db, only, false)
		assert.ErrorIs(t, err, walks.ErrLastAdmin)

		err = guard.EnsureCanDelete(ctx, db, only)
		assert.ErrorIs(t, err, walks.ErrLastAdmin)
	})

	t.Run("second active admin releases the protection", func(t *testing.T) {
		seedUser(t, repo, "backup@example.com", walks.RoleAdmin, true)

		assert.NoError(t, guard.EnsureCanChangeRole(ctx, db, only, walks.RoleUser))
		assert.NoError(t, guard.EnsureCanDeactivate(ctx, db, only, false))
		assert.NoError(t, guard.EnsureCanDelete(ctx, db, only))
	})
}
