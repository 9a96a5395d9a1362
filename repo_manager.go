package walks

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Walks() Walks
	Activity() repository.Repository[*ActivityRecord]
}

type mngr struct {
	db       *bun.DB
	users    Users
	walks    Walks
	activity repository.Repository[*ActivityRecord]
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:       db,
		users:    NewUsersRepository(db),
		walks:    NewWalksRepository(db),
		activity: NewActivityRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return stderrors.New("repository users should be initialized")
	}

	if m.walks == nil {
		return stderrors.New("repository walks should be initialized")
	}

	if m.activity == nil {
		return stderrors.New("repository activity should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Walks() Walks {
	return m.walks
}

func (m mngr) Activity() repository.Repository[*ActivityRecord] {
	return m.activity
}
