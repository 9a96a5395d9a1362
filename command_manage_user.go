package walks

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// UpdateUserMessage is the admin-side account update. Pointer fields are
// applied only when present so partial updates don't clobber the record.
type UpdateUserMessage struct {
	ID       int64   `json:"id"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	ImgURL   *string `json:"img"`
	Role     *string `json:"user_role"`
	IsActive *bool   `json:"is_active"`
	Actor    Actor   `json:"-"`
}

func (e UpdateUserMessage) Type() string { return "user.update" }

// Validate will run validation rules
func (e UpdateUserMessage) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&e,
			validation.Field(
				&e.ID,
				validation.Required,
			),
			validation.Field(
				&e.Email,
				is.Email,
			),
			validation.Field(
				&e.Phone,
				phoneNumber,
			),
			validation.Field(
				&e.Role,
				validation.By(func(value interface{}) error {
					role, ok := value.(*string)
					if !ok || role == nil {
						return nil
					}
					if !IsValidRole(*role) {
						return stderrors.New("must be a known role")
					}
					return nil
				}),
			),
		)
	}, "Invalid user update payload")
}

// UpdateUserHandler applies admin account updates. Role and activation
// changes on the last active admin are rejected; the guard count runs on
// the update transaction.
type UpdateUserHandler struct {
	repo  RepositoryManager
	guard *AdminGuard
	sink  ActivitySink
}

func NewUpdateUserHandler(repo RepositoryManager, guard *AdminGuard) *UpdateUserHandler {
	return &UpdateUserHandler{
		repo:  repo,
		guard: guard,
		sink:  noopActivitySink{},
	}
}

func (h *UpdateUserHandler) WithActivitySink(sink ActivitySink) *UpdateUserHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *UpdateUserHandler) Execute(ctx context.Context, event UpdateUserMessage) (*User, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var user *User
	var roleChanged, statusChanged bool

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByIDTx(ctx, tx, event.ID)
		if err != nil {
			return err
		}

		if event.Email != nil {
			email := strings.TrimSpace(strings.ToLower(*event.Email))
			if email != user.Email {
				taken, err := h.repo.Users().ExistsByEmailTx(ctx, tx, email, user.ID)
				if err != nil {
					return err
				}
				if taken {
					return ErrEmailTaken
				}
				user.Email = email
			}
		}

		if event.Username != nil {
			user.Username = *event.Username
		}
		if event.Phone != nil {
			user.Phone = *event.Phone
		}
		if event.ImgURL != nil {
			user.ImgURL = *event.ImgURL
		}

		if event.Role != nil && *event.Role != user.Role {
			if err := h.guard.EnsureCanChangeRole(ctx, tx, user, *event.Role); err != nil {
				return err
			}
			user.Role = *event.Role
			roleChanged = true
		}

		if event.IsActive != nil && *event.IsActive != user.IsActive {
			if err := h.guard.EnsureCanDeactivate(ctx, tx, user, *event.IsActive); err != nil {
				return err
			}
			user.IsActive = *event.IsActive
			statusChanged = true
		}

		user, err = h.repo.Users().UpdateTx(ctx, tx, user)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user update transaction failed")
	}

	if roleChanged {
		_ = h.sink.Record(ctx, ActivityEvent{
			EventType: ActivityEventUserRoleChanged,
			Actor:     ActorRef{ID: event.Actor.Email, Type: "admin"},
			UserID:    itoa(user.ID),
			Metadata:  map[string]any{"role": user.Role},
		})
	}

	if statusChanged {
		_ = h.sink.Record(ctx, ActivityEvent{
			EventType: ActivityEventUserStatusChanged,
			Actor:     ActorRef{ID: event.Actor.Email, Type: "admin"},
			UserID:    itoa(user.ID),
			Metadata:  map[string]any{"is_active": user.IsActive},
		})
	}

	return user, nil
}

// DeleteUserMessage removes an account.
type DeleteUserMessage struct {
	ID    int64 `json:"id"`
	Actor Actor `json:"-"`
}

func (e DeleteUserMessage) Type() string { return "user.delete" }

// DeleteUserHandler deletes accounts, refusing to remove the last active
// admin.
type DeleteUserHandler struct {
	repo  RepositoryManager
	guard *AdminGuard
	sink  ActivitySink
}

func NewDeleteUserHandler(repo RepositoryManager, guard *AdminGuard) *DeleteUserHandler {
	return &DeleteUserHandler{
		repo:  repo,
		guard: guard,
		sink:  noopActivitySink{},
	}
}

func (h *DeleteUserHandler) WithActivitySink(sink ActivitySink) *DeleteUserHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *DeleteUserHandler) Execute(ctx context.Context, event DeleteUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByIDTx(ctx, tx, event.ID)
		if err != nil {
			return err
		}

		if err := h.guard.EnsureCanDelete(ctx, tx, user); err != nil {
			return err
		}

		return h.repo.Users().DeleteTx(ctx, tx, user.ID)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user delete transaction failed")
	}

	_ = h.sink.Record(ctx, ActivityEvent{
		EventType: ActivityEventUserDeleted,
		Actor:     ActorRef{ID: event.Actor.Email, Type: "admin"},
		UserID:    itoa(event.ID),
	})

	return nil
}
