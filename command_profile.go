package walks

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// UpdateProfileMessage updates the caller's own mutable profile fields.
type UpdateProfileMessage struct {
	UserID   int64   `json:"-"`
	Username *string `json:"username"`
	Phone    *string `json:"phone"`
	ImgURL   *string `json:"img"`
}

func (e UpdateProfileMessage) Type() string { return "profile.update" }

// Validate will run validation rules
func (e UpdateProfileMessage) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&e,
			validation.Field(
				&e.Phone,
				phoneNumber,
			),
		)
	}, "Invalid profile update payload")
}

// ChangeEmailMessage swaps the account email after re-checking the
// password. The new address must differ from the current one and must
// not be in use.
type ChangeEmailMessage struct {
	UserID   int64  `json:"-"`
	NewEmail string `json:"new_email"`
	Password string `json:"password"`
}

func (e ChangeEmailMessage) Type() string { return "profile.change_email" }

// Validate will run validation rules
func (e ChangeEmailMessage) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&e,
			validation.Field(
				&e.NewEmail,
				validation.Required,
				is.Email,
			),
			validation.Field(
				&e.Password,
				validation.Required,
			),
		)
	}, "Invalid email change payload")
}

// ChangePasswordMessage rotates the account password. The current
// password must verify, the confirmation must match, and the new password
// must differ from the old one.
type ChangePasswordMessage struct {
	UserID          int64  `json:"-"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (e ChangePasswordMessage) Type() string { return "profile.change_password" }

// Validate will run validation rules
func (e ChangePasswordMessage) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&e,
			validation.Field(
				&e.CurrentPassword,
				validation.Required,
			),
			validation.Field(
				&e.NewPassword,
				validation.Required,
				validation.Length(8, 72),
			),
			validation.Field(
				&e.ConfirmPassword,
				validation.Required,
				validation.In(e.NewPassword).Error("must match the new password"),
			),
		)
	}, "Invalid password change payload")
}

// DeactivateSelfMessage disables the caller's own account.
type DeactivateSelfMessage struct {
	UserID int64 `json:"-"`
}

func (e DeactivateSelfMessage) Type() string { return "profile.deactivate" }

// ProfileHandler serves the self-service account operations. Every
// operation loads the account fresh and runs inside a transaction; the
// admin guard still applies when the caller happens to be the last
// active admin.
type ProfileHandler struct {
	repo  RepositoryManager
	guard *AdminGuard
	sink  ActivitySink
}

func NewProfileHandler(repo RepositoryManager, guard *AdminGuard) *ProfileHandler {
	return &ProfileHandler{
		repo:  repo,
		guard: guard,
		sink:  noopActivitySink{},
	}
}

func (h *ProfileHandler) WithActivitySink(sink ActivitySink) *ProfileHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

// Get returns the caller's account.
func (h *ProfileHandler) Get(ctx context.Context, userID int64) (*User, error) {
	return h.repo.Users().GetByID(ctx, userID)
}

// Update applies the mutable profile fields.
func (h *ProfileHandler) Update(ctx context.Context, event UpdateProfileMessage) (*User, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	return h.inTx(ctx, event.UserID, func(ctx context.Context, tx bun.Tx, user *User) error {
		if event.Username != nil {
			user.Username = *event.Username
		}
		if event.Phone != nil {
			user.Phone = *event.Phone
		}
		if event.ImgURL != nil {
			user.ImgURL = *event.ImgURL
		}
		return nil
	})
}

// ChangeEmail updates the account email after verifying the password and
// address availability.
func (h *ProfileHandler) ChangeEmail(ctx context.Context, event ChangeEmailMessage) (*User, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(event.NewEmail))

	return h.inTx(ctx, event.UserID, func(ctx context.Context, tx bun.Tx, user *User) error {
		if err := ComparePasswordAndHash(event.Password, user.PasswordHash); err != nil {
			return err
		}

		if email == user.Email {
			return goerrors.New("new email must differ from the current one", goerrors.CategoryBadInput).
				WithCode(goerrors.CodeBadRequest)
		}

		taken, err := h.repo.Users().ExistsByEmailTx(ctx, tx, email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}

		user.Email = email
		return nil
	})
}

// ChangePassword rotates the password after verifying the current one.
func (h *ProfileHandler) ChangePassword(ctx context.Context, event ChangePasswordMessage) (*User, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	return h.inTx(ctx, event.UserID, func(ctx context.Context, tx bun.Tx, user *User) error {
		if err := ComparePasswordAndHash(event.CurrentPassword, user.PasswordHash); err != nil {
			return err
		}

		if event.NewPassword == event.CurrentPassword {
			return goerrors.New("new password must differ from the current one", goerrors.CategoryBadInput).
				WithCode(goerrors.CodeBadRequest)
		}

		hash, err := HashPassword(event.NewPassword)
		if err != nil {
			return err
		}

		user.PasswordHash = hash
		return nil
	})
}

// Deactivate disables the caller's account, unless doing so would leave
// the system without an active admin.
func (h *ProfileHandler) Deactivate(ctx context.Context, event DeactivateSelfMessage) (*User, error) {
	user, err := h.inTx(ctx, event.UserID, func(ctx context.Context, tx bun.Tx, user *User) error {
		if err := h.guard.EnsureCanDeactivate(ctx, tx, user, false); err != nil {
			return err
		}
		user.IsActive = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = h.sink.Record(ctx, ActivityEvent{
		EventType: ActivityEventUserStatusChanged,
		Actor:     ActorRef{ID: user.Email, Type: "user"},
		UserID:    itoa(user.ID),
		Metadata:  map[string]any{"is_active": false},
	})

	return user, nil
}

// inTx loads the account, applies fn, and persists the result on one
// transaction.
func (h *ProfileHandler) inTx(ctx context.Context, userID int64, fn func(ctx context.Context, tx bun.Tx, user *User) error) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var user *User
	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByIDTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		if err := fn(ctx, tx, user); err != nil {
			return err
		}

		user, err = h.repo.Users().UpdateTx(ctx, tx, user)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "profile transaction failed")
	}

	return user, nil
}
