package walks

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	ImgURL   string `json:"img"`
	Password string `json:"password"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler creates new accounts. Accounts always start as
// active regular users; roles are only assigned through admin operations.
type RegisterUserHandler struct {
	repo RepositoryManager
	sink ActivitySink
}

func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo: repo,
		sink: noopActivitySink{},
	}
}

// WithActivitySink sets the sink notified on successful registration.
func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = strings.TrimSpace(strings.ToLower(event.Email))
		user.Phone = event.Phone
		user.ImgURL = event.ImgURL
		user.Username = getUsername(event.Username, user.Email)
		user.Role = RoleUser
		user.IsActive = true

		if ref, err := hashid.NewUUID(user.Email); err == nil {
			user.PublicRef = ref
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	_ = h.sink.Record(ctx, ActivityEvent{
		EventType: ActivityEventUserRegistered,
		Actor:     ActorRef{ID: user.Email, Type: "user"},
		UserID:    itoa(user.ID),
		Metadata:  map[string]any{"username": user.Username},
	})

	return user, nil
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}
