package controller

import (
	"github.com/goliatone/go-router"
	walks "github.com/goliatone/go-walks"
)

type UsersControllerRoutes struct {
	Profile    string
	Email      string
	Password   string
	Deactivate string
}

// UsersController serves the self-service account endpoints. Every route
// acts on the caller; the target id always comes from the request actor.
type UsersController struct {
	Logger       walks.Logger
	Profile      *walks.ProfileHandler
	ContextKey   string
	Routes       *UsersControllerRoutes
	ErrorHandler router.ErrorHandler
}

type UsersControllerOption func(*UsersController) *UsersController

func NewUsersController(opts ...UsersControllerOption) *UsersController {
	c := &UsersController{
		Logger:       walks.DefaultLogger(),
		ContextKey:   "actor",
		ErrorHandler: NewErrorHandler(nil),
		Routes: &UsersControllerRoutes{
			Profile:    "/me",
			Email:      "/me/email",
			Password:   "/me/password",
			Deactivate: "/me/deactivate",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

func WithUsersLogger(logger walks.Logger) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithProfileHandler(handler *walks.ProfileHandler) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		c.Profile = handler
		return c
	}
}

func WithUsersContextKey(key string) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

func WithUsersErrorHandler(handler router.ErrorHandler) UsersControllerOption {
	return func(c *UsersController) *UsersController {
		if handler != nil {
			c.ErrorHandler = handler
		}
		return c
	}
}

func RegisterUserRoutes[T any](app router.Router[T], opts ...UsersControllerOption) {
	controller := NewUsersController(opts...)

	requireAuth := walks.RequireRoles(walks.AnyAuthenticated, controller.ContextKey, controller.ErrorHandler)

	app.Get(controller.Routes.Profile, controller.Show, requireAuth).
		SetName("me.show")
	app.Put(controller.Routes.Profile, controller.Update, requireAuth).
		SetName("me.update")
	app.Post(controller.Routes.Email, controller.ChangeEmail, requireAuth).
		SetName("me.email")
	app.Post(controller.Routes.Password, controller.ChangePassword, requireAuth).
		SetName("me.password")
	app.Post(controller.Routes.Deactivate, controller.Deactivate, requireAuth).
		SetName("me.deactivate")
}

func (u *UsersController) Show(ctx router.Context) error {
	actor, ok := walks.ActorFromRouterContext(ctx, u.ContextKey)
	if !ok {
		return u.ErrorHandler(ctx, walks.ErrUnauthenticated)
	}

	user, err := u.Profile.Get(ctx.Context(), actor.ID)
	if err != nil {
		return u.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserResponse(user))
}

func (u *UsersController) Update(ctx router.Context) error {
	actor, ok := walks.ActorFromRouterContext(ctx, u.ContextKey)
	if !ok {
		return u.ErrorHandler(ctx, walks.ErrUnauthenticated)
	}

	payload := new(walks.UpdateProfileMessage)
	if err := ctx.Bind(payload); err != nil {
		return u.ErrorHandler(ctx, err)
	}
	payload.UserID = actor.ID

	user, err := u.Profile.Update(ctx.Context(), *payload)
	if err != nil {
		return u.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserResponse(user))
}

func (u *UsersController) ChangeEmail(ctx router.Context) error {
	actor, ok := walks.ActorFromRouterContext(ctx, u.ContextKey)
	if !ok {
		return u.ErrorHandler(ctx, walks.ErrUnauthenticated)
	}

	payload := new(walks.ChangeEmailMessage)
	if err := ctx.Bind(payload); err != nil {
		return u.ErrorHandler(ctx, err)
	}
	payload.UserID = actor.ID

	user, err := u.Profile.ChangeEmail(ctx.Context(), *payload)
	if err != nil {
		return u.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserResponse(user))
}

func (u *UsersController) ChangePassword(ctx router.Context) error {
	actor, ok := walks.ActorFromRouterContext(ctx, u.ContextKey)
	if !ok {
		return u.ErrorHandler(ctx, walks.ErrUnauthenticated)
	}

	payload := new(walks.ChangePasswordMessage)
	if err := ctx.Bind(payload); err != nil {
		return u.ErrorHandler(ctx, err)
	}
	payload.UserID = actor.ID

	user, err := u.Profile.ChangePassword(ctx.Context(), *payload)
	if err != nil {
		return u.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserResponse(user))
}

func (u *UsersController) Deactivate(ctx router.Context) error {
	actor, ok := walks.ActorFromRouterContext(ctx, u.ContextKey)
	if !ok {
		return u.ErrorHandler(ctx, walks.ErrUnauthenticated)
	}

	user, err := u.Profile.Deactivate(ctx.Context(), walks.DeactivateSelfMessage{UserID: actor.ID})
	if err != nil {
		return u.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserResponse(user))
}
