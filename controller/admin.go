package controller

import (
	"strconv"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	walks "github.com/goliatone/go-walks"
)

type AdminControllerRoutes struct {
	Users string
	User  string
}

// AdminController serves account management. Every route sits behind the
// ADMIN role guard; the last-admin invariant is enforced by the handlers.
type AdminController struct {
	Logger       walks.Logger
	Users        walks.Users
	Update       *walks.UpdateUserHandler
	Delete       *walks.DeleteUserHandler
	ContextKey   string
	Routes       *AdminControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AdminControllerOption func(*AdminController) *AdminController

func NewAdminController(opts ...AdminControllerOption) *AdminController {
	c := &AdminController{
		Logger:       walks.DefaultLogger(),
		ContextKey:   "actor",
		ErrorHandler: NewErrorHandler(nil),
		Routes: &AdminControllerRoutes{
			Users: "/admin/users",
			User:  "/admin/users/:id",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

func WithAdminLogger(logger walks.Logger) AdminControllerOption {
	return func(c *AdminController) *AdminController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithAdminUsersRepo(users walks.Users) AdminControllerOption {
	return func(c *AdminController) *AdminController {
		c.Users = users
		return c
	}
}

func WithUpdateUserHandler(handler *walks.UpdateUserHandler) AdminControllerOption {
	return func(c *AdminController) *AdminController {
		c.Update = handler
		return c
	}
}

func WithDeleteUserHandler(handler *walks.DeleteUserHandler) AdminControllerOption {
	return func(c *AdminController) *AdminController {
		c.Delete = handler
		return c
	}
}

func WithAdminContextKey(key string) AdminControllerOption {
	return func(c *AdminController) *AdminController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

func WithAdminErrorHandler(handler router.ErrorHandler) AdminControllerOption {
	return func(c *AdminController) *AdminController {
		if handler != nil {
			c.ErrorHandler = handler
		}
		return c
	}
}

func RegisterAdminRoutes[T any](app router.Router[T], opts ...AdminControllerOption) {
	controller := NewAdminController(opts...)

	requireAdmin := walks.RequireRoles(walks.AdminOnly, controller.ContextKey, controller.ErrorHandler)

	app.Get(controller.Routes.Users, controller.Index, requireAdmin).
		SetName("admin.users.index")
	app.Get(controller.Routes.User, controller.Show, requireAdmin).
		SetName("admin.users.show")
	app.Put(controller.Routes.User, controller.UpdateUser, requireAdmin).
		SetName("admin.users.update")
	app.Delete(controller.Routes.User, controller.Destroy, requireAdmin).
		SetName("admin.users.destroy")
}

func userIDParam(ctx router.Context) (int64, error) {
	raw := ctx.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerrors.New("invalid user id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}
	return id, nil
}

func (a *AdminController) Index(ctx router.Context) error {
	page, err := a.Users.List(ctx.Context(), listOptionsFromQuery(ctx))
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, pageOf(page, NewUserResponse))
}

func (a *AdminController) Show(ctx router.Context) error {
	id, err := userIDParam(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	user, err := a.Users.GetByID(ctx.Context(), id)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserResponse(user))
}

func (a *AdminController) UpdateUser(ctx router.Context) error {
	id, err := userIDParam(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	actor, ok := walks.ActorFromRouterContext(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, walks.ErrUnauthenticated)
	}

	payload := new(walks.UpdateUserMessage)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}
	payload.ID = id
	payload.Actor = *actor

	user, err := a.Update.Execute(ctx.Context(), *payload)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewUserResponse(user))
}

func (a *AdminController) Destroy(ctx router.Context) error {
	id, err := userIDParam(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	actor, ok := walks.ActorFromRouterContext(ctx, a.ContextKey)
	if !ok {
		return a.ErrorHandler(ctx, walks.ErrUnauthenticated)
	}

	if err := a.Delete.Execute(ctx.Context(), walks.DeleteUserMessage{ID: id, Actor: *actor}); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.Status(router.StatusNoContent).SendString("")
}
