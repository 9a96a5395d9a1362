package controller

import (
	"fmt"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	walks "github.com/goliatone/go-walks"
	"github.com/google/uuid"
)

// UserResponse is the public shape of an account. The password hash never
// leaves the persistence layer.
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	ImgURL    string `json:"img,omitempty"`
	Role      string `json:"user_role"`
	IsActive  bool   `json:"is_active"`
	PublicRef string `json:"public_ref,omitempty"`
}

func NewUserResponse(user *walks.User) UserResponse {
	out := UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Phone:    user.Phone,
		ImgURL:   user.ImgURL,
		Role:     user.Role,
		IsActive: user.IsActive,
	}
	if user.PublicRef != uuid.Nil {
		out.PublicRef = user.PublicRef.String()
	}
	return out
}

// LoginResponse is the success payload for POST /auth/login.
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      UserResponse `json:"user"`
}

type AuthControllerRoutes struct {
	Login    string
	Register string
}

type AuthController struct {
	Debug        bool
	Logger       walks.Logger
	Auther       walks.Authenticator
	Register     *walks.RegisterUserHandler
	Routes       *AuthControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       walks.DefaultLogger(),
		ErrorHandler: NewErrorHandler(nil),
		Routes: &AuthControllerRoutes{
			Login:    "/auth/login",
			Register: "/auth/register",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

func WithAuthLogger(logger walks.Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithAuther(auther walks.Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithRegisterHandler(handler *walks.RegisterUserHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Register = handler
		return c
	}
}

func WithAuthErrorHandler(handler router.ErrorHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if handler != nil {
			c.ErrorHandler = handler
		}
		return c
	}
}

func WithAuthDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login")
	app.Post(controller.Routes.Register, controller.RegisterPost).
		SetName("auth.register")
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(walks.LoginMessage)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	result, err := a.Auther.Login(ctx.Context(), payload.Identifier, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, LoginResponse{
		Token:     result.Token,
		TokenType: result.TokenType,
		User: UserResponse{
			ID:       result.User.ID,
			Username: result.User.Username,
			Email:    result.User.Email,
			Role:     result.User.Role,
			IsActive: result.User.IsActive,
		},
	})
}

func (a *AuthController) RegisterPost(ctx router.Context) error {
	payload := new(walks.RegisterUserMessage)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	user, err := a.Register.Execute(ctx.Context(), *payload)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, NewUserResponse(user))
}
