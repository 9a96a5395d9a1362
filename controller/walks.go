package controller

import (
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	walks "github.com/goliatone/go-walks"
)

// WalkSummary is the public listing shape: enough to browse, no owner
// contact details beyond the display name.
type WalkSummary struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	DateTime  *time.Time `json:"date_time,omitempty"`
	Location  string     `json:"location"`
	Duration  int        `json:"duration,omitempty"`
	ImgURL    string     `json:"img,omitempty"`
	Organizer string     `json:"organizer,omitempty"`
}

// WalkDetail extends the summary with the description and owner id.
type WalkDetail struct {
	WalkSummary
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	UserID      int64  `json:"user_id"`
}

func NewWalkSummary(walk *walks.Walk) WalkSummary {
	out := WalkSummary{
		ID:       walk.ID,
		Title:    walk.Title,
		DateTime: walk.DateTime,
		Location: walk.Location,
		Duration: walk.Duration,
		ImgURL:   walk.ImgURL,
	}
	if walk.User != nil {
		out.Organizer = walk.User.Username
	}
	return out
}

func NewWalkDetail(walk *walks.Walk) WalkDetail {
	return WalkDetail{
		WalkSummary: NewWalkSummary(walk),
		Description: walk.Description,
		IsActive:    walk.IsActive,
		UserID:      walk.UserID,
	}
}

// WalkMessage is the create/update payload for a walk listing.
type WalkMessage struct {
	Title       string     `json:"title"`
	DateTime    *time.Time `json:"date_time"`
	Location    string     `json:"location"`
	Duration    int        `json:"duration"`
	Description string     `json:"description"`
	ImgURL      string     `json:"img"`
	IsActive    *bool      `json:"is_active"`
}

// Validate will run validation rules
func (m WalkMessage) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&m,
			validation.Field(
				&m.Title,
				validation.Required,
				validation.Length(1, 200),
			),
			validation.Field(
				&m.Location,
				validation.Required,
			),
			validation.Field(
				&m.Duration,
				validation.Min(0),
			),
		)
	}, "Invalid walk payload")
}

type WalksControllerRoutes struct {
	Collection string
	Item       string
	Mine       string
}

type WalksController struct {
	Logger       walks.Logger
	Repo         walks.Walks
	Guard        *walks.WalkGuard
	ContextKey   string
	Routes       *WalksControllerRoutes
	ErrorHandler router.ErrorHandler
}

type WalksControllerOption func(*WalksController) *WalksController

func NewWalksController(opts ...WalksControllerOption) *WalksController {
	c := &WalksController{
		Logger:       walks.DefaultLogger(),
		ContextKey:   "actor",
		ErrorHandler: NewErrorHandler(nil),
		Routes: &WalksControllerRoutes{
			Collection: "/walks",
			Item:       "/walks/:id",
			Mine:       "/me/walks",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

func WithWalksLogger(logger walks.Logger) WalksControllerOption {
	return func(c *WalksController) *WalksController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithWalksRepo(repo walks.Walks) WalksControllerOption {
	return func(c *WalksController) *WalksController {
		c.Repo = repo
		return c
	}
}

func WithWalkGuard(guard *walks.WalkGuard) WalksControllerOption {
	return func(c *WalksController) *WalksController {
		c.Guard = guard
		return c
	}
}

func WithWalksContextKey(key string) WalksControllerOption {
	return func(c *WalksController) *WalksController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

func WithWalksErrorHandler(handler router.ErrorHandler) WalksControllerOption {
	return func(c *WalksController) *WalksController {
		if handler != nil {
			c.ErrorHandler = handler
		}
		return c
	}
}

func RegisterWalkRoutes[T any](app router.Router[T], opts ...WalksControllerOption) {
	controller := NewWalksController(opts...)

	requireAuth := walks.RequireRoles(walks.AnyAuthenticated, controller.ContextKey, controller.ErrorHandler)
	requireAccess := walks.RequireWalkAccess(controller.Guard, controller.ContextKey, WalkIDParam, controller.ErrorHandler)

	app.Get(controller.Routes.Collection, controller.Index).
		SetName("walks.index")
	app.Get(controller.Routes.Item, controller.Show).
		SetName("walks.show")
	app.Get(controller.Routes.Mine, controller.Mine, requireAuth).
		SetName("walks.mine")
	app.Post(controller.Routes.Collection, controller.Create, requireAuth).
		SetName("walks.create")
	app.Put(controller.Routes.Item, controller.Update, requireAuth, requireAccess).
		SetName("walks.update")
	app.Delete(controller.Routes.Item, controller.Destroy, requireAuth, requireAccess).
		SetName("walks.destroy")
}

// WalkIDParam parses the ":id" route parameter.
func WalkIDParam(ctx router.Context) (int64, error) {
	raw := ctx.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerrors.New("invalid walk id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}
	return id, nil
}

// Index lists active walks, paginated. Anonymous friendly.
func (w *WalksController) Index(ctx router.Context) error {
	page, err := w.Repo.List(ctx.Context(), walks.WalkFilter{ActiveOnly: true}, listOptionsFromQuery(ctx))
	if err != nil {
		return w.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, pageOf(page, NewWalkSummary))
}

// Show returns the walk detail. Anonymous friendly.
func (w *WalksController) Show(ctx router.Context) error {
	id, err := WalkIDParam(ctx)
	if err != nil {
		return w.ErrorHandler(ctx, err)
	}

	walk, err := w.Repo.GetByID(ctx.Context(), id)
	if err != nil {
		return w.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewWalkDetail(walk))
}

// Mine lists the caller's own walks, inactive ones included.
func (w *WalksController) Mine(ctx router.Context) error {
	actor, ok := walks.ActorFromRouterContext(ctx, w.ContextKey)
	if !ok {
		return w.ErrorHandler(ctx, walks.ErrUnauthenticated)
	}

	page, err := w.Repo.List(ctx.Context(), walks.WalkFilter{OwnerID: actor.ID}, listOptionsFromQuery(ctx))
	if err != nil {
		return w.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, pageOf(page, NewWalkDetail))
}

// Create adds a walk owned by the caller.
func (w *WalksController) Create(ctx router.Context) error {
	actor, ok := walks.ActorFromRouterContext(ctx, w.ContextKey)
	if !ok {
		return w.ErrorHandler(ctx, walks.ErrUnauthenticated)
	}

	payload := new(WalkMessage)
	if err := ctx.Bind(payload); err != nil {
		return w.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return w.ErrorHandler(ctx, err)
	}

	walk := &walks.Walk{
		Title:       payload.Title,
		DateTime:    payload.DateTime,
		Location:    payload.Location,
		Duration:    payload.Duration,
		Description: payload.Description,
		ImgURL:      payload.ImgURL,
		IsActive:    true,
		UserID:      actor.ID,
	}

	walk, err := w.Repo.Create(ctx.Context(), walk)
	if err != nil {
		return w.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, NewWalkDetail(walk))
}

// Update rewrites a walk. Ownership was already checked by the route
// middleware; the owner never changes.
func (w *WalksController) Update(ctx router.Context) error {
	id, err := WalkIDParam(ctx)
	if err != nil {
		return w.ErrorHandler(ctx, err)
	}

	payload := new(WalkMessage)
	if err := ctx.Bind(payload); err != nil {
		return w.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return w.ErrorHandler(ctx, err)
	}

	walk, err := w.Repo.GetByID(ctx.Context(), id)
	if err != nil {
		return w.ErrorHandler(ctx, err)
	}

	walk.Title = payload.Title
	walk.DateTime = payload.DateTime
	walk.Location = payload.Location
	walk.Duration = payload.Duration
	walk.Description = payload.Description
	walk.ImgURL = payload.ImgURL
	if payload.IsActive != nil {
		walk.IsActive = *payload.IsActive
	}

	walk, err = w.Repo.Update(ctx.Context(), walk)
	if err != nil {
		return w.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, NewWalkDetail(walk))
}

// Destroy removes a walk.
func (w *WalksController) Destroy(ctx router.Context) error {
	id, err := WalkIDParam(ctx)
	if err != nil {
		return w.ErrorHandler(ctx, err)
	}

	if err := w.Repo.Delete(ctx.Context(), id); err != nil {
		return w.ErrorHandler(ctx, err)
	}

	return ctx.Status(router.StatusNoContent).SendString("")
}

// listOptionsFromQuery reads pagination controls from the query string.
// Values are normalized downstream against each listing's allowlist.
func listOptionsFromQuery(ctx router.Context) walks.ListOptions {
	return walks.ListOptions{
		Page: ctx.QueryInt("page", 0),
		Size: ctx.QueryInt("size", walks.DefaultPageSize),
		Sort: ctx.Query("sort", ""),
		Dir:  ctx.Query("dir", walks.SortAsc),
	}
}

// pageOf maps a repository page onto a response DTO page.
func pageOf[T any, R any](page walks.Page[T], mapper func(T) R) walks.Page[R] {
	items := make([]R, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, mapper(item))
	}
	return walks.Page[R]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		Size:       page.Size,
		TotalPages: page.TotalPages,
	}
}
