package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	walks "github.com/goliatone/go-walks"
	"github.com/goliatone/go-walks/cmd/walks-server/config"
	"github.com/goliatone/go-walks/controller"
	"github.com/goliatone/go-walks/middleware/tokengate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config *gconfig.Container[*config.BaseConfig]
	bunDB  *bun.DB
	repo   walks.RepositoryManager
	auth   walks.Authenticator
	sink   walks.ActivitySink
	srv    router.Server[*fiber.App]
	logger *glog.BaseLogger
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("walks"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if app.Config().GetApp().GetDebug() {
		fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithAuth(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.Config().GetServer().GetAddr())

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.Config().GetPersistence().GetDSN())
	if err != nil {
		return err
	}

	persistence.RegisterModel((*walks.User)(nil))
	persistence.RegisterModel((*walks.Walk)(nil))
	persistence.RegisterModel((*walks.ActivityRecord)(nil))

	client, err := persistence.New(app.Config().GetPersistence(), db, sqlitedialect.New())
	if err != nil {
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(walks.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)
	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = walks.NewRepositoryManager(app.bunDB)

	return app.repo.Validate()
}

func WithAuth(ctx context.Context, app *App) error {
	cfg := app.Config().GetAuth()

	app.sink = walks.NewPersistentActivitySink(app.repo.Activity()).
		WithLogger(app.GetLogger("activity"))

	auther := walks.NewAuthenticator(app.repo.Users(), cfg).
		WithLogger(app.GetLogger("auth")).
		WithActivitySink(app.sink)

	app.auth = auther

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
			AppName:       app.Config().GetApp().GetName(),
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	authCfg := app.Config().GetAuth()
	errorHandler := controller.NewErrorHandler(app.GetLogger("http"))

	srv.Router().Use(tokengate.New(tokengate.Config{
		TokenValidator: app.auth.TokenService(),
		Resolver:       app.repo.Users(),
		ContextKey:     authCfg.GetContextKey(),
		TokenLookup:    authCfg.GetTokenLookup(),
		AuthScheme:     authCfg.GetAuthScheme(),
		Logger:         app.GetLogger("tokengate"),
	}))

	adminGuard := walks.NewAdminGuard(app.repo.Users())
	walkGuard := walks.NewWalkGuard(app.repo.Walks()).
		WithLogger(app.GetLogger("guard"))

	root := srv.Router().Group("/")

	controller.RegisterAuthRoutes(root,
		controller.WithAuthLogger(app.GetLogger("ctrl:auth")),
		controller.WithAuther(app.auth),
		controller.WithRegisterHandler(
			walks.NewRegisterUserHandler(app.repo).WithActivitySink(app.sink),
		),
		controller.WithAuthErrorHandler(errorHandler),
		controller.WithAuthDebug(app.Config().GetApp().GetDebug()),
	)

	controller.RegisterWalkRoutes(root,
		controller.WithWalksLogger(app.GetLogger("ctrl:walks")),
		controller.WithWalksRepo(app.repo.Walks()),
		controller.WithWalkGuard(walkGuard),
		controller.WithWalksContextKey(authCfg.GetContextKey()),
		controller.WithWalksErrorHandler(errorHandler),
	)

	controller.RegisterUserRoutes(root,
		controller.WithUsersLogger(app.GetLogger("ctrl:users")),
		controller.WithProfileHandler(
			walks.NewProfileHandler(app.repo, adminGuard).WithActivitySink(app.sink),
		),
		controller.WithUsersContextKey(authCfg.GetContextKey()),
		controller.WithUsersErrorHandler(errorHandler),
	)

	controller.RegisterAdminRoutes(root,
		controller.WithAdminLogger(app.GetLogger("ctrl:admin")),
		controller.WithAdminUsersRepo(app.repo.Users()),
		controller.WithUpdateUserHandler(
			walks.NewUpdateUserHandler(app.repo, adminGuard).WithActivitySink(app.sink),
		),
		controller.WithDeleteUserHandler(
			walks.NewDeleteUserHandler(app.repo, adminGuard).WithActivitySink(app.sink),
		),
		controller.WithAdminContextKey(authCfg.GetContextKey()),
		controller.WithAdminErrorHandler(errorHandler),
	)

	app.srv = srv

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
