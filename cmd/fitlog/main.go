package main

import (
	"context"
	"log/slog"
	"os"

	"fitlog/config"
	"fitlog/internal/cache"
	"fitlog/internal/delivery"
	"fitlog/internal/delivery/http"
	"fitlog/internal/delivery/http/middleware"
	"fitlog/internal/delivery/http/router/handler"
	"fitlog/internal/domain/entity"
	"fitlog/internal/domain/service"
	"fitlog/internal/infra/identity"
	logs "fitlog/internal/infra/log"
	"fitlog/internal/infra/persistence/postgres"
	"fitlog/internal/infra/storage"
	"fitlog/internal/usecase"
	"fitlog/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

type startSessionParams struct {
	fx.In
	fx.Lifecycle

	Identity service.IdentityService
	Auth     usecase.AuthUsecase
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startSessionManager,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		identity.New,
		storage.New,
		cache.NewStore,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
			postgres.NewProfileRepository,
			postgres.NewCommentRepository,
			postgres.NewPostRepository,
			postgres.NewWeeklyLogRepository,
			postgres.NewChallengeRepository,
			postgres.NewNotificationRepository,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthManager,
			newViewerProvider,
			impl.NewThreadService,
			impl.NewPostService,
			impl.NewWeeklyLogService,
			impl.NewChallengeService,
			impl.NewNotificationService,
			impl.NewProfileService,
			impl.NewProgressService,
		),
	)
}

// newViewerProvider exposes the session manager as the viewer source for the
// feature services.
func newViewerProvider(auth usecase.AuthUsecase) usecase.ViewerProvider {
	return auth
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewSessionMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewProfileHandler,
			handler.NewPostHandler,
			handler.NewThreadHandler,
			handler.NewWeeklyLogHandler,
			handler.NewChallengeHandler,
			handler.NewNotificationHandler,
			handler.NewProgressHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// startSessionManager feeds the identity event stream into the session
// manager and bootstraps the initial state. Bootstrap runs in the background
// so a slow identity provider does not block startup.
func startSessionManager(params startSessionParams) {
	var unsubscribe func()

	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			unsubscribe = params.Identity.Subscribe(func(event entity.AuthEvent) {
				params.Auth.HandleAuthEvent(context.Background(), event)
			})

			go params.Auth.Bootstrap(context.Background())

			return nil
		},
		OnStop: func(_ context.Context) error {
			if unsubscribe != nil {
				unsubscribe()
			}

			return nil
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
