package main

import (
	"context"
	"log/slog"
	"os"

	"energyfit/config"
	"energyfit/internal/delivery"
	"energyfit/internal/delivery/api"
	apimiddleware "energyfit/internal/delivery/api/middleware"
	"energyfit/internal/delivery/api/router/handler"
	"energyfit/internal/domain/constants"
	"energyfit/internal/domain/repository"
	"energyfit/internal/domain/service"
	"energyfit/internal/infra/auth"
	logs "energyfit/internal/infra/log"
	"energyfit/internal/infra/notification"
	"energyfit/internal/infra/persistence/database"
	"energyfit/internal/infra/pubsub"
	"energyfit/internal/infra/session"
	"energyfit/internal/usecase/impl"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			impl.RegisterSessionJanitor,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		database.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			database.NewPrincipalRepository,
			database.NewRecoveryTokenRepository,
			database.NewProductRepository,
			database.NewOrderRepository,
			database.NewTransactionManager,
			newSessionRepository,
		),
	)
}

type sessionRepositoryParams struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB
}

// newSessionRepository picks the session backend; redis is only dialed when selected.
func newSessionRepository(params sessionRepositoryParams) (repository.SessionRepository, error) {
	if params.Config.Session == nil || params.Config.Session.Store != constants.SessionStoreRedis {
		return database.NewSessionRepository(params.DB), nil
	}

	client, err := session.NewRedisClient(session.ClientParams{
		Lifecycle: params.Lifecycle,
		Config:    params.Config,
		Logger:    params.Logger,
	})
	if err != nil {
		return nil, err
	}

	return session.NewRedisStore(client, ""), nil
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newPasswordHasher,
			auth.NewTokenGenerator,
			pubsub.NewEventPublisher,
			notification.NewRecoveryNotifier,
		),
	)
}

func newPasswordHasher(cfg *config.Config) service.PasswordHasher {
	if cfg.Auth == nil {
		return auth.NewBcryptHasher()
	}

	return auth.NewBcryptHasherWithCost(cfg.Auth.BcryptCost)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewSessionService,
			impl.NewProductService,
			impl.NewOrderService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			apimiddleware.NewSessionMiddleware,
			apimiddleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewProductHandler,
			handler.NewDashboardHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
