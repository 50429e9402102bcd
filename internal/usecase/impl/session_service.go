package impl

import (
	"context"
	"log/slog"
	"time"

	"energyfit/config"
	deliverycontext "energyfit/internal/delivery/context"
	"energyfit/internal/domain/entity"
	domainerrors "energyfit/internal/domain/errors"
	"energyfit/internal/domain/repository"
	"energyfit/internal/domain/service"
	"energyfit/internal/errors"
	"energyfit/internal/usecase"

	"go.uber.org/fx"
)

const defaultSessionIdleTimeout = 30 * time.Minute

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	sessionRepo repository.SessionRepository
	tokens      service.TokenGenerator
	logger      *slog.Logger
	idleTimeout time.Duration
	now         func() time.Time
}

// SessionServiceParams holds dependencies for SessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	SessionRepo repository.SessionRepository
	Tokens      service.TokenGenerator
	Config      *config.Config
	Logger      *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return newSessionService(params)
}

func newSessionService(params SessionServiceParams) *sessionService {
	idleTimeout := defaultSessionIdleTimeout
	if params.Config != nil && params.Config.Session != nil && params.Config.Session.IdleTimeout > 0 {
		idleTimeout = params.Config.Session.IdleTimeout
	}

	return &sessionService{
		sessionRepo: params.SessionRepo,
		tokens:      params.Tokens,
		logger:      params.Logger,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create opens a new session. Only the hash of the returned id is stored.
func (srv *sessionService) Create(ctx context.Context, principal entity.PrincipalView) (string, *entity.Session, error) {
	sessionID, err := srv.tokens.Generate()
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to generate session id")
	}

	session := &entity.Session{
		IDHash:    srv.tokens.Hash(sessionID),
		Principal: principal,
		ExpiresAt: srv.now().Add(srv.idleTimeout),
	}
	if err := srv.sessionRepo.Create(ctx, session); err != nil {
		return "", nil, errors.Wrap(err, "failed to store session")
	}

	srv.log(ctx).Debug("Session created", slog.Int64("principalID", principal.ID), slog.String("kind", principal.Kind.String()))

	return sessionID, session, nil
}

// Resolve looks the session up and pushes its idle deadline forward.
func (srv *sessionService) Resolve(ctx context.Context, sessionID string) (*entity.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	idHash := srv.tokens.Hash(sessionID)

	session, err := srv.sessionRepo.FindByIDHash(ctx, idHash)
	if errors.Is(err, domainerrors.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up session")
	}

	now := srv.now()
	if session.IsExpired(now) {
		if err := srv.sessionRepo.Delete(ctx, idHash); err != nil {
			srv.log(ctx).Warn("Failed to delete expired session", slog.Any("error", err))
		}

		return nil, nil
	}

	expiresAt := now.Add(srv.idleTimeout)
	if err := srv.sessionRepo.Touch(ctx, idHash, expiresAt); err != nil {
		if errors.Is(err, domainerrors.ErrSessionNotFound) {
			// Destroyed concurrently.
			return nil, nil
		}
		srv.log(ctx).Warn("Failed to refresh session deadline", slog.Any("error", err))
	} else {
		session.ExpiresAt = expiresAt
	}

	return session, nil
}

// Destroy deletes the session behind the cookie value.
func (srv *sessionService) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := srv.sessionRepo.Delete(ctx, srv.tokens.Hash(sessionID)); err != nil {
		return errors.Wrap(err, "failed to destroy session")
	}

	return nil
}

// PurgeExpired removes sessions whose idle deadline has passed.
func (srv *sessionService) PurgeExpired(ctx context.Context) (int64, error) {
	removed, err := srv.sessionRepo.DeleteExpired(ctx, srv.now())
	if err != nil {
		return 0, errors.Wrap(err, "failed to purge expired sessions")
	}

	return removed, nil
}

// SessionJanitorParams holds dependencies for the expired-session sweeper.
type SessionJanitorParams struct {
	fx.In
	fx.Lifecycle

	Sessions usecase.SessionUsecase
	Config   *config.Config
	Logger   *slog.Logger
}

// RegisterSessionJanitor sweeps expired sessions once per idle timeout while the app runs.
func RegisterSessionJanitor(params SessionJanitorParams) {
	interval := defaultSessionIdleTimeout
	if params.Config.Session != nil && params.Config.Session.IdleTimeout > 0 {
		interval = params.Config.Session.IdleTimeout
	}

	sweepCtx, cancel := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go runSessionJanitor(sweepCtx, params.Sessions, params.Logger, interval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()

			return nil
		},
	})
}

func runSessionJanitor(ctx context.Context, sessions usecase.SessionUsecase, logger *slog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessions.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("Expired session sweep failed", slog.Any("error", err))

				continue
			}
			if removed > 0 {
				logger.Debug("Expired sessions purged", slog.Int64("removed", removed))
			}
		}
	}
}
