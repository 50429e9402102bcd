// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"sync"
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

const (
	defaultRecoveryTokenTTL    = time.Hour
	defaultNotificationTimeout = 30 * time.Second

	// dummyPassword feeds the timing-equalising comparison when an email is unknown.
	dummyPassword = "energyfit-login-placeholder"
)

// loginOrder is the order collections are searched at login and recovery.
var loginOrder = []entity.PrincipalKind{entity.PrincipalKindAdmin, entity.PrincipalKindSeller}

// authService implements the AuthUsecase interface.
type authService struct {
	txManager     repository.TransactionManager
	principalRepo repository.PrincipalRepository
	tokenRepo     repository.RecoveryTokenRepository
	hasher        service.PasswordHasher
	tokens        service.TokenGenerator
	notifier      service.RecoveryNotifier
	logger        *slog.Logger

	recoveryTTL   time.Duration
	enforceExpiry bool
	notifyTimeout time.Duration
	now           func() time.Time

	dummyOnce sync.Once
	dummyHash string

	// inflight tracks detached notification dispatches.
	inflight sync.WaitGroup
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	PrincipalRepo repository.PrincipalRepository
	TokenRepo     repository.RecoveryTokenRepository
	Hasher        service.PasswordHasher
	Tokens        service.TokenGenerator
	Notifier      service.RecoveryNotifier
	Config        *config.Config
	Logger        *slog.Logger
	Lifecycle     fx.Lifecycle `optional:"true"`
}

// NewAuthService is the constructor for authService. On shutdown it waits for
// pending recovery notifications until the stop context expires.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	srv := newAuthService(params)

	if params.Lifecycle != nil {
		params.Lifecycle.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				done := make(chan struct{})
				go func() {
					srv.Wait()
					close(done)
				}()

				select {
				case <-done:
					return nil
				case <-ctx.Done():
					return errors.Wrap(ctx.Err(), "recovery notifications still in flight")
				}
			},
		})
	}

	return srv
}

func newAuthService(params AuthServiceParams) *authService {
	srv := &authService{
		txManager:     params.TxManager,
		principalRepo: params.PrincipalRepo,
		tokenRepo:     params.TokenRepo,
		hasher:        params.Hasher,
		tokens:        params.Tokens,
		notifier:      params.Notifier,
		logger:        params.Logger,
		recoveryTTL:   defaultRecoveryTokenTTL,
		notifyTimeout: defaultNotificationTimeout,
		now:           time.Now,
	}

	if params.Config != nil && params.Config.Auth != nil {
		auth := params.Config.Auth
		if auth.RecoveryTokenTTL > 0 {
			srv.recoveryTTL = auth.RecoveryTokenTTL
		}
		if auth.NotificationTimeout > 0 {
			srv.notifyTimeout = auth.NotificationTimeout
		}
		srv.enforceExpiry = auth.EnforceRecoveryTokenExpiry
	}

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register validates the input, hashes the password and inserts the principal.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" || input.Kind == "" {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails(
			"Campos obrigatórios (nome_completo, email, senha, tipo) faltando."))
	}
	if !input.Kind.IsValid() {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("Tipo de usuário inválido."))
	}

	srv.log(ctx).Info("Starting registration", slog.String("kind", input.Kind.String()), slog.String("email", input.Email))

	// Hash outside the transaction so the connection is not held during bcrypt.
	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	principal := &entity.Principal{
		Kind:         input.Kind,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
	}
	if input.Kind == entity.PrincipalKindSeller && input.Phone != "" {
		phone := input.Phone
		principal.Phone = &phone
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		principalRepo := repoFactory.NewPrincipalRepository()

		_, err := principalRepo.FindByEmail(ctx, input.Kind, input.Email)
		if err == nil {
			return domainerrors.ErrDuplicateEmail.WrapMessage("email already registered for " + input.Kind.String())
		}
		if !errors.Is(err, domainerrors.ErrPrincipalNotFound) {
			return errors.Wrap(err, "failed to check existing principal")
		}

		return principalRepo.Create(ctx, principal)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateEmail) {
			srv.log(ctx).Info("Registration rejected: duplicate email", slog.String("kind", input.Kind.String()), slog.String("email", input.Email))

			return nil, err
		}
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.log(ctx).Debug("Registration completed", slog.String("kind", input.Kind.String()), slog.Int64("principalID", principal.ID))

	return &usecase.RegisterOutput{Principal: principal}, nil
}

// Login authenticates against administrators, then sellers.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*entity.PrincipalView, error) {
	if input.Email == "" || input.Password == "" {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("Email e senha são obrigatórios."))
	}

	for _, kind := range loginOrder {
		principal, err := srv.principalRepo.FindByEmail(ctx, kind, input.Email)
		if errors.Is(err, domainerrors.ErrPrincipalNotFound) {
			srv.hasher.Check(input.Password, srv.placeholderHash())

			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to look up %s", kind)
		}

		if srv.hasher.Check(input.Password, principal.PasswordHash) {
			srv.log(ctx).Info("Login succeeded", slog.String("kind", kind.String()), slog.Int64("principalID", principal.ID))

			return principal.View(), nil
		}
	}

	srv.log(ctx).Info("Login failed", slog.String("email", input.Email))

	return nil, nil
}

// IssueRecoveryToken persists a fresh token and sends it without waiting for delivery.
func (srv *authService) IssueRecoveryToken(ctx context.Context, email string) (*usecase.RecoveryTokenOutput, error) {
	if email == "" {
		return nil, errors.WithStack(domainerrors.ErrEmailRequired)
	}

	principal, err := srv.findAnyByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		srv.log(ctx).Info("Recovery requested for unknown email", slog.String("email", email))

		return nil, nil
	}

	token, err := srv.tokens.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate recovery token")
	}

	record := &entity.RecoveryToken{
		PrincipalID:   principal.ID,
		PrincipalKind: principal.Kind,
		TokenHash:     srv.tokens.Hash(token),
		ExpiresAt:     srv.now().Add(srv.recoveryTTL),
	}
	if err := srv.tokenRepo.Create(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to store recovery token")
	}

	srv.log(ctx).Info("Recovery token issued", slog.String("kind", principal.Kind.String()), slog.Int64("principalID", principal.ID))

	srv.dispatchRecoveryNotification(ctx, principal.Email, principal.Name, token)

	return &usecase.RecoveryTokenOutput{Token: token, ExpiresAt: record.ExpiresAt}, nil
}

// ResetPasswordWithToken redeems a token. The token delete inside the transaction
// decides the winner among concurrent redeemers.
func (srv *authService) ResetPasswordWithToken(ctx context.Context, input *usecase.ResetPasswordInput) (bool, error) {
	if input.Token == "" || input.NewPassword == "" {
		return false, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("Token e nova senha são obrigatórios."))
	}

	tokenHash := srv.tokens.Hash(input.Token)

	record, err := srv.tokenRepo.FindByTokenHash(ctx, tokenHash)
	if errors.Is(err, domainerrors.ErrRecoveryTokenNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to look up recovery token")
	}

	if srv.enforceExpiry && record.IsExpired(srv.now()) {
		if err := srv.tokenRepo.DeleteByTokenHash(ctx, tokenHash); err != nil && !errors.Is(err, domainerrors.ErrRecoveryTokenNotFound) {
			srv.log(ctx).Warn("Failed to delete expired recovery token", slog.Any("error", err))
		}

		return false, nil
	}

	if !record.PrincipalKind.IsValid() {
		srv.log(ctx).Error("Recovery token carries an invalid principal kind", slog.String("kind", record.PrincipalKind.String()))

		return false, errors.WithStack(domainerrors.ErrInvalidPrincipalKind)
	}

	// Tokens of removed principals are discarded before any hashing work.
	if _, err := srv.principalRepo.FindByID(ctx, record.PrincipalKind, record.PrincipalID); err != nil {
		if errors.Is(err, domainerrors.ErrPrincipalNotFound) {
			srv.discardOrphanToken(ctx, tokenHash)

			return false, nil
		}

		return false, errors.Wrap(err, "failed to look up recovery token owner")
	}

	passwordHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return false, err
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewPrincipalRepository().UpdatePasswordHash(ctx, record.PrincipalKind, record.PrincipalID, passwordHash); err != nil {
			return err
		}

		return repoFactory.NewRecoveryTokenRepository().DeleteByTokenHash(ctx, tokenHash)
	})
	switch {
	case err == nil:
	case errors.Is(err, domainerrors.ErrRecoveryTokenNotFound):
		srv.log(ctx).Info("Recovery token already consumed")

		return false, nil
	case errors.Is(err, domainerrors.ErrPrincipalNotFound):
		// The principal vanished between the lookup and the update.
		srv.discardOrphanToken(ctx, tokenHash)

		return false, nil
	default:
		srv.log(ctx).Error("Failed to execute password reset transaction", slog.Any("error", err))

		return false, errors.Wrap(err, "failed to execute password reset transaction")
	}

	srv.log(ctx).Info("Password reset completed", slog.String("kind", record.PrincipalKind.String()), slog.Int64("principalID", record.PrincipalID))

	return true, nil
}

func (srv *authService) discardOrphanToken(ctx context.Context, tokenHash string) {
	if err := srv.tokenRepo.DeleteByTokenHash(ctx, tokenHash); err != nil && !errors.Is(err, domainerrors.ErrRecoveryTokenNotFound) {
		srv.log(ctx).Warn("Failed to delete orphaned recovery token", slog.Any("error", err))
	}
}

// Wait blocks until every detached notification dispatch has returned.
func (srv *authService) Wait() {
	srv.inflight.Wait()
}

func (srv *authService) findAnyByEmail(ctx context.Context, email string) (*entity.Principal, error) {
	for _, kind := range loginOrder {
		principal, err := srv.principalRepo.FindByEmail(ctx, kind, email)
		if errors.Is(err, domainerrors.ErrPrincipalNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to look up %s", kind)
		}

		return principal, nil
	}

	return nil, nil
}

func (srv *authService) dispatchRecoveryNotification(ctx context.Context, email, name, token string) {
	logger := srv.log(ctx)
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), srv.notifyTimeout)

	srv.inflight.Add(1)
	go func() {
		defer srv.inflight.Done()
		defer cancel()

		if err := srv.notifier.SendRecoveryInstructions(notifyCtx, email, name, token); err != nil {
			logger.Warn("Failed to send recovery instructions", slog.String("email", email), slog.Any("error", err))
		}
	}()
}

// placeholderHash is computed once at the configured cost, so unknown-email
// comparisons cost the same as real ones.
func (srv *authService) placeholderHash() string {
	srv.dummyOnce.Do(func() {
		hash, err := srv.hasher.Hash(dummyPassword)
		if err != nil {
			srv.logger.Warn("Failed to compute placeholder hash", slog.Any("error", err))

			return
		}
		srv.dummyHash = hash
	})

	return srv.dummyHash
}
