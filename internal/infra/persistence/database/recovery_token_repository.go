package database

import (
	"context"

	"energyfit/internal/domain/entity"
	domainerrors "energyfit/internal/domain/errors"
	"energyfit/internal/domain/repository"
	"energyfit/internal/errors"
	"energyfit/internal/infra/persistence/model"

	"gorm.io/gorm"
)

// recoveryTokenRepository implements repository.RecoveryTokenRepository over tokens_recuperacao.
type recoveryTokenRepository struct {
	db *gorm.DB
}

// NewRecoveryTokenRepository is the constructor for recoveryTokenRepository.
func NewRecoveryTokenRepository(db *gorm.DB) repository.RecoveryTokenRepository {
	return &recoveryTokenRepository{db: db}
}

// Create persists a new outstanding token.
func (repo *recoveryTokenRepository) Create(ctx context.Context, token *entity.RecoveryToken) error {
	tokenM := fromRecoveryTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrInternalError.WrapMessage("recovery token hash collision")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create recovery token")
	}

	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindByTokenHash retrieves a token row by its digest. Expiry is the caller's decision.
func (repo *recoveryTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.RecoveryToken, error) {
	var tokenM model.TokenRecuperacaoModel
	if err := repo.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&tokenM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(domainerrors.ErrRecoveryTokenNotFound)
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find recovery token")
	}

	return toRecoveryTokenDomain(&tokenM), nil
}

// DeleteByTokenHash consumes a token. Only the caller whose DELETE removed the row succeeds.
func (repo *recoveryTokenRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	result := repo.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Delete(&model.TokenRecuperacaoModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete recovery token")
	}

	if result.RowsAffected == 0 {
		return errors.WithStack(domainerrors.ErrRecoveryTokenNotFound)
	}

	return nil
}

func toRecoveryTokenDomain(tokenM *model.TokenRecuperacaoModel) *entity.RecoveryToken {
	return &entity.RecoveryToken{
		PrincipalID:   tokenM.UsuarioID,
		PrincipalKind: entity.PrincipalKind(tokenM.TipoUsuario),
		TokenHash:     tokenM.TokenHash,
		ExpiresAt:     tokenM.Expiracao,
		CreatedAt:     tokenM.CreatedAt,
	}
}

func fromRecoveryTokenDomain(token *entity.RecoveryToken) *model.TokenRecuperacaoModel {
	return &model.TokenRecuperacaoModel{
		UsuarioID:   token.PrincipalID,
		TipoUsuario: token.PrincipalKind.String(),
		TokenHash:   token.TokenHash,
		Expiracao:   token.ExpiresAt.UTC(),
	}
}
