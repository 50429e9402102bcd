package database

import (
	"context"
	"time"

	"energyfit/internal/domain/entity"
	domainerrors "energyfit/internal/domain/errors"
	"energyfit/internal/domain/repository"
	"energyfit/internal/errors"
	"energyfit/internal/infra/persistence/model"

	"gorm.io/gorm"
)

// sessionRepository stores sessions in the sessoes table.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	session.CreatedAt = sessionM.CreatedAt

	return nil
}

func (repo *sessionRepository) FindByIDHash(ctx context.Context, idHash string) (*entity.Session, error) {
	var sessionM model.SessaoModel
	if err := repo.db.WithContext(ctx).Where("id_hash = ?", idHash).First(&sessionM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(domainerrors.ErrSessionNotFound)
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find session")
	}

	return toSessionDomain(&sessionM), nil
}

func (repo *sessionRepository) Touch(ctx context.Context, idHash string, expiresAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.SessaoModel{}).
		Where("id_hash = ?", idHash).
		Update("expira_em", expiresAt.UTC())
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to touch session")
	}

	if result.RowsAffected == 0 {
		return errors.WithStack(domainerrors.ErrSessionNotFound)
	}

	return nil
}

func (repo *sessionRepository) Delete(ctx context.Context, idHash string) error {
	if err := repo.db.WithContext(ctx).
		Where("id_hash = ?", idHash).
		Delete(&model.SessaoModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete session")
	}

	return nil
}

func (repo *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expira_em < ?", now.UTC()).
		Delete(&model.SessaoModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to purge expired sessions")
	}

	return result.RowsAffected, nil
}

func toSessionDomain(sessionM *model.SessaoModel) *entity.Session {
	return &entity.Session{
		IDHash: sessionM.IDHash,
		Principal: entity.PrincipalView{
			ID:    sessionM.UsuarioID,
			Name:  sessionM.Nome,
			Email: sessionM.Email,
			Kind:  entity.PrincipalKind(sessionM.TipoUsuario),
		},
		ExpiresAt: sessionM.ExpiraEm,
		CreatedAt: sessionM.CreatedAt,
	}
}

func fromSessionDomain(session *entity.Session) *model.SessaoModel {
	return &model.SessaoModel{
		IDHash:      session.IDHash,
		UsuarioID:   session.Principal.ID,
		TipoUsuario: session.Principal.Kind.String(),
		Nome:        session.Principal.Name,
		Email:       session.Principal.Email,
		ExpiraEm:    session.ExpiresAt.UTC(),
	}
}
