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

// principalRepository implements repository.PrincipalRepository over the
// administradores and vendedores tables.
type principalRepository struct {
	db *gorm.DB
}

// NewPrincipalRepository is the constructor for principalRepository.
func NewPrincipalRepository(db *gorm.DB) repository.PrincipalRepository {
	return &principalRepository{db: db}
}

// FindByEmail looks the email up in the table owned by kind.
func (repo *principalRepository) FindByEmail(ctx context.Context, kind entity.PrincipalKind, email string) (*entity.Principal, error) {
	switch kind {
	case entity.PrincipalKindAdmin:
		var adminM model.AdministradorModel
		if err := repo.db.WithContext(ctx).Where("email = ?", email).First(&adminM).Error; err != nil {
			return nil, mapPrincipalLookupError(err, "failed to find administrator by email")
		}

		return toAdminDomain(&adminM), nil
	case entity.PrincipalKindSeller:
		var sellerM model.VendedorModel
		if err := repo.db.WithContext(ctx).Where("email = ?", email).First(&sellerM).Error; err != nil {
			return nil, mapPrincipalLookupError(err, "failed to find seller by email")
		}

		return toSellerDomain(&sellerM), nil
	default:
		return nil, invalidKindError(kind)
	}
}

// FindByID retrieves a principal by identifier within the table owned by kind.
func (repo *principalRepository) FindByID(ctx context.Context, kind entity.PrincipalKind, id int64) (*entity.Principal, error) {
	switch kind {
	case entity.PrincipalKindAdmin:
		var adminM model.AdministradorModel
		if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&adminM).Error; err != nil {
			return nil, mapPrincipalLookupError(err, "failed to find administrator by id")
		}

		return toAdminDomain(&adminM), nil
	case entity.PrincipalKindSeller:
		var sellerM model.VendedorModel
		if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&sellerM).Error; err != nil {
			return nil, mapPrincipalLookupError(err, "failed to find seller by id")
		}

		return toSellerDomain(&sellerM), nil
	default:
		return nil, invalidKindError(kind)
	}
}

// Create inserts the principal into the table selected by principal.Kind.
func (repo *principalRepository) Create(ctx context.Context, principal *entity.Principal) error {
	switch principal.Kind {
	case entity.PrincipalKindAdmin:
		adminM := fromAdminDomain(principal)
		if err := repo.db.WithContext(ctx).Create(adminM).Error; err != nil {
			return mapPrincipalWriteError(err, "failed to create administrator")
		}
		principal.ID = adminM.ID
		principal.CreatedAt = adminM.CreatedAt
	case entity.PrincipalKindSeller:
		sellerM := fromSellerDomain(principal)
		if err := repo.db.WithContext(ctx).Create(sellerM).Error; err != nil {
			return mapPrincipalWriteError(err, "failed to create seller")
		}
		principal.ID = sellerM.ID
		principal.CreatedAt = sellerM.CreatedAt
	default:
		return invalidKindError(principal.Kind)
	}

	return nil
}

// UpdatePasswordHash overwrites the stored hash of one principal.
func (repo *principalRepository) UpdatePasswordHash(ctx context.Context, kind entity.PrincipalKind, id int64, passwordHash string) error {
	var target any
	switch kind {
	case entity.PrincipalKindAdmin:
		target = &model.AdministradorModel{}
	case entity.PrincipalKindSeller:
		target = &model.VendedorModel{}
	default:
		return invalidKindError(kind)
	}

	result := repo.db.WithContext(ctx).
		Model(target).
		Where("id = ?", id).
		Updates(map[string]any{
			"senha":      passwordHash,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update password hash")
	}

	if result.RowsAffected == 0 {
		return errors.WithStack(domainerrors.ErrPrincipalNotFound)
	}

	return nil
}

func mapPrincipalLookupError(err error, details string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.WithStack(domainerrors.ErrPrincipalNotFound)
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}

func mapPrincipalWriteError(err error, details string) error {
	if isUniqueConstraintViolation(err) {
		return domainerrors.ErrDuplicateEmail.WrapMessage(details)
	}
	if isNotNullConstraintViolation(err) {
		return domainerrors.ErrValidationFailed.WrapMessage("missing required principal information")
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}

func invalidKindError(kind entity.PrincipalKind) error {
	return domainerrors.ErrInvalidPrincipalKind.WrapMessage("unsupported principal kind " + kind.String())
}

func toAdminDomain(adminM *model.AdministradorModel) *entity.Principal {
	return &entity.Principal{
		ID:           adminM.ID,
		Kind:         entity.PrincipalKindAdmin,
		Name:         adminM.Nome,
		Email:        adminM.Email,
		PasswordHash: adminM.Senha,
		CreatedAt:    adminM.CreatedAt,
	}
}

func fromAdminDomain(principal *entity.Principal) *model.AdministradorModel {
	return &model.AdministradorModel{
		ID:    principal.ID,
		Nome:  principal.Name,
		Email: principal.Email,
		Senha: principal.PasswordHash,
	}
}

func toSellerDomain(sellerM *model.VendedorModel) *entity.Principal {
	return &entity.Principal{
		ID:           sellerM.ID,
		Kind:         entity.PrincipalKindSeller,
		Name:         sellerM.Nome,
		Email:        sellerM.Email,
		PasswordHash: sellerM.Senha,
		Phone:        sellerM.Telefone,
		CreatedAt:    sellerM.CreatedAt,
	}
}

func fromSellerDomain(principal *entity.Principal) *model.VendedorModel {
	return &model.VendedorModel{
		ID:       principal.ID,
		Nome:     principal.Name,
		Email:    principal.Email,
		Senha:    principal.PasswordHash,
		Telefone: principal.Phone,
	}
}
