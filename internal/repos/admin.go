package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/types"
)

type AdminRepo interface {
	Create(ctx context.Context, tx *gorm.DB, admins []*types.Admin) ([]*types.Admin, error)
	Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error)
	TouchLastLogin(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type adminRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdminRepo(db *gorm.DB, baseLog *logger.Logger) AdminRepo {
	repoLog := baseLog.With("repo", "AdminRepo")
	return &adminRepo{db: db, log: repoLog}
}

func (ar *adminRepo) Create(ctx context.Context, tx *gorm.DB, admins []*types.Admin) ([]*types.Admin, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(admins) == 0 {
		return []*types.Admin{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (ar *adminRepo) Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Admin{}).
		Where("id = ?", userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ar *adminRepo) TouchLastLogin(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.Admin{}).
		Where("id = ?", userID).
		Update("last_login", now).Error
}
