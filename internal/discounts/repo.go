package discounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	baserepo "github.com/offerhubhq/offerhub-backend/internal/repo"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
)

// Repository handles discount code persistence. Counter mutations live in the
// redemptions package; this repository never touches usage_count.
type Repository interface {
	Create(ctx context.Context, code *models.DiscountCode) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DiscountCode, error)
	FindByCode(ctx context.Context, normalized string) (*models.DiscountCode, error)
	Update(ctx context.Context, code *models.DiscountCode) error
	ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.DiscountCode, error)
}

type repository struct {
	baserepo.Base
}

// NewRepository returns a discount code repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: baserepo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, code *models.DiscountCode) error {
	return r.DB(ctx).Create(code).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DiscountCode, error) {
	var code models.DiscountCode
	err := r.DB(ctx).First(&code, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) FindByCode(ctx context.Context, normalized string) (*models.DiscountCode, error) {
	var code models.DiscountCode
	err := r.DB(ctx).First(&code, "code = ?", normalized).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) Update(ctx context.Context, code *models.DiscountCode) error {
	return r.DB(ctx).Save(code).Error
}

func (r *repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.DiscountCode, error) {
	var codes []models.DiscountCode
	err := r.DB(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&codes).Error
	return codes, err
}
