package merchants

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	baserepo "github.com/offerhubhq/offerhub-backend/internal/repo"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
)

// Repository handles merchant persistence.
type Repository interface {
	Create(ctx context.Context, merchant *models.Merchant) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error)
	FindByEmail(ctx context.Context, email string) (*models.Merchant, error)
}

type repository struct {
	baserepo.Base
}

// NewRepository returns a merchant repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: baserepo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, merchant *models.Merchant) error {
	return r.DB(ctx).Create(merchant).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.DB(ctx).First(&merchant, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.DB(ctx).First(&merchant, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}
