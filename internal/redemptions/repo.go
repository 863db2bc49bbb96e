package redemptions

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	baserepo "github.com/offerhubhq/offerhub-backend/internal/repo"
	"github.com/offerhubhq/offerhub-backend/pkg/db/models"
)

// Repository persists redemption outcomes.
type Repository interface {
	ApplyWithTx(tx *gorm.DB, codeID uuid.UUID, amount decimal.Decimal) (int64, error)
	RecordWithTx(tx *gorm.DB, redemption *models.Redemption) error
	ListByCode(ctx context.Context, codeID uuid.UUID) ([]models.Redemption, error)
}

type repository struct {
	baserepo.Base
}

// NewRepository returns a redemption repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: baserepo.NewBase(db)}
}

// ApplyWithTx bumps the code's usage counter and savings total in a single
// conditional UPDATE. The usage guard is re-checked in the WHERE clause so
// concurrent redeemers can never push usage_count past max_uses; a zero
// rows-affected result means this caller lost the race or the code was
// deactivated underneath it.
func (r *repository) ApplyWithTx(tx *gorm.DB, codeID uuid.UUID, amount decimal.Decimal) (int64, error) {
	res := tx.Model(&models.DiscountCode{}).
		Where("id = ?", codeID).
		Where("is_active = ?", true).
		Where("max_uses IS NULL OR usage_count < max_uses").
		Updates(map[string]any{
			"usage_count":   gorm.Expr("usage_count + 1"),
			"total_savings": gorm.Expr("total_savings + ?", amount),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) RecordWithTx(tx *gorm.DB, redemption *models.Redemption) error {
	return tx.Create(redemption).Error
}

func (r *repository) ListByCode(ctx context.Context, codeID uuid.UUID) ([]models.Redemption, error) {
	var rows []models.Redemption
	err := r.DB(ctx).
		Where("code_id = ?", codeID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
