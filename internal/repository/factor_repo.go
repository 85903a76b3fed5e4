package repository

import (
	"context"

	"carbonledger/internal/model"

	"gorm.io/gorm"
)

// FactorRepository serves the three emission-factor reference tables and the
// refresh audit log. Material factors are the only table the remote refresh
// touches; transport and electricity factors are seeded constants.
type FactorRepository interface {
	ListMaterialFactors(ctx context.Context) ([]model.MaterialFactor, error)
	ListTransportFactors(ctx context.Context) ([]model.TransportFactor, error)
	ListElectricityFactors(ctx context.Context) ([]model.ElectricityFactor, error)

	// ReplaceMaterialFactors swaps the whole material table in one
	// transaction. Either every row lands or the previous table survives.
	ReplaceMaterialFactors(ctx context.Context, factors []model.MaterialFactor) error

	CreateRefreshLog(ctx context.Context, l *model.FactorRefreshLog) error
	ListRefreshLogs(ctx context.Context, limit int) ([]model.FactorRefreshLog, error)
}

type factorRepo struct{ db *gorm.DB }

func NewFactorRepository(db *gorm.DB) FactorRepository { return &factorRepo{db: db} }

func (r *factorRepo) ListMaterialFactors(ctx context.Context) ([]model.MaterialFactor, error) {
	var factors []model.MaterialFactor
	err := r.db.WithContext(ctx).Order("name asc").Find(&factors).Error
	return factors, err
}

func (r *factorRepo) ListTransportFactors(ctx context.Context) ([]model.TransportFactor, error) {
	var factors []model.TransportFactor
	err := r.db.WithContext(ctx).Order("name asc").Find(&factors).Error
	return factors, err
}

func (r *factorRepo) ListElectricityFactors(ctx context.Context) ([]model.ElectricityFactor, error) {
	var factors []model.ElectricityFactor
	err := r.db.WithContext(ctx).Order("year asc").Find(&factors).Error
	return factors, err
}

func (r *factorRepo) ReplaceMaterialFactors(ctx context.Context, factors []model.MaterialFactor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.MaterialFactor{}).Error; err != nil {
			return err
		}
		if len(factors) == 0 {
			return nil
		}
		return tx.Create(&factors).Error
	})
}

func (r *factorRepo) CreateRefreshLog(ctx context.Context, l *model.FactorRefreshLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *factorRepo) ListRefreshLogs(ctx context.Context, limit int) ([]model.FactorRefreshLog, error) {
	var logs []model.FactorRefreshLog
	err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&logs).Error
	return logs, err
}
