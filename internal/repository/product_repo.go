package repository

import (
	"context"

	"carbonledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// FindByIDWithEntries preloads material and transport entries in their
	// entry order — the shape the footprint calculator consumes.
	FindByIDWithEntries(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	// Delete removes the product; entries go with it (FK ON DELETE CASCADE).
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindByIDWithEntries(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("MaterialEntries", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("TransportEntries", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&p, id).Error
	return &p, err
}

func (r *productRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at asc").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}
