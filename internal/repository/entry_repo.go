package repository

import (
	"context"

	"carbonledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntryRepository covers both entry kinds of a product: material lines
// (stage A) and upstream transport legs (stage B).
type EntryRepository interface {
	CreateMaterial(ctx context.Context, e *model.MaterialEntry) error
	FindMaterialByID(ctx context.Context, id uuid.UUID) (*model.MaterialEntry, error)
	ListMaterialsByProduct(ctx context.Context, productID uuid.UUID) ([]model.MaterialEntry, error)
	UpdateMaterial(ctx context.Context, e *model.MaterialEntry) error
	// DeleteMaterial removes the entry and every transport leg referencing it
	// in one transaction — a leg must not outlive its material.
	DeleteMaterial(ctx context.Context, id uuid.UUID) error
	NextMaterialPosition(ctx context.Context, productID uuid.UUID) (int, error)

	CreateTransport(ctx context.Context, e *model.TransportEntry) error
	FindTransportByID(ctx context.Context, id uuid.UUID) (*model.TransportEntry, error)
	ListTransportsByProduct(ctx context.Context, productID uuid.UUID) ([]model.TransportEntry, error)
	UpdateTransport(ctx context.Context, e *model.TransportEntry) error
	DeleteTransport(ctx context.Context, id uuid.UUID) error
	NextTransportPosition(ctx context.Context, productID uuid.UUID) (int, error)
}

type entryRepo struct{ db *gorm.DB }

func NewEntryRepository(db *gorm.DB) EntryRepository { return &entryRepo{db: db} }

// ── Material entries ─────────────────────────────────────────────────────────

func (r *entryRepo) CreateMaterial(ctx context.Context, e *model.MaterialEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *entryRepo) FindMaterialByID(ctx context.Context, id uuid.UUID) (*model.MaterialEntry, error) {
	var e model.MaterialEntry
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *entryRepo) ListMaterialsByProduct(ctx context.Context, productID uuid.UUID) ([]model.MaterialEntry, error) {
	var entries []model.MaterialEntry
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position asc").
		Find(&entries).Error
	return entries, err
}

func (r *entryRepo) UpdateMaterial(ctx context.Context, e *model.MaterialEntry) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *entryRepo) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	// The FK already cascades; the explicit delete keeps the behavior visible
	// and identical on databases restored without the constraint.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("material_entry_id = ?", id).Delete(&model.TransportEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.MaterialEntry{}, id).Error
	})
}

func (r *entryRepo) NextMaterialPosition(ctx context.Context, productID uuid.UUID) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Model(&model.MaterialEntry{}).
		Where("product_id = ?", productID).
		Select("COALESCE(MAX(position)+1, 0)").
		Scan(&next).Error
	return next, err
}

// ── Transport entries ────────────────────────────────────────────────────────

func (r *entryRepo) CreateTransport(ctx context.Context, e *model.TransportEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *entryRepo) FindTransportByID(ctx context.Context, id uuid.UUID) (*model.TransportEntry, error) {
	var e model.TransportEntry
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *entryRepo) ListTransportsByProduct(ctx context.Context, productID uuid.UUID) ([]model.TransportEntry, error) {
	var entries []model.TransportEntry
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position asc").
		Find(&entries).Error
	return entries, err
}

func (r *entryRepo) UpdateTransport(ctx context.Context, e *model.TransportEntry) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *entryRepo) DeleteTransport(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.TransportEntry{}, id).Error
}

func (r *entryRepo) NextTransportPosition(ctx context.Context, productID uuid.UUID) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Model(&model.TransportEntry{}).
		Where("product_id = ?", productID).
		Select("COALESCE(MAX(position)+1, 0)").
		Scan(&next).Error
	return next, err
}
