package service

import (
	"context"
	"errors"
	"fmt"

	"carbonledger/internal/dto"
	"carbonledger/internal/model"
	"carbonledger/internal/repository"

	"github.com/google/uuid"
)

// EntryService manages the two entry kinds of a product: material lines and
// upstream transport legs. A transport leg may reference a material entry;
// the reference must stay within the same product.
type EntryService interface {
	CreateMaterial(ctx context.Context, productID uuid.UUID, req dto.CreateMaterialEntryRequest) (*dto.MaterialEntryResponse, error)
	UpdateMaterial(ctx context.Context, productID, id uuid.UUID, req dto.UpdateMaterialEntryRequest) (*dto.MaterialEntryResponse, error)
	DeleteMaterial(ctx context.Context, productID, id uuid.UUID) error

	CreateTransport(ctx context.Context, productID uuid.UUID, req dto.CreateTransportEntryRequest) (*dto.TransportEntryResponse, error)
	UpdateTransport(ctx context.Context, productID, id uuid.UUID, req dto.UpdateTransportEntryRequest) (*dto.TransportEntryResponse, error)
	DeleteTransport(ctx context.Context, productID, id uuid.UUID) error
}

type entryService struct {
	repo        repository.EntryRepository
	productRepo repository.ProductRepository
}

func NewEntryService(repo repository.EntryRepository, productRepo repository.ProductRepository) EntryService {
	return &entryService{repo: repo, productRepo: productRepo}
}

// ── Material entries ─────────────────────────────────────────────────────────

func (s *entryService) CreateMaterial(ctx context.Context, productID uuid.UUID, req dto.CreateMaterialEntryRequest) (*dto.MaterialEntryResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, errors.New("product not found")
	}

	pos, err := s.repo.NextMaterialPosition(ctx, productID)
	if err != nil {
		return nil, err
	}

	e := &model.MaterialEntry{
		ProductID:        productID,
		Name:             req.Name,
		WeightKg:         req.WeightKg,
		MaterialFactorID: req.MaterialFactorID,
		CustomFactor:     zeroIfNil(req.CustomFactor),
		UseCustomFactor:  req.UseCustomFactor,
		Position:         pos,
	}
	if err := s.repo.CreateMaterial(ctx, e); err != nil {
		return nil, err
	}
	resp := materialEntryToResponse(e)
	return &resp, nil
}

func (s *entryService) UpdateMaterial(ctx context.Context, productID, id uuid.UUID, req dto.UpdateMaterialEntryRequest) (*dto.MaterialEntryResponse, error) {
	e, err := s.repo.FindMaterialByID(ctx, id)
	if err != nil || e.ProductID != productID {
		return nil, errors.New("material entry not found")
	}

	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.WeightKg != nil {
		e.WeightKg = *req.WeightKg
	}
	if req.MaterialFactorID != nil {
		e.MaterialFactorID = req.MaterialFactorID
	}
	if req.CustomFactor != nil {
		e.CustomFactor = *req.CustomFactor
	}
	if req.UseCustomFactor != nil {
		e.UseCustomFactor = *req.UseCustomFactor
	}

	if err := s.repo.UpdateMaterial(ctx, e); err != nil {
		return nil, err
	}
	resp := materialEntryToResponse(e)
	return &resp, nil
}

func (s *entryService) DeleteMaterial(ctx context.Context, productID, id uuid.UUID) error {
	e, err := s.repo.FindMaterialByID(ctx, id)
	if err != nil || e.ProductID != productID {
		return errors.New("material entry not found")
	}
	// Transport legs referencing this material go with it.
	return s.repo.DeleteMaterial(ctx, id)
}

// ── Transport entries ────────────────────────────────────────────────────────

func (s *entryService) CreateTransport(ctx context.Context, productID uuid.UUID, req dto.CreateTransportEntryRequest) (*dto.TransportEntryResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, errors.New("product not found")
	}

	materialID, err := s.resolveMaterialRef(ctx, productID, req.MaterialEntryID)
	if err != nil {
		return nil, err
	}

	pos, err := s.repo.NextTransportPosition(ctx, productID)
	if err != nil {
		return nil, err
	}

	e := &model.TransportEntry{
		ProductID:         productID,
		MaterialEntryID:   materialID,
		WeightKg:          req.WeightKg,
		DistanceKm:        req.DistanceKm,
		TransportFactorID: req.TransportFactorID,
		Position:          pos,
	}
	if err := s.repo.CreateTransport(ctx, e); err != nil {
		return nil, err
	}
	resp := transportEntryToResponse(e)
	return &resp, nil
}

func (s *entryService) UpdateTransport(ctx context.Context, productID, id uuid.UUID, req dto.UpdateTransportEntryRequest) (*dto.TransportEntryResponse, error) {
	e, err := s.repo.FindTransportByID(ctx, id)
	if err != nil || e.ProductID != productID {
		return nil, errors.New("transport entry not found")
	}

	if req.MaterialEntryID != nil {
		materialID, err := s.resolveMaterialRef(ctx, e.ProductID, req.MaterialEntryID)
		if err != nil {
			return nil, err
		}
		e.MaterialEntryID = materialID
	}
	if req.WeightKg != nil {
		e.WeightKg = *req.WeightKg
	}
	if req.DistanceKm != nil {
		e.DistanceKm = *req.DistanceKm
	}
	if req.TransportFactorID != nil {
		e.TransportFactorID = req.TransportFactorID
	}

	if err := s.repo.UpdateTransport(ctx, e); err != nil {
		return nil, err
	}
	resp := transportEntryToResponse(e)
	return &resp, nil
}

func (s *entryService) DeleteTransport(ctx context.Context, productID, id uuid.UUID) error {
	e, err := s.repo.FindTransportByID(ctx, id)
	if err != nil || e.ProductID != productID {
		return errors.New("transport entry not found")
	}
	return s.repo.DeleteTransport(ctx, id)
}

// resolveMaterialRef parses and validates an optional material entry reference.
// The referenced entry must belong to productID.
func (s *entryService) resolveMaterialRef(ctx context.Context, productID uuid.UUID, ref *string) (*uuid.UUID, error) {
	if ref == nil || *ref == "" {
		return nil, nil
	}
	mid, err := uuid.Parse(*ref)
	if err != nil {
		return nil, fmt.Errorf("invalid material_entry_id: %w", err)
	}
	material, err := s.repo.FindMaterialByID(ctx, mid)
	if err != nil {
		return nil, errors.New("material entry not found")
	}
	if material.ProductID != productID {
		return nil, errors.New("material entry belongs to a different product")
	}
	return &mid, nil
}
