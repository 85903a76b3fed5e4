package service_test

import (
	"context"
	"errors"
	"testing"

	"carbonledger/internal/dto"
	"carbonledger/internal/model"
	"carbonledger/internal/repository"
	"carbonledger/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory ProductRepository stub ─────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) seed(contractID uuid.UUID, name string) *model.Product {
	p := &model.Product{
		ID: uuid.New(), ContractID: contractID, Name: name,
		Year: 2024, AllocationMode: model.AllocationPerUnit,
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	p.ID = uuid.New()
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return p, nil
}

func (r *stubProductRepo) FindByIDWithEntries(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return p, nil
}

func (r *stubProductRepo) ListByContract(_ context.Context, contractID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.ContractID == contractID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Tests ────────────────────────────────────────────────────────────────────

func TestCreateProduct_OnActiveContract(t *testing.T) {
	contractRepo := newStubContractRepo()
	c := contractRepo.seed("Acme FY26", true)
	productRepo := newStubProductRepo()
	svc := service.NewProductService(productRepo, contractRepo)

	resp, err := svc.Create(context.Background(), c.ID, dto.CreateProductRequest{
		Name: "Kettle K200", Year: 2024,
	})

	require.NoError(t, err)
	assert.Equal(t, c.ID, resp.ContractID)
	assert.Equal(t, model.AllocationPerUnit, resp.Manufacturing.AllocationMode)
	assert.False(t, resp.OverrideEnabled)
}

func TestCreateProduct_InactiveContract(t *testing.T) {
	contractRepo := newStubContractRepo()
	c := contractRepo.seed("Ended engagement", false)
	svc := service.NewProductService(newStubProductRepo(), contractRepo)

	_, err := svc.Create(context.Background(), c.ID, dto.CreateProductRequest{Name: "Kettle", Year: 2024})

	assert.EqualError(t, err, "contract is inactive")
}

func TestCreateProduct_UnknownContract(t *testing.T) {
	svc := service.NewProductService(newStubProductRepo(), newStubContractRepo())

	_, err := svc.Create(context.Background(), uuid.New(), dto.CreateProductRequest{Name: "Kettle", Year: 2024})

	assert.EqualError(t, err, "contract not found")
}

func TestUpdateProduct_ManufacturingBlock(t *testing.T) {
	contractRepo := newStubContractRepo()
	c := contractRepo.seed("Acme", true)
	productRepo := newStubProductRepo()
	p := productRepo.seed(c.ID, "Kettle")
	svc := service.NewProductService(productRepo, contractRepo)

	resp, err := svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		Manufacturing: &dto.ManufacturingRequest{
			ElectricityKWh: dec("1200"),
			AllocationMode: model.AllocationAllocated,
			TotalOutput:    400,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, model.AllocationAllocated, resp.Manufacturing.AllocationMode)
	assert.Equal(t, int64(400), resp.Manufacturing.TotalOutput)
	assert.True(t, dec("1200").Equal(resp.Manufacturing.ElectricityKWh))
}

func TestUpdateProduct_DistributionBlock(t *testing.T) {
	contractRepo := newStubContractRepo()
	c := contractRepo.seed("Acme", true)
	productRepo := newStubProductRepo()
	p := productRepo.seed(c.ID, "Kettle")
	svc := service.NewProductService(productRepo, contractRepo)

	resp, err := svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		Distribution: &dto.DistributionRequest{
			WeightKg:        dec("2.4"),
			DistanceKm:      dec("650"),
			VehicleFactorID: strPtr("trailer_25t"),
		},
	})

	require.NoError(t, err)
	assert.True(t, dec("650").Equal(resp.Distribution.DistanceKm))
	require.NotNil(t, resp.Distribution.VehicleFactorID)
	assert.Equal(t, "trailer_25t", *resp.Distribution.VehicleFactorID)
}

func TestUpdateProduct_OverrideNeedsTotal(t *testing.T) {
	contractRepo := newStubContractRepo()
	c := contractRepo.seed("Acme", true)
	productRepo := newStubProductRepo()
	p := productRepo.seed(c.ID, "Kettle")
	svc := service.NewProductService(productRepo, contractRepo)

	_, err := svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		OverrideEnabled: boolPtr(true),
	})

	assert.EqualError(t, err, "override_total is required when override_enabled is set")
}

func TestUpdateProduct_OverrideWithTotal(t *testing.T) {
	contractRepo := newStubContractRepo()
	c := contractRepo.seed("Acme", true)
	productRepo := newStubProductRepo()
	p := productRepo.seed(c.ID, "Kettle")
	svc := service.NewProductService(productRepo, contractRepo)

	resp, err := svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		OverrideEnabled: boolPtr(true),
		OverrideTotal:   decPtr("42.5"),
	})

	require.NoError(t, err)
	assert.True(t, resp.OverrideEnabled)
	assert.True(t, dec("42.5").Equal(resp.OverrideTotal))
}

func TestListProductsByContract(t *testing.T) {
	contractRepo := newStubContractRepo()
	c := contractRepo.seed("Acme", true)
	other := contractRepo.seed("Other", true)
	productRepo := newStubProductRepo()
	productRepo.seed(c.ID, "Kettle")
	productRepo.seed(c.ID, "Toaster")
	productRepo.seed(other.ID, "Blender")
	svc := service.NewProductService(productRepo, contractRepo)

	resp, err := svc.ListByContract(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Len(t, resp, 2)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	svc := service.NewProductService(newStubProductRepo(), newStubContractRepo())
	err := svc.Delete(context.Background(), uuid.New())
	assert.EqualError(t, err, "product not found")
}
