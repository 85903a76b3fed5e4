package service_test

import (
	"context"
	"testing"

	"carbonledger/internal/infra"
	"carbonledger/internal/model"
	"carbonledger/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// footprintFixture wires a FootprintService over in-memory repos and the
// builtin factor stub (aluminium_ingot 6.7, truck_10t 0.131, 2024 grid 0.424).
func footprintFixture() (service.FootprintService, *stubProductRepo, *stubContractRepo) {
	products := newStubProductRepo()
	contracts := newStubContractRepo()
	factors := service.NewFactorService(
		newStubFactorRepo(), &stubFactorSource{}, infra.NewCircuitBreaker(infra.DefaultCBConfig()), nil)
	return service.NewFootprintService(products, contracts, factors), products, contracts
}

func TestComputeProduct_AllStages(t *testing.T) {
	svc, products, contracts := footprintFixture()
	c := contracts.seed("Acme 2026", true)

	p := products.seed(c.ID, "Aluminium Bottle 500ml")
	p.MaterialEntries = []model.MaterialEntry{
		{WeightKg: dec("10"), MaterialFactorID: strPtr("aluminium_ingot")},
	}
	p.TransportEntries = []model.TransportEntry{
		{WeightKg: dec("1000"), DistanceKm: dec("100"), TransportFactorID: strPtr("truck_10t")},
	}
	p.ElectricityKWh = dec("2.5")
	p.DistributionWeightKg = dec("500")
	p.DistributionDistanceKm = dec("200")
	p.DistributionVehicleID = strPtr("truck_10t")

	resp, err := svc.ComputeProduct(context.Background(), p.ID)

	require.NoError(t, err)
	assert.Equal(t, p.ID, resp.ProductID)
	assert.Equal(t, "Aluminium Bottle 500ml", resp.ProductName)
	assert.Equal(t, 2024, resp.Year)
	assert.False(t, resp.Overridden)

	assert.True(t, dec("67").Equal(resp.Materials), "materials = %s", resp.Materials)
	assert.True(t, dec("13.1").Equal(resp.UpstreamTransport), "transport = %s", resp.UpstreamTransport)
	assert.True(t, dec("1.06").Equal(resp.Manufacturing), "manufacturing = %s", resp.Manufacturing)
	assert.True(t, dec("13.1").Equal(resp.Distribution), "distribution = %s", resp.Distribution)
	assert.True(t, dec("94.26").Equal(resp.Total), "total = %s", resp.Total)
}

func TestComputeProduct_NotFound(t *testing.T) {
	svc, _, _ := footprintFixture()

	_, err := svc.ComputeProduct(context.Background(), uuid.New())

	require.EqualError(t, err, "product not found")
}

func TestComputeContract_AggregatesProducts(t *testing.T) {
	svc, _, contracts := footprintFixture()
	c := contracts.seed("Acme 2026", true)

	plain := model.Product{
		ID: uuid.New(), ContractID: c.ID, Name: "Bottle", Year: 2024,
		AllocationMode: model.AllocationPerUnit,
		MaterialEntries: []model.MaterialEntry{
			{WeightKg: dec("10"), MaterialFactorID: strPtr("aluminium_ingot")},
		},
	}
	declared := model.Product{
		ID: uuid.New(), ContractID: c.ID, Name: "Cap", Year: 2024,
		OverrideEnabled: true, OverrideTotal: dec("42.5"),
	}
	contracts.products[c.ID] = []model.Product{plain, declared}

	resp, err := svc.ComputeContract(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Equal(t, c.ID, resp.ContractID)
	assert.Equal(t, "Acme 2026", resp.ContractName)
	require.Len(t, resp.Products, 2)

	assert.True(t, dec("67").Equal(resp.Products[0].Total))
	assert.True(t, resp.Products[1].Overridden)
	assert.True(t, dec("42.5").Equal(resp.Products[1].Total))

	// Totals are the element-wise sum; the overridden product contributes
	// only to the grand total.
	assert.True(t, dec("67").Equal(resp.Totals.Materials), "materials total = %s", resp.Totals.Materials)
	assert.True(t, dec("109.5").Equal(resp.Totals.Total), "grand total = %s", resp.Totals.Total)
}

func TestComputeContract_NoProducts(t *testing.T) {
	svc, _, contracts := footprintFixture()
	c := contracts.seed("Empty Contract", true)

	resp, err := svc.ComputeContract(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Empty(t, resp.Products)
	assert.True(t, resp.Totals.Total.IsZero())
}

func TestComputeContract_NotFound(t *testing.T) {
	svc, _, _ := footprintFixture()

	_, err := svc.ComputeContract(context.Background(), uuid.New())

	require.EqualError(t, err, "contract not found")
}
