package footprint_test

import (
	"testing"

	"carbonledger/internal/footprint"
	"carbonledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

// testTables mirrors a small slice of the built-in catalog.
func testTables() footprint.Tables {
	return footprint.NewTables(
		[]model.MaterialFactor{
			{ID: "aluminium_ingot", Name: "Aluminium (primary ingot)", Factor: dec("6.7")},
			{ID: "pet_resin", Name: "PET resin", Factor: dec("2.15")},
		},
		[]model.TransportFactor{
			{ID: "truck_10t", Name: "Truck, 10 t payload", Factor: dec("0.131")},
			{ID: "rail_freight", Name: "Rail freight", Factor: dec("0.022")},
		},
		[]model.ElectricityFactor{
			{Year: 2024, Factor: dec("0.424")},
			{Year: 2023, Factor: dec("0.438")},
		},
	)
}

func assertDecEq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

// ── Stage A: materials ────────────────────────────────────────────────────────

func TestCalculate_Materials_CatalogFactor(t *testing.T) {
	p := &model.Product{
		Year: 2024,
		MaterialEntries: []model.MaterialEntry{
			{Name: "housing", WeightKg: dec("10"), MaterialFactorID: strPtr("aluminium_ingot")},
		},
	}

	b := footprint.Calculate(p, testTables())

	assertDecEq(t, "67", b.Materials)
	assertDecEq(t, "67", b.Total)
}

func TestCalculate_Materials_CustomFactorWins(t *testing.T) {
	// Custom factor applies even when a catalog reference is also present.
	p := &model.Product{
		Year: 2024,
		MaterialEntries: []model.MaterialEntry{
			{
				Name:             "recycled housing",
				WeightKg:         dec("10"),
				MaterialFactorID: strPtr("aluminium_ingot"),
				UseCustomFactor:  true,
				CustomFactor:     dec("0.6"),
			},
		},
	}

	b := footprint.Calculate(p, testTables())
	assertDecEq(t, "6", b.Materials)
}

func TestCalculate_Materials_UnknownFactorContributesZero(t *testing.T) {
	p := &model.Product{
		Year: 2024,
		MaterialEntries: []model.MaterialEntry{
			{Name: "mystery alloy", WeightKg: dec("50"), MaterialFactorID: strPtr("not_in_catalog")},
			{Name: "no reference at all", WeightKg: dec("50")},
			{Name: "bottle", WeightKg: dec("2"), MaterialFactorID: strPtr("pet_resin")},
		},
	}

	b := footprint.Calculate(p, testTables())

	// Only the resolvable entry counts: 2 × 2.15
	assertDecEq(t, "4.3", b.Materials)
}

func TestCalculate_Materials_Linearity(t *testing.T) {
	entry := model.MaterialEntry{Name: "sheet", WeightKg: dec("3.5"), MaterialFactorID: strPtr("aluminium_ingot")}
	single := &model.Product{Year: 2024, MaterialEntries: []model.MaterialEntry{entry}}

	doubled := entry
	doubled.WeightKg = entry.WeightKg.Mul(dec("2"))
	double := &model.Product{Year: 2024, MaterialEntries: []model.MaterialEntry{doubled}}

	bs := footprint.Calculate(single, testTables())
	bd := footprint.Calculate(double, testTables())

	assert.True(t, bs.Materials.Mul(dec("2")).Equal(bd.Materials),
		"doubling the weight must double the stage subtotal")
}

// ── Stage B: upstream transport ───────────────────────────────────────────────

func TestCalculate_UpstreamTransport_TonneKm(t *testing.T) {
	// 1000 kg = 1 t over 100 km by 10 t truck: 1 × 100 × 0.131
	p := &model.Product{
		Year: 2024,
		TransportEntries: []model.TransportEntry{
			{WeightKg: dec("1000"), DistanceKm: dec("100"), TransportFactorID: strPtr("truck_10t")},
		},
	}

	b := footprint.Calculate(p, testTables())
	assertDecEq(t, "13.1", b.UpstreamTransport)
}

func TestCalculate_UpstreamTransport_ZeroDistance(t *testing.T) {
	p := &model.Product{
		Year: 2024,
		TransportEntries: []model.TransportEntry{
			{WeightKg: dec("500"), DistanceKm: decimal.Zero, TransportFactorID: strPtr("truck_10t")},
		},
	}

	b := footprint.Calculate(p, testTables())
	assert.True(t, b.UpstreamTransport.IsZero())
}

func TestCalculate_UpstreamTransport_MultipleLegs(t *testing.T) {
	// 2 t × 300 km rail + 2 t × 40 km truck: 13.2 + 10.48
	p := &model.Product{
		Year: 2024,
		TransportEntries: []model.TransportEntry{
			{WeightKg: dec("2000"), DistanceKm: dec("300"), TransportFactorID: strPtr("rail_freight")},
			{WeightKg: dec("2000"), DistanceKm: dec("40"), TransportFactorID: strPtr("truck_10t")},
		},
	}

	b := footprint.Calculate(p, testTables())
	assertDecEq(t, "23.68", b.UpstreamTransport)
}

// ── Stage C: manufacturing electricity ────────────────────────────────────────

func TestCalculate_Manufacturing_PerUnit(t *testing.T) {
	p := &model.Product{
		Year:           2024,
		ElectricityKWh: dec("2.5"),
		AllocationMode: model.AllocationPerUnit,
	}

	b := footprint.Calculate(p, testTables())
	assertDecEq(t, "1.06", b.Manufacturing) // 2.5 × 0.424
}

func TestCalculate_Manufacturing_Allocated(t *testing.T) {
	p := &model.Product{
		Year:           2024,
		ElectricityKWh: dec("1000"),
		AllocationMode: model.AllocationAllocated,
		TotalOutput:    500,
	}

	b := footprint.Calculate(p, testTables())
	assertDecEq(t, "0.848", b.Manufacturing) // (1000/500) × 0.424
}

func TestCalculate_Manufacturing_AllocatedZeroOutput(t *testing.T) {
	// A zero production run is treated as a single unit, never a division by zero.
	p := &model.Product{
		Year:           2024,
		ElectricityKWh: dec("1000"),
		AllocationMode: model.AllocationAllocated,
		TotalOutput:    0,
	}

	b := footprint.Calculate(p, testTables())
	assertDecEq(t, "424", b.Manufacturing)
}

func TestCalculate_Manufacturing_UnknownYearFallsBack(t *testing.T) {
	p := &model.Product{
		Year:           1999,
		ElectricityKWh: dec("10"),
		AllocationMode: model.AllocationPerUnit,
	}

	b := footprint.Calculate(p, testTables())
	assertDecEq(t, "4.41", b.Manufacturing) // 10 × default 0.441
}

// ── Stage D: distribution ─────────────────────────────────────────────────────

func TestCalculate_Distribution_SingleLeg(t *testing.T) {
	// 500 kg = 0.5 t over 200 km by 10 t truck: 0.5 × 200 × 0.131
	p := &model.Product{
		Year:                   2024,
		DistributionWeightKg:   dec("500"),
		DistributionDistanceKm: dec("200"),
		DistributionVehicleID:  strPtr("truck_10t"),
	}

	b := footprint.Calculate(p, testTables())
	assertDecEq(t, "13.1", b.Distribution)
}

func TestCalculate_Distribution_NoVehicle(t *testing.T) {
	p := &model.Product{
		Year:                   2024,
		DistributionWeightKg:   dec("500"),
		DistributionDistanceKm: dec("200"),
	}

	b := footprint.Calculate(p, testTables())
	assert.True(t, b.Distribution.IsZero())
}

// ── Override and totals ───────────────────────────────────────────────────────

func TestCalculate_OverridePassesThroughVerbatim(t *testing.T) {
	// Supplier-declared figures are not rounded; stages stay zero.
	p := &model.Product{
		Year:            2024,
		OverrideEnabled: true,
		OverrideTotal:   dec("123.456789"),
		MaterialEntries: []model.MaterialEntry{
			{Name: "ignored", WeightKg: dec("10"), MaterialFactorID: strPtr("aluminium_ingot")},
		},
	}

	b := footprint.Calculate(p, testTables())

	assertDecEq(t, "123.456789", b.Total)
	assert.True(t, b.Materials.IsZero())
	assert.True(t, b.UpstreamTransport.IsZero())
	assert.True(t, b.Manufacturing.IsZero())
	assert.True(t, b.Distribution.IsZero())
}

func TestCalculate_EmptyProductIsZero(t *testing.T) {
	b := footprint.Calculate(&model.Product{Year: 2024}, testTables())

	assert.True(t, b.Materials.IsZero())
	assert.True(t, b.UpstreamTransport.IsZero())
	assert.True(t, b.Manufacturing.IsZero())
	assert.True(t, b.Distribution.IsZero())
	assert.True(t, b.Total.IsZero())
}

func TestCalculate_TotalIsSumOfStages(t *testing.T) {
	p := &model.Product{
		Year:           2024,
		ElectricityKWh: dec("2.5"),
		AllocationMode: model.AllocationPerUnit,
		MaterialEntries: []model.MaterialEntry{
			{Name: "housing", WeightKg: dec("10"), MaterialFactorID: strPtr("aluminium_ingot")},
		},
		TransportEntries: []model.TransportEntry{
			{WeightKg: dec("1000"), DistanceKm: dec("100"), TransportFactorID: strPtr("truck_10t")},
		},
		DistributionWeightKg:   dec("500"),
		DistributionDistanceKm: dec("200"),
		DistributionVehicleID:  strPtr("truck_10t"),
	}

	b := footprint.Calculate(p, testTables())

	sum := b.Materials.Add(b.UpstreamTransport).Add(b.Manufacturing).Add(b.Distribution)
	assert.True(t, sum.Equal(b.Total))
	assertDecEq(t, "94.26", b.Total) // 67 + 13.1 + 1.06 + 13.1
}

func TestCalculate_RoundsToFourDecimals(t *testing.T) {
	// 0.123 kg × 6.7 = 0.8241; 0.0123 × 6.7 = 0.08241 → rounds half away from zero
	p := &model.Product{
		Year: 2024,
		MaterialEntries: []model.MaterialEntry{
			{Name: "shaving", WeightKg: dec("0.0123"), MaterialFactorID: strPtr("aluminium_ingot")},
		},
	}

	b := footprint.Calculate(p, testTables())
	assertDecEq(t, "0.0824", b.Materials)
}

// ── Contract aggregation ──────────────────────────────────────────────────────

func TestBreakdownAdd(t *testing.T) {
	a := footprint.Breakdown{
		Materials: dec("1.5"), UpstreamTransport: dec("0.5"),
		Manufacturing: dec("2"), Distribution: dec("1"), Total: dec("5"),
	}
	b := footprint.Breakdown{
		Materials: dec("0.5"), UpstreamTransport: dec("1.5"),
		Manufacturing: dec("1"), Distribution: dec("2"), Total: dec("5"),
	}

	sum := a.Add(b)

	assertDecEq(t, "2", sum.Materials)
	assertDecEq(t, "2", sum.UpstreamTransport)
	assertDecEq(t, "3", sum.Manufacturing)
	assertDecEq(t, "3", sum.Distribution)
	assertDecEq(t, "10", sum.Total)
}
