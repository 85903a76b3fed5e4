package infra

// seed.go — Built-in emission-factor reference data.
// Each table is seeded only when empty, so a catalog installed by a remote
// refresh is never clobbered on restart. Values are kg CO2e per kg (material),
// per tonne-km (transport) and per kWh (electricity).

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"carbonledger/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func builtinMaterialFactors() []model.MaterialFactor {
	rows := []struct {
		id, name, factor string
	}{
		{"aluminium_ingot", "Aluminium (primary ingot)", "6.7"},
		{"aluminium_recycled", "Aluminium (recycled)", "0.6"},
		{"steel_hot_rolled", "Steel (hot rolled coil)", "2.3"},
		{"steel_stainless", "Stainless steel", "4.5"},
		{"copper_wire", "Copper (wire rod)", "3.8"},
		{"zinc_die_cast", "Zinc (die casting alloy)", "3.0"},
		{"pet_resin", "PET resin", "2.15"},
		{"hdpe_resin", "HDPE resin", "1.9"},
		{"pp_resin", "Polypropylene resin", "1.63"},
		{"abs_resin", "ABS resin", "3.1"},
		{"glass_container", "Container glass", "0.85"},
		{"corrugated_board", "Corrugated board", "0.94"},
		{"kraft_paper", "Kraft paper", "1.1"},
		{"natural_rubber", "Natural rubber", "0.65"},
	}
	factors := make([]model.MaterialFactor, 0, len(rows))
	for _, r := range rows {
		factors = append(factors, model.MaterialFactor{
			ID:         r.id,
			Name:       r.name,
			Factor:     dec(r.factor),
			WeightUnit: "kg",
			FactorUnit: "kgCO2e/kg",
			Source:     "builtin",
		})
	}
	return factors
}

func builtinTransportFactors() []model.TransportFactor {
	rows := []struct {
		id, name, factor string
	}{
		{"truck_4t", "Truck, 4 t payload", "0.177"},
		{"truck_10t", "Truck, 10 t payload", "0.131"},
		{"trailer_25t", "Articulated trailer, 25 t", "0.062"},
		{"rail_freight", "Rail freight", "0.022"},
		{"coastal_ship", "Coastal shipping", "0.039"},
		{"air_freight", "Air freight", "1.53"},
	}
	factors := make([]model.TransportFactor, 0, len(rows))
	for _, r := range rows {
		factors = append(factors, model.TransportFactor{
			ID:     r.id,
			Name:   r.name,
			Factor: dec(r.factor),
		})
	}
	return factors
}

func builtinElectricityFactors() []model.ElectricityFactor {
	rows := []struct {
		year   int
		factor string
	}{
		{2018, "0.487"},
		{2019, "0.470"},
		{2020, "0.462"},
		{2021, "0.451"},
		{2022, "0.446"},
		{2023, "0.438"},
		{2024, "0.424"},
	}
	factors := make([]model.ElectricityFactor, 0, len(rows))
	for _, r := range rows {
		factors = append(factors, model.ElectricityFactor{Year: r.year, Factor: dec(r.factor)})
	}
	return factors
}

// SeedReferenceData installs the built-in factor tables on first boot.
func SeedReferenceData(db *gorm.DB) error {
	var n int64

	if err := db.Model(&model.MaterialFactor{}).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		factors := builtinMaterialFactors()
		if err := db.Create(&factors).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&model.TransportFactor{}).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		factors := builtinTransportFactors()
		if err := db.Create(&factors).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&model.ElectricityFactor{}).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		factors := builtinElectricityFactors()
		if err := db.Create(&factors).Error; err != nil {
			return err
		}
	}

	return nil
}
