// Package footprint computes per-unit product carbon footprints across the
// four lifecycle stages: raw materials (A), upstream transport (B),
// manufacturing electricity (C) and distribution (D).
//
// Everything here is pure: the caller loads a Product with its entries and a
// Tables snapshot of the reference data, and Calculate reduces them to a
// Breakdown. Missing factor references contribute zero — data entry is never
// blocked by an incomplete catalog, so there are no error paths.
package footprint

import (
	"carbonledger/internal/model"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places every stage subtotal and total
// is rounded to (half away from zero).
const Precision = 4

// DefaultElectricityFactor (kg CO2e/kWh) applies when a product's year has no
// entry in the electricity table.
var DefaultElectricityFactor = decimal.NewFromFloat(0.441)

var kgPerTonne = decimal.NewFromInt(1000)

// Tables is an immutable snapshot of the three reference tables, indexed for
// lookup. Build one per calculation batch; factors loaded mid-flight do not
// affect snapshots already taken.
type Tables struct {
	materials   map[string]decimal.Decimal
	transports  map[string]decimal.Decimal
	electricity map[int]decimal.Decimal
}

// NewTables indexes the reference rows by their catalog code / year.
func NewTables(materials []model.MaterialFactor, transports []model.TransportFactor, electricity []model.ElectricityFactor) Tables {
	t := Tables{
		materials:   make(map[string]decimal.Decimal, len(materials)),
		transports:  make(map[string]decimal.Decimal, len(transports)),
		electricity: make(map[int]decimal.Decimal, len(electricity)),
	}
	for _, m := range materials {
		t.materials[m.ID] = m.Factor
	}
	for _, v := range transports {
		t.transports[v.ID] = v.Factor
	}
	for _, e := range electricity {
		t.electricity[e.Year] = e.Factor
	}
	return t
}

// MaterialFactor returns the catalog factor for id, zero when id is nil or unknown.
func (t Tables) MaterialFactor(id *string) decimal.Decimal {
	if id == nil {
		return decimal.Zero
	}
	return t.materials[*id]
}

// TransportFactor returns the vehicle factor for id, zero when id is nil or unknown.
func (t Tables) TransportFactor(id *string) decimal.Decimal {
	if id == nil {
		return decimal.Zero
	}
	return t.transports[*id]
}

// ElectricityFactor returns the grid factor for year, falling back to
// DefaultElectricityFactor when the year is not in the table.
func (t Tables) ElectricityFactor(year int) decimal.Decimal {
	if f, ok := t.electricity[year]; ok {
		return f
	}
	return DefaultElectricityFactor
}

// Breakdown holds the four stage subtotals and their sum, in kg CO2e per unit.
type Breakdown struct {
	Materials         decimal.Decimal `json:"materials"`
	UpstreamTransport decimal.Decimal `json:"upstream_transport"`
	Manufacturing     decimal.Decimal `json:"manufacturing"`
	Distribution      decimal.Decimal `json:"distribution"`
	Total             decimal.Decimal `json:"total"`
}

// Add returns the element-wise sum of two breakdowns (contract aggregation).
func (b Breakdown) Add(o Breakdown) Breakdown {
	return Breakdown{
		Materials:         b.Materials.Add(o.Materials),
		UpstreamTransport: b.UpstreamTransport.Add(o.UpstreamTransport),
		Manufacturing:     b.Manufacturing.Add(o.Manufacturing),
		Distribution:      b.Distribution.Add(o.Distribution),
		Total:             b.Total.Add(o.Total),
	}
}

// Calculate reduces a product's entries against the reference tables.
//
// When the product's override flag is set all four subtotals are zero and the
// total is the override value verbatim — no rounding is applied to supplier-
// declared figures.
func Calculate(p *model.Product, tables Tables) Breakdown {
	if p.OverrideEnabled {
		return Breakdown{Total: p.OverrideTotal}
	}

	// Stage A: Σ weight × factor. The entry's custom factor wins over the
	// catalog lookup when its flag is set.
	a := decimal.Zero
	for _, e := range p.MaterialEntries {
		f := tables.MaterialFactor(e.MaterialFactorID)
		if e.UseCustomFactor {
			f = e.CustomFactor
		}
		a = a.Add(e.WeightKg.Mul(f))
	}

	// Stage B: Σ (weight/1000) × distance × vehicle factor. Weight is in kg,
	// vehicle factors in kg CO2e per tonne-km.
	b := decimal.Zero
	for _, e := range p.TransportEntries {
		leg := e.WeightKg.Div(kgPerTonne).Mul(e.DistanceKm).Mul(tables.TransportFactor(e.TransportFactorID))
		b = b.Add(leg)
	}

	// Stage C: electricity × grid factor for the product's year. In allocated
	// mode the site total is divided across the production run; a zero output
	// is treated as one unit so the division is always defined.
	grid := tables.ElectricityFactor(p.Year)
	c := p.ElectricityKWh.Mul(grid)
	if p.AllocationMode == model.AllocationAllocated {
		output := p.TotalOutput
		if output < 1 {
			output = 1
		}
		c = p.ElectricityKWh.Div(decimal.NewFromInt(output)).Mul(grid)
	}

	// Stage D: single downstream leg, same tonne-km formula as stage B.
	d := p.DistributionWeightKg.Div(kgPerTonne).
		Mul(p.DistributionDistanceKm).
		Mul(tables.TransportFactor(p.DistributionVehicleID))

	a = a.Round(Precision)
	b = b.Round(Precision)
	c = c.Round(Precision)
	d = d.Round(Precision)

	return Breakdown{
		Materials:         a,
		UpstreamTransport: b,
		Manufacturing:     c,
		Distribution:      d,
		Total:             a.Add(b).Add(c).Add(d).Round(Precision),
	}
}
