package infra

// factor_source.go — Client for the published emission-factor spreadsheet.
// The catalog team maintains material factors in a shared sheet; its CSV
// export URL is fetched here, parsed, and handed to the factor service which
// swaps the table on success. Any failure leaves the current table in place.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"carbonledger/internal/model"
)

// FetchResult carries the parsed catalog plus the count of malformed CSV rows
// that were dropped along the way.
type FetchResult struct {
	Factors []model.MaterialFactor
	Skipped int
}

// FactorSource exposes the remote catalog operations used by the application.
type FactorSource interface {
	FetchMaterialFactors(ctx context.Context) (*FetchResult, error)
	URL() string
}

// CSVFactorSource is a resty-backed implementation of FactorSource.
type CSVFactorSource struct {
	httpClient *resty.Client
	url        string
}

// NewCSVFactorSource builds a client for the given CSV export URL.
func NewCSVFactorSource(url string) *CSVFactorSource {
	restyClient := resty.New()
	restyClient.
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "text/csv")

	return &CSVFactorSource{httpClient: restyClient, url: url}
}

func (c *CSVFactorSource) URL() string { return c.url }

// FetchMaterialFactors downloads and parses the catalog.
// Expected columns: id,name,factor,weight_unit,factor_unit — header required.
// Malformed rows are skipped and counted, never fatal; an empty catalog is an
// error so a truncated download cannot wipe the table.
func (c *CSVFactorSource) FetchMaterialFactors(ctx context.Context) (*FetchResult, error) {
	if c.url == "" {
		return nil, errors.New("factor source: no URL configured")
	}

	resp, err := c.httpClient.R().SetContext(ctx).Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("factor source: fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("factor source: unexpected status %d", resp.StatusCode())
	}

	result, err := parseFactorCSV(strings.NewReader(resp.String()), sourceHost(c.url))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func parseFactorCSV(r io.Reader, source string) (*FetchResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // row length is validated per record
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("factor source: read header: %w", err)
	}
	if len(header) < 3 || !strings.EqualFold(strings.TrimSpace(header[0]), "id") {
		return nil, errors.New("factor source: unrecognized header row")
	}

	result := &FetchResult{}
	seen := make(map[string]bool)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A single ragged line should not kill the whole refresh.
			result.Skipped++
			continue
		}

		factor, ok := parseFactorRow(record, source)
		if !ok || seen[factor.ID] {
			result.Skipped++
			continue
		}
		seen[factor.ID] = true
		result.Factors = append(result.Factors, factor)
	}

	if len(result.Factors) == 0 {
		return nil, errors.New("factor source: no usable rows in catalog")
	}
	return result, nil
}

func parseFactorRow(record []string, source string) (model.MaterialFactor, bool) {
	if len(record) < 3 {
		return model.MaterialFactor{}, false
	}

	id := strings.TrimSpace(record[0])
	name := strings.TrimSpace(record[1])
	if id == "" || name == "" || len(id) > 40 {
		return model.MaterialFactor{}, false
	}

	value, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil || value.IsNegative() {
		return model.MaterialFactor{}, false
	}

	f := model.MaterialFactor{
		ID:         id,
		Name:       name,
		Factor:     value,
		WeightUnit: "kg",
		FactorUnit: "kgCO2e/kg",
		Source:     source,
	}
	if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
		f.WeightUnit = strings.TrimSpace(record[3])
	}
	if len(record) > 4 && strings.TrimSpace(record[4]) != "" {
		f.FactorUnit = strings.TrimSpace(record[4])
	}
	return f, true
}

func sourceHost(url string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	if i := strings.IndexByte(trimmed, '/'); i > 0 {
		return trimmed[:i]
	}
	if trimmed == "" {
		return "remote"
	}
	return trimmed
}
