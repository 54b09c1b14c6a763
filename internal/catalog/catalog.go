// Package catalog loads the product reference data the detection rules
// consume: the SKU → expected-weight catalog.
package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Product is one catalog row. Only the weight participates in detection;
// the rest is kept for log context.
type Product struct {
	SKU     string
	Name    string
	WeightG float64
	Price   float64
}

// Catalog maps SKU to product reference data.
type Catalog map[string]Product

// weightColumns lists accepted header spellings for the expected weight, in
// preference order. The two store exports disagree on the header.
var weightColumns = []string{"weight", "weight_g", "Weight (g)"}

// Load reads a product catalog CSV. The first column is the SKU key. A
// missing or unopenable file is fatal to the run.
func Load(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open product catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse product catalog %s: %w", path, err)
	}
	if len(rows) < 1 || len(rows[0]) < 1 {
		return nil, fmt.Errorf("product catalog %s: missing header", path)
	}

	header := rows[0]
	col := func(names ...string) int {
		for _, name := range names {
			for i, h := range header {
				if strings.EqualFold(strings.TrimSpace(h), name) {
					return i
				}
			}
		}
		return -1
	}
	weightCol := col(weightColumns...)
	nameCol := col("product_name", "name")
	priceCol := col("price")

	cat := make(Catalog, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		p := Product{SKU: strings.TrimSpace(row[0])}
		if nameCol >= 0 && nameCol < len(row) {
			p.Name = strings.TrimSpace(row[nameCol])
		}
		if weightCol >= 0 && weightCol < len(row) {
			if w, err := strconv.ParseFloat(strings.TrimSpace(row[weightCol]), 64); err == nil {
				p.WeightG = w
			}
		}
		if priceCol >= 0 && priceCol < len(row) {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[priceCol]), 64); err == nil {
				p.Price = v
			}
		}
		cat[p.SKU] = p
	}
	if len(cat) == 0 {
		return nil, fmt.Errorf("product catalog %s: no rows", path)
	}
	return cat, nil
}

// ExpectedWeight returns the catalog weight for a SKU. false means the SKU
// is absent or carries no usable weight, in which case the weight rule
// silently skips the record.
func (c Catalog) ExpectedWeight(sku string) (float64, bool) {
	p, ok := c[sku]
	if !ok || p.WeightG <= 0 {
		return 0, false
	}
	return p.WeightG, true
}
