package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openretail/storewatch/internal/catalog"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, "SKU,product_name,weight,price\nPRD_S_04,Soap,150,280\nPRD_F_03,Flour,250,90\n")

	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cat) != 2 {
		t.Fatalf("expected 2 products, got %d", len(cat))
	}
	p := cat["PRD_S_04"]
	if p.Name != "Soap" || p.WeightG != 150 || p.Price != 280 {
		t.Errorf("unexpected product: %+v", p)
	}
}

func TestLoad_AlternateWeightHeader(t *testing.T) {
	path := writeCSV(t, "SKU,Weight (g)\nPRD_S_04,150\n")

	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w, ok := cat.ExpectedWeight("PRD_S_04"); !ok || w != 150 {
		t.Errorf("weight = %v ok=%v", w, ok)
	}
}

func TestLoad_SkipsBlankRows(t *testing.T) {
	path := writeCSV(t, "SKU,weight\nPRD_S_04,150\n,\n\nPRD_F_03,250\n")

	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cat) != 2 {
		t.Errorf("expected 2 products, got %d", len(cat))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := catalog.Load(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing catalog")
	}
}

func TestExpectedWeight_AbsentOrZero(t *testing.T) {
	cat := catalog.Catalog{
		"PRD_NO_WEIGHT": {SKU: "PRD_NO_WEIGHT"},
	}
	if _, ok := cat.ExpectedWeight("PRD_NO_WEIGHT"); ok {
		t.Error("zero-weight product reported usable")
	}
	if _, ok := cat.ExpectedWeight("PRD_UNKNOWN"); ok {
		t.Error("unknown SKU reported usable")
	}
}
