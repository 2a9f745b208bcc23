package importer

import (
	"context"
	"strings"
	"testing"

	"joulina-backend/internal/repository/catalog"
)

type stubCatalogWriter struct {
	products []catalog.CreateProductInput
	variants []catalog.CreateVariantInput
}

func (s *stubCatalogWriter) CreateProduct(_ context.Context, in catalog.CreateProductInput) (string, error) {
	s.products = append(s.products, in)
	return "prod-" + in.SKU, nil
}

func (s *stubCatalogWriter) CreateVariant(_ context.Context, in catalog.CreateVariantInput) (string, error) {
	s.variants = append(s.variants, in)
	return "var-" + in.SKU, nil
}

func TestRun_ImportsProductsAndVariants(t *testing.T) {
	payload := `[
		{
			"name": "Hydra Glow Serum",
			"description": "Daily serum",
			"sku": "SRM-001",
			"price": "45.00",
			"salePrice": "38.00",
			"stock": 30
		},
		{
			"name": "Silk Matte Foundation",
			"sku": "FND-001",
			"price": "35.00",
			"stock": 0,
			"variants": [
				{"name": "Shade 01", "sku": "FND-001-01", "stock": 25},
				{"name": "Shade 05", "sku": "FND-001-05", "priceAdjustment": "2.00", "stock": 15}
			]
		}
	]`

	writer := &stubCatalogWriter{}
	imp := NewJSONImporter(strings.NewReader(payload), writer)

	imported, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if imported != 2 {
		t.Fatalf("imported = %d, want 2", imported)
	}
	if len(writer.products) != 2 || len(writer.variants) != 2 {
		t.Fatalf("products = %d, variants = %d", len(writer.products), len(writer.variants))
	}

	serum := writer.products[0]
	if serum.SalePrice == nil || serum.SalePrice.String() != "38" {
		t.Fatalf("unexpected sale price: %v", serum.SalePrice)
	}
	if !serum.Active {
		t.Fatal("active should default to true")
	}

	shade := writer.variants[1]
	if shade.ProductID != "prod-FND-001" {
		t.Fatalf("variant product = %s", shade.ProductID)
	}
	if shade.PriceAdjustment.String() != "2" {
		t.Fatalf("price adjustment = %s", shade.PriceAdjustment)
	}
}

func TestRun_BadRecordAborts(t *testing.T) {
	payload := `[
		{"name": "OK", "sku": "OK-1", "price": "10.00", "stock": 1},
		{"name": "", "sku": "BAD-1", "price": "10.00", "stock": 1},
		{"name": "Never", "sku": "NV-1", "price": "10.00", "stock": 1}
	]`

	writer := &stubCatalogWriter{}
	imp := NewJSONImporter(strings.NewReader(payload), writer)

	imported, err := imp.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if imported != 1 {
		t.Fatalf("imported = %d, want 1", imported)
	}
}

func TestRun_RejectsNegativeStock(t *testing.T) {
	payload := `[{"name": "X", "sku": "X-1", "price": "10.00", "stock": -5}]`

	imp := NewJSONImporter(strings.NewReader(payload), &stubCatalogWriter{})
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRun_MalformedJSON(t *testing.T) {
	imp := NewJSONImporter(strings.NewReader("{not json"), &stubCatalogWriter{})
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
