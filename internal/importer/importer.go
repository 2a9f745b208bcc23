package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"joulina-backend/internal/repository/catalog"
)

type CatalogWriter interface {
	CreateProduct(ctx context.Context, in catalog.CreateProductInput) (string, error)
	CreateVariant(ctx context.Context, in catalog.CreateVariantInput) (string, error)
}

// JSONImporter reads a catalog export and inserts products with their
// variants. The file is a JSON array of product objects.
type JSONImporter struct {
	reader  io.Reader
	catalog CatalogWriter
}

func NewJSONImporter(r io.Reader, repo CatalogWriter) *JSONImporter {
	return &JSONImporter{reader: r, catalog: repo}
}

type productRecord struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	SKU         string           `json:"sku"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice"`
	Stock       int              `json:"stock"`
	IsActive    *bool            `json:"isActive"`
	Variants    []variantRecord  `json:"variants"`
}

type variantRecord struct {
	Name            string          `json:"name"`
	SKU             string          `json:"sku"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment"`
	Stock           int             `json:"stock"`
	IsActive        *bool           `json:"isActive"`
}

// Run parses the export and creates every product and variant. It returns the
// number of products created; the first bad record aborts the run.
func (i *JSONImporter) Run(ctx context.Context) (int, error) {
	var records []productRecord
	dec := json.NewDecoder(i.reader)
	if err := dec.Decode(&records); err != nil {
		return 0, fmt.Errorf("decode catalog: %w", err)
	}

	imported := 0
	for idx, rec := range records {
		if err := i.save(ctx, rec); err != nil {
			return imported, fmt.Errorf("record %d (%s): %w", idx, rec.SKU, err)
		}
		imported++
	}
	return imported, nil
}

func (i *JSONImporter) save(ctx context.Context, rec productRecord) error {
	if strings.TrimSpace(rec.Name) == "" {
		return fmt.Errorf("missing name")
	}
	if rec.Price.IsNegative() {
		return fmt.Errorf("negative price %s", rec.Price)
	}
	if rec.Stock < 0 {
		return fmt.Errorf("negative stock %d", rec.Stock)
	}

	productID, err := i.catalog.CreateProduct(ctx, catalog.CreateProductInput{
		Name:        rec.Name,
		Description: rec.Description,
		Price:       rec.Price,
		SalePrice:   rec.SalePrice,
		SKU:         rec.SKU,
		Stock:       rec.Stock,
		Active:      activeOrDefault(rec.IsActive),
	})
	if err != nil {
		return err
	}

	for _, v := range rec.Variants {
		if strings.TrimSpace(v.SKU) == "" {
			return fmt.Errorf("variant of %s: missing sku", rec.SKU)
		}
		if v.Stock < 0 {
			return fmt.Errorf("variant %s: negative stock %d", v.SKU, v.Stock)
		}
		if _, err := i.catalog.CreateVariant(ctx, catalog.CreateVariantInput{
			ProductID:       productID,
			Name:            v.Name,
			SKU:             v.SKU,
			PriceAdjustment: v.PriceAdjustment,
			Stock:           v.Stock,
			Active:          activeOrDefault(v.IsActive),
		}); err != nil {
			return fmt.Errorf("variant %s: %w", v.SKU, err)
		}
	}
	return nil
}

func activeOrDefault(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}
