package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"storefront-catalog/internal/domain"
)

// catalogFile is the on-disk layout of a catalog seed file.
type catalogFile struct {
	Products []domain.Product `yaml:"products"`
}

// FileCatalog loads the catalog from a YAML file.
type FileCatalog struct {
	path string
}

// NewFileCatalog creates a FileCatalog reading from path.
func NewFileCatalog(path string) *FileCatalog {
	return &FileCatalog{path: path}
}

// LoadCatalog reads and validates the file. Products keep file order.
func (f *FileCatalog) LoadCatalog(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("store: LoadCatalog failed to read %s: %w", f.path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) ([]domain.Product, error) {
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("store: failed to decode catalog: %w", err)
	}
	if err := ValidateCatalog(doc.Products); err != nil {
		return nil, err
	}
	return doc.Products, nil
}
