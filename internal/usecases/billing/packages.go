package billing

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

//go:embed packages_default.json
var defaultPackagesJSON []byte

// Catalog каталог пакетов кредитов. Данные, а не код: цены менялись
// между релизами, поэтому каталог читается из файла с встроенным дефолтом
type Catalog struct {
	packages []domain.CreditPackage
	byID     map[string]*domain.CreditPackage
}

// LoadCatalog загружает каталог из файла, при пустом пути встроенный дефолт
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultPackagesJSON
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read packages file %s: %w", path, err)
		}
		data = fileData
	}

	var packages []domain.CreditPackage
	if err := json.Unmarshal(data, &packages); err != nil {
		return nil, fmt.Errorf("failed to parse packages: %w", err)
	}
	if len(packages) == 0 {
		return nil, fmt.Errorf("packages catalog is empty")
	}

	byID := make(map[string]*domain.CreditPackage, len(packages))
	for i := range packages {
		p := &packages[i]
		if p.ID == "" || p.Credits <= 0 || p.PriceStars <= 0 || p.PriceRub <= 0 {
			return nil, fmt.Errorf("invalid package entry: %+v", *p)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate package id: %s", p.ID)
		}
		byID[p.ID] = p
	}

	return &Catalog{
		packages: packages,
		byID:     byID,
	}, nil
}

// Packages возвращает все пакеты в порядке каталога
func (c *Catalog) Packages() []domain.CreditPackage {
	return c.packages
}

// Get возвращает пакет по id
func (c *Catalog) Get(id string) (*domain.CreditPackage, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, domain.ErrUnknownPackage
	}
	return p, nil
}
