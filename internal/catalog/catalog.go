// Package catalog holds the built-in shop items and story cards.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	Items      []storage.Item      `yaml:"items"`
	StoryCards []storage.StoryCard `yaml:"story_cards"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	seen := map[string]bool{}
	for _, it := range c.Items {
		if it.ID == "" || it.SKU == "" || it.Name == "" || it.Category == "" {
			return fmt.Errorf("catalog item %q: id, sku, name and category are required", it.ID)
		}
		if it.PricePetals < 0 {
			return fmt.Errorf("catalog item %s: negative price", it.ID)
		}
		if seen[it.ID] {
			return fmt.Errorf("catalog item %s: duplicate id", it.ID)
		}
		seen[it.ID] = true
	}
	for _, sc := range c.StoryCards {
		if sc.ID == "" || sc.Title == "" {
			return fmt.Errorf("story card %q: id and title are required", sc.ID)
		}
		if seen[sc.ID] {
			return fmt.Errorf("story card %s: duplicate id", sc.ID)
		}
		seen[sc.ID] = true
	}
	return nil
}

// Seed upserts every item and story card.
func (c *Catalog) Seed(ctx context.Context, shop storage.ShopRepo) error {
	for _, it := range c.Items {
		if err := shop.UpsertItem(ctx, it); err != nil {
			return fmt.Errorf("seed item %s: %w", it.ID, err)
		}
	}
	for _, sc := range c.StoryCards {
		if err := shop.UpsertStoryCard(ctx, sc); err != nil {
			return fmt.Errorf("seed story card %s: %w", sc.ID, err)
		}
	}
	return nil
}

// Stickers returns the ids of sticker items.
func (c *Catalog) Stickers() []string {
	var out []string
	for _, it := range c.Items {
		if it.Category == storage.CategorySticker {
			out = append(out, it.ID)
		}
	}
	return out
}
