// Package farm implements the grid service: the slots of a run and the only
// operations allowed to mutate them (plant, water, grow, harvest, wither,
// unlock, clear).
package farm

import "sort"

// CropID identifies a crop definition. The empty ID means "no crop".
type CropID string

// Crop describes how a planted crop grows and scores.
type Crop struct {
	ID                 CropID  `yaml:"id" json:"id"`
	Name               string  `yaml:"name" json:"name"`
	GrowthDays         int     `yaml:"growth_days" json:"growth_days"`                   // Days of watered growth until mature
	PassiveScore       float64 `yaml:"passive_score" json:"passive_score"`               // Daily score while alive
	MatureMultiplier   float64 `yaml:"mature_multiplier" json:"mature_multiplier"`       // Applied to passive score once mature
	WitherAfterDryDays int     `yaml:"wither_after_dry_days" json:"wither_after_dry_days"` // 0 disables withering
	SellPrice          int     `yaml:"sell_price" json:"sell_price"`
}

// Catalog is a lookup of crop definitions by ID.
type Catalog struct {
	crops map[CropID]Crop
}

// NewCatalog builds a catalog from a list of crops. Later duplicates win.
func NewCatalog(crops []Crop) *Catalog {
	c := &Catalog{crops: make(map[CropID]Crop, len(crops))}
	for _, crop := range crops {
		if crop.ID == "" {
			continue
		}
		c.crops[crop.ID] = crop
	}
	return c
}

// Get returns the crop with the given ID.
func (c *Catalog) Get(id CropID) (Crop, bool) {
	if c == nil {
		return Crop{}, false
	}
	crop, ok := c.crops[id]
	return crop, ok
}

// IDs returns all crop IDs in sorted order.
func (c *Catalog) IDs() []CropID {
	if c == nil {
		return nil
	}
	ids := make([]CropID, 0, len(c.crops))
	for id := range c.crops {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of crops in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.crops)
}
