// Package catalog resolves tracked item names against the EVE static
// data export (the invTypes/invVolumes SQLite database) into the item
// identity and volume the pipeline works with.
package catalog

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Sternrassler/eve-market-arbitrage/pkg/arbitrage"
)

// ErrItemNotFound is returned when a name has no invTypes row.
var ErrItemNotFound = errors.New("item not found in catalog")

// invType mirrors the static data export's invTypes table. The volume
// column is the assembled volume.
type invType struct {
	TypeID   int32   `gorm:"column:typeID;primaryKey"`
	TypeName string  `gorm:"column:typeName"`
	Volume   float64 `gorm:"column:volume"`
}

func (invType) TableName() string { return "invTypes" }

// invVolume mirrors invVolumes, which carries the packed volume for
// ships and other repackageable items.
type invVolume struct {
	TypeID int32   `gorm:"column:typeID;primaryKey"`
	Volume float64 `gorm:"column:volume"`
}

func (invVolume) TableName() string { return "invVolumes" }

// Catalog is a read-only view over the static data export.
type Catalog struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Open opens the static data export at path.
func Open(path string) (*Catalog, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog database %s: %w", path, err)
	}

	return &Catalog{
		db:     db,
		logger: log.With().Str("component", "catalog").Logger(),
	}, nil
}

// ItemByName resolves one item name. Hauling moves items repackaged, so
// the packed volume from invVolumes wins over the assembled volume when
// both exist.
func (c *Catalog) ItemByName(name string) (arbitrage.Item, error) {
	var row invType
	err := c.db.Where("typeName = ?", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return arbitrage.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, name)
		}
		return arbitrage.Item{}, fmt.Errorf("query invTypes for %s: %w", name, err)
	}

	volume := row.Volume
	var packed invVolume
	err = c.db.Where("typeID = ?", row.TypeID).First(&packed).Error
	switch {
	case err == nil:
		volume = packed.Volume
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No packed volume for this type; the assembled volume applies.
	default:
		return arbitrage.Item{}, fmt.Errorf("query invVolumes for %s: %w", name, err)
	}

	c.logger.Debug().
		Str("item", name).
		Int32("item_id", row.TypeID).
		Float64("volume", volume).
		Msg("Resolved catalog item")

	return arbitrage.Item{
		ID:     row.TypeID,
		Name:   name,
		Volume: volume,
	}, nil
}

// ItemsByNames resolves a list of item names, preserving their order.
// A single unknown name fails the whole lookup; the tracked list is
// hand-written and a typo should be surfaced, not dropped.
func (c *Catalog) ItemsByNames(names []string) ([]arbitrage.Item, error) {
	items := make([]arbitrage.Item, 0, len(names))
	for _, name := range names {
		item, err := c.ItemByName(name)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
