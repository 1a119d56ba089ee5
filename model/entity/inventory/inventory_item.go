package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// WritableColumns is the number of bind parameters one InventoryItem occupies in a batch insert.
const WritableColumns = 24

// InventoryItem represents workshop_inventory: one catalog line of one supplier source.
// (tenant_id, source_id, article_number) is the natural key.
type InventoryItem struct {
	ID            uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	TenantID      string `gorm:"column:tenant_id;type:varchar(36);not null;uniqueIndex:idx_inventory_natural_key,priority:1" json:"tenant_id"`
	SourceID      string `gorm:"column:source_id;type:varchar(36);not null;uniqueIndex:idx_inventory_natural_key,priority:2" json:"source_id"`
	ArticleNumber string `gorm:"column:article_number;type:varchar(64);not null;uniqueIndex:idx_inventory_natural_key,priority:3" json:"article_number"`
	SupplierCode  string `gorm:"column:supplier_code;type:varchar(64);not null" json:"supplier_code"`

	EAN   *string         `gorm:"column:ean;type:varchar(32)" json:"ean,omitempty"`
	Price decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null" json:"price"`
	Stock int             `gorm:"column:stock;not null" json:"stock"`

	Brand       *string `gorm:"column:brand;type:varchar(128)" json:"brand,omitempty"`
	Model       *string `gorm:"column:model;type:varchar(255)" json:"model,omitempty"`
	Width       *string `gorm:"column:width;type:varchar(16)" json:"width,omitempty"`
	Height      *string `gorm:"column:height;type:varchar(16)" json:"height,omitempty"`
	Diameter    *string `gorm:"column:diameter;type:varchar(16)" json:"diameter,omitempty"`
	LoadIndex   *string `gorm:"column:load_index;type:varchar(16)" json:"load_index,omitempty"`
	SpeedIndex  *string `gorm:"column:speed_index;type:varchar(8)" json:"speed_index,omitempty"`
	Season      *string `gorm:"column:season;type:varchar(8)" json:"season,omitempty"`
	VehicleType *string `gorm:"column:vehicle_type;type:varchar(32)" json:"vehicle_type,omitempty"`
	RunFlat     bool    `gorm:"column:run_flat;not null" json:"run_flat"`
	ThreePMSF   bool    `gorm:"column:three_pmsf;not null" json:"three_pmsf"`

	LabelFuelEfficiency *string `gorm:"column:label_fuel_efficiency;type:varchar(4)" json:"label_fuel_efficiency,omitempty"`
	LabelWetGrip        *string `gorm:"column:label_wet_grip;type:varchar(4)" json:"label_wet_grip,omitempty"`
	LabelNoise          *int    `gorm:"column:label_noise" json:"label_noise,omitempty"`
	LabelNoiseClass     *string `gorm:"column:label_noise_class;type:varchar(4)" json:"label_noise_class,omitempty"`
	EprelURL            *string `gorm:"column:eprel_url;type:varchar(512)" json:"eprel_url,omitempty"`

	LastUpdated time.Time `gorm:"column:last_updated;not null" json:"last_updated"`
}

func (InventoryItem) TableName() string {
	return "workshop_inventory"
}
