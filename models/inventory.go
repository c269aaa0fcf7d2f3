package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MovementIn         = "in"
	MovementOut        = "out"
	MovementAdjustment = "adjustment"
)

type InventoryItem struct {
	Base
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`

	Name            string  `gorm:"not null" json:"name"`
	Description     string  `json:"description,omitempty"`
	Category        string  `gorm:"not null;index" json:"category"` // parts, supplies, tools, equipment
	SKU             string  `gorm:"index" json:"sku"`
	SupplierName    string  `json:"supplier_name,omitempty"`
	SupplierContact string  `json:"supplier_contact,omitempty"`
	UnitCost        float64 `gorm:"type:decimal(10,2);default:0" json:"unit_cost"`
	SellingPrice    float64 `gorm:"type:decimal(10,2);default:0" json:"selling_price"`
	StockQuantity   int     `gorm:"default:0" json:"stock_quantity"`
	MinStockLevel   int     `gorm:"default:0" json:"min_stock_level"`
	MaxStockLevel   *int    `json:"max_stock_level,omitempty"`
	Location        string  `json:"location,omitempty"`
	Barcode         string  `json:"barcode,omitempty"`
	IsActive        bool    `gorm:"default:true" json:"is_active"`
	Notes           string  `json:"notes,omitempty"`
}

// IsLowStock is derived on every read and never stored.
func (i InventoryItem) IsLowStock() bool {
	return i.StockQuantity <= i.MinStockLevel
}

func (i InventoryItem) IsOutOfStock() bool {
	return i.StockQuantity <= 0
}

// StockValue is the stock on hand valued at unit cost.
func (i InventoryItem) StockValue() float64 {
	return float64(i.StockQuantity) * i.UnitCost
}

type InventoryItemInput struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Category        string  `json:"category" binding:"required"`
	SKU             string  `json:"sku"`
	SupplierName    string  `json:"supplier_name"`
	SupplierContact string  `json:"supplier_contact"`
	UnitCost        float64 `json:"unit_cost" binding:"min=0"`
	SellingPrice    float64 `json:"selling_price" binding:"min=0"`
	StockQuantity   int     `json:"stock_quantity" binding:"min=0"`
	MinStockLevel   int     `json:"min_stock_level" binding:"min=0"`
	MaxStockLevel   *int    `json:"max_stock_level" binding:"omitempty,min=0"`
	Location        string  `json:"location"`
	Barcode         string  `json:"barcode"`
	Notes           string  `json:"notes"`
}

// InventoryItemUpdate applies only the fields that are set.
type InventoryItemUpdate struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Category        *string  `json:"category"`
	SKU             *string  `json:"sku"`
	SupplierName    *string  `json:"supplier_name"`
	SupplierContact *string  `json:"supplier_contact"`
	UnitCost        *float64 `json:"unit_cost" binding:"omitempty,min=0"`
	SellingPrice    *float64 `json:"selling_price" binding:"omitempty,min=0"`
	StockQuantity   *int     `json:"stock_quantity" binding:"omitempty,min=0"`
	MinStockLevel   *int     `json:"min_stock_level" binding:"omitempty,min=0"`
	MaxStockLevel   *int     `json:"max_stock_level" binding:"omitempty,min=0"`
	Location        *string  `json:"location"`
	Barcode         *string  `json:"barcode"`
	IsActive        *bool    `json:"is_active"`
	Notes           *string  `json:"notes"`
}

type StockMovement struct {
	Base
	CompanyID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"company_id"`
	InventoryItemID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"inventory_item_id"`
	MovementType     string     `gorm:"type:varchar(20);not null" json:"movement_type"`
	Quantity         int        `json:"quantity"`
	PreviousQuantity int        `json:"previous_quantity"`
	NewQuantity      int        `json:"new_quantity"`
	ReferenceID      *uuid.UUID `gorm:"type:uuid" json:"reference_id,omitempty"`
	ReferenceType    string     `json:"reference_type,omitempty"` // job, adjustment, initial_stock
	UnitCost         *float64   `json:"unit_cost,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CreatedBy        uuid.UUID  `gorm:"type:uuid" json:"created_by"`

	ItemName string `gorm:"-" json:"item_name,omitempty"`
}

type StockMovementInput struct {
	InventoryItemID uuid.UUID  `json:"inventory_item_id" binding:"required"`
	MovementType    string     `json:"movement_type" binding:"required,oneof=in out adjustment"`
	Quantity        int        `json:"quantity" binding:"min=0"`
	ReferenceID     *uuid.UUID `json:"reference_id"`
	ReferenceType   string     `json:"reference_type"`
	UnitCost        *float64   `json:"unit_cost"`
	Notes           string     `json:"notes"`
}

type JobPartUsage struct {
	Base
	CompanyID       uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`
	JobID           uuid.UUID `gorm:"type:uuid;index;not null" json:"job_id"`
	InventoryItemID uuid.UUID `gorm:"type:uuid;index;not null" json:"inventory_item_id"`
	QuantityUsed    int       `json:"quantity_used"`
	UnitPrice       float64   `gorm:"type:decimal(10,2)" json:"unit_price"`
	TotalCost       float64   `gorm:"type:decimal(10,2)" json:"total_cost"`
	Notes           string    `json:"notes,omitempty"`

	ItemName string `gorm:"-" json:"item_name,omitempty"`
	ItemSKU  string `gorm:"-" json:"item_sku,omitempty"`
}

type JobPartUsageInput struct {
	JobID           uuid.UUID `json:"job_id" binding:"required"`
	InventoryItemID uuid.UUID `json:"inventory_item_id" binding:"required"`
	QuantityUsed    int       `json:"quantity_used" binding:"required,min=1"`
	UnitPrice       *float64  `json:"unit_price" binding:"omitempty,min=0"`
	Notes           string    `json:"notes"`
}

type LowStockAlert struct {
	Base
	CompanyID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"company_id"`
	InventoryItemID uuid.UUID  `gorm:"type:uuid;index;not null" json:"inventory_item_id"`
	CurrentQuantity int        `json:"current_quantity"`
	MinStockLevel   int        `json:"min_stock_level"`
	AlertDate       time.Time  `json:"alert_date"`
	IsAcknowledged  bool       `gorm:"default:false;index" json:"is_acknowledged"`
	AcknowledgedBy  *uuid.UUID `gorm:"type:uuid" json:"acknowledged_by,omitempty"`
	AcknowledgedAt  *time.Time `json:"acknowledged_at,omitempty"`

	ItemName string `gorm:"-" json:"item_name,omitempty"`
}

type TopUsedItem struct {
	ItemID    uuid.UUID `json:"item_id"`
	ItemName  string    `json:"item_name"`
	ItemSKU   string    `json:"item_sku"`
	TotalUsed int       `json:"total_used"`
	TotalCost float64   `json:"total_cost"`
}

type InventoryAnalytics struct {
	TotalItems        int             `json:"total_items"`
	TotalValue        float64         `json:"total_value"`
	LowStockItems     int             `json:"low_stock_items"`
	OutOfStockItems   int             `json:"out_of_stock_items"`
	TopUsedItems      []TopUsedItem   `json:"top_used_items"`
	CategoryBreakdown map[string]int  `json:"category_breakdown"`
	MovementSummary   map[string]int  `json:"movement_summary"`
	RecentMovements   []StockMovement `json:"recent_movements"`
}
