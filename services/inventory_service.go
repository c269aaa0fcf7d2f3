package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fieldpro-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryService struct {
	db            *gorm.DB
	notifications *NotificationService
	logger        *zap.Logger
}

func NewInventoryService(db *gorm.DB, notifications *NotificationService, logger *zap.Logger) *InventoryService {
	return &InventoryService{db: db, notifications: notifications, logger: logger}
}

// SKUPrefix is the first three letters of the category, upper-cased.
func SKUPrefix(category string) string {
	p := []rune(strings.ToUpper(strings.TrimSpace(category)))
	if len(p) > 3 {
		p = p[:3]
	}
	return string(p)
}

// NextSKU returns PREFIX-NNNN, one past the highest number in use for the
// category prefix within the company.
func (s *InventoryService) NextSKU(tx *gorm.DB, companyID uuid.UUID, category string) (string, error) {
	prefix := SKUPrefix(category)

	var skus []string
	if err := tx.Model(&models.InventoryItem{}).
		Where("company_id = ? AND sku LIKE ?", companyID, prefix+"-%").
		Pluck("sku", &skus).Error; err != nil {
		return "", err
	}

	next := 1
	for _, sku := range skus {
		n, err := strconv.Atoi(sku[strings.LastIndex(sku, "-")+1:])
		if err == nil && n >= next {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s-%04d", prefix, next), nil
}

// ApplyMovement returns the stock level after a movement.
func ApplyMovement(current int, kind string, quantity int) (int, error) {
	switch kind {
	case models.MovementIn:
		return current + quantity, nil
	case models.MovementOut:
		if current-quantity < 0 {
			return 0, ErrInsufficientStock
		}
		return current - quantity, nil
	case models.MovementAdjustment:
		if quantity < 0 {
			return 0, ErrInsufficientStock
		}
		return quantity, nil
	}
	return 0, ErrInvalidMovement
}

func (s *InventoryService) CreateItem(ctx context.Context, companyID, userID uuid.UUID, in models.InventoryItemInput) (*models.InventoryItem, error) {
	item := models.InventoryItem{
		CompanyID:       companyID,
		Name:            in.Name,
		Description:     in.Description,
		Category:        in.Category,
		SKU:             in.SKU,
		SupplierName:    in.SupplierName,
		SupplierContact: in.SupplierContact,
		UnitCost:        in.UnitCost,
		SellingPrice:    in.SellingPrice,
		StockQuantity:   in.StockQuantity,
		MinStockLevel:   in.MinStockLevel,
		MaxStockLevel:   in.MaxStockLevel,
		Location:        in.Location,
		Barcode:         in.Barcode,
		IsActive:        true,
		Notes:           in.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if item.SKU == "" {
			sku, err := s.NextSKU(tx, companyID, item.Category)
			if err != nil {
				return err
			}
			item.SKU = sku
		}
		var n int64
		if err := tx.Model(&models.InventoryItem{}).
			Where("company_id = ? AND sku = ?", companyID, item.SKU).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateSKU
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}

		if item.StockQuantity > 0 {
			unitCost := item.UnitCost
			return tx.Create(&models.StockMovement{
				CompanyID:        companyID,
				InventoryItemID:  item.ID,
				MovementType:     models.MovementIn,
				Quantity:         item.StockQuantity,
				PreviousQuantity: 0,
				NewQuantity:      item.StockQuantity,
				ReferenceType:    "initial_stock",
				UnitCost:         &unitCost,
				Notes:            "Initial stock",
				CreatedBy:        userID,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RecordMovement applies a stock movement to an item and raises a low-stock
// alert when the result is at or below the item's minimum.
func (s *InventoryService) RecordMovement(ctx context.Context, companyID, userID uuid.UUID, in models.StockMovementInput) (*models.StockMovement, error) {
	var movement models.StockMovement
	var item models.InventoryItem
	var alerted bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockItem(tx, companyID, in.InventoryItemID, &item); err != nil {
			return err
		}
		newQty, err := ApplyMovement(item.StockQuantity, in.MovementType, in.Quantity)
		if err != nil {
			return err
		}

		movement = models.StockMovement{
			CompanyID:        companyID,
			InventoryItemID:  item.ID,
			MovementType:     in.MovementType,
			Quantity:         in.Quantity,
			PreviousQuantity: item.StockQuantity,
			NewQuantity:      newQty,
			ReferenceID:      in.ReferenceID,
			ReferenceType:    in.ReferenceType,
			UnitCost:         in.UnitCost,
			Notes:            in.Notes,
			CreatedBy:        userID,
			ItemName:         item.Name,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		if err := setStock(tx, &item, newQty); err != nil {
			return err
		}
		alerted, err = raiseLowStockAlert(tx, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	if alerted && s.notifications != nil {
		s.notifications.LowStock(ctx, item)
	}
	return &movement, nil
}

// UseParts records parts consumed by a job and takes them out of stock.
func (s *InventoryService) UseParts(ctx context.Context, companyID, userID uuid.UUID, in models.JobPartUsageInput) (*models.JobPartUsage, error) {
	var usage models.JobPartUsage
	var item models.InventoryItem
	var alerted bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := tx.Where("company_id = ? AND id = ?", companyID, in.JobID).First(&job).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJobNotFound
			}
			return err
		}
		if err := lockItem(tx, companyID, in.InventoryItemID, &item); err != nil {
			return err
		}
		newQty, err := ApplyMovement(item.StockQuantity, models.MovementOut, in.QuantityUsed)
		if err != nil {
			return err
		}

		unitPrice := item.SellingPrice
		if in.UnitPrice != nil && *in.UnitPrice > 0 {
			unitPrice = *in.UnitPrice
		}
		usage = models.JobPartUsage{
			CompanyID:       companyID,
			JobID:           job.ID,
			InventoryItemID: item.ID,
			QuantityUsed:    in.QuantityUsed,
			UnitPrice:       unitPrice,
			TotalCost:       unitPrice * float64(in.QuantityUsed),
			Notes:           in.Notes,
			ItemName:        item.Name,
			ItemSKU:         item.SKU,
		}
		if err := tx.Create(&usage).Error; err != nil {
			return err
		}

		unitCost := item.UnitCost
		if err := tx.Create(&models.StockMovement{
			CompanyID:        companyID,
			InventoryItemID:  item.ID,
			MovementType:     models.MovementOut,
			Quantity:         in.QuantityUsed,
			PreviousQuantity: item.StockQuantity,
			NewQuantity:      newQty,
			ReferenceID:      &job.ID,
			ReferenceType:    "job",
			UnitCost:         &unitCost,
			Notes:            "Parts used for job " + job.Title,
			CreatedBy:        userID,
		}).Error; err != nil {
			return err
		}

		if err := setStock(tx, &item, newQty); err != nil {
			return err
		}
		alerted, err = raiseLowStockAlert(tx, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	if alerted && s.notifications != nil {
		s.notifications.LowStock(ctx, item)
	}
	return &usage, nil
}

// lockItem loads an item for update. SQLite has no row locks, so setStock
// still checks the quantity it read.
func lockItem(tx *gorm.DB, companyID, id uuid.UUID, item *models.InventoryItem) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND id = ?", companyID, id).
		First(item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrItemNotFound
	}
	return err
}

// setStock writes the new quantity only if the row still holds the quantity
// the movement was computed from.
func setStock(tx *gorm.DB, item *models.InventoryItem, qty int) error {
	res := tx.Model(&models.InventoryItem{}).
		Where("id = ? AND stock_quantity = ?", item.ID, item.StockQuantity).
		Update("stock_quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockChanged
	}
	item.StockQuantity = qty
	return nil
}

// raiseLowStockAlert creates an alert unless one is already open for the item.
func raiseLowStockAlert(tx *gorm.DB, item models.InventoryItem) (bool, error) {
	if !item.IsLowStock() {
		return false, nil
	}
	var open int64
	if err := tx.Model(&models.LowStockAlert{}).
		Where("company_id = ? AND inventory_item_id = ? AND is_acknowledged = ?", item.CompanyID, item.ID, false).
		Count(&open).Error; err != nil {
		return false, err
	}
	if open > 0 {
		return false, nil
	}
	alert := models.LowStockAlert{
		CompanyID:       item.CompanyID,
		InventoryItemID: item.ID,
		CurrentQuantity: item.StockQuantity,
		MinStockLevel:   item.MinStockLevel,
		AlertDate:       time.Now(),
	}
	return true, tx.Create(&alert).Error
}

func (s *InventoryService) Analytics(companyID uuid.UUID, now time.Time) (*models.InventoryAnalytics, error) {
	var items []models.InventoryItem
	if err := s.db.Where("company_id = ? AND is_active = ?", companyID, true).Find(&items).Error; err != nil {
		return nil, err
	}

	a := models.InventoryAnalytics{
		TotalItems:        len(items),
		CategoryBreakdown: map[string]int{},
		MovementSummary:   map[string]int{},
		TopUsedItems:      []models.TopUsedItem{},
		RecentMovements:   []models.StockMovement{},
	}
	names := make(map[uuid.UUID]models.InventoryItem, len(items))
	for _, it := range items {
		a.TotalValue += it.StockValue()
		if it.IsLowStock() {
			a.LowStockItems++
		}
		if it.IsOutOfStock() {
			a.OutOfStockItems++
		}
		category := it.Category
		if category == "" {
			category = "Other"
		}
		a.CategoryBreakdown[category]++
		names[it.ID] = it
	}

	var summary []struct {
		MovementType string
		Count        int
	}
	if err := s.db.Model(&models.StockMovement{}).
		Select("movement_type, COUNT(*) as count").
		Where("company_id = ? AND created_at >= ?", companyID, now.AddDate(0, 0, -30)).
		Group("movement_type").Scan(&summary).Error; err != nil {
		return nil, err
	}
	for _, row := range summary {
		a.MovementSummary[row.MovementType] = row.Count
	}

	var top []struct {
		InventoryItemID uuid.UUID
		TotalUsed       int
		TotalCost       float64
	}
	if err := s.db.Model(&models.JobPartUsage{}).
		Select("inventory_item_id, SUM(quantity_used) as total_used, SUM(total_cost) as total_cost").
		Where("company_id = ?", companyID).
		Group("inventory_item_id").Order("total_used DESC").Limit(10).
		Scan(&top).Error; err != nil {
		return nil, err
	}
	for _, row := range top {
		it, ok := names[row.InventoryItemID]
		if !ok {
			continue
		}
		a.TopUsedItems = append(a.TopUsedItems, models.TopUsedItem{
			ItemID:    row.InventoryItemID,
			ItemName:  it.Name,
			ItemSKU:   it.SKU,
			TotalUsed: row.TotalUsed,
			TotalCost: row.TotalCost,
		})
	}

	if err := s.db.Where("company_id = ?", companyID).
		Order("created_at DESC").Limit(5).Find(&a.RecentMovements).Error; err != nil {
		return nil, err
	}
	for i := range a.RecentMovements {
		if it, ok := names[a.RecentMovements[i].InventoryItemID]; ok {
			a.RecentMovements[i].ItemName = it.Name
		} else {
			a.RecentMovements[i].ItemName = "Unknown"
		}
	}

	s.logger.Debug("inventory analytics computed", zap.Int("items", a.TotalItems))
	return &a, nil
}
