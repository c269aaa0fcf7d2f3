package controllers

import (
	"net/http"
	"strings"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func CreateInventoryItem(c *gin.Context) {
	var input models.InventoryItemInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := deps.Inventory.CreateItem(c.Request.Context(), utils.CompanyID(c), utils.UserID(c), input)
	if err != nil {
		respondServiceError(c, err, "Inventory item not found")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetInventoryItems supports search (name, sku, description), category and
// low_stock=true filters.
func GetInventoryItems(c *gin.Context) {
	query := config.DB.Where("company_id = ? AND is_active = ?", utils.CompanyID(c), true)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
	}
	if category := c.Query("category"); category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}
	if c.Query("low_stock") == "true" {
		query = query.Where("stock_quantity <= min_stock_level")
	}

	var items []models.InventoryItem
	if err := query.Order("name").Find(&items).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve inventory")
		return
	}
	c.JSON(http.StatusOK, items)
}

func findInventoryItem(c *gin.Context) (*models.InventoryItem, bool) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return nil, false
	}
	var item models.InventoryItem
	if err := config.DB.Where("company_id = ? AND id = ?", utils.CompanyID(c), id).First(&item).Error; err != nil {
		respondServiceError(c, err, "Inventory item not found")
		return nil, false
	}
	return &item, true
}

func GetInventoryItem(c *gin.Context) {
	item, ok := findInventoryItem(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateInventoryItem applies a partial update. Stock changes made here
// bypass the movement log; use stock movements for audited changes.
func UpdateInventoryItem(c *gin.Context) {
	item, ok := findInventoryItem(c)
	if !ok {
		return
	}
	var input models.InventoryItemUpdate
	if !bindJSON(c, &input) {
		return
	}

	updates := map[string]interface{}{}
	set := func(col string, v interface{}, present bool) {
		if present {
			updates[col] = v
		}
	}
	set("name", deref(input.Name), input.Name != nil)
	set("description", deref(input.Description), input.Description != nil)
	set("category", deref(input.Category), input.Category != nil)
	set("sku", deref(input.SKU), input.SKU != nil)
	set("supplier_name", deref(input.SupplierName), input.SupplierName != nil)
	set("supplier_contact", deref(input.SupplierContact), input.SupplierContact != nil)
	set("location", deref(input.Location), input.Location != nil)
	set("barcode", deref(input.Barcode), input.Barcode != nil)
	set("notes", deref(input.Notes), input.Notes != nil)
	if input.UnitCost != nil {
		updates["unit_cost"] = *input.UnitCost
	}
	if input.SellingPrice != nil {
		updates["selling_price"] = *input.SellingPrice
	}
	if input.StockQuantity != nil {
		updates["stock_quantity"] = *input.StockQuantity
	}
	if input.MinStockLevel != nil {
		updates["min_stock_level"] = *input.MinStockLevel
	}
	if input.MaxStockLevel != nil {
		updates["max_stock_level"] = *input.MaxStockLevel
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := config.DB.Model(item).Updates(updates).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update inventory item")
			return
		}
	}
	config.DB.First(item, "id = ?", item.ID)
	c.JSON(http.StatusOK, item)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// DeleteInventoryItem deactivates the item; history stays intact.
func DeleteInventoryItem(c *gin.Context) {
	item, ok := findInventoryItem(c)
	if !ok {
		return
	}
	if err := config.DB.Model(item).Update("is_active", false).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete inventory item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory item deleted successfully"})
}

func CreateStockMovement(c *gin.Context) {
	var input models.StockMovementInput
	if !bindJSON(c, &input) {
		return
	}
	movement, err := deps.Inventory.RecordMovement(c.Request.Context(), utils.CompanyID(c), utils.UserID(c), input)
	if err != nil {
		respondServiceError(c, err, "Inventory item not found")
		return
	}
	c.JSON(http.StatusCreated, movement)
}

// GetStockMovements supports item_id and movement_type filters.
func GetStockMovements(c *gin.Context) {
	companyID := utils.CompanyID(c)
	query := config.DB.Where("company_id = ?", companyID)
	if itemID := c.Query("item_id"); itemID != "" {
		query = query.Where("inventory_item_id = ?", itemID)
	}
	if kind := c.Query("movement_type"); kind != "" {
		query = query.Where("movement_type = ?", kind)
	}

	var movements []models.StockMovement
	if err := query.Order("created_at DESC").Limit(200).Find(&movements).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve movements")
		return
	}
	names, err := itemNames(companyID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve movements")
		return
	}
	for i := range movements {
		movements[i].ItemName = names[movements[i].InventoryItemID].Name
	}
	c.JSON(http.StatusOK, movements)
}

func RecordPartsUsage(c *gin.Context) {
	var input models.JobPartUsageInput
	if !bindJSON(c, &input) {
		return
	}
	usage, err := deps.Inventory.UseParts(c.Request.Context(), utils.CompanyID(c), utils.UserID(c), input)
	if err != nil {
		respondServiceError(c, err, "Inventory item not found")
		return
	}
	c.JSON(http.StatusCreated, usage)
}

func GetPartsUsage(c *gin.Context) {
	query := config.DB
	if jobID := c.Query("job_id"); jobID != "" {
		query = query.Where("job_id = ?", jobID)
	}
	usages, err := loadPartUsages(utils.CompanyID(c), query)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve parts usage")
		return
	}
	c.JSON(http.StatusOK, usages)
}

func loadPartUsages(companyID uuid.UUID, query *gorm.DB) ([]models.JobPartUsage, error) {
	var usages []models.JobPartUsage
	if err := query.Where("company_id = ?", companyID).Order("created_at DESC").Find(&usages).Error; err != nil {
		return nil, err
	}
	names, err := itemNames(companyID)
	if err != nil {
		return nil, err
	}
	for i := range usages {
		it := names[usages[i].InventoryItemID]
		usages[i].ItemName = it.Name
		usages[i].ItemSKU = it.SKU
	}
	return usages, nil
}

func itemNames(companyID uuid.UUID) (map[uuid.UUID]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := config.DB.Select("id", "name", "sku").Where("company_id = ?", companyID).Find(&items).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.InventoryItem, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

// GetLowStockAlerts lists alerts, unacknowledged only unless ?all=true.
func GetLowStockAlerts(c *gin.Context) {
	companyID := utils.CompanyID(c)
	query := config.DB.Where("company_id = ?", companyID)
	if c.Query("all") != "true" {
		query = query.Where("is_acknowledged = ?", false)
	}
	var alerts []models.LowStockAlert
	if err := query.Order("alert_date DESC").Find(&alerts).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve alerts")
		return
	}
	names, err := itemNames(companyID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve alerts")
		return
	}
	for i := range alerts {
		alerts[i].ItemName = names[alerts[i].InventoryItemID].Name
	}
	c.JSON(http.StatusOK, alerts)
}

func AcknowledgeLowStockAlert(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	userID := utils.UserID(c)
	now := time.Now()
	result := config.DB.Model(&models.LowStockAlert{}).
		Where("company_id = ? AND id = ?", utils.CompanyID(c), id).
		Updates(map[string]interface{}{
			"is_acknowledged": true,
			"acknowledged_by": userID,
			"acknowledged_at": now,
		})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to acknowledge alert")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Alert not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alert acknowledged"})
}

func GetInventoryAnalytics(c *gin.Context) {
	analytics, err := deps.Inventory.Analytics(utils.CompanyID(c), time.Now())
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, analytics)
}
