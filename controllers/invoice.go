// controllers/invoice.go
package controllers

import (
	"net/http"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
)

// CreateInvoice bills a client for a set of jobs
func CreateInvoice(c *gin.Context) {
	var input models.InvoiceInput
	if !bindJSON(c, &input) {
		return
	}
	invoice, err := deps.Invoices.Create(utils.CompanyID(c), input)
	if err != nil {
		respondServiceError(c, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// GetInvoices retrieves all invoices for the company, newest first
func GetInvoices(c *gin.Context) {
	query := config.DB.Where("company_id = ?", utils.CompanyID(c))
	if status := c.Query("status"); status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var invoices []models.Invoice
	if err := query.Order("created_at DESC").Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// GetInvoice retrieves a specific invoice by ID
func GetInvoice(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var invoice models.Invoice
	if err := config.DB.Where("company_id = ? AND id = ?", utils.CompanyID(c), id).First(&invoice).Error; err != nil {
		respondServiceError(c, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoiceStatus moves an invoice to sent, paid or overdue.
func UpdateInvoiceStatus(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var input models.StatusInput
	if !bindJSON(c, &input) {
		return
	}
	if !models.IsInvoiceStatus(input.Status) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid status")
		return
	}
	invoice, err := deps.Invoices.ChangeStatus(utils.CompanyID(c), id, input.Status)
	if err != nil {
		respondServiceError(c, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// PayInvoice charges the invoice through the payment provider.
func PayInvoice(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var input models.PaymentInput
	if !bindJSON(c, &input) {
		return
	}
	invoice, err := deps.Invoices.Pay(c.Request.Context(), utils.CompanyID(c), id, input)
	if err != nil {
		respondServiceError(c, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice soft deletes a pending invoice
func DeleteInvoice(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := deps.Invoices.Delete(utils.CompanyID(c), id); err != nil {
		respondServiceError(c, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}
