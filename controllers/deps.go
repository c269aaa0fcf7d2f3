package controllers

import (
	"errors"
	"net/http"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the services the handlers delegate multi-step work to.
type Dependencies struct {
	Invoices      *services.InvoiceService
	Inventory     *services.InventoryService
	Notifications *services.NotificationService
}

var deps Dependencies

func Use(d Dependencies) {
	deps = d
}

// respondServiceError maps service and model errors to HTTP responses.
func respondServiceError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondWithError(c, http.StatusNotFound, notFound)
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, services.ErrInvoiceNotPending),
		errors.Is(err, services.ErrInvoiceAlreadyPaid),
		errors.Is(err, services.ErrActiveTimeEntry),
		errors.Is(err, services.ErrDuplicateSKU),
		errors.Is(err, services.ErrStockChanged):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrJobNotFound),
		errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrInvalidMovement):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrItemNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrPaymentRejected):
		utils.RespondWithError(c, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, services.ErrGatewayNotConfigured):
		utils.RespondWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		config.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}

// bindJSON answers 400 when the body does not satisfy its binding tags.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return false
	}
	return true
}
