// controllers/template.go
package controllers

import (
	"errors"
	"net/http"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UpsertMessageTemplate creates or replaces the company's template for a
// message type.
func UpsertMessageTemplate(c *gin.Context) {
	companyID := utils.CompanyID(c)
	var input models.MessageTemplateInput
	if !bindJSON(c, &input) {
		return
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	var template models.MessageTemplate
	err := config.DB.Where("company_id = ? AND type = ?", companyID, input.Type).First(&template).Error
	switch {
	case err == nil:
		if err := config.DB.Model(&template).Updates(map[string]interface{}{
			"message":   input.Message,
			"is_active": active,
		}).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update template")
			return
		}
		template.Message = input.Message
		template.IsActive = active
		c.JSON(http.StatusOK, template)
	case errors.Is(err, gorm.ErrRecordNotFound):
		template = models.MessageTemplate{
			CompanyID: companyID,
			Type:      input.Type,
			Message:   input.Message,
			IsActive:  true,
		}
		if err := config.DB.Create(&template).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create template")
			return
		}
		if !active {
			config.DB.Model(&template).Update("is_active", false)
			template.IsActive = false
		}
		c.JSON(http.StatusCreated, template)
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}

// GetMessageTemplates lists the company's templates
func GetMessageTemplates(c *gin.Context) {
	var templates []models.MessageTemplate
	if err := config.DB.Where("company_id = ?", utils.CompanyID(c)).Order("type").Find(&templates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve templates")
		return
	}
	c.JSON(http.StatusOK, templates)
}

func DeleteMessageTemplate(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	result := config.DB.Where("company_id = ? AND id = ?", utils.CompanyID(c), id).Delete(&models.MessageTemplate{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

// GetMessageLogs lists the most recent outbound messages.
func GetMessageLogs(c *gin.Context) {
	var logs []models.MessageLog
	if err := config.DB.Where("company_id = ?", utils.CompanyID(c)).
		Order("sent_at DESC").Limit(100).Find(&logs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve message log")
		return
	}
	c.JSON(http.StatusOK, logs)
}
