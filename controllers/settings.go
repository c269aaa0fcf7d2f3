package controllers

import (
	"net/http"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
)

func GetCompanySettings(c *gin.Context) {
	var company models.Company
	if err := config.DB.First(&company, "id = ?", utils.CompanyID(c)).Error; err != nil {
		respondServiceError(c, err, "Company not found")
		return
	}
	c.JSON(http.StatusOK, company)
}

func UpdateCompanySettings(c *gin.Context) {
	var input models.CompanySettingsInput
	if !bindJSON(c, &input) {
		return
	}

	var company models.Company
	if err := config.DB.First(&company, "id = ?", utils.CompanyID(c)).Error; err != nil {
		respondServiceError(c, err, "Company not found")
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.NotifyPhone != nil {
		if *input.NotifyPhone != "" && !utils.ValidatePhone(*input.NotifyPhone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid notification phone")
			return
		}
		updates["notify_phone"] = utils.NormalizePhone(*input.NotifyPhone)
	}
	if input.SMSNotifications != nil {
		updates["sms_notifications"] = *input.SMSNotifications
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&company).Updates(updates).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update settings")
			return
		}
	}
	c.JSON(http.StatusOK, company)
}
