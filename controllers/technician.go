package controllers

import (
	"net/http"
	"strings"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
)

func CreateTechnician(c *gin.Context) {
	var input models.TechnicianInput
	if !bindJSON(c, &input) {
		return
	}
	tech := models.Technician{
		CompanyID:  utils.CompanyID(c),
		Name:       input.Name,
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:      input.Phone,
		Skills:     input.Skills,
		HourlyRate: input.HourlyRate,
		IsActive:   true,
	}
	if tech.Skills == nil {
		tech.Skills = []string{}
	}
	if err := config.DB.Create(&tech).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create technician")
		return
	}
	// default:true swallows a false zero value on insert
	if input.IsActive != nil && !*input.IsActive {
		config.DB.Model(&tech).Update("is_active", false)
		tech.IsActive = false
	}
	c.JSON(http.StatusCreated, tech)
}

// GetTechnicians lists technicians; ?active=true limits to active ones.
func GetTechnicians(c *gin.Context) {
	query := config.DB.Where("company_id = ?", utils.CompanyID(c))
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	var techs []models.Technician
	if err := query.Order("name").Find(&techs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve technicians")
		return
	}
	c.JSON(http.StatusOK, techs)
}

func GetTechnician(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var tech models.Technician
	if err := config.DB.Where("company_id = ? AND id = ?", utils.CompanyID(c), id).First(&tech).Error; err != nil {
		respondServiceError(c, err, "Technician not found")
		return
	}
	c.JSON(http.StatusOK, tech)
}

func UpdateTechnician(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var input models.TechnicianInput
	if !bindJSON(c, &input) {
		return
	}
	var tech models.Technician
	if err := config.DB.Where("company_id = ? AND id = ?", utils.CompanyID(c), id).First(&tech).Error; err != nil {
		respondServiceError(c, err, "Technician not found")
		return
	}

	tech.Name = input.Name
	tech.Email = strings.ToLower(strings.TrimSpace(input.Email))
	tech.Phone = input.Phone
	if input.Skills != nil {
		tech.Skills = input.Skills
	}
	tech.HourlyRate = input.HourlyRate
	if input.IsActive != nil {
		tech.IsActive = *input.IsActive
	}
	if err := config.DB.Save(&tech).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update technician")
		return
	}
	c.JSON(http.StatusOK, tech)
}

// DeleteTechnician unassigns the technician from open jobs and soft deletes it.
func DeleteTechnician(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	companyID := utils.CompanyID(c)

	tx := config.DB.Begin()
	result := tx.Where("company_id = ? AND id = ?", companyID, id).Delete(&models.Technician{})
	if result.Error != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete technician")
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusNotFound, "Technician not found")
		return
	}
	if err := tx.Model(&models.Job{}).
		Where("company_id = ? AND assigned_technician_id = ? AND status IN ?", companyID, id,
			[]string{models.JobScheduled, models.JobInProgress}).
		Update("assigned_technician_id", nil).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to unassign jobs")
		return
	}
	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"message": "Technician deleted successfully"})
}
