package controllers

import (
	"errors"
	"net/http"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// activeEntryQuery scopes running entries to the technician when one is
// given, otherwise to the calling user.
func activeEntryQuery(c *gin.Context, technicianID string) *gorm.DB {
	query := config.DB.Where("company_id = ? AND end_time IS NULL", utils.CompanyID(c))
	if technicianID != "" {
		return query.Where("technician_id = ?", technicianID)
	}
	return query.Where("user_id = ?", utils.UserID(c))
}

// StartTimeEntry opens a running time entry on a job.
func StartTimeEntry(c *gin.Context) {
	companyID := utils.CompanyID(c)
	var input models.TimeEntryInput
	if !bindJSON(c, &input) {
		return
	}

	var n int64
	config.DB.Model(&models.Job{}).Where("company_id = ? AND id = ?", companyID, input.JobID).Count(&n)
	if n == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Job not found")
		return
	}

	techID := ""
	if input.TechnicianID != nil {
		techID = input.TechnicianID.String()
	}
	if err := activeEntryQuery(c, techID).Model(&models.TimeEntry{}).Count(&n).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if n > 0 {
		respondServiceError(c, services.ErrActiveTimeEntry, "")
		return
	}

	billable := true
	if input.IsBillable != nil {
		billable = *input.IsBillable
	}
	entry := models.TimeEntry{
		CompanyID:    companyID,
		JobID:        input.JobID,
		TechnicianID: input.TechnicianID,
		UserID:       utils.UserID(c),
		StartTime:    time.Now(),
		Description:  input.Description,
		IsBillable:   billable,
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to start time entry")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetTimeEntries supports job_id, technician_id and date (YYYY-MM-DD) filters.
func GetTimeEntries(c *gin.Context) {
	query := config.DB.Where("company_id = ?", utils.CompanyID(c))
	if jobID := c.Query("job_id"); jobID != "" {
		query = query.Where("job_id = ?", jobID)
	}
	if techID := c.Query("technician_id"); techID != "" {
		query = query.Where("technician_id = ?", techID)
	}
	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("start_time >= ? AND start_time < ?", day, day.AddDate(0, 0, 1))
	}

	var entries []models.TimeEntry
	if err := query.Order("start_time DESC").Find(&entries).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve time entries")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetActiveTimeEntry returns the caller's running entry, or null.
func GetActiveTimeEntry(c *gin.Context) {
	var entry models.TimeEntry
	err := activeEntryQuery(c, c.Query("technician_id")).Order("start_time DESC").First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func UpdateTimeEntry(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var input models.TimeEntryUpdate
	if !bindJSON(c, &input) {
		return
	}
	var entry models.TimeEntry
	if err := config.DB.Where("company_id = ? AND id = ?", utils.CompanyID(c), id).First(&entry).Error; err != nil {
		respondServiceError(c, err, "Time entry not found")
		return
	}

	switch {
	case input.EndTime != nil:
		if !input.EndTime.After(entry.StartTime) {
			utils.RespondWithError(c, http.StatusBadRequest, "End time must be after start time")
			return
		}
		entry.EndTime = input.EndTime
	case input.Stop && entry.IsActive():
		now := time.Now()
		entry.EndTime = &now
	}
	if input.Description != nil {
		entry.Description = *input.Description
	}
	if input.IsBillable != nil {
		entry.IsBillable = *input.IsBillable
	}

	if err := config.DB.Save(&entry).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update time entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func DeleteTimeEntry(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	result := config.DB.Where("company_id = ? AND id = ?", utils.CompanyID(c), id).Delete(&models.TimeEntry{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete time entry")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Time entry not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Time entry deleted successfully"})
}
