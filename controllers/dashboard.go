package controllers

import (
	"math"
	"net/http"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DashboardStats struct {
	TotalJobs      int64   `json:"total_jobs"`
	TotalClients   int64   `json:"total_clients"`
	JobsToday      int64   `json:"jobs_today"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	CompletionRate float64 `json:"completion_rate"`
}

func GetDashboardStats(c *gin.Context) {
	stats, err := dashboardStats(utils.CompanyID(c), time.Now())
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func dashboardStats(companyID uuid.UUID, now time.Time) (DashboardStats, error) {
	var stats DashboardStats

	if err := config.DB.Model(&models.Job{}).Where("company_id = ?", companyID).Count(&stats.TotalJobs).Error; err != nil {
		return stats, err
	}
	if err := config.DB.Model(&models.Client{}).Where("company_id = ?", companyID).Count(&stats.TotalClients).Error; err != nil {
		return stats, err
	}

	today := utils.BeginningOfDay(now)
	if err := config.DB.Model(&models.Job{}).
		Where("company_id = ? AND scheduled_date >= ? AND scheduled_date < ?", companyID, today, today.AddDate(0, 0, 1)).
		Count(&stats.JobsToday).Error; err != nil {
		return stats, err
	}

	var completed []models.Job
	if err := config.DB.Select("estimated_cost", "actual_cost").
		Where("company_id = ? AND status = ? AND completed_date >= ?", companyID, models.JobCompleted, utils.BeginningOfMonth(now)).
		Find(&completed).Error; err != nil {
		return stats, err
	}
	for _, j := range completed {
		stats.MonthlyRevenue += j.BillableAmount()
	}

	// Cancelled jobs are left out of the denominator.
	var done, closable int64
	if err := config.DB.Model(&models.Job{}).
		Where("company_id = ? AND status = ?", companyID, models.JobCompleted).
		Count(&done).Error; err != nil {
		return stats, err
	}
	if err := config.DB.Model(&models.Job{}).
		Where("company_id = ? AND status <> ?", companyID, models.JobCancelled).
		Count(&closable).Error; err != nil {
		return stats, err
	}
	if closable > 0 {
		stats.CompletionRate = math.Round(float64(done) / float64(closable) * 100)
	}
	return stats, nil
}

// GetRecentJobs returns the ten most recently created jobs with client names.
func GetRecentJobs(c *gin.Context) {
	companyID := utils.CompanyID(c)
	var jobs []models.Job
	if err := config.DB.Where("company_id = ?", companyID).
		Order("created_at DESC").Limit(10).Find(&jobs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve jobs")
		return
	}
	if err := attachJobNames(companyID, jobs); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve jobs")
		return
	}
	c.JSON(http.StatusOK, jobs)
}
