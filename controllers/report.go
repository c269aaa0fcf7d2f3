// controllers/report.go
package controllers

import (
	"math"
	"net/http"
	"sort"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportController handles all reporting functions
type ReportController struct{}

type RevenueSummary struct {
	CurrentMonthRevenue float64 `json:"current_month_revenue"`
	MonthGrowth         float64 `json:"month_growth"`
	OutstandingTotal    float64 `json:"outstanding_total"`
	OverdueCount        int64   `json:"overdue_count"`
}

// GetTechnicianReport returns workload statistics per technician.
func (rc *ReportController) GetTechnicianReport(c *gin.Context) {
	stats, err := rc.technicianStats(utils.CompanyID(c))
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (rc *ReportController) technicianStats(companyID uuid.UUID) ([]models.TechnicianStats, error) {
	var techs []models.Technician
	if err := config.DB.Where("company_id = ?", companyID).Order("name").Find(&techs).Error; err != nil {
		return nil, err
	}
	var jobs []models.Job
	if err := config.DB.Where("company_id = ? AND assigned_technician_id IS NOT NULL", companyID).Find(&jobs).Error; err != nil {
		return nil, err
	}
	var entries []models.TimeEntry
	if err := config.DB.Where("company_id = ? AND technician_id IS NOT NULL AND end_time IS NOT NULL", companyID).Find(&entries).Error; err != nil {
		return nil, err
	}

	byTech := make(map[uuid.UUID]*models.TechnicianStats, len(techs))
	out := make([]models.TechnicianStats, len(techs))
	for i, t := range techs {
		out[i] = models.TechnicianStats{TechnicianID: t.ID, Name: t.Name}
		byTech[t.ID] = &out[i]
	}
	for _, j := range jobs {
		s, ok := byTech[*j.AssignedTechnicianID]
		if !ok {
			continue
		}
		s.TotalJobs++
		if j.Status == models.JobCompleted {
			s.CompletedJobs++
			s.TotalRevenue += j.BillableAmount()
		}
	}
	for _, e := range entries {
		if s, ok := byTech[*e.TechnicianID]; ok {
			s.TotalHours += e.Duration().Hours()
		}
	}
	for i := range out {
		out[i].TotalHours = math.Round(out[i].TotalHours*100) / 100
		if out[i].TotalJobs > 0 {
			out[i].CompletionRate = math.Round(float64(out[i].CompletedJobs) / float64(out[i].TotalJobs) * 100)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].TotalRevenue > out[b].TotalRevenue })
	return out, nil
}

// GetRevenueReport compares paid revenue this month with last month.
func (rc *ReportController) GetRevenueReport(c *gin.Context) {
	companyID := utils.CompanyID(c)
	now := time.Now()
	firstOfMonth := utils.BeginningOfMonth(now)

	current, err := rc.getRevenue(companyID, firstOfMonth, firstOfMonth.AddDate(0, 1, 0))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get monthly revenue")
		return
	}
	previous, err := rc.getRevenue(companyID, firstOfMonth.AddDate(0, -1, 0), firstOfMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last month revenue")
		return
	}

	summary := RevenueSummary{
		CurrentMonthRevenue: current,
		MonthGrowth:         rc.calculateGrowthPercentage(current, previous),
	}
	config.DB.Model(&models.Invoice{}).
		Where("company_id = ? AND status <> ?", companyID, models.InvoicePaid).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&summary.OutstandingTotal)
	config.DB.Model(&models.Invoice{}).
		Where("company_id = ? AND status = ?", companyID, models.InvoiceOverdue).
		Count(&summary.OverdueCount)

	c.JSON(http.StatusOK, summary)
}

func (rc *ReportController) getRevenue(companyID uuid.UUID, start, end time.Time) (float64, error) {
	var total float64
	err := config.DB.Model(&models.Invoice{}).
		Where("company_id = ? AND status = ? AND paid_date >= ? AND paid_date < ?", companyID, models.InvoicePaid, start, end).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	return total, err
}

func (rc *ReportController) calculateGrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}
