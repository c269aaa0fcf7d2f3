// controllers/job.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// checkJobRefs verifies the client and technician belong to the company.
func checkJobRefs(c *gin.Context, companyID uuid.UUID, input *models.JobInput) bool {
	var n int64
	config.DB.Model(&models.Client{}).Where("company_id = ? AND id = ?", companyID, input.ClientID).Count(&n)
	if n == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Client not found")
		return false
	}
	if input.AssignedTechnicianID != nil {
		config.DB.Model(&models.Technician{}).Where("company_id = ? AND id = ?", companyID, *input.AssignedTechnicianID).Count(&n)
		if n == 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Technician not found")
			return false
		}
	}
	return true
}

// CreateJob schedules a new job and bumps the client's job count
func CreateJob(c *gin.Context) {
	companyID := utils.CompanyID(c)
	var input models.JobInput
	if !bindJSON(c, &input) || !checkJobRefs(c, companyID, &input) {
		return
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	job := models.Job{
		CompanyID:            companyID,
		Title:                input.Title,
		Description:          input.Description,
		ClientID:             input.ClientID,
		ServiceType:          input.ServiceType,
		Status:               models.JobScheduled,
		Priority:             priority,
		ScheduledDate:        input.ScheduledDate,
		EstimatedDuration:    input.EstimatedDuration,
		EstimatedCost:        input.EstimatedCost,
		ActualDuration:       input.ActualDuration,
		ActualCost:           input.ActualCost,
		AssignedTechnicianID: input.AssignedTechnicianID,
		Photos:               []string{},
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&job).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create job")
		return
	}
	if err := tx.Model(&models.Client{}).Where("id = ?", job.ClientID).
		Update("total_jobs", gorm.Expr("total_jobs + ?", 1)).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client stats")
		return
	}
	tx.Commit()

	c.JSON(http.StatusCreated, job)
}

// GetJobs lists jobs sorted by scheduled date. Supports status, priority,
// technician_id and client_id filters.
func GetJobs(c *gin.Context) {
	companyID := utils.CompanyID(c)
	query := config.DB.Where("company_id = ?", companyID)
	if status := c.Query("status"); status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	if priority := c.Query("priority"); priority != "" && priority != "all" {
		query = query.Where("priority = ?", priority)
	}
	if techID := c.Query("technician_id"); techID != "" {
		query = query.Where("assigned_technician_id = ?", techID)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var jobs []models.Job
	if err := query.Order("scheduled_date").Find(&jobs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve jobs")
		return
	}
	if err := attachJobNames(companyID, jobs); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve jobs")
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// attachJobNames fills ClientName and TechnicianName for display.
func attachJobNames(companyID uuid.UUID, jobs []models.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	var clients []models.Client
	if err := config.DB.Select("id", "name").Where("company_id = ?", companyID).Find(&clients).Error; err != nil {
		return err
	}
	var techs []models.Technician
	if err := config.DB.Select("id", "name").Where("company_id = ?", companyID).Find(&techs).Error; err != nil {
		return err
	}

	clientNames := make(map[uuid.UUID]string, len(clients))
	for _, cl := range clients {
		clientNames[cl.ID] = cl.Name
	}
	techNames := make(map[uuid.UUID]string, len(techs))
	for _, t := range techs {
		techNames[t.ID] = t.Name
	}
	for i := range jobs {
		jobs[i].ClientName = clientNames[jobs[i].ClientID]
		if jobs[i].AssignedTechnicianID != nil {
			jobs[i].TechnicianName = techNames[*jobs[i].AssignedTechnicianID]
		}
	}
	return nil
}

func findJob(c *gin.Context) (*models.Job, bool) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return nil, false
	}
	var job models.Job
	if err := config.DB.Preload("Notes", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at")
	}).Where("company_id = ? AND id = ?", utils.CompanyID(c), id).First(&job).Error; err != nil {
		respondServiceError(c, err, "Job not found")
		return nil, false
	}
	return &job, true
}

func GetJob(c *gin.Context) {
	job, ok := findJob(c)
	if !ok {
		return
	}
	jobs := []models.Job{*job}
	attachJobNames(job.CompanyID, jobs)
	c.JSON(http.StatusOK, jobs[0])
}

// UpdateJob replaces the editable fields of a job. Status changes go
// through UpdateJobStatus.
func UpdateJob(c *gin.Context) {
	job, ok := findJob(c)
	if !ok {
		return
	}
	var input models.JobInput
	if !bindJSON(c, &input) || !checkJobRefs(c, job.CompanyID, &input) {
		return
	}

	updates := map[string]interface{}{
		"title":                  input.Title,
		"description":            input.Description,
		"client_id":              input.ClientID,
		"service_type":           input.ServiceType,
		"scheduled_date":         input.ScheduledDate,
		"estimated_duration":     input.EstimatedDuration,
		"estimated_cost":         input.EstimatedCost,
		"actual_duration":        input.ActualDuration,
		"actual_cost":            input.ActualCost,
		"assigned_technician_id": input.AssignedTechnicianID,
	}
	if input.Priority != "" {
		updates["priority"] = input.Priority
	}

	tx := config.DB.Begin()
	if err := tx.Model(job).Updates(updates).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update job")
		return
	}
	if job.ClientID != input.ClientID {
		if err := moveClientJobCount(tx, job.ClientID, input.ClientID); err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client stats")
			return
		}
	}
	tx.Commit()

	var updated models.Job
	config.DB.Preload("Notes").First(&updated, "id = ?", job.ID)
	c.JSON(http.StatusOK, updated)
}

func moveClientJobCount(tx *gorm.DB, from, to uuid.UUID) error {
	if err := tx.Model(&models.Client{}).Where("id = ? AND total_jobs > 0", from).
		Update("total_jobs", gorm.Expr("total_jobs - ?", 1)).Error; err != nil {
		return err
	}
	return tx.Model(&models.Client{}).Where("id = ?", to).
		Update("total_jobs", gorm.Expr("total_jobs + ?", 1)).Error
}

// UpdateJobStatus moves a job along scheduled -> in_progress -> completed,
// or to cancelled. Illegal moves answer 409.
func UpdateJobStatus(c *gin.Context) {
	job, ok := findJob(c)
	if !ok {
		return
	}
	var input models.StatusInput
	if !bindJSON(c, &input) {
		return
	}
	if !models.IsJobStatus(input.Status) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid status")
		return
	}
	if err := models.CheckJobTransition(job.Status, input.Status); err != nil {
		respondServiceError(c, err, "Job not found")
		return
	}

	updates := map[string]interface{}{"status": input.Status}
	if input.Status == models.JobCompleted {
		updates["completed_date"] = time.Now()
	}

	var note *models.JobNote
	if strings.TrimSpace(input.Notes) != "" {
		note = &models.JobNote{JobID: job.ID, Text: input.Notes, CreatedBy: authorName(utils.UserID(c))}
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Job{}).
			Where("id = ? AND status = ?", job.ID, job.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: job status changed concurrently", models.ErrInvalidTransition)
		}
		if note == nil {
			return nil
		}
		return tx.Create(note).Error
	})
	if errors.Is(err, models.ErrInvalidTransition) {
		utils.RespondWithError(c, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update job status")
		return
	}

	job.Status = input.Status
	if input.Status == models.JobCompleted && deps.Notifications != nil {
		deps.Notifications.JobCompleted(*job)
	}

	var updated models.Job
	config.DB.Preload("Notes").First(&updated, "id = ?", job.ID)
	c.JSON(http.StatusOK, updated)
}

func authorName(userID uuid.UUID) string {
	var user models.User
	if err := config.DB.Select("full_name").First(&user, "id = ?", userID).Error; err != nil {
		return "Unknown"
	}
	return user.FullName
}

func AddJobNote(c *gin.Context) {
	job, ok := findJob(c)
	if !ok {
		return
	}
	var input models.JobNoteInput
	if !bindJSON(c, &input) {
		return
	}
	note := models.JobNote{
		JobID:     job.ID,
		Text:      input.Text,
		CreatedBy: authorName(utils.UserID(c)),
	}
	if err := config.DB.Create(&note).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to add note")
		return
	}
	c.JSON(http.StatusCreated, note)
}

// UploadJobPhoto stores a multipart "file" under the uploads directory and
// records its path on the job.
func UploadJobPhoto(c *gin.Context) {
	job, ok := findJob(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "File is required")
		return
	}

	ext := strings.TrimPrefix(filepath.Ext(file.Filename), ".")
	if ext == "" {
		ext = "jpg"
	}
	dir := filepath.Join(config.App.Uploads.Dir, "jobs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to store photo")
		return
	}
	filename := fmt.Sprintf("%s_%s.%s", job.ID, uuid.New(), ext)
	path := filepath.Join(dir, filename)
	if err := c.SaveUploadedFile(file, path); err != nil {
		config.Logger.Error("photo upload failed", zap.String("job", job.ID.String()), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to store photo")
		return
	}

	job.Photos = append(job.Photos, path)
	if err := config.DB.Model(job).Select("photos").Updates(job).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update job")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo uploaded successfully", "filename": filename})
}

// DeleteJob soft deletes a job
func DeleteJob(c *gin.Context) {
	job, ok := findJob(c)
	if !ok {
		return
	}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(job).Error; err != nil {
			return err
		}
		return tx.Model(&models.Client{}).Where("id = ? AND total_jobs > 0", job.ClientID).
			Update("total_jobs", gorm.Expr("total_jobs - ?", 1)).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete job")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}

// GetJobParts lists inventory used on a job.
func GetJobParts(c *gin.Context) {
	job, ok := findJob(c)
	if !ok {
		return
	}
	usages, err := loadPartUsages(job.CompanyID, config.DB.Where("job_id = ?", job.ID))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve parts")
		return
	}
	c.JSON(http.StatusOK, usages)
}
