package controllers

import (
	"net/http"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// notificationScope matches company-wide notifications and those addressed
// to the caller.
func notificationScope(c *gin.Context) *gorm.DB {
	return config.DB.Where("company_id = ? AND (user_id IS NULL OR user_id = ?)", utils.CompanyID(c), utils.UserID(c))
}

// GetNotifications lists newest first; ?is_read=true|false filters.
func GetNotifications(c *gin.Context) {
	query := notificationScope(c)
	switch c.Query("is_read") {
	case "true":
		query = query.Where("is_read = ?", true)
	case "false":
		query = query.Where("is_read = ?", false)
	}
	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve notifications")
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func MarkNotificationRead(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	result := notificationScope(c).Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Notification not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func MarkAllNotificationsRead(c *gin.Context) {
	result := notificationScope(c).Model(&models.Notification{}).Where("is_read = ?", false).Update("is_read", true)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": result.RowsAffected})
}

func GetUnreadCount(c *gin.Context) {
	var count int64
	if err := notificationScope(c).Model(&models.Notification{}).Where("is_read = ?", false).Count(&count).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count notifications")
		return
	}
	c.JSON(http.StatusOK, models.UnreadCount{Count: count})
}
