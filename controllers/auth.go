package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Register creates a company together with its first admin user.
func Register(c *gin.Context) {
	var input models.RegisterInput
	if !bindJSON(c, &input) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	result := config.DB.Where("email = ?", email).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	company := models.Company{
		Name:               input.CompanyName,
		Email:              email,
		Phone:              input.Phone,
		SubscriptionStatus: "trial",
		SubscriptionPlan:   "basic",
		TrialEndsAt:        time.Now().Add(models.TrialPeriod),
	}
	user := models.User{
		Email:    email,
		Password: input.Password, // Will be hashed in BeforeCreate hook
		FullName: input.FullName,
		Phone:    input.Phone,
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		user.CompanyID = company.ID
		return tx.Create(&user).Error
	})
	if err != nil {
		config.Logger.Error("registration failed", zap.String("email", email), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	respondWithToken(c, http.StatusCreated, user, company.Name)
}

func Login(c *gin.Context) {
	var input models.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	var user models.User
	err := config.DB.Preload("Company").
		Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !user.IsActive || !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now()
	config.DB.Model(&user).Update("last_login", &now)

	respondWithToken(c, http.StatusOK, user, user.Company.Name)
}

func respondWithToken(c *gin.Context, status int, user models.User, companyName string) {
	token, err := utils.GenerateToken(user.ID, user.CompanyID, config.App.JWT.Secret, config.App.JWT.Expiry())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	c.JSON(status, models.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user.Profile(companyName),
	})
}

func Me(c *gin.Context) {
	var user models.User
	if err := config.DB.Preload("Company").First(&user, "id = ?", utils.UserID(c)).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}
	c.JSON(http.StatusOK, user.Profile(user.Company.Name))
}
