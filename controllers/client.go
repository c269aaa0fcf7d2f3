// controllers/client.go
package controllers

import (
	"net/http"
	"strings"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
)

func validateClientInput(c *gin.Context, input *models.ClientInput) bool {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return false
	}
	return true
}

// CreateClient creates a new client for the company
func CreateClient(c *gin.Context) {
	var input models.ClientInput
	if !bindJSON(c, &input) || !validateClientInput(c, &input) {
		return
	}

	client := models.Client{
		CompanyID:     utils.CompanyID(c),
		Name:          input.Name,
		Email:         input.Email,
		Phone:         input.Phone,
		Address:       input.Address,
		ContactPerson: input.ContactPerson,
	}
	if err := config.DB.Create(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create client")
		return
	}

	c.JSON(http.StatusCreated, client)
}

// GetClients lists the company's clients, optionally filtered by ?search=
func GetClients(c *gin.Context) {
	query := config.DB.Where("company_id = ?", utils.CompanyID(c))
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(contact_person) LIKE ?", like, like, like)
	}

	var clients []models.Client
	if err := query.Order("created_at").Find(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}
	c.JSON(http.StatusOK, clients)
}

func GetClient(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var client models.Client
	if err := config.DB.Where("company_id = ? AND id = ?", utils.CompanyID(c), id).First(&client).Error; err != nil {
		respondServiceError(c, err, "Client not found")
		return
	}
	c.JSON(http.StatusOK, client)
}

func UpdateClient(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	var input models.ClientInput
	if !bindJSON(c, &input) || !validateClientInput(c, &input) {
		return
	}

	var client models.Client
	if err := config.DB.Where("company_id = ? AND id = ?", utils.CompanyID(c), id).First(&client).Error; err != nil {
		respondServiceError(c, err, "Client not found")
		return
	}

	client.Name = input.Name
	client.Email = input.Email
	client.Phone = input.Phone
	client.Address = input.Address
	client.ContactPerson = input.ContactPerson
	if err := config.DB.Save(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient soft deletes a client
func DeleteClient(c *gin.Context) {
	id, ok := utils.ParamUUID(c, "id")
	if !ok {
		return
	}
	result := config.DB.Where("company_id = ? AND id = ?", utils.CompanyID(c), id).Delete(&models.Client{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete client")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}
