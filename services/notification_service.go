package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"fieldpro-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationService records in-app notifications and, when a company has
// opted in, texts its notification phone.
type NotificationService struct {
	db     *gorm.DB
	sender MessageSender
	logger *zap.Logger
}

// NewNotificationService accepts a nil sender; SMS delivery is then skipped.
func NewNotificationService(db *gorm.DB, sender MessageSender, logger *zap.Logger) *NotificationService {
	return &NotificationService{db: db, sender: sender, logger: logger}
}

func (s *NotificationService) Notify(companyID uuid.UUID, kind, title, message string) {
	n := models.Notification{
		CompanyID: companyID,
		Type:      kind,
		Title:     title,
		Message:   message,
	}
	if err := s.db.Create(&n).Error; err != nil {
		s.logger.Error("failed to store notification",
			zap.String("company", companyID.String()), zap.Error(err))
	}
}

func (s *NotificationService) InvoiceOverdue(ctx context.Context, inv models.Invoice) {
	var client models.Client
	s.db.Select("name").Where("id = ?", inv.ClientID).First(&client)

	s.Notify(inv.CompanyID, models.NotificationWarning, "Invoice overdue",
		fmt.Sprintf("Invoice %s is overdue", inv.InvoiceNumber))
	s.SendSMS(ctx, inv.CompanyID, models.MessageOverdueInvoice, inv.ID, map[string]string{
		"invoice_number": inv.InvoiceNumber,
		"client_name":    client.Name,
		"amount":         fmt.Sprintf("%.2f", inv.TotalAmount),
		"due_date":       inv.DueDate.Format("2006-01-02"),
	})
}

func (s *NotificationService) LowStock(ctx context.Context, item models.InventoryItem) {
	s.Notify(item.CompanyID, models.NotificationWarning, "Low stock",
		fmt.Sprintf("%s is low on stock (%d left)", item.Name, item.StockQuantity))
	s.SendSMS(ctx, item.CompanyID, models.MessageLowStock, item.ID, map[string]string{
		"item_name": item.Name,
		"quantity":  strconv.Itoa(item.StockQuantity),
		"min_level": strconv.Itoa(item.MinStockLevel),
	})
}

func (s *NotificationService) JobCompleted(job models.Job) {
	s.Notify(job.CompanyID, models.NotificationSuccess, "Job completed",
		fmt.Sprintf("%s was completed", job.Title))
}

// SendSMS renders the company's template for kind and texts it to the
// company notification phone. Every attempt is written to the message log.
func (s *NotificationService) SendSMS(ctx context.Context, companyID uuid.UUID, kind string, referenceID uuid.UUID, vars map[string]string) {
	if s.sender == nil {
		return
	}
	var company models.Company
	if err := s.db.Where("id = ?", companyID).First(&company).Error; err != nil {
		s.logger.Error("company lookup failed", zap.String("company", companyID.String()), zap.Error(err))
		return
	}
	if !company.SMSNotifications || company.NotifyPhone == "" {
		return
	}

	body := models.DefaultTemplates[kind]
	var templateID *uuid.UUID
	var template models.MessageTemplate
	if err := s.db.Where("company_id = ? AND type = ? AND is_active = ?", companyID, kind, true).
		First(&template).Error; err == nil {
		body = template.Message
		templateID = &template.ID
	}
	message := models.Render(body, vars)

	status := "sent"
	errorMsg := ""
	sid, err := s.sender.Send(ctx, company.NotifyPhone, message)
	if err != nil {
		s.logger.Warn("sms delivery failed", zap.String("to", company.NotifyPhone), zap.Error(err))
		status = "failed"
		errorMsg = err.Error()
	} else {
		s.logger.Info("sms sent", zap.String("to", company.NotifyPhone), zap.String("sid", sid))
	}

	entry := models.MessageLog{
		CompanyID:    companyID,
		TemplateID:   templateID,
		ReferenceID:  referenceID,
		Type:         kind,
		Recipient:    company.NotifyPhone,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      "sms",
		ProviderID:   sid,
		SentAt:       time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		s.logger.Error("failed to log message", zap.String("reference", referenceID.String()), zap.Error(err))
	}
}
