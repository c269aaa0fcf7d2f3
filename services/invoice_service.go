package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Totals are rounded to cents. TotalAmount = Subtotal + TaxAmount - DiscountAmount.
type Totals struct {
	Subtotal       float64
	TaxAmount      float64
	DiscountAmount float64
	TotalAmount    float64
}

func CalculateTotals(subtotal, taxRate, discount float64) Totals {
	sub := decimal.NewFromFloat(subtotal)
	tax := sub.Mul(decimal.NewFromFloat(taxRate)).Round(2)
	disc := decimal.NewFromFloat(discount).Round(2)
	total := sub.Add(tax).Sub(disc).Round(2)

	return Totals{
		Subtotal:       sub.Round(2).InexactFloat64(),
		TaxAmount:      tax.InexactFloat64(),
		DiscountAmount: disc.InexactFloat64(),
		TotalAmount:    total.InexactFloat64(),
	}
}

// SumBillable adds the billable amount of every job without float drift.
func SumBillable(jobs []models.Job) float64 {
	sum := decimal.Zero
	for _, j := range jobs {
		sum = sum.Add(decimal.NewFromFloat(j.BillableAmount()))
	}
	return sum.InexactFloat64()
}

func NewInvoiceNumber(now time.Time) string {
	return "INV-" + now.UTC().Format("20060102") + "-" + utils.GenerateRandomString(8)
}

type InvoiceService struct {
	db            *gorm.DB
	payments      PaymentGateway
	notifications *NotificationService
	logger        *zap.Logger
}

func NewInvoiceService(db *gorm.DB, payments PaymentGateway, notifications *NotificationService, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{db: db, payments: payments, notifications: notifications, logger: logger}
}

func (s *InvoiceService) Create(companyID uuid.UUID, in models.InvoiceInput) (*models.Invoice, error) {
	var client models.Client
	if err := s.db.Where("company_id = ? AND id = ?", companyID, in.ClientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	jobIDs := uniqueIDs(in.JobIDs)
	var jobs []models.Job
	if err := s.db.Where("company_id = ? AND id IN ?", companyID, jobIDs).Find(&jobs).Error; err != nil {
		return nil, err
	}
	if len(jobs) != len(jobIDs) {
		return nil, ErrJobNotFound
	}

	totals := CalculateTotals(SumBillable(jobs), in.TaxRate, in.DiscountAmount)
	invoice := models.Invoice{
		CompanyID:      companyID,
		InvoiceNumber:  NewInvoiceNumber(time.Now()),
		ClientID:       in.ClientID,
		JobIDs:         jobIDs,
		Subtotal:       totals.Subtotal,
		TaxRate:        in.TaxRate,
		TaxAmount:      totals.TaxAmount,
		DiscountAmount: totals.DiscountAmount,
		TotalAmount:    totals.TotalAmount,
		Status:         models.InvoicePending,
		DueDate:        in.DueDate,
		Notes:          in.Notes,
	}
	if err := s.db.Create(&invoice).Error; err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice", invoice.InvoiceNumber),
		zap.Float64("total", invoice.TotalAmount))
	return &invoice, nil
}

// ChangeStatus moves an invoice along its status machine. Marking it paid
// stamps the paid date and credits the client's revenue.
func (s *InvoiceService) ChangeStatus(companyID, id uuid.UUID, to string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ? AND id = ?", companyID, id).First(&invoice).Error; err != nil {
			return err
		}
		if err := models.CheckInvoiceTransition(invoice.Status, to); err != nil {
			return err
		}
		if to == models.InvoicePaid {
			return markPaid(tx, &invoice, "")
		}
		res := tx.Model(&models.Invoice{}).
			Where("id = ? AND status = ?", invoice.ID, invoice.Status).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: invoice %s changed status concurrently", models.ErrInvalidTransition, invoice.InvoiceNumber)
		}
		invoice.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// Pay charges the invoice total through the payment gateway and marks the
// invoice paid once the provider approves.
func (s *InvoiceService) Pay(ctx context.Context, companyID, id uuid.UUID, in models.PaymentInput) (*models.Invoice, error) {
	if s.payments == nil {
		return nil, ErrGatewayNotConfigured
	}

	var invoice models.Invoice
	if err := s.db.Where("company_id = ? AND id = ?", companyID, id).First(&invoice).Error; err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoicePaid {
		return nil, ErrInvoiceAlreadyPaid
	}

	installments := in.Installments
	if installments == 0 {
		installments = 1
	}
	payload, err := json.Marshal(map[string]any{
		"transaction_amount": invoice.TotalAmount,
		"token":              in.Token,
		"description":        "Invoice " + invoice.InvoiceNumber,
		"installments":       installments,
		"payment_method_id":  in.PaymentMethodID,
		"external_reference": invoice.ID.String(),
		"payer":              map[string]any{"email": in.PayerEmail},
	})
	if err != nil {
		return nil, err
	}

	// Double submissions for one invoice share a key so the provider
	// charges at most once.
	providerID, status, err := s.payments.CreatePayment(WithIdempotencyKey(ctx, invoice.ID.String()), payload)
	if err != nil {
		s.logger.Error("payment failed", zap.String("invoice", invoice.InvoiceNumber), zap.Error(err))
		return nil, err
	}
	if status != "approved" {
		return nil, fmt.Errorf("%w: provider status %s", ErrPaymentRejected, status)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return markPaid(tx, &invoice, providerID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("invoice paid",
		zap.String("invoice", invoice.InvoiceNumber),
		zap.String("provider_id", providerID))
	if s.notifications != nil {
		s.notifications.Notify(companyID, models.NotificationSuccess, "Payment received",
			fmt.Sprintf("Invoice %s was paid", invoice.InvoiceNumber))
	}
	return &invoice, nil
}

// markPaid credits the client only when this call is the one that moves the
// invoice to paid.
func markPaid(tx *gorm.DB, invoice *models.Invoice, reference string) error {
	now := time.Now()
	if reference == "" {
		reference = invoice.PaymentReference
	}
	res := tx.Model(&models.Invoice{}).
		Where("id = ? AND status <> ?", invoice.ID, models.InvoicePaid).
		Updates(map[string]interface{}{
			"status":            models.InvoicePaid,
			"paid_date":         now,
			"payment_reference": reference,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvoiceAlreadyPaid
	}

	invoice.Status = models.InvoicePaid
	invoice.PaidDate = &now
	invoice.PaymentReference = reference
	return tx.Model(&models.Client{}).Where("id = ?", invoice.ClientID).
		Update("total_revenue", gorm.Expr("total_revenue + ?", invoice.TotalAmount)).Error
}

func (s *InvoiceService) Delete(companyID, id uuid.UUID) error {
	var invoice models.Invoice
	if err := s.db.Where("company_id = ? AND id = ?", companyID, id).First(&invoice).Error; err != nil {
		return err
	}
	if invoice.Status != models.InvoicePending {
		return ErrInvoiceNotPending
	}
	return s.db.Delete(&invoice).Error
}

// MarkOverdue flips every pending or sent invoice due before now to overdue
// and returns the invoices it changed. An invoice paid between the read and
// the write keeps its paid status.
func (s *InvoiceService) MarkOverdue(now time.Time) ([]models.Invoice, error) {
	open := []string{models.InvoicePending, models.InvoiceSent}

	var due []models.Invoice
	if err := s.db.Where("status IN ? AND due_date < ?", open, now).
		Find(&due).Error; err != nil {
		return nil, err
	}

	var changed []models.Invoice
	for _, inv := range due {
		res := s.db.Model(&models.Invoice{}).
			Where("id = ? AND status IN ?", inv.ID, open).
			Update("status", models.InvoiceOverdue)
		if res.Error != nil {
			return changed, res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}
		inv.Status = models.InvoiceOverdue
		changed = append(changed, inv)
	}
	return changed, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
