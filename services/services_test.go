package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"fieldpro-backend/models"
	"fieldpro-backend/services/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

type fixture struct {
	company models.Company
	client  models.Client
	jobs    []models.Job
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{company: models.Company{Name: "Acme Services", NotifyPhone: "+15550100", SMSNotifications: true}}
	require.NoError(t, db.Create(&f.company).Error)

	f.client = models.Client{CompanyID: f.company.ID, Name: "Acme", Email: "a@acme.com", Phone: "555-0100", Address: "1 Main St"}
	require.NoError(t, db.Create(&f.client).Error)

	actual := 60.0
	f.jobs = []models.Job{
		{CompanyID: f.company.ID, ClientID: f.client.ID, Title: "Fix boiler", ServiceType: "plumbing", Status: models.JobCompleted, EstimatedCost: 40},
		{CompanyID: f.company.ID, ClientID: f.client.ID, Title: "Replace valve", ServiceType: "plumbing", Status: models.JobCompleted, EstimatedCost: 50, ActualCost: &actual},
	}
	for i := range f.jobs {
		require.NoError(t, db.Create(&f.jobs[i]).Error)
	}
	return f
}

func TestCalculateTotals(t *testing.T) {
	got := CalculateTotals(100, 0.08, 10)
	assert.Equal(t, 100.0, got.Subtotal)
	assert.Equal(t, 8.0, got.TaxAmount)
	assert.Equal(t, 10.0, got.DiscountAmount)
	assert.Equal(t, 98.0, got.TotalAmount)

	got = CalculateTotals(0.1+0.2, 0, 0)
	assert.Equal(t, 0.3, got.TotalAmount)
}

func TestNewInvoiceNumber(t *testing.T) {
	now := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)
	assert.Regexp(t, `^INV-20240517-[A-Z0-9]{8}$`, NewInvoiceNumber(now))
}

func TestInvoiceService_Create(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	svc := NewInvoiceService(db, nil, nil, zap.NewNop())

	inv, err := svc.Create(f.company.ID, models.InvoiceInput{
		ClientID:       f.client.ID,
		JobIDs:         []uuid.UUID{f.jobs[0].ID, f.jobs[1].ID, f.jobs[0].ID},
		DueDate:        time.Now().AddDate(0, 0, 30),
		TaxRate:        0.08,
		DiscountAmount: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, inv.Subtotal)
	assert.Equal(t, 98.0, inv.TotalAmount)
	assert.Equal(t, models.InvoicePending, inv.Status)
	assert.Len(t, inv.JobIDs, 2)

	var stored models.Invoice
	require.NoError(t, db.First(&stored, "id = ?", inv.ID).Error)
	assert.ElementsMatch(t, inv.JobIDs, stored.JobIDs)

	_, err = svc.Create(f.company.ID, models.InvoiceInput{
		ClientID: f.client.ID,
		JobIDs:   []uuid.UUID{uuid.New()},
		DueDate:  time.Now(),
	})
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = svc.Create(uuid.New(), models.InvoiceInput{
		ClientID: f.client.ID,
		JobIDs:   []uuid.UUID{f.jobs[0].ID},
		DueDate:  time.Now(),
	})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestInvoiceService_ChangeStatus(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	svc := NewInvoiceService(db, nil, nil, zap.NewNop())

	inv, err := svc.Create(f.company.ID, models.InvoiceInput{
		ClientID: f.client.ID,
		JobIDs:   []uuid.UUID{f.jobs[0].ID},
		DueDate:  time.Now(),
	})
	require.NoError(t, err)

	inv, err = svc.ChangeStatus(f.company.ID, inv.ID, models.InvoiceSent)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceSent, inv.Status)

	inv, err = svc.ChangeStatus(f.company.ID, inv.ID, models.InvoicePaid)
	require.NoError(t, err)
	require.NotNil(t, inv.PaidDate)

	var client models.Client
	require.NoError(t, db.First(&client, "id = ?", f.client.ID).Error)
	assert.Equal(t, 40.0, client.TotalRevenue)

	_, err = svc.ChangeStatus(f.company.ID, inv.ID, models.InvoicePending)
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))

	_, err = svc.ChangeStatus(f.company.ID, uuid.New(), models.InvoiceSent)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInvoiceService_Delete(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	svc := NewInvoiceService(db, nil, nil, zap.NewNop())

	pending, err := svc.Create(f.company.ID, models.InvoiceInput{ClientID: f.client.ID, JobIDs: []uuid.UUID{f.jobs[0].ID}, DueDate: time.Now()})
	require.NoError(t, err)
	sent, err := svc.Create(f.company.ID, models.InvoiceInput{ClientID: f.client.ID, JobIDs: []uuid.UUID{f.jobs[1].ID}, DueDate: time.Now()})
	require.NoError(t, err)
	_, err = svc.ChangeStatus(f.company.ID, sent.ID, models.InvoiceSent)
	require.NoError(t, err)

	assert.NoError(t, svc.Delete(f.company.ID, pending.ID))
	assert.ErrorIs(t, svc.Delete(f.company.ID, sent.ID), ErrInvoiceNotPending)
}

func TestInvoiceService_Pay(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := newTestDB(t)
	f := seed(t, db)
	gateway := mocks.NewMockPaymentGateway(ctrl)
	notifications := NewNotificationService(db, nil, zap.NewNop())
	svc := NewInvoiceService(db, gateway, notifications, zap.NewNop())

	inv, err := svc.Create(f.company.ID, models.InvoiceInput{ClientID: f.client.ID, JobIDs: []uuid.UUID{f.jobs[1].ID}, DueDate: time.Now()})
	require.NoError(t, err)

	in := models.PaymentInput{PaymentMethodID: "visa", Token: "tok", PayerEmail: "a@acme.com"}

	gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("", "rejected", nil)
	_, err = svc.Pay(context.Background(), f.company.ID, inv.ID, in)
	assert.ErrorIs(t, err, ErrPaymentRejected)

	gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, payload json.RawMessage) (string, string, error) {
			var body map[string]any
			require.NoError(t, json.Unmarshal(payload, &body))
			assert.Equal(t, 60.0, body["transaction_amount"])
			assert.Equal(t, "visa", body["payment_method_id"])
			return "123456", "approved", nil
		})
	paid, err := svc.Pay(context.Background(), f.company.ID, inv.ID, in)
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, paid.Status)
	assert.Equal(t, "123456", paid.PaymentReference)

	_, err = svc.Pay(context.Background(), f.company.ID, inv.ID, in)
	assert.ErrorIs(t, err, ErrInvoiceAlreadyPaid)

	var count int64
	db.Model(&models.Notification{}).Where("company_id = ?", f.company.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestScheduler_RunOverdueSweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := newTestDB(t)
	f := seed(t, db)
	sender := mocks.NewMockMessageSender(ctrl)
	notifications := NewNotificationService(db, sender, zap.NewNop())
	invoices := NewInvoiceService(db, nil, notifications, zap.NewNop())

	past, err := invoices.Create(f.company.ID, models.InvoiceInput{ClientID: f.client.ID, JobIDs: []uuid.UUID{f.jobs[0].ID}, DueDate: time.Now().AddDate(0, 0, -3)})
	require.NoError(t, err)
	_, err = invoices.Create(f.company.ID, models.InvoiceInput{ClientID: f.client.ID, JobIDs: []uuid.UUID{f.jobs[1].ID}, DueDate: time.Now().AddDate(0, 0, 3)})
	require.NoError(t, err)

	sender.EXPECT().
		Send(gomock.Any(), "+15550100", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, body string) (string, error) {
			assert.Contains(t, body, past.InvoiceNumber)
			assert.Contains(t, body, "Acme")
			return "SM123", nil
		})

	sched, err := NewScheduler("0 9 * * *", invoices, notifications, zap.NewNop())
	require.NoError(t, err)
	n, err := sched.RunOverdueSweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var stored models.Invoice
	require.NoError(t, db.First(&stored, "id = ?", past.ID).Error)
	assert.Equal(t, models.InvoiceOverdue, stored.Status)

	var logs []models.MessageLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "sent", logs[0].Status)
	assert.Equal(t, "SM123", logs[0].ProviderID)

	// Nothing left to sweep.
	n, err = sched.RunOverdueSweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	_, err := NewScheduler("not a spec", nil, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestApplyMovement(t *testing.T) {
	tests := []struct {
		name    string
		current int
		kind    string
		qty     int
		want    int
		err     error
	}{
		{"in", 5, models.MovementIn, 3, 8, nil},
		{"out", 5, models.MovementOut, 5, 0, nil},
		{"out below zero", 5, models.MovementOut, 6, 0, ErrInsufficientStock},
		{"adjustment", 5, models.MovementAdjustment, 42, 42, nil},
		{"unknown", 5, "transfer", 1, 0, ErrInvalidMovement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyMovement(tt.current, tt.kind, tt.qty)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInventoryService_SKUAndMovements(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	notifications := NewNotificationService(db, nil, zap.NewNop())
	svc := NewInventoryService(db, notifications, zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.CreateItem(ctx, f.company.ID, userID, models.InventoryItemInput{
		Name: "Copper pipe", Category: "parts", StockQuantity: 10, MinStockLevel: 3, UnitCost: 2.5, SellingPrice: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "PAR-0001", first.SKU)

	second, err := svc.CreateItem(ctx, f.company.ID, userID, models.InventoryItemInput{Name: "Valve", Category: "Parts"})
	require.NoError(t, err)
	assert.Equal(t, "PAR-0002", second.SKU)

	_, err = svc.CreateItem(ctx, f.company.ID, userID, models.InventoryItemInput{Name: "Dup", Category: "parts", SKU: "PAR-0001"})
	assert.ErrorIs(t, err, ErrDuplicateSKU)

	var initial int64
	db.Model(&models.StockMovement{}).Where("inventory_item_id = ?", first.ID).Count(&initial)
	assert.Equal(t, int64(1), initial)

	_, err = svc.RecordMovement(ctx, f.company.ID, userID, models.StockMovementInput{
		InventoryItemID: first.ID, MovementType: models.MovementOut, Quantity: 11,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	m, err := svc.RecordMovement(ctx, f.company.ID, userID, models.StockMovementInput{
		InventoryItemID: first.ID, MovementType: models.MovementOut, Quantity: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, m.PreviousQuantity)
	assert.Equal(t, 3, m.NewQuantity)

	// Still low after a second movement: the open alert is not duplicated.
	_, err = svc.RecordMovement(ctx, f.company.ID, userID, models.StockMovementInput{
		InventoryItemID: first.ID, MovementType: models.MovementAdjustment, Quantity: 2,
	})
	require.NoError(t, err)

	var alerts int64
	db.Model(&models.LowStockAlert{}).Where("inventory_item_id = ?", first.ID).Count(&alerts)
	assert.Equal(t, int64(1), alerts)

	var notes int64
	db.Model(&models.Notification{}).Where("company_id = ?", f.company.ID).Count(&notes)
	assert.Equal(t, int64(1), notes)
}

func TestInventoryService_UseParts(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	svc := NewInventoryService(db, nil, zap.NewNop())
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, f.company.ID, uuid.New(), models.InventoryItemInput{
		Name: "Thermostat", Category: "equipment", StockQuantity: 4, MinStockLevel: 1, SellingPrice: 25,
	})
	require.NoError(t, err)

	usage, err := svc.UseParts(ctx, f.company.ID, uuid.New(), models.JobPartUsageInput{
		JobID: f.jobs[0].ID, InventoryItemID: item.ID, QuantityUsed: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 25.0, usage.UnitPrice)
	assert.Equal(t, 50.0, usage.TotalCost)

	var stored models.InventoryItem
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, 2, stored.StockQuantity)

	_, err = svc.UseParts(ctx, f.company.ID, uuid.New(), models.JobPartUsageInput{
		JobID: f.jobs[0].ID, InventoryItemID: item.ID, QuantityUsed: 3,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	analytics, err := svc.Analytics(f.company.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, analytics.TotalItems)
	assert.Equal(t, 1, analytics.CategoryBreakdown["equipment"])
	assert.Equal(t, 2, analytics.MovementSummary[models.MovementOut]+analytics.MovementSummary[models.MovementIn])
	require.Len(t, analytics.TopUsedItems, 1)
	assert.Equal(t, 2, analytics.TopUsedItems[0].TotalUsed)
}

// afterFirstQuery runs fn once, right after the first query against table,
// on the same connection as that query.
func afterFirstQuery(t *testing.T, db *gorm.DB, table string, fn func(tx *gorm.DB)) {
	t.Helper()
	fired := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:after_first_query", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		fn(tx.Session(&gorm.Session{NewDB: true}))
	}))
}

func TestInvoiceService_MarkOverdueKeepsInvoicePaidDuringSweep(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	svc := NewInvoiceService(db, nil, nil, zap.NewNop())

	inv, err := svc.Create(f.company.ID, models.InvoiceInput{
		ClientID: f.client.ID,
		JobIDs:   []uuid.UUID{f.jobs[0].ID},
		DueDate:  time.Now().AddDate(0, 0, -3),
	})
	require.NoError(t, err)

	afterFirstQuery(t, db, "invoices", func(tx *gorm.DB) {
		require.NoError(t, tx.Exec("UPDATE invoices SET status = ? WHERE id = ?", models.InvoicePaid, inv.ID).Error)
	})

	changed, err := svc.MarkOverdue(time.Now())
	require.NoError(t, err)
	assert.Empty(t, changed)

	var stored models.Invoice
	require.NoError(t, db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, models.InvoicePaid, stored.Status)
}

func TestInvoiceService_ChangeStatusRejectsStaleStatus(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	svc := NewInvoiceService(db, nil, nil, zap.NewNop())

	inv, err := svc.Create(f.company.ID, models.InvoiceInput{
		ClientID: f.client.ID,
		JobIDs:   []uuid.UUID{f.jobs[0].ID},
		DueDate:  time.Now(),
	})
	require.NoError(t, err)

	// Paid by another request after this one read the invoice as pending. The
	// rejected change rolls back, so the stored row keeps its original status.
	afterFirstQuery(t, db, "invoices", func(tx *gorm.DB) {
		require.NoError(t, tx.Exec("UPDATE invoices SET status = ? WHERE id = ?", models.InvoicePaid, inv.ID).Error)
	})

	_, err = svc.ChangeStatus(f.company.ID, inv.ID, models.InvoiceOverdue)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	var stored models.Invoice
	require.NoError(t, db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, models.InvoicePending, stored.Status)
}

func TestInvoiceService_PayChargesAndCreditsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	db := newTestDB(t)
	f := seed(t, db)
	gateway := mocks.NewMockPaymentGateway(ctrl)
	svc := NewInvoiceService(db, gateway, nil, zap.NewNop())

	inv, err := svc.Create(f.company.ID, models.InvoiceInput{ClientID: f.client.ID, JobIDs: []uuid.UUID{f.jobs[1].ID}, DueDate: time.Now()})
	require.NoError(t, err)

	gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ json.RawMessage) (string, string, error) {
			key, ok := IdempotencyKey(ctx)
			assert.True(t, ok)
			assert.Equal(t, inv.ID.String(), key)

			// A second submission settles the invoice while this one waits
			// on the provider.
			other := *inv
			require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
				return markPaid(tx, &other, "first")
			}))
			return "second", "approved", nil
		})

	_, err = svc.Pay(context.Background(), f.company.ID, inv.ID, models.PaymentInput{PaymentMethodID: "visa", Token: "tok"})
	assert.ErrorIs(t, err, ErrInvoiceAlreadyPaid)

	var stored models.Invoice
	require.NoError(t, db.First(&stored, "id = ?", inv.ID).Error)
	assert.Equal(t, "first", stored.PaymentReference)

	var client models.Client
	require.NoError(t, db.First(&client, "id = ?", f.client.ID).Error)
	assert.Equal(t, 60.0, client.TotalRevenue)
}

func TestIdempotentRequesterUsesContextKey(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Idempotency-Key")
	}))
	defer srv.Close()

	req, err := http.NewRequestWithContext(WithIdempotencyKey(context.Background(), "invoice-1"), http.MethodPost, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("X-Idempotency-Key", "random")

	resp, err := idempotentRequester{client: srv.Client()}.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "invoice-1", got)
}

func TestSKUPrefixKeepsWholeRunes(t *testing.T) {
	assert.Equal(t, "PAR", SKUPrefix(" parts "))
	assert.Equal(t, "AB", SKUPrefix("ab"))

	p := SKUPrefix("Électrique")
	assert.Equal(t, "ÉLE", p)
	assert.True(t, utf8.ValidString(p))
}

func TestInventoryService_MovementRejectsChangedStock(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	svc := NewInventoryService(db, nil, zap.NewNop())
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, f.company.ID, uuid.New(), models.InventoryItemInput{
		Name: "Fuse", Category: "parts", StockQuantity: 5,
	})
	require.NoError(t, err)

	// Another movement takes 4 out after this one read 5. The refused
	// movement rolls back with it.
	afterFirstQuery(t, db, "inventory_items", func(tx *gorm.DB) {
		require.NoError(t, tx.Exec("UPDATE inventory_items SET stock_quantity = ? WHERE id = ?", 1, item.ID).Error)
	})

	_, err = svc.RecordMovement(ctx, f.company.ID, uuid.New(), models.StockMovementInput{
		InventoryItemID: item.ID, MovementType: models.MovementOut, Quantity: 3,
	})
	assert.ErrorIs(t, err, ErrStockChanged)

	var stored models.InventoryItem
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, 5, stored.StockQuantity)

	var movements int64
	db.Model(&models.StockMovement{}).Where("inventory_item_id = ?", item.ID).Count(&movements)
	assert.Equal(t, int64(1), movements)
}

func TestInventoryService_UsePartsRejectsChangedStock(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	svc := NewInventoryService(db, nil, zap.NewNop())
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, f.company.ID, uuid.New(), models.InventoryItemInput{
		Name: "Fuse", Category: "parts", StockQuantity: 5,
	})
	require.NoError(t, err)

	afterFirstQuery(t, db, "inventory_items", func(tx *gorm.DB) {
		require.NoError(t, tx.Exec("UPDATE inventory_items SET stock_quantity = ? WHERE id = ?", 1, item.ID).Error)
	})

	_, err = svc.UseParts(ctx, f.company.ID, uuid.New(), models.JobPartUsageInput{
		JobID: f.jobs[0].ID, InventoryItemID: item.ID, QuantityUsed: 3,
	})
	assert.ErrorIs(t, err, ErrStockChanged)

	var stored models.InventoryItem
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, 5, stored.StockQuantity)

	var usages int64
	db.Model(&models.JobPartUsage{}).Where("inventory_item_id = ?", item.ID).Count(&usages)
	assert.Zero(t, usages)
}
