package controllers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/controllers"
	"fieldpro-backend/models"
	"fieldpro-backend/routes"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.PasswordCost = bcrypt.MinCost

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
	config.DB = db

	settings := config.Defaults()
	settings.JWT.Secret = "test-secret"
	settings.Uploads.Dir = t.TempDir()
	config.App = settings

	log := zap.NewNop()
	payments, err := services.NewMercadoPagoGateway("", true, log)
	require.NoError(t, err)
	notifications := services.NewNotificationService(db, nil, log)
	controllers.Use(controllers.Dependencies{
		Invoices:      services.NewInvoiceService(db, payments, notifications, log),
		Inventory:     services.NewInventoryService(db, notifications, log),
		Notifications: notifications,
	})
	return routes.SetupRouter(settings, log)
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func register(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"email":        email,
		"password":     "supersecret",
		"full_name":    "Dana Owner",
		"company_name": "Acme Services",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.AuthResponse](t, w).AccessToken
}

func createClient(t *testing.T, r *gin.Engine, token string) models.Client {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/clients", token, gin.H{
		"name":    "Acme",
		"email":   "ops@acme.com",
		"phone":   "+1 555 010 0100",
		"address": "1 Main St",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Client](t, w)
}

func createJob(t *testing.T, r *gin.Engine, token string, clientID string, estimate float64) models.Job {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/jobs", token, gin.H{
		"title":          "Fix boiler",
		"client_id":      clientID,
		"service_type":   "plumbing",
		"scheduled_date": time.Now().Add(time.Hour).Format(time.RFC3339),
		"estimated_cost": estimate,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Job](t, w)
}

func TestRegisterAndLogin(t *testing.T) {
	r := setupRouter(t)
	token := register(t, r, "dana@acme.com")
	assert.NotEmpty(t, token)

	w := do(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"email": "DANA@acme.com", "password": "supersecret", "full_name": "Dup", "company_name": "Other",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/auth/login", "", gin.H{"email": "dana@acme.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/auth/login", "", gin.H{"email": "dana@acme.com", "password": "supersecret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[models.AuthResponse](t, w)

	w = do(t, r, http.MethodGet, "/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[models.Profile](t, w)
	assert.Equal(t, "dana@acme.com", profile.Email)
	assert.Equal(t, "Acme Services", profile.CompanyName)
}

func TestAPIRequiresToken(t *testing.T) {
	r := setupRouter(t)
	w := do(t, r, http.MethodGet, "/api/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/api/clients", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientLifecycle(t *testing.T) {
	r := setupRouter(t)
	token := register(t, r, "dana@acme.com")

	client := createClient(t, r, token)
	assert.Equal(t, "Acme", client.Name)
	assert.Zero(t, client.TotalJobs)

	w := do(t, r, http.MethodPost, "/api/clients", token, gin.H{
		"name": "Bad", "email": "bad@x.com", "phone": "12", "address": "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/clients?search=acm", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Client](t, w), 1)

	w = do(t, r, http.MethodGet, "/api/clients?search=zzz", token, nil)
	assert.Empty(t, decode[[]models.Client](t, w))

	w = do(t, r, http.MethodPut, "/api/clients/"+client.ID.String(), token, gin.H{
		"name": "Acme Corp", "email": "ops@acme.com", "phone": "+15550100100", "address": "2 Main St",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Acme Corp", decode[models.Client](t, w).Name)

	// Another company cannot see it.
	other := register(t, r, "eve@other.com")
	w = do(t, r, http.MethodGet, "/api/clients/"+client.ID.String(), other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodDelete, "/api/clients/"+client.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/api/clients/"+client.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/clients/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobStatusTransitions(t *testing.T) {
	r := setupRouter(t)
	token := register(t, r, "dana@acme.com")
	client := createClient(t, r, token)
	job := createJob(t, r, token, client.ID.String(), 100)
	assert.Equal(t, models.JobScheduled, job.Status)
	assert.Equal(t, models.PriorityMedium, job.Priority)

	w := do(t, r, http.MethodGet, "/api/clients/"+client.ID.String(), token, nil)
	assert.Equal(t, 1, decode[models.Client](t, w).TotalJobs)

	path := "/api/jobs/" + job.ID.String() + "/status"

	w = do(t, r, http.MethodPut, path, token, gin.H{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, path, token, gin.H{"status": models.JobCompleted})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPut, path, token, gin.H{"status": models.JobInProgress})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodPut, path, token, gin.H{"status": models.JobCompleted, "notes": "Replaced the valve"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	done := decode[models.Job](t, w)
	assert.Equal(t, models.JobCompleted, done.Status)
	assert.NotNil(t, done.CompletedDate)
	require.Len(t, done.Notes, 1)
	assert.Equal(t, "Dana Owner", done.Notes[0].CreatedBy)

	w = do(t, r, http.MethodPut, path, token, gin.H{"status": models.JobScheduled})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/api/jobs?status=completed", token, nil)
	jobs := decode[[]models.Job](t, w)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Acme", jobs[0].ClientName)

	w = do(t, r, http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[controllers.DashboardStats](t, w)
	assert.EqualValues(t, 1, stats.TotalJobs)
	assert.EqualValues(t, 1, stats.TotalClients)
	assert.InDelta(t, 100, stats.MonthlyRevenue, 0.001)
	assert.InDelta(t, 100, stats.CompletionRate, 0.001)

	w = do(t, r, http.MethodGet, "/api/notifications/unread-count", token, nil)
	assert.EqualValues(t, 1, decode[models.UnreadCount](t, w).Count)
	w = do(t, r, http.MethodPut, "/api/notifications/read-all", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/api/notifications/unread-count", token, nil)
	assert.EqualValues(t, 0, decode[models.UnreadCount](t, w).Count)
}

func TestInvoiceLifecycle(t *testing.T) {
	r := setupRouter(t)
	token := register(t, r, "dana@acme.com")
	client := createClient(t, r, token)
	job := createJob(t, r, token, client.ID.String(), 100)

	w := do(t, r, http.MethodPost, "/api/invoices", token, gin.H{
		"client_id":       client.ID,
		"job_ids":         []string{job.ID.String(), job.ID.String()},
		"due_date":        time.Now().AddDate(0, 0, 30).Format(time.RFC3339),
		"tax_rate":        0.08,
		"discount_amount": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	invoice := decode[models.Invoice](t, w)
	assert.InDelta(t, 98, invoice.TotalAmount, 0.001)
	assert.InDelta(t, 8, invoice.TaxAmount, 0.001)
	assert.Len(t, invoice.JobIDs, 1)
	assert.True(t, strings.HasPrefix(invoice.InvoiceNumber, "INV-"))
	assert.Equal(t, models.InvoicePending, invoice.Status)

	path := "/api/invoices/" + invoice.ID.String()

	w = do(t, r, http.MethodPut, path+"/status", token, gin.H{"status": models.InvoiceSent})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, path+"/payments", token, gin.H{
		"payment_method_id": "visa",
		"token":             "card-token",
		"payer_email":       "ops@acme.com",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := decode[models.Invoice](t, w)
	assert.Equal(t, models.InvoicePaid, paid.Status)
	assert.NotEmpty(t, paid.PaymentReference)

	w = do(t, r, http.MethodPut, path+"/status", token, gin.H{"status": models.InvoiceOverdue})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/api/clients/"+client.ID.String(), token, nil)
	assert.InDelta(t, 98, decode[models.Client](t, w).TotalRevenue, 0.001)

	w = do(t, r, http.MethodPost, "/api/invoices", token, gin.H{
		"client_id": client.ID,
		"job_ids":   []string{client.ID.String()},
		"due_date":  time.Now().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimeEntryActiveConflict(t *testing.T) {
	r := setupRouter(t)
	token := register(t, r, "dana@acme.com")
	client := createClient(t, r, token)
	job := createJob(t, r, token, client.ID.String(), 50)

	w := do(t, r, http.MethodGet, "/api/time-entries/active", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))

	w = do(t, r, http.MethodPost, "/api/time-entries", token, gin.H{"job_id": job.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := decode[models.TimeEntry](t, w)
	assert.True(t, entry.IsBillable)
	assert.Nil(t, entry.EndTime)

	w = do(t, r, http.MethodPost, "/api/time-entries", token, gin.H{"job_id": job.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/api/time-entries/active", token, nil)
	assert.Equal(t, entry.ID, decode[models.TimeEntry](t, w).ID)

	w = do(t, r, http.MethodPut, "/api/time-entries/"+entry.ID.String(), token, gin.H{"stop": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotNil(t, decode[models.TimeEntry](t, w).EndTime)

	w = do(t, r, http.MethodGet, "/api/time-entries/active", token, nil)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))

	w = do(t, r, http.MethodPost, "/api/time-entries", token, gin.H{"job_id": client.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInventoryLowStockAlert(t *testing.T) {
	r := setupRouter(t)
	token := register(t, r, "dana@acme.com")
	client := createClient(t, r, token)
	job := createJob(t, r, token, client.ID.String(), 50)

	w := do(t, r, http.MethodPost, "/api/inventory/items", token, gin.H{
		"name":            "Copper pipe",
		"category":        "parts",
		"unit_cost":       2.5,
		"stock_quantity":  6,
		"min_stock_level": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[models.InventoryItem](t, w)
	assert.Equal(t, "PAR-0001", item.SKU)

	w = do(t, r, http.MethodPost, "/api/inventory/parts-usage", token, gin.H{
		"job_id":            job.ID,
		"inventory_item_id": item.ID,
		"quantity_used":     2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/inventory/items?low_stock=true", token, nil)
	assert.Len(t, decode[[]models.InventoryItem](t, w), 1)

	w = do(t, r, http.MethodGet, "/api/inventory/alerts", token, nil)
	alerts := decode[[]models.LowStockAlert](t, w)
	require.Len(t, alerts, 1)
	assert.Equal(t, 4, alerts[0].CurrentQuantity)

	w = do(t, r, http.MethodPut, "/api/inventory/alerts/"+alerts[0].ID.String()+"/acknowledge", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, r, http.MethodGet, "/api/inventory/alerts", token, nil)
	assert.Empty(t, decode[[]models.LowStockAlert](t, w))

	w = do(t, r, http.MethodPost, "/api/inventory/parts-usage", token, gin.H{
		"job_id":            job.ID,
		"inventory_item_id": item.ID,
		"quantity_used":     50,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobStatusRejectsConcurrentChange(t *testing.T) {
	r := setupRouter(t)
	token := register(t, r, "dana@acme.com")
	client := createClient(t, r, token)
	job := createJob(t, r, token, client.ID.String(), 100)
	path := "/api/jobs/" + job.ID.String() + "/status"

	w := do(t, r, http.MethodPut, path, token, gin.H{"status": models.JobInProgress})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Cancelled by another request after this one loaded the job.
	fired := false
	require.NoError(t, config.DB.Callback().Query().After("gorm:query").Register("test:cancel_job", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "jobs" {
			return
		}
		fired = true
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE jobs SET status = ? WHERE id = ?", models.JobCancelled, job.ID).Error)
	}))

	w = do(t, r, http.MethodPut, path, token, gin.H{"status": models.JobCompleted})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/jobs/"+job.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Job](t, w)
	assert.Equal(t, models.JobCancelled, got.Status)
	assert.Nil(t, got.CompletedDate)
}

func TestDashboardStatsReportsCountFailure(t *testing.T) {
	r := setupRouter(t)
	token := register(t, r, "dana@acme.com")
	client := createClient(t, r, token)
	createJob(t, r, token, client.ID.String(), 100)

	require.NoError(t, config.DB.Callback().Query().After("gorm:query").Register("test:fail_open_jobs_count", func(tx *gorm.DB) {
		if tx.Statement.Table == "jobs" && strings.Contains(tx.Statement.SQL.String(), "status <>") {
			tx.AddError(errors.New("connection reset"))
		}
	}))

	w := do(t, r, http.MethodGet, "/api/dashboard/stats", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())
}
