package client

import (
	"context"
	"net/http"
	"net/url"

	"fieldpro-backend/models"

	"github.com/google/uuid"
)

func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.send(ctx, http.MethodPost, "/auth/login", models.LoginInput{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.token = out.AccessToken
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*models.Profile, error) {
	var out models.Profile
	if err := c.get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Jobs

func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	var out []models.Job
	return out, c.get(ctx, "/api/jobs", nil, &out)
}

func (c *Client) CreateJob(ctx context.Context, in models.JobInput) (models.Job, error) {
	var out models.Job
	return out, c.send(ctx, http.MethodPost, "/api/jobs", in, &out)
}

func (c *Client) UpdateJobStatus(ctx context.Context, id uuid.UUID, status, notes string) (models.Job, error) {
	var out models.Job
	return out, c.send(ctx, http.MethodPut, "/api/jobs/"+id.String()+"/status",
		models.StatusInput{Status: status, Notes: notes}, &out)
}

func (c *Client) DeleteJob(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/jobs/"+id.String(), nil, nil, nil)
}

// Clients

func (c *Client) ListClients(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	return out, c.get(ctx, "/api/clients", nil, &out)
}

func (c *Client) CreateClient(ctx context.Context, in models.ClientInput) (models.Client, error) {
	var out models.Client
	return out, c.send(ctx, http.MethodPost, "/api/clients", in, &out)
}

func (c *Client) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/clients/"+id.String(), nil, nil, nil)
}

// Invoices

func (c *Client) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	var out []models.Invoice
	return out, c.get(ctx, "/api/invoices", nil, &out)
}

func (c *Client) CreateInvoice(ctx context.Context, in models.InvoiceInput) (models.Invoice, error) {
	var out models.Invoice
	return out, c.send(ctx, http.MethodPost, "/api/invoices", in, &out)
}

func (c *Client) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) (models.Invoice, error) {
	var out models.Invoice
	return out, c.send(ctx, http.MethodPut, "/api/invoices/"+id.String()+"/status",
		models.StatusInput{Status: status}, &out)
}

// Inventory

func (c *Client) ListInventory(ctx context.Context, lowStock bool) ([]models.InventoryItem, error) {
	var query url.Values
	if lowStock {
		query = url.Values{"low_stock": {"true"}}
	}
	var out []models.InventoryItem
	return out, c.get(ctx, "/api/inventory/items", query, &out)
}

// Technicians and time

func (c *Client) ListTechnicians(ctx context.Context) ([]models.Technician, error) {
	var out []models.Technician
	return out, c.get(ctx, "/api/technicians", nil, &out)
}

func (c *Client) TechnicianReport(ctx context.Context) ([]models.TechnicianStats, error) {
	var out []models.TechnicianStats
	return out, c.get(ctx, "/api/reports/technicians", nil, &out)
}

// ListTimeEntries filters by day when date (YYYY-MM-DD) is set.
func (c *Client) ListTimeEntries(ctx context.Context, date string) ([]models.TimeEntry, error) {
	var query url.Values
	if date != "" {
		query = url.Values{"date": {date}}
	}
	var out []models.TimeEntry
	return out, c.get(ctx, "/api/time-entries", query, &out)
}

// Notifications

func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	return out, c.get(ctx, "/api/notifications", nil, &out)
}

func (c *Client) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodPut, "/api/notifications/"+id.String()+"/read", nil, nil, nil)
}
