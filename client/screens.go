package client

import (
	"time"

	"fieldpro-backend/collection"
	"fieldpro-backend/models"
)

// Each list screen loads with a couple of retries; mutations never retry.
const (
	loadRetries    = 2
	loadRetryDelay = 500 * time.Millisecond
)

var JobMatcher = collection.Matcher[models.Job]{
	Status: func(j models.Job) string { return j.Status },
	Text: func(j models.Job) []string {
		return []string{j.Title, j.ClientName, j.TechnicianName, j.ServiceType}
	},
}

var ClientMatcher = collection.Matcher[models.Client]{
	Text: func(c models.Client) []string {
		return []string{c.Name, c.Email, c.ContactPerson, c.Phone}
	},
}

var InvoiceMatcher = collection.Matcher[models.Invoice]{
	Status: func(i models.Invoice) string { return i.Status },
	Text:   func(i models.Invoice) []string { return []string{i.InvoiceNumber, i.Notes} },
}

// InventoryMatcher filters by category in place of a status.
var InventoryMatcher = collection.Matcher[models.InventoryItem]{
	Status: func(i models.InventoryItem) string { return i.Category },
	Text: func(i models.InventoryItem) []string {
		return []string{i.Name, i.SKU, i.Description}
	},
}

var TechnicianMatcher = collection.Matcher[models.Technician]{
	Status: func(t models.Technician) string {
		if t.IsActive {
			return "active"
		}
		return "inactive"
	},
	Text: func(t models.Technician) []string {
		return append([]string{t.Name, t.Email}, t.Skills...)
	},
}

var TimeEntryMatcher = collection.Matcher[models.TimeEntry]{
	Status: func(e models.TimeEntry) string {
		if e.IsActive() {
			return "active"
		}
		return "completed"
	},
	Text: func(e models.TimeEntry) []string { return []string{e.Description} },
}

var NotificationMatcher = collection.Matcher[models.Notification]{
	Status: func(n models.Notification) string {
		if n.IsRead {
			return "read"
		}
		return "unread"
	},
	Text: func(n models.Notification) []string { return []string{n.Title, n.Message} },
}

func screen[T any](label string, key func(T) string, m collection.Matcher[T], opts []collection.Option[T]) *collection.Store[T] {
	base := []collection.Option[T]{
		collection.WithMatcher(m),
		collection.WithLabel[T](label),
		collection.WithRetry[T](loadRetries, loadRetryDelay),
	}
	return collection.New(key, append(base, opts...)...)
}

func NewJobStore(opts ...collection.Option[models.Job]) *collection.Store[models.Job] {
	return screen("Job", func(j models.Job) string { return j.ID.String() }, JobMatcher, opts)
}

func NewClientStore(opts ...collection.Option[models.Client]) *collection.Store[models.Client] {
	return screen("Client", func(c models.Client) string { return c.ID.String() }, ClientMatcher, opts)
}

func NewInvoiceStore(opts ...collection.Option[models.Invoice]) *collection.Store[models.Invoice] {
	return screen("Invoice", func(i models.Invoice) string { return i.ID.String() }, InvoiceMatcher, opts)
}

func NewInventoryStore(opts ...collection.Option[models.InventoryItem]) *collection.Store[models.InventoryItem] {
	return screen("Item", func(i models.InventoryItem) string { return i.ID.String() }, InventoryMatcher, opts)
}

func NewTechnicianStore(opts ...collection.Option[models.Technician]) *collection.Store[models.Technician] {
	return screen("Technician", func(t models.Technician) string { return t.ID.String() }, TechnicianMatcher, opts)
}

func NewTimeEntryStore(opts ...collection.Option[models.TimeEntry]) *collection.Store[models.TimeEntry] {
	return screen("Time entry", func(e models.TimeEntry) string { return e.ID.String() }, TimeEntryMatcher, opts)
}

func NewNotificationStore(opts ...collection.Option[models.Notification]) *collection.Store[models.Notification] {
	return screen("Notification", func(n models.Notification) string { return n.ID.String() }, NotificationMatcher, opts)
}
