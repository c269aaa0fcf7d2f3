package client

import (
	"math"
	"sort"

	"fieldpro-backend/collection"
	"fieldpro-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount with two decimals, e.g. "$1,234.50".
func FormatMoney(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-3:]
	for i := len(whole) - 3; i > 0; i -= 3 {
		whole = whole[:i] + "," + whole[i:]
	}
	return sign + "$" + whole + frac
}

func OutstandingTotal(invoices []models.Invoice) float64 {
	return collection.SumIf(invoices, models.Invoice.IsOutstanding, invoiceTotal)
}

func PaidRevenue(invoices []models.Invoice) float64 {
	return collection.SumIf(invoices, func(i models.Invoice) bool { return !i.IsOutstanding() }, invoiceTotal)
}

func OverdueCount(invoices []models.Invoice) int {
	return collection.Count(invoices, func(i models.Invoice) bool { return i.Status == models.InvoiceOverdue })
}

func invoiceTotal(i models.Invoice) float64 { return i.TotalAmount }

func LowStockCount(items []models.InventoryItem) int {
	return collection.Count(items, models.InventoryItem.IsLowStock)
}

func InventoryValue(items []models.InventoryItem) float64 {
	return collection.Sum(items, models.InventoryItem.StockValue)
}

// CompletionRate is the rounded share of completed jobs among jobs that were
// not cancelled, 0 when there are none. The dashboard endpoint uses the same
// definition.
func CompletionRate(jobs []models.Job) float64 {
	done := collection.Count(jobs, func(j models.Job) bool { return j.Status == models.JobCompleted })
	closable := collection.Count(jobs, func(j models.Job) bool { return j.Status != models.JobCancelled })
	return math.Round(collection.Percent(float64(done), float64(closable)))
}

func BillableCount(entries []models.TimeEntry) int {
	return collection.Count(entries, func(e models.TimeEntry) bool { return e.IsBillable })
}

// HoursPerDay sums closed entries by the local date they started on.
func HoursPerDay(entries []models.TimeEntry) map[string]float64 {
	out := make(map[string]float64)
	for _, e := range entries {
		if e.IsActive() {
			continue
		}
		out[e.StartTime.Format("2006-01-02")] += e.Duration().Hours()
	}
	return out
}

// TechnicianStats derives per-technician workload from loaded collections,
// ordered by revenue.
func TechnicianStats(techs []models.Technician, jobs []models.Job, entries []models.TimeEntry) []models.TechnicianStats {
	out := make([]models.TechnicianStats, 0, len(techs))
	for _, t := range techs {
		assigned := func(j models.Job) bool {
			return j.AssignedTechnicianID != nil && *j.AssignedTechnicianID == t.ID
		}
		completed := func(j models.Job) bool { return assigned(j) && j.Status == models.JobCompleted }
		hours := collection.SumIf(entries, func(e models.TimeEntry) bool {
			return !e.IsActive() && sameID(e.TechnicianID, t.ID)
		}, func(e models.TimeEntry) float64 { return e.Duration().Hours() })

		total := collection.Count(jobs, assigned)
		done := collection.Count(jobs, completed)
		out = append(out, models.TechnicianStats{
			TechnicianID:   t.ID,
			Name:           t.Name,
			TotalJobs:      total,
			CompletedJobs:  done,
			TotalHours:     math.Round(hours*100) / 100,
			TotalRevenue:   collection.SumIf(jobs, completed, models.Job.BillableAmount),
			CompletionRate: math.Round(collection.Percent(float64(done), float64(total))),
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].TotalRevenue > out[b].TotalRevenue })
	return out
}

func sameID(p *uuid.UUID, id uuid.UUID) bool {
	return p != nil && *p == id
}
