// Package dashboard aggregates a user's invoices into the figures shown on
// the dashboard. Functions are pure; callers pass the clock.
package dashboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"invoice-backend/currency"
	"invoice-backend/models"
	"invoice-backend/utils"
)

type Stats struct {
	TotalInvoices     int                               `json:"totalInvoices"`
	PaidInvoices      int                               `json:"paidInvoices"`
	PendingInvoices   int                               `json:"pendingInvoices"`
	CancelledInvoices int                               `json:"cancelledInvoices"`
	TotalRevenue      decimal.Decimal                   `json:"totalRevenue"`
	RevenueByCurrency map[currency.Code]decimal.Decimal `json:"revenueByCurrency"`
	ThisMonthRevenue  decimal.Decimal                   `json:"thisMonthRevenue"`
	ThisMonthInvoices int                               `json:"thisMonthInvoices"`
	RevenueGrowth     float64                           `json:"revenueGrowth"`
	InvoiceGrowth     float64                           `json:"invoiceGrowth"`
}

type MonthRevenue struct {
	Month    string          `json:"month"`
	Revenue  decimal.Decimal `json:"revenue"`
	Invoices int             `json:"invoices"`
	Paid     int             `json:"paid"`
	Pending  int             `json:"pending"`
}

type StatusSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type DayActivity struct {
	Date     string          `json:"date"`
	Invoices int             `json:"invoices"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type ClientRevenue struct {
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
}

type Charts struct {
	RevenueByMonth     []MonthRevenue  `json:"revenueByMonth"`
	StatusDistribution []StatusSlice   `json:"statusDistribution"`
	RecentActivity     []DayActivity   `json:"recentActivity"`
	TopClients         []ClientRevenue `json:"topClients"`
}

const (
	chartMonths  = 6
	activityDays = 30
	topClients   = 5
)

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// paidRevenue sums the totals of PAID invoices created in [from, to).
func paidRevenue(invoices []models.Invoice, from, to time.Time) (revenue decimal.Decimal, count int) {
	for _, inv := range invoices {
		if !within(inv.CreatedAt, from, to) {
			continue
		}
		count++
		if inv.Status == models.StatusPaid {
			revenue = revenue.Add(inv.Total)
		}
	}
	return revenue, count
}

// growth is the percentage change from prev to cur. A zero baseline reports
// 100 when there is anything this period and 0 otherwise.
func growth(cur, prev decimal.Decimal) float64 {
	if prev.IsPositive() {
		pct, _ := cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Float64()
		return utils.Round2(pct)
	}
	if cur.IsPositive() {
		return 100
	}
	return 0
}

// ComputeStats summarises invoices relative to the month containing now.
func ComputeStats(invoices []models.Invoice, now time.Time) Stats {
	s := Stats{
		TotalInvoices:     len(invoices),
		TotalRevenue:      decimal.Zero,
		RevenueByCurrency: map[currency.Code]decimal.Decimal{},
	}
	for _, inv := range invoices {
		switch inv.Status {
		case models.StatusPaid:
			s.PaidInvoices++
			s.TotalRevenue = s.TotalRevenue.Add(inv.Total)
			code := inv.Currency
			if code == "" {
				code = currency.Default
			}
			s.RevenueByCurrency[code] = s.RevenueByCurrency[code].Add(inv.Total)
		case models.StatusPending:
			s.PendingInvoices++
		case models.StatusCancel:
			s.CancelledInvoices++
		}
	}

	thisMonth := monthStart(now)
	lastMonth := thisMonth.AddDate(0, -1, 0)
	// Anything created up to now belongs to this month; future timestamps too.
	farFuture := thisMonth.AddDate(100, 0, 0)

	s.ThisMonthRevenue, s.ThisMonthInvoices = paidRevenue(invoices, thisMonth, farFuture)
	lastRevenue, lastCount := paidRevenue(invoices, lastMonth, thisMonth)

	s.RevenueGrowth = growth(s.ThisMonthRevenue, lastRevenue)
	s.InvoiceGrowth = growth(decimal.NewFromInt(int64(s.ThisMonthInvoices)), decimal.NewFromInt(int64(lastCount)))
	return s
}

// ComputeCharts builds the chart series ending at now.
func ComputeCharts(invoices []models.Invoice, now time.Time) Charts {
	var c Charts

	current := monthStart(now)
	for i := chartMonths - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		m := MonthRevenue{Month: start.Format("Jan 2006"), Revenue: decimal.Zero}
		for _, inv := range invoices {
			if !within(inv.CreatedAt, start, end) {
				continue
			}
			m.Invoices++
			switch inv.Status {
			case models.StatusPaid:
				m.Paid++
				m.Revenue = m.Revenue.Add(inv.Total)
			case models.StatusPending:
				m.Pending++
			}
		}
		c.RevenueByMonth = append(c.RevenueByMonth, m)
	}

	var paid, pending, cancelled int
	for _, inv := range invoices {
		switch inv.Status {
		case models.StatusPaid:
			paid++
		case models.StatusPending:
			pending++
		case models.StatusCancel:
			cancelled++
		}
	}
	c.StatusDistribution = []StatusSlice{
		{Name: "Paid", Value: paid, Color: "#22c55e"},
		{Name: "Pending", Value: pending, Color: "#f59e0b"},
		{Name: "Cancelled", Value: cancelled, Color: "#ef4444"},
	}

	today := dayStart(now)
	for i := activityDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		rev, n := paidRevenue(invoices, day, day.AddDate(0, 0, 1))
		c.RecentActivity = append(c.RecentActivity, DayActivity{
			Date:     day.Format("2006-01-02"),
			Invoices: n,
			Revenue:  rev,
		})
	}

	c.TopClients = rankClients(invoices)
	return c
}

func rankClients(invoices []models.Invoice) []ClientRevenue {
	byName := map[string]decimal.Decimal{}
	for _, inv := range invoices {
		if inv.Status != models.StatusPaid {
			continue
		}
		byName[inv.To.Name] = byName[inv.To.Name].Add(inv.Total)
	}
	out := make([]ClientRevenue, 0, len(byName))
	for name, rev := range byName {
		out = append(out, ClientRevenue{Name: name, Revenue: rev})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topClients {
		out = out[:topClients]
	}
	return out
}
