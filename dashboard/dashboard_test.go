package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"invoice-backend/currency"
	"invoice-backend/models"
)

var now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func inv(client string, status models.Status, total string, cur currency.Code, created time.Time) models.Invoice {
	return models.Invoice{
		To:        models.Party{Name: client},
		Status:    status,
		Total:     decimal.RequireFromString(total),
		Currency:  cur,
		CreatedAt: created,
	}
}

func fixture() []models.Invoice {
	return []models.Invoice{
		inv("Acme", models.StatusPaid, "100.00", currency.USD, now.AddDate(0, 0, -1)),
		inv("Acme", models.StatusPaid, "50.50", currency.USD, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		inv("Globex", models.StatusPending, "70.00", currency.EUR, now),
		inv("Globex", models.StatusPaid, "200.00", currency.EUR, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)),
		inv("Initech", models.StatusCancel, "30.00", currency.USD, time.Date(2024, 4, 30, 23, 59, 0, 0, time.UTC)),
		inv("Umbrella", models.StatusPaid, "10.00", "", time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(fixture(), now)

	if s.TotalInvoices != 6 || s.PaidInvoices != 4 || s.PendingInvoices != 1 || s.CancelledInvoices != 1 {
		t.Fatalf("counts = %d/%d/%d/%d", s.TotalInvoices, s.PaidInvoices, s.PendingInvoices, s.CancelledInvoices)
	}
	if !s.TotalRevenue.Equal(decimal.RequireFromString("360.50")) {
		t.Fatalf("total revenue = %s", s.TotalRevenue)
	}
	if got := s.RevenueByCurrency[currency.USD]; !got.Equal(decimal.RequireFromString("160.50")) {
		t.Fatalf("USD revenue = %s", got)
	}
	if got := s.RevenueByCurrency[currency.EUR]; !got.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("EUR revenue = %s", got)
	}
	if !s.ThisMonthRevenue.Equal(decimal.RequireFromString("150.50")) {
		t.Fatalf("this month revenue = %s", s.ThisMonthRevenue)
	}
	if s.ThisMonthInvoices != 3 {
		t.Fatalf("this month invoices = %d", s.ThisMonthInvoices)
	}
	// 150.50 vs 200.00 last month.
	if s.RevenueGrowth != -24.75 {
		t.Fatalf("revenue growth = %v", s.RevenueGrowth)
	}
	// 3 vs 2 last month.
	if s.InvoiceGrowth != 50 {
		t.Fatalf("invoice growth = %v", s.InvoiceGrowth)
	}
}

func TestGrowthZeroBaseline(t *testing.T) {
	tests := []struct {
		name      string
		cur, prev int64
		want      float64
	}{
		{"both zero", 0, 0, 0},
		{"from zero", 5, 0, 100},
		{"doubled", 10, 5, 100},
		{"to zero", 0, 4, -100},
		{"third", 4, 3, 33.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := growth(decimal.NewFromInt(tt.cur), decimal.NewFromInt(tt.prev)); got != tt.want {
				t.Fatalf("growth = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(nil, now)
	if s.TotalInvoices != 0 || !s.TotalRevenue.IsZero() || s.RevenueGrowth != 0 || s.InvoiceGrowth != 0 {
		t.Fatalf("stats = %+v", s)
	}
	if s.RevenueByCurrency == nil {
		t.Fatal("revenue by currency should be an empty map")
	}
}

func TestComputeCharts(t *testing.T) {
	c := ComputeCharts(fixture(), now)

	if len(c.RevenueByMonth) != 6 {
		t.Fatalf("months = %d", len(c.RevenueByMonth))
	}
	if c.RevenueByMonth[0].Month != "Dec 2023" || c.RevenueByMonth[5].Month != "May 2024" {
		t.Fatalf("month range = %s..%s", c.RevenueByMonth[0].Month, c.RevenueByMonth[5].Month)
	}
	may := c.RevenueByMonth[5]
	if may.Invoices != 3 || may.Paid != 2 || may.Pending != 1 || !may.Revenue.Equal(decimal.RequireFromString("150.50")) {
		t.Fatalf("may = %+v", may)
	}
	apr := c.RevenueByMonth[4]
	if apr.Invoices != 2 || apr.Paid != 1 || !apr.Revenue.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("april = %+v", apr)
	}

	want := []StatusSlice{
		{Name: "Paid", Value: 4, Color: "#22c55e"},
		{Name: "Pending", Value: 1, Color: "#f59e0b"},
		{Name: "Cancelled", Value: 1, Color: "#ef4444"},
	}
	for i, w := range want {
		if c.StatusDistribution[i] != w {
			t.Fatalf("status[%d] = %+v, want %+v", i, c.StatusDistribution[i], w)
		}
	}

	if len(c.RecentActivity) != 30 {
		t.Fatalf("activity days = %d", len(c.RecentActivity))
	}
	last := c.RecentActivity[29]
	if last.Date != "2024-05-15" || last.Invoices != 1 || !last.Revenue.IsZero() {
		t.Fatalf("today = %+v", last)
	}
	yesterday := c.RecentActivity[28]
	if yesterday.Date != "2024-05-14" || yesterday.Invoices != 1 || !yesterday.Revenue.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("yesterday = %+v", yesterday)
	}
	if c.RecentActivity[0].Date != "2024-04-16" {
		t.Fatalf("first day = %s", c.RecentActivity[0].Date)
	}
}

func TestTopClients(t *testing.T) {
	var invoices []models.Invoice
	for i, name := range []string{"A", "B", "C", "D", "E", "F"} {
		invoices = append(invoices, inv(name, models.StatusPaid, decimal.NewFromInt(int64(10*(i+1))).String(), currency.USD, now))
	}
	invoices = append(invoices, inv("A", models.StatusPending, "1000", currency.USD, now))

	top := ComputeCharts(invoices, now).TopClients
	if len(top) != 5 {
		t.Fatalf("top clients = %d", len(top))
	}
	if top[0].Name != "F" || !top[0].Revenue.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("first = %+v", top[0])
	}
	for _, c := range top {
		if c.Name == "A" {
			t.Fatal("pending revenue counted for A")
		}
	}
}
