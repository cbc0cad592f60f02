package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajaregistradora/pos-backend/pkg/enums"
	pkgerrors "github.com/cajaregistradora/pos-backend/pkg/errors"
)

const topProductsLimit = 5

// ProductSales is one entry in the best-seller ranking.
type ProductSales struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// DayTotal is one point of the sales-by-day series.
type DayTotal struct {
	Day     string          `json:"day"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Summary aggregates a reporting window. Cancelled sales are excluded
// everywhere; pending credit is carried as its own bucket.
type Summary struct {
	From             time.Time       `json:"from"`
	To               time.Time       `json:"to"`
	SalesCount       int             `json:"sales_count"`
	Revenue          decimal.Decimal `json:"revenue"`
	AverageTicket    decimal.Decimal `json:"average_ticket"`
	CreditPending    decimal.Decimal `json:"credit_pending"`
	TopProducts      []ProductSales  `json:"top_products"`
	SalesByDay       []DayTotal      `json:"sales_by_day"`
	ActiveProducts   int64           `json:"active_products"`
	LowStockProducts int64           `json:"low_stock_products"`
}

// Service defines the reporting operations.
type Service interface {
	Summary(ctx context.Context, from, to time.Time) (*Summary, error)
	ExportSales(ctx context.Context, from, to time.Time) ([]byte, string, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a reports service. The clock is injectable for tests.
func NewService(repo Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	from, to, err := normalizeRange(from, to, s.now)
	if err != nil {
		return nil, err
	}

	sales, err := s.repo.SalesBetween(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales for summary")
	}

	summary := &Summary{
		From:          from,
		To:            to,
		Revenue:       decimal.Zero,
		AverageTicket: decimal.Zero,
		CreditPending: decimal.Zero,
	}

	byProduct := map[string]*ProductSales{}
	byDay := map[string]*DayTotal{}

	for i := range sales {
		sale := &sales[i]
		if sale.Status == enums.SaleStatusCancelled {
			continue
		}

		summary.SalesCount++
		summary.Revenue = summary.Revenue.Add(sale.TotalAmount)
		if sale.Status == enums.SaleStatusPending {
			summary.CreditPending = summary.CreditPending.Add(sale.TotalAmount)
		}

		day := sale.CreatedAt.Format("2006-01-02")
		if _, ok := byDay[day]; !ok {
			byDay[day] = &DayTotal{Day: day, Revenue: decimal.Zero}
		}
		byDay[day].Count++
		byDay[day].Revenue = byDay[day].Revenue.Add(sale.TotalAmount)

		for _, item := range sale.Items {
			if _, ok := byProduct[item.ProductName]; !ok {
				byProduct[item.ProductName] = &ProductSales{Name: item.ProductName, Revenue: decimal.Zero}
			}
			byProduct[item.ProductName].Quantity += item.Quantity
			byProduct[item.ProductName].Revenue = byProduct[item.ProductName].Revenue.Add(item.Subtotal)
		}
	}

	if summary.SalesCount > 0 {
		summary.AverageTicket = summary.Revenue.
			Div(decimal.NewFromInt(int64(summary.SalesCount))).
			Round(2)
	}

	summary.TopProducts = rankProducts(byProduct)
	summary.SalesByDay = sortDays(byDay)

	summary.ActiveProducts, err = s.repo.CountActiveProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active products")
	}
	summary.LowStockProducts, err = s.repo.CountLowStockProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count low stock products")
	}

	return summary, nil
}

func rankProducts(byProduct map[string]*ProductSales) []ProductSales {
	ranked := make([]ProductSales, 0, len(byProduct))
	for _, entry := range byProduct {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > topProductsLimit {
		ranked = ranked[:topProductsLimit]
	}
	return ranked
}

func sortDays(byDay map[string]*DayTotal) []DayTotal {
	days := make([]DayTotal, 0, len(byDay))
	for _, entry := range byDay {
		days = append(days, *entry)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Day < days[j].Day
	})
	return days
}

// normalizeRange defaults an open range to today (local midnight to midnight).
func normalizeRange(from, to time.Time, now func() time.Time) (time.Time, time.Time, error) {
	if from.IsZero() && to.IsZero() {
		n := now()
		from = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
		to = from.AddDate(0, 0, 1)
		return from, to, nil
	}
	if from.IsZero() || to.IsZero() {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "both from and to are required")
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "to must be after from")
	}
	return from, to, nil
}
