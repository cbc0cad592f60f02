package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cajaregistradora/pos-backend/pkg/db/models"
	"github.com/cajaregistradora/pos-backend/pkg/enums"
	pkgerrors "github.com/cajaregistradora/pos-backend/pkg/errors"
)

type stubReportsRepo struct {
	sales    []models.Sale
	active   int64
	lowStock int64
}

func (s *stubReportsRepo) SalesBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	return s.sales, nil
}

func (s *stubReportsRepo) CountActiveProducts(ctx context.Context) (int64, error) {
	return s.active, nil
}

func (s *stubReportsRepo) CountLowStockProducts(ctx context.Context) (int64, error) {
	return s.lowStock, nil
}

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func reportSale(number int64, created time.Time, total string, status enums.SaleStatus, items ...models.SaleItem) models.Sale {
	return models.Sale{
		ID:            uuid.New(),
		SaleNumber:    number,
		CustomerName:  models.OccasionalCustomer,
		AccountType:   enums.AccountTypeCash,
		DeliveryFee:   decimal.Zero,
		Subtotal:      money(total),
		TotalAmount:   money(total),
		PaymentMethod: enums.PaymentMethodCash,
		Status:        status,
		CreatedAt:     created,
		Items:         items,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSummaryAggregates(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 15, 0, 0, 0, time.UTC)

	repo := &stubReportsRepo{
		active:   7,
		lowStock: 2,
		sales: []models.Sale{
			reportSale(1, day1, "10.00", enums.SaleStatusCompleted,
				models.SaleItem{ProductName: "Empanada", Quantity: 2, UnitPrice: money("5.00"), Subtotal: money("10.00")},
			),
			reportSale(2, day2, "6.00", enums.SaleStatusPending,
				models.SaleItem{ProductName: "Arepa", Quantity: 3, UnitPrice: money("2.00"), Subtotal: money("6.00")},
			),
			reportSale(3, day2, "99.00", enums.SaleStatusCancelled,
				models.SaleItem{ProductName: "Empanada", Quantity: 9, UnitPrice: money("11.00"), Subtotal: money("99.00")},
			),
		},
	}
	svc, err := NewService(repo, fixedClock(day2))
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), day1.Add(-time.Hour), day2.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SalesCount)
	assert.True(t, summary.Revenue.Equal(money("16.00")), "revenue %s", summary.Revenue)
	assert.True(t, summary.AverageTicket.Equal(money("8.00")), "avg %s", summary.AverageTicket)
	assert.True(t, summary.CreditPending.Equal(money("6.00")), "pending %s", summary.CreditPending)
	assert.Equal(t, int64(7), summary.ActiveProducts)
	assert.Equal(t, int64(2), summary.LowStockProducts)

	require.Len(t, summary.TopProducts, 2)
	assert.Equal(t, "Arepa", summary.TopProducts[0].Name)
	assert.Equal(t, 3, summary.TopProducts[0].Quantity)

	require.Len(t, summary.SalesByDay, 2)
	assert.Equal(t, "2025-03-10", summary.SalesByDay[0].Day)
	assert.Equal(t, 1, summary.SalesByDay[0].Count)
	assert.Equal(t, "2025-03-11", summary.SalesByDay[1].Day)
}

func TestSummaryTopProductsCapped(t *testing.T) {
	day := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	items := []models.SaleItem{}
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		items = append(items, models.SaleItem{ProductName: name, Quantity: 1, UnitPrice: money("1.00"), Subtotal: money("1.00")})
	}
	repo := &stubReportsRepo{
		sales: []models.Sale{reportSale(1, day, "7.00", enums.SaleStatusCompleted, items...)},
	}
	svc, err := NewService(repo, fixedClock(day))
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), day.Add(-time.Hour), day.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, summary.TopProducts, topProductsLimit)
}

func TestSummaryDefaultsToToday(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	repo := &stubReportsRepo{}
	svc, err := NewService(repo, fixedClock(now))
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), summary.From)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), summary.To)
	assert.Zero(t, summary.SalesCount)
	assert.True(t, summary.AverageTicket.IsZero())
}

func TestSummaryRejectsInvertedRange(t *testing.T) {
	svc, err := NewService(&stubReportsRepo{}, nil)
	require.NoError(t, err)

	now := time.Now()
	_, err = svc.Summary(context.Background(), now, now.Add(-time.Hour))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestExportSalesWorkbook(t *testing.T) {
	day := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	repo := &stubReportsRepo{
		sales: []models.Sale{
			reportSale(1, day, "10.00", enums.SaleStatusCompleted,
				models.SaleItem{ProductName: "Empanada", Quantity: 2, UnitPrice: money("5.00"), Subtotal: money("10.00")},
				models.SaleItem{ProductName: "Arepa", Quantity: 1, UnitPrice: money("2.00"), Subtotal: money("2.00")},
			),
			reportSale(2, day.Add(time.Hour), "6.00", enums.SaleStatusCompleted,
				models.SaleItem{ProductName: "Jugo", Quantity: 2, UnitPrice: money("3.00"), Subtotal: money("6.00")},
			),
		},
	}
	svc, err := NewService(repo, fixedClock(day))
	require.NoError(t, err)

	data, filename, err := svc.ExportSales(context.Background(), day.Add(-time.Hour), day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Contains(t, filename, "ventas_")
	assert.Contains(t, filename, ".xlsx")

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	sheets := file.GetSheetList()
	assert.ElementsMatch(t, []string{sheetSales, sheetItems, sheetSummary}, sheets)

	salesRows, err := file.GetRows(sheetSales)
	require.NoError(t, err)
	require.Len(t, salesRows, 3) // header + 2 sales
	assert.Equal(t, "No. Venta", salesRows[0][0])
	assert.Equal(t, "1", salesRows[1][0])

	itemRows, err := file.GetRows(sheetItems)
	require.NoError(t, err)
	require.Len(t, itemRows, 4) // header + 3 items
	assert.Equal(t, "Empanada", itemRows[1][1])

	summaryRows, err := file.GetRows(sheetSummary)
	require.NoError(t, err)
	require.Len(t, summaryRows, 4)
	assert.Equal(t, "Ventas", summaryRows[1][0])
	assert.Equal(t, "2", summaryRows[1][1])
}
