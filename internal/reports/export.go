package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cajaregistradora/pos-backend/pkg/db/models"
	pkgerrors "github.com/cajaregistradora/pos-backend/pkg/errors"
)

const (
	sheetSales   = "Ventas"
	sheetItems   = "Items Vendidos"
	sheetSummary = "Resumen"
)

// ExportSales writes the window's sales into a three-sheet xlsx workbook and
// returns the file bytes plus a download filename.
func (s *service) ExportSales(ctx context.Context, from, to time.Time) ([]byte, string, error) {
	from, to, err := normalizeRange(from, to, s.now)
	if err != nil {
		return nil, "", err
	}

	sales, err := s.repo.SalesBetween(ctx, from, to)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales for export")
	}

	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := writeSalesSheet(file, sales); err != nil {
		return nil, "", err
	}
	if err := writeItemsSheet(file, sales); err != nil {
		return nil, "", err
	}
	if err := writeSummarySheet(file, sales, from, to, s.now()); err != nil {
		return nil, "", err
	}

	// The default sheet excelize creates is replaced by Ventas.
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drop default sheet")
	}
	if idx, err := file.GetSheetIndex(sheetSales); err == nil {
		file.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write workbook")
	}

	filename := fmt.Sprintf("ventas_%s_%s.xlsx", from.Format("20060102"), to.AddDate(0, 0, -1).Format("20060102"))
	return buf.Bytes(), filename, nil
}

func writeSalesSheet(file *excelize.File, sales []models.Sale) error {
	if _, err := file.NewSheet(sheetSales); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sales sheet")
	}

	header := []any{"No. Venta", "Fecha", "Cliente", "Teléfono", "Tipo", "Estado producto", "Método de pago", "Estado", "Subtotal", "Domicilio", "Total"}
	if err := setRow(file, sheetSales, 1, header); err != nil {
		return err
	}

	for i, sale := range sales {
		state := ""
		if sale.ProductState != nil {
			state = sale.ProductState.Label()
		}
		phone := ""
		if sale.Phone != nil {
			phone = *sale.Phone
		}
		row := []any{
			sale.SaleNumber,
			sale.CreatedAt.Format("02/01/2006 15:04"),
			sale.CustomerName,
			phone,
			sale.AccountType.String(),
			state,
			sale.PaymentMethod.Label(),
			sale.Status.String(),
			sale.Subtotal.InexactFloat64(),
			sale.DeliveryFee.InexactFloat64(),
			sale.TotalAmount.InexactFloat64(),
		}
		if err := setRow(file, sheetSales, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeItemsSheet(file *excelize.File, sales []models.Sale) error {
	if _, err := file.NewSheet(sheetItems); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create items sheet")
	}

	header := []any{"No. Venta", "Producto", "Cantidad", "Precio unitario", "Subtotal"}
	if err := setRow(file, sheetItems, 1, header); err != nil {
		return err
	}

	line := 2
	for _, sale := range sales {
		for _, item := range sale.Items {
			row := []any{
				sale.SaleNumber,
				item.ProductName,
				item.Quantity,
				item.UnitPrice.InexactFloat64(),
				item.Subtotal.InexactFloat64(),
			}
			if err := setRow(file, sheetItems, line, row); err != nil {
				return err
			}
			line++
		}
	}
	return nil
}

func writeSummarySheet(file *excelize.File, sales []models.Sale, from, to, exportedAt time.Time) error {
	if _, err := file.NewSheet(sheetSummary); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create summary sheet")
	}

	revenue := 0.0
	for _, sale := range sales {
		revenue += sale.TotalAmount.InexactFloat64()
	}

	rows := [][]any{
		{"Período", fmt.Sprintf("%s a %s", from.Format("02/01/2006"), to.AddDate(0, 0, -1).Format("02/01/2006"))},
		{"Ventas", len(sales)},
		{"Ingresos", revenue},
		{"Exportado", exportedAt.Format("02/01/2006 15:04")},
	}
	for i, row := range rows {
		if err := setRow(file, sheetSummary, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(file *excelize.File, sheet string, line int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cell coordinates")
	}
	if err := file.SetSheetRow(sheet, cell, &values); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write sheet row")
	}
	return nil
}
