package products

import (
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/cajaregistradora/pos-backend/pkg/errors"
)

// Spreadsheet header aliases. The files come from hand-maintained sheets in
// Spanish, English or a mix, so matching is forgiving.
var headerAliases = map[string]string{
	"nombre":           "name",
	"name":             "name",
	"producto":         "name",
	"product":          "name",
	"precio":           "price",
	"price":            "price",
	"valor":            "price",
	"categoria":        "category",
	"categoría":        "category",
	"category":         "category",
	"stock":            "stock",
	"cantidad":         "stock",
	"existencias":      "stock",
	"costo":            "cost",
	"cost":             "cost",
	"stock minimo":     "min_stock",
	"stock mínimo":     "min_stock",
	"stock_minimo":     "min_stock",
	"min_stock":        "min_stock",
	"descripcion":      "description",
	"descripción":      "description",
	"description":      "description",
	"sku":              "sku",
	"codigo":           "sku",
	"código":           "sku",
	"barcode":          "barcode",
	"codigo de barras": "barcode",
	"código de barras": "barcode",
	"codigo_barras":    "barcode",
}

// ImportRow pairs parsed input with its 1-based spreadsheet line for error
// reporting.
type ImportRow struct {
	Line  int
	Input CreateProductInput
}

// ParseImportFile reads the first sheet of an xlsx file into import rows.
// The first row must be a header containing at least a name and a price
// column.
func ParseImportFile(r io.Reader) ([]ImportRow, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is not a readable xlsx")
	}
	defer func() { _ = file.Close() }()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read sheet rows")
	}
	if len(rows) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file has no data rows")
	}

	columns := mapHeader(rows[0])
	if _, ok := columns["name"]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing name column (nombre/name/producto)")
	}
	if _, ok := columns["price"]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing price column (precio/price/valor)")
	}

	parsed := make([]ImportRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if isEmptyRow(row) {
			continue
		}
		parsed = append(parsed, ImportRow{Line: line, Input: rowToInput(row, columns)})
	}
	return parsed, nil
}

func mapHeader(header []string) map[string]int {
	columns := map[string]int{}
	for idx, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if field, ok := headerAliases[key]; ok {
			if _, taken := columns[field]; !taken {
				columns[field] = idx
			}
		}
	}
	return columns
}

func rowToInput(row []string, columns map[string]int) CreateProductInput {
	input := CreateProductInput{
		Name:     cellValue(row, columns, "name"),
		Category: cellValue(row, columns, "category"),
	}

	if raw := cellValue(row, columns, "price"); raw != "" {
		if price, err := parseMoney(raw); err == nil {
			input.Price = price
		}
	}
	if raw := cellValue(row, columns, "cost"); raw != "" {
		if cost, err := parseMoney(raw); err == nil {
			input.Cost = &cost
		}
	}
	if raw := cellValue(row, columns, "stock"); raw != "" {
		if stock, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			input.Stock = stock
		}
	}
	if raw := cellValue(row, columns, "min_stock"); raw != "" {
		if minStock, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			input.MinStock = &minStock
		}
	}
	if raw := cellValue(row, columns, "description"); raw != "" {
		input.Description = &raw
	}
	if raw := cellValue(row, columns, "sku"); raw != "" {
		input.SKU = &raw
	}
	if raw := cellValue(row, columns, "barcode"); raw != "" {
		input.Barcode = &raw
	}
	return input
}

func cellValue(row []string, columns map[string]int, field string) string {
	idx, ok := columns[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseMoney accepts "1234.50", "1234,50", "$1.234,50" and plain integers.
func parseMoney(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	switch {
	case strings.Contains(cleaned, ".") && strings.Contains(cleaned, ","):
		// Latin format: dot groups thousands, comma is the decimal mark.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case strings.Contains(cleaned, ","):
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	return decimal.NewFromString(cleaned)
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
