package receipt

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cajaregistradora/pos-backend/pkg/config"
	"github.com/cajaregistradora/pos-backend/pkg/db/models"
	"github.com/cajaregistradora/pos-backend/pkg/enums"
	pkgerrors "github.com/cajaregistradora/pos-backend/pkg/errors"
)

// Renderer produces the 80mm HTML receipt for a committed sale. Rendering is
// pure: no clock, no store access, everything comes from the sale snapshot.
type Renderer struct {
	tmpl         *template.Template
	businessName string
	footerLine   string
}

// NewRenderer parses the receipt template once up front.
func NewRenderer(cfg config.ReceiptConfig) (*Renderer, error) {
	tmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse receipt template: %w", err)
	}

	businessName := strings.TrimSpace(cfg.BusinessName)
	if businessName == "" {
		businessName = "CAJA REGISTRADORA"
	}
	return &Renderer{
		tmpl:         tmpl,
		businessName: businessName,
		footerLine:   strings.TrimSpace(cfg.FooterLine),
	}, nil
}

type receiptLine struct {
	Name      string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

type receiptData struct {
	BusinessName string
	SaleNumber   int64
	Timestamp    string
	CustomerName string
	Phone        string
	Address      string
	IsCredit     bool
	StateLabel   string
	Lines        []receiptLine
	Subtotal     string
	DeliveryFee  string
	HasDelivery  bool
	Total        string
	PaymentLabel string
	FooterLine   string
}

// Render returns the receipt HTML for the sale.
func (r *Renderer) Render(sale *models.Sale) (string, error) {
	if sale == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "sale required")
	}

	customer := strings.TrimSpace(sale.CustomerName)
	if customer == "" {
		customer = models.OccasionalCustomer
	}

	data := receiptData{
		BusinessName: r.businessName,
		SaleNumber:   sale.SaleNumber,
		Timestamp:    sale.CreatedAt.Format("02/01/2006 15:04"),
		CustomerName: customer,
		IsCredit:     sale.AccountType == enums.AccountTypeCredit,
		Subtotal:     money(sale.Subtotal),
		DeliveryFee:  money(sale.DeliveryFee),
		HasDelivery:  sale.DeliveryFee.IsPositive(),
		Total:        money(sale.TotalAmount),
		PaymentLabel: sale.PaymentMethod.Label(),
		FooterLine:   r.footerLine,
	}
	if sale.Phone != nil {
		data.Phone = strings.TrimSpace(*sale.Phone)
	}
	if sale.Address != nil {
		data.Address = strings.TrimSpace(*sale.Address)
	}
	if sale.ProductState != nil {
		data.StateLabel = sale.ProductState.Label()
	}

	data.Lines = make([]receiptLine, 0, len(sale.Items))
	for _, item := range sale.Items {
		data.Lines = append(data.Lines, receiptLine{
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: money(item.UnitPrice),
			Subtotal:  money(item.Subtotal),
		})
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, data); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render receipt")
	}
	return sb.String(), nil
}

func money(value decimal.Decimal) string {
	return "$" + value.StringFixed(2)
}

const receiptTemplate = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>Recibo #{{.SaleNumber}}</title>
<style>
  body { width: 80mm; margin: 0 auto; font-family: "Courier New", monospace; font-size: 12px; color: #000; }
  .center { text-align: center; }
  .bold { font-weight: bold; }
  .divider { border-top: 1px dashed #000; margin: 6px 0; }
  table { width: 100%; border-collapse: collapse; }
  td { padding: 1px 0; vertical-align: top; }
  td.amount { text-align: right; white-space: nowrap; }
  .badge { display: inline-block; border: 1px solid #000; padding: 0 4px; font-size: 10px; }
  .total td { font-size: 14px; font-weight: bold; }
</style>
</head>
<body>
  <div class="center bold">{{.BusinessName}}</div>
  <div class="center">Recibo #{{.SaleNumber}}</div>
  <div class="center">{{.Timestamp}}</div>
  <div class="divider"></div>
  <div>Cliente: {{.CustomerName}}</div>
  {{- if .Phone}}
  <div>Tel: {{.Phone}}</div>
  {{- end}}
  {{- if .Address}}
  <div>Dir: {{.Address}}</div>
  {{- end}}
  {{- if .IsCredit}}
  <div><span class="badge">CRÉDITO</span></div>
  {{- end}}
  {{- if .StateLabel}}
  <div><span class="badge">{{.StateLabel}}</span></div>
  {{- end}}
  <div class="divider"></div>
  <table>
  {{- range .Lines}}
    <tr>
      <td colspan="2">{{.Name}}</td>
    </tr>
    <tr>
      <td>{{.Quantity}} x {{.UnitPrice}}</td>
      <td class="amount">{{.Subtotal}}</td>
    </tr>
  {{- end}}
  </table>
  <div class="divider"></div>
  <table>
    <tr>
      <td>Subtotal</td>
      <td class="amount">{{.Subtotal}}</td>
    </tr>
    {{- if .HasDelivery}}
    <tr>
      <td>Domicilio</td>
      <td class="amount">{{.DeliveryFee}}</td>
    </tr>
    {{- end}}
    <tr class="total">
      <td>TOTAL</td>
      <td class="amount">{{.Total}}</td>
    </tr>
    <tr>
      <td>Pago</td>
      <td class="amount">{{.PaymentLabel}}</td>
    </tr>
  </table>
  {{- if .FooterLine}}
  <div class="divider"></div>
  <div class="center">{{.FooterLine}}</div>
  {{- end}}
</body>
</html>
`
