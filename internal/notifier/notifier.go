package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajaregistradora/pos-backend/pkg/config"
	"github.com/cajaregistradora/pos-backend/pkg/db/models"
	pkgerrors "github.com/cajaregistradora/pos-backend/pkg/errors"
	"github.com/cajaregistradora/pos-backend/pkg/logger"
	"github.com/cajaregistradora/pos-backend/pkg/metrics"
)

const responseBodyReadLimit int64 = 1024

// Notifier mirrors committed sales to the bookkeeping webhook. The webhook is
// advisory: the sale is already durable when Notify runs, so failures are
// reported to the caller but nothing retries them.
type Notifier struct {
	httpClient *http.Client
	webhookURL string
	logg       *logger.Logger
	metrics    *metrics.SaleMetrics
}

// Option configures optional notifier behavior.
type Option func(*Notifier)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		if client != nil {
			n.httpClient = client
		}
	}
}

// New builds a notifier for the configured webhook. A notifier with no URL is
// valid and does nothing.
func New(cfg config.SheetsConfig, logg *logger.Logger, m *metrics.SaleMetrics, opts ...Option) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	n := &Notifier{
		httpClient: &http.Client{Timeout: timeout},
		webhookURL: strings.TrimSpace(cfg.WebhookURL),
		logg:       logg,
		metrics:    m,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool {
	return n != nil && n.webhookURL != ""
}

type salePayload struct {
	SaleID        string        `json:"saleId"`
	SaleNumber    int64         `json:"saleNumber"`
	CustomerName  string        `json:"customerName"`
	Phone         string        `json:"phone,omitempty"`
	Address       string        `json:"address,omitempty"`
	AccountType   string        `json:"accountType"`
	ProductState  string        `json:"productState,omitempty"`
	DeliveryFee   string        `json:"deliveryFee"`
	Subtotal      string        `json:"subtotal"`
	Total         string        `json:"total"`
	PaymentMethod string        `json:"paymentMethod"`
	Status        string        `json:"status"`
	CreatedAt     string        `json:"createdAt"`
	Items         []itemPayload `json:"items"`
}

type itemPayload struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	State    string `json:"state,omitempty"`
	Subtotal string `json:"subtotal"`
}

// Notify posts the sale snapshot to the webhook and waits for the response.
func (n *Notifier) Notify(ctx context.Context, sale *models.Sale) error {
	if sale == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale required")
	}
	if !n.Enabled() {
		return nil
	}

	body, err := json.Marshal(buildPayload(sale))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal sale payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute webhook request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"webhook request failed")
	}

	return nil
}

// Dispatch runs Notify on a goroutine detached from the request context.
// Failures are logged and counted, never surfaced to the checkout path.
func (n *Notifier) Dispatch(ctx context.Context, sale *models.Sale) {
	if !n.Enabled() || sale == nil {
		return
	}

	timeout := n.httpClient.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	go func() {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		if err := n.Notify(dctx, sale); err != nil {
			if n.logg != nil {
				wctx := n.logg.WithSaleNumber(dctx, sale.SaleNumber)
				n.logg.Warn(n.logg.WithField(wctx, "error", err.Error()), "sale notification failed")
			}
			n.metrics.IncNotifyFailure()
			return
		}
		n.metrics.IncNotifySuccess()
	}()
}

func buildPayload(sale *models.Sale) salePayload {
	payload := salePayload{
		SaleID:        sale.ID.String(),
		SaleNumber:    sale.SaleNumber,
		CustomerName:  sale.CustomerName,
		AccountType:   sale.AccountType.String(),
		DeliveryFee:   formatMoney(sale.DeliveryFee),
		Subtotal:      formatMoney(sale.Subtotal),
		Total:         formatMoney(sale.TotalAmount),
		PaymentMethod: sale.PaymentMethod.String(),
		Status:        sale.Status.String(),
		CreatedAt:     sale.CreatedAt.UTC().Format(time.RFC3339),
	}
	if sale.Phone != nil {
		payload.Phone = *sale.Phone
	}
	if sale.Address != nil {
		payload.Address = *sale.Address
	}

	state := ""
	if sale.ProductState != nil {
		state = sale.ProductState.String()
		payload.ProductState = state
	}

	payload.Items = make([]itemPayload, 0, len(sale.Items))
	for _, item := range sale.Items {
		payload.Items = append(payload.Items, itemPayload{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Price:    formatMoney(item.UnitPrice),
			State:    state,
			Subtotal: formatMoney(item.Subtotal),
		})
	}
	return payload
}

func formatMoney(value decimal.Decimal) string {
	return value.StringFixed(2)
}
