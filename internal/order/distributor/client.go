// Package distributor talks to the parts distributor's SOAP order
// service. The wire format is the distributor's, not ours; everything
// leaving this package is already mapped to domain types.
package distributor

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/motodesk/motodesk/internal/config"
	orderdomain "github.com/motodesk/motodesk/internal/order/domain"
	productdomain "github.com/motodesk/motodesk/internal/product/domain"
	"github.com/motodesk/motodesk/internal/retry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// fetchPolicy retries transient distributor failures before giving up.
var fetchPolicy = retry.Policy{
	Delays: []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second},
}

type Client struct {
	baseURL  string
	login    string
	password string
	client   *http.Client
	log      *zap.Logger
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		baseURL:  cfg.Distributor.BaseURL,
		login:    cfg.Distributor.Login,
		password: cfg.Distributor.Password,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log.Named("distributor"),
	}
}

func (c *Client) OrdersByDateRange(ctx context.Context, from, to time.Time) ([]orderdomain.Order, error) {
	req := getOrdersRequest{
		Login:    c.login,
		Password: c.password,
		DateFrom: from.Format(dateLayout),
		DateTo:   to.Format(dateLayout),
	}
	var resp getOrdersResponse
	if err := c.call(ctx, "GetOrders", req, &resp); err != nil {
		return nil, err
	}
	return mapOrders(resp.Orders)
}

func (c *Client) OrdersByDates(ctx context.Context, dates []time.Time) ([]orderdomain.Order, error) {
	seen := make(map[string]struct{}, len(dates))
	var out []orderdomain.Order
	for _, d := range dates {
		orders, err := c.OrdersByDateRange(ctx, d, d)
		if err != nil {
			return nil, err
		}
		for _, o := range orders {
			if _, ok := seen[o.ID]; ok {
				continue
			}
			seen[o.ID] = struct{}{}
			out = append(out, o)
		}
	}
	return out, nil
}

// FetchProducts pulls the full part catalog; the sync worker persists it.
func (c *Client) FetchProducts(ctx context.Context) ([]productdomain.Product, error) {
	req := getProductsRequest{Login: c.login, Password: c.password}
	var resp getProductsResponse
	if err := c.call(ctx, "GetProducts", req, &resp); err != nil {
		return nil, err
	}
	products := make([]productdomain.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, productdomain.Product{
			Number: p.Number,
			Name:   p.Name,
			EAN13:  p.EAN13,
		})
	}
	return products, nil
}

func (c *Client) call(ctx context.Context, action string, body, out any) error {
	payload, err := xml.Marshal(envelope{Body: envelopeBody{Content: body}})
	if err != nil {
		return fmt.Errorf("distributor: marshal %s: %w", action, err)
	}

	var lastErr error
	err = fetchPolicy.Do(ctx, func(ctx context.Context, attempt int) (bool, error) {
		if attempt > 0 {
			c.log.Warn("retrying distributor call",
				zap.String("action", action), zap.Int("attempt", attempt), zap.Error(lastErr))
		}
		retryable, err := c.post(ctx, action, payload, out)
		if err != nil && retryable {
			lastErr = err
			return false, nil
		}
		return true, err
	})
	if errors.Is(err, retry.ErrExhausted) && lastErr != nil {
		return lastErr
	}
	return err
}

func (c *Client) post(ctx context.Context, action string, payload []byte, out any) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/service.asmx", bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", action)

	resp, err := c.client.Do(req)
	if err != nil {
		return true, fmt.Errorf("distributor: %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return true, fmt.Errorf("distributor: %s returned %d", action, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("distributor: %s returned %d", action, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, fmt.Errorf("distributor: read %s response: %w", action, err)
	}
	var env responseEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		return false, fmt.Errorf("distributor: decode %s envelope: %w", action, err)
	}
	if err := xml.Unmarshal(env.Body.InnerXML, out); err != nil {
		return false, fmt.Errorf("distributor: decode %s response: %w", action, err)
	}
	return false, nil
}

func mapOrders(orders []wireOrder) ([]orderdomain.Order, error) {
	out := make([]orderdomain.Order, 0, len(orders))
	for _, o := range orders {
		entry, err := time.Parse(dateLayout, o.EntryDate)
		if err != nil {
			return nil, fmt.Errorf("distributor: order %s: bad entry date %q", o.ID, o.EntryDate)
		}
		mapped := orderdomain.Order{
			ID:        o.ID,
			Number:    o.Number,
			EntryDate: entry,
			Contractor: orderdomain.OrderContractor{
				Name:   o.ContractorName,
				Number: o.ContractorNumber,
			},
		}
		for _, it := range o.Items {
			price, err := decimal.NewFromString(it.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("distributor: order %s: bad unit price %q", o.ID, it.UnitPrice)
			}
			vat, err := decimal.NewFromString(it.VatRate)
			if err != nil {
				return nil, fmt.Errorf("distributor: order %s: bad vat rate %q", o.ID, it.VatRate)
			}
			mapped.Items = append(mapped.Items, orderdomain.OrderItem{
				PartNumber: it.PartNumber,
				Quantity:   it.Quantity,
				UnitPrice:  price,
				VatRate:    vat,
			})
		}
		out = append(out, mapped)
	}
	return out, nil
}
