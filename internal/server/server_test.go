package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	invoicingdomain "github.com/motodesk/motodesk/internal/invoicing/domain"
	orderdomain "github.com/motodesk/motodesk/internal/order/domain"
	"github.com/motodesk/motodesk/internal/order/exclusion"
	orderservice "github.com/motodesk/motodesk/internal/order/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubInvoicing struct {
	bulkIDs   []string
	bulkErr   error
	createID  string
	createErr error

	gotInput invoicingdomain.CreateInvoiceInput
	gotFrom  time.Time
	gotTo    time.Time
}

func (s *stubInvoicing) CreateBulkInvoices(_ context.Context, dateFrom, dateTo time.Time) ([]string, error) {
	s.gotFrom, s.gotTo = dateFrom, dateTo
	return s.bulkIDs, s.bulkErr
}

func (s *stubInvoicing) CreateInvoice(_ context.Context, input invoicingdomain.CreateInvoiceInput) (string, error) {
	s.gotInput = input
	return s.createID, s.createErr
}

type stubOrders struct {
	orders []orderservice.AnnotatedOrder
	err    error
}

func (s *stubOrders) ListOrders(context.Context, time.Time, time.Time) ([]orderservice.AnnotatedOrder, error) {
	return s.orders, s.err
}

type stubExclusions struct {
	rows    []exclusion.ExcludedOrder
	added   []string
	removed []string
}

func (s *stubExclusions) ExcludedOrderIDs(context.Context) ([]string, error) { return nil, nil }
func (s *stubExclusions) List(context.Context) ([]exclusion.ExcludedOrder, error) {
	return s.rows, nil
}
func (s *stubExclusions) Add(_ context.Context, orderIDs []string, _ string) error {
	s.added = append(s.added, orderIDs...)
	return nil
}
func (s *stubExclusions) Remove(_ context.Context, orderID string) error {
	s.removed = append(s.removed, orderID)
	return nil
}

func newTestRouter(inv *stubInvoicing, orders *stubOrders, excl *stubExclusions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := &Server{
		log:          zap.NewNop(),
		invoicingSvc: inv,
		orderSvc:     orders,
		exclusions:   excl,
	}
	engine := gin.New()
	s.RegisterRoutes(engine)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func TestCreateBulkInvoicesOK(t *testing.T) {
	inv := &stubInvoicing{bulkIDs: []string{"101", "102"}}
	engine := newTestRouter(inv, &stubOrders{}, &stubExclusions{})

	w, body := doJSON(t, engine, http.MethodPost, "/invoicing/create-bulk",
		`{"dateFrom":"2026-03-01","dateTo":"2026-03-07"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []any{"101", "102"}, body["invoiceIds"])
	require.EqualValues(t, 2, body["count"])
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), inv.gotFrom)
	require.Equal(t, time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), inv.gotTo)
}

func TestCreateBulkInvoicesRejectsInvertedRange(t *testing.T) {
	engine := newTestRouter(&stubInvoicing{}, &stubOrders{}, &stubExclusions{})

	w, body := doJSON(t, engine, http.MethodPost, "/invoicing/create-bulk",
		`{"dateFrom":"2026-03-07","dateTo":"2026-03-01"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_REQUEST", body["code"])
}

func TestCreateBulkInvoicesNoValidOrders(t *testing.T) {
	inv := &stubInvoicing{bulkErr: invoicingdomain.ErrNoValidOrders}
	engine := newTestRouter(inv, &stubOrders{}, &stubExclusions{})

	w, body := doJSON(t, engine, http.MethodPost, "/invoicing/create-bulk",
		`{"dateFrom":"2026-03-01","dateTo":"2026-03-07"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "NO_VALID_ORDERS", body["code"])
}

func TestCreateBulkInvoicesProviderRejected(t *testing.T) {
	inv := &stubInvoicing{bulkErr: &invoicingdomain.ProviderRejectedError{
		Provider: "iFirma", Message: "Brak danych kontrahenta",
	}}
	engine := newTestRouter(inv, &stubOrders{}, &stubExclusions{})

	w, body := doJSON(t, engine, http.MethodPost, "/invoicing/create-bulk",
		`{"dateFrom":"2026-03-01","dateTo":"2026-03-07"}`)

	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, "PROVIDER_REJECTED", body["code"])
	require.Equal(t, "Brak danych kontrahenta", body["message"])
}

func TestCreateBulkInvoicesPollTimeoutCarriesTaskReference(t *testing.T) {
	inv := &stubInvoicing{bulkErr: &invoicingdomain.PollTimeoutError{
		Provider: "inFakt", TaskReference: "task-123", Attempts: 6,
	}}
	engine := newTestRouter(inv, &stubOrders{}, &stubExclusions{})

	w, body := doJSON(t, engine, http.MethodPost, "/invoicing/create-bulk",
		`{"dateFrom":"2026-03-01","dateTo":"2026-03-07"}`)

	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, "PROVIDER_POLL_TIMEOUT", body["code"])
	require.Equal(t, "task-123", body["taskReference"])
}

func TestCreateBulkInvoicesUnavailable(t *testing.T) {
	inv := &stubInvoicing{bulkErr: &invoicingdomain.ProviderUnavailableError{
		Provider: "iFirma", Err: errors.New("status 503"),
	}}
	engine := newTestRouter(inv, &stubOrders{}, &stubExclusions{})

	w, body := doJSON(t, engine, http.MethodPost, "/invoicing/create-bulk",
		`{"dateFrom":"2026-03-01","dateTo":"2026-03-07"}`)

	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, "PROVIDER_UNAVAILABLE", body["code"])
}

func TestCreateBulkInvoicesInternal(t *testing.T) {
	inv := &stubInvoicing{bulkErr: errors.New("database is down")}
	engine := newTestRouter(inv, &stubOrders{}, &stubExclusions{})

	w, body := doJSON(t, engine, http.MethodPost, "/invoicing/create-bulk",
		`{"dateFrom":"2026-03-01","dateTo":"2026-03-07"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "INTERNAL", body["code"])
	// Internals must not leak into the response.
	require.Equal(t, "internal error", body["message"])
}

func TestCreateInvoiceCreated(t *testing.T) {
	inv := &stubInvoicing{createID: "555"}
	engine := newTestRouter(inv, &stubOrders{}, &stubExclusions{})

	w, body := doJSON(t, engine, http.MethodPost, "/invoicing/create", `{
		"invoiceNumber": "FV/3/2026",
		"issueDate": "2026-03-10",
		"saleDate": "2026-03-09",
		"dates": ["2026-03-02", "2026-03-03"],
		"orderIds": ["ord-1"],
		"contractorId": 42
	}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "555", body["invoiceId"])
	require.Equal(t, "FV/3/2026", inv.gotInput.Number)
	require.Equal(t, int64(42), inv.gotInput.ContractorID)
	require.Len(t, inv.gotInput.Dates, 2)
}

func TestCreateInvoiceMissingFields(t *testing.T) {
	engine := newTestRouter(&stubInvoicing{}, &stubOrders{}, &stubExclusions{})

	w, body := doJSON(t, engine, http.MethodPost, "/invoicing/create",
		`{"issueDate":"2026-03-10"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_REQUEST", body["code"])
}

func TestCreateInvoiceContractorNotFound(t *testing.T) {
	inv := &stubInvoicing{createErr: invoicingdomain.ErrContractorNotFound}
	engine := newTestRouter(inv, &stubOrders{}, &stubExclusions{})

	w, body := doJSON(t, engine, http.MethodPost, "/invoicing/create", `{
		"issueDate": "2026-03-10",
		"saleDate": "2026-03-09",
		"dates": ["2026-03-02"],
		"orderIds": ["ord-1"],
		"contractorId": 42
	}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "CONTRACTOR_NOT_FOUND", body["code"])
}

func TestListOrdersRendersViews(t *testing.T) {
	orders := &stubOrders{orders: []orderservice.AnnotatedOrder{{
		Order: orderdomain.Order{
			ID:        "ord-1",
			Number:    "Z/100",
			EntryDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Contractor: orderdomain.OrderContractor{
				Name:   "Alfa Sp. z o.o.",
				Number: "1112223344",
			},
			Items: []orderdomain.OrderItem{{
				PartNumber: "FLT-200",
				Quantity:   2,
				UnitPrice:  decimal.RequireFromString("25.5"),
				VatRate:    decimal.RequireFromString("0.23"),
			}},
		},
		Excluded: true,
	}}}
	engine := newTestRouter(&stubInvoicing{}, orders, &stubExclusions{})

	w, body := doJSON(t, engine, http.MethodGet, "/orders?dateFrom=2026-03-01&dateTo=2026-03-07", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, body["count"])
	views := body["orders"].([]any)
	view := views[0].(map[string]any)
	require.Equal(t, "ord-1", view["id"])
	require.Equal(t, "1112223344", view["contractorNip"])
	require.Equal(t, true, view["excluded"])
	item := view["items"].([]any)[0].(map[string]any)
	require.Equal(t, "25.50", item["unitPrice"])
}

func TestListOrdersMissingRange(t *testing.T) {
	engine := newTestRouter(&stubInvoicing{}, &stubOrders{}, &stubExclusions{})

	w, body := doJSON(t, engine, http.MethodGet, "/orders", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_REQUEST", body["code"])
}

func TestExclusionsLifecycleHandlers(t *testing.T) {
	excl := &stubExclusions{}
	engine := newTestRouter(&stubInvoicing{}, &stubOrders{}, excl)

	w, body := doJSON(t, engine, http.MethodPost, "/exclusions",
		`{"orderIds":["ord-1","ord-2"],"reason":"damaged in transit"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.EqualValues(t, 2, body["excluded"])
	require.Equal(t, []string{"ord-1", "ord-2"}, excl.added)

	w, _ = doJSON(t, engine, http.MethodDelete, "/exclusions/ord-1", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, []string{"ord-1"}, excl.removed)

	w, _ = doJSON(t, engine, http.MethodPost, "/exclusions", `{"orderIds":[]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
