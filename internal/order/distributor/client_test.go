package distributor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const ordersResponseXML = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetOrdersResponse>
      <orders>
        <order>
          <id>ord-1</id>
          <number>Z/100</number>
          <entryDate>2026-03-02</entryDate>
          <contractor><name>Alfa Sp. z o.o.</name><number>1112223344</number></contractor>
          <items>
            <item><partNumber>FLT-200</partNumber><quantity>2</quantity><unitPrice>25.50</unitPrice><vatRate>0.23</vatRate></item>
            <item><partNumber>BRK-10</partNumber><quantity>1</quantity><unitPrice>119.99</unitPrice><vatRate>0.23</vatRate></item>
          </items>
        </order>
        <order>
          <id>ord-2</id>
          <number>Z/101</number>
          <entryDate>2026-03-02</entryDate>
          <contractor><name>Beta S.A.</name><number>5556667788</number></contractor>
          <items>
            <item><partNumber>SPK-4</partNumber><quantity>4</quantity><unitPrice>12.00</unitPrice><vatRate>0.23</vatRate></item>
          </items>
        </order>
      </orders>
    </GetOrdersResponse>
  </soap:Body>
</soap:Envelope>`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		baseURL:  srv.URL,
		login:    "dealer-7",
		password: "s3cret",
		client:   srv.Client(),
		log:      zap.NewNop(),
	}
}

func TestOrdersByDateRangeParsesEnvelope(t *testing.T) {
	var gotAction string
	var gotBody string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.Header.Get("SOAPAction")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		fmt.Fprint(w, ordersResponseXML)
	}))

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	orders, err := client.OrdersByDateRange(context.Background(), from, to)
	require.NoError(t, err)

	require.Equal(t, "GetOrders", gotAction)
	require.Contains(t, gotBody, "<login>dealer-7</login>")
	require.Contains(t, gotBody, "<dateFrom>2026-03-01</dateFrom>")
	require.Contains(t, gotBody, "<dateTo>2026-03-07</dateTo>")

	require.Len(t, orders, 2)
	require.Equal(t, "ord-1", orders[0].ID)
	require.Equal(t, "1112223344", orders[0].Contractor.Number)
	require.Len(t, orders[0].Items, 2)
	require.Equal(t, "25.5", orders[0].Items[0].UnitPrice.String())
	require.Equal(t, 2, orders[0].Items[0].Quantity)
	require.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), orders[0].EntryDate)
}

func TestOrdersByDatesDeduplicates(t *testing.T) {
	// The same response for every date; duplicates must collapse by id.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ordersResponseXML)
	}))

	dates := []time.Time{
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
	}
	orders, err := client.OrdersByDates(context.Background(), dates)
	require.NoError(t, err)
	require.Len(t, orders, 2)
}

func TestCallRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, ordersResponseXML)
	}))

	orders, err := client.OrdersByDateRange(context.Background(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.EqualValues(t, 2, calls.Load())
}

func TestCallDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.OrdersByDateRange(context.Background(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
	require.EqualValues(t, 1, calls.Load())
}

func TestCallRejectsMalformedEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<not-an-envelope>")
	}))

	_, err := client.OrdersByDateRange(context.Background(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "decode"))
}

func TestFetchProductsParsesCatalog(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "GetProducts", r.Header.Get("SOAPAction"))
		fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetProductsResponse>
      <products>
        <product><number>FLT-200</number><name>Oil filter</name><ean13>5901234123457</ean13></product>
        <product><number>SPK-4</number><name>Spark plug</name><ean13></ean13></product>
      </products>
    </GetProductsResponse>
  </soap:Body>
</soap:Envelope>`)
	}))

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "Oil filter", products[0].Name)
	require.Equal(t, "5901234123457", products[0].EAN13)
}
