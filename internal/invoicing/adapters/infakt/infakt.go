// Package infakt submits invoices through InFakt's asynchronous API:
// the contractor is upserted as an InFakt client first, the invoice is
// posted to the async endpoint, and the returned task reference is
// polled until the invoice materializes or the schedule runs out.
package infakt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/motodesk/motodesk/internal/config"
	contractordomain "github.com/motodesk/motodesk/internal/contractor/domain"
	"github.com/motodesk/motodesk/internal/invoicing/adapters"
	"github.com/motodesk/motodesk/internal/invoicing/domain"
	"github.com/motodesk/motodesk/internal/retry"
	"go.uber.org/zap"
)

const providerName = "inFakt"

// Processing codes returned by the task status endpoint.
const (
	codeDone     = 201
	codeRejected = 422
)

// inProgressCodes keep the poll loop going; anything else not listed
// above is an unrecognized failure.
var inProgressCodes = map[int]bool{100: true, 120: true, 140: true}

// pollPolicy is the bounded schedule for task status checks. Six
// attempts; exhausting it is a timeout, not a rejection.
var pollPolicy = retry.Policy{
	Delays: []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		15 * time.Second,
		30 * time.Second,
	},
	DelayFirst: true,
}

type Adapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.Logger

	// poll is swappable so tests can run the schedule without real
	// delays.
	poll retry.Policy
}

func NewAdapter(cfg config.Config, log *zap.Logger) *Adapter {
	return &Adapter{
		baseURL: strings.TrimRight(cfg.InFakt.BaseURL, "/"),
		apiKey:  cfg.InFakt.APIKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.Named("invoicing.infakt"),
		poll:    pollPolicy,
	}
}

func (a *Adapter) Name() string { return providerName }

func (a *Adapter) Submit(ctx context.Context, invoice *domain.Invoice) (string, error) {
	clientID, err := a.upsertClient(ctx, invoice.Contractor)
	if err != nil {
		return "", &domain.ClientUpsertError{Provider: providerName, Err: err}
	}

	taskRef, err := a.submitAsync(ctx, invoice, clientID)
	if err != nil {
		return "", err
	}
	a.log.Info("invoice submitted", zap.String("task_reference", taskRef))

	return a.awaitResult(ctx, taskRef)
}

// submitAsync posts the mapped invoice and returns the task reference
// number InFakt hands back immediately.
func (a *Adapter) submitAsync(ctx context.Context, invoice *domain.Invoice, clientID int64) (string, error) {
	payload, err := json.Marshal(map[string]any{"invoice": mapInvoice(invoice, clientID)})
	if err != nil {
		return "", err
	}

	status, raw, err := a.do(ctx, http.MethodPost, "/async/invoices.json", payload)
	if err != nil {
		return "", &domain.ProviderUnavailableError{Provider: providerName, Err: err}
	}
	if status >= http.StatusInternalServerError {
		return "", &domain.ProviderUnavailableError{
			Provider: providerName,
			Err:      fmt.Errorf("status %d: %s", status, adapters.ParseErrorMessage(raw)),
		}
	}
	if status != http.StatusOK && status != http.StatusCreated && status != http.StatusAccepted {
		return "", &domain.ProviderRejectedError{Provider: providerName, Message: adapters.ParseErrorMessage(raw)}
	}

	var resp struct {
		TaskReferenceNumber string `json:"invoice_task_reference_number"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || strings.TrimSpace(resp.TaskReferenceNumber) == "" {
		return "", &domain.ProviderRejectedError{Provider: providerName, Message: adapters.ParseErrorMessage(raw)}
	}
	return resp.TaskReferenceNumber, nil
}

// awaitResult polls the task status endpoint on the bounded schedule.
func (a *Adapter) awaitResult(ctx context.Context, taskRef string) (string, error) {
	var invoiceNumber string
	attempts := 0

	err := a.poll.Do(ctx, func(ctx context.Context, attempt int) (bool, error) {
		attempts++
		st, err := a.taskStatus(ctx, taskRef)
		if err != nil {
			return false, err
		}

		switch {
		case st.ProcessingCode == codeDone:
			invoiceNumber = strings.TrimSpace(st.Invoice.Number)
			if invoiceNumber == "" {
				invoiceNumber = strings.TrimSpace(st.Invoice.UUID)
			}
			if invoiceNumber == "" {
				return false, &domain.ProviderRejectedError{
					Provider: providerName,
					Message:  "task completed without an invoice number",
				}
			}
			return true, nil
		case st.ProcessingCode == codeRejected:
			return false, &domain.ProviderRejectedError{
				Provider: providerName,
				Message:  rejectionMessage(st),
			}
		case inProgressCodes[st.ProcessingCode]:
			a.log.Debug("invoice task still processing",
				zap.String("task_reference", taskRef),
				zap.Int("processing_code", st.ProcessingCode),
				zap.Int("attempt", attempt))
			return false, nil
		default:
			return false, &domain.ProviderRejectedError{
				Provider: providerName,
				Message:  fmt.Sprintf("unrecognized processing code %d: %s", st.ProcessingCode, st.ProcessingDescription),
			}
		}
	})

	if errors.Is(err, retry.ErrExhausted) {
		return "", &domain.PollTimeoutError{Provider: providerName, TaskReference: taskRef, Attempts: attempts}
	}
	if err != nil {
		return "", err
	}
	return invoiceNumber, nil
}

func (a *Adapter) taskStatus(ctx context.Context, taskRef string) (*taskStatusResponse, error) {
	status, raw, err := a.do(ctx, http.MethodGet, "/async/invoice_task_statuses/"+url.PathEscape(taskRef)+".json", nil)
	if err != nil {
		return nil, &domain.ProviderUnavailableError{Provider: providerName, Err: err}
	}
	if status != http.StatusOK {
		return nil, &domain.ProviderUnavailableError{
			Provider: providerName,
			Err:      fmt.Errorf("task status returned %d: %s", status, adapters.ParseErrorMessage(raw)),
		}
	}
	var st taskStatusResponse
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, &domain.ProviderUnavailableError{Provider: providerName, Err: err}
	}
	return &st, nil
}

func (a *Adapter) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("X-inFakt-ApiKey", a.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, raw, nil
}

func rejectionMessage(st *taskStatusResponse) string {
	parts := []string{}
	if strings.TrimSpace(st.ProcessingDescription) != "" {
		parts = append(parts, strings.TrimSpace(st.ProcessingDescription))
	}
	parts = append(parts, st.InvoiceErrors.Base...)
	return strings.Join(parts, "; ")
}

// upsertClient makes sure InFakt has a client record matching the
// contractor before any invoice is attempted. Search by NIP; update
// only when a relevant field actually differs; create when absent.
func (a *Adapter) upsertClient(ctx context.Context, c contractordomain.Contractor) (int64, error) {
	status, raw, err := a.do(ctx, http.MethodGet, "/clients.json?q%5Bnip_eq%5D="+url.QueryEscape(c.NIP), nil)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("client search returned %d: %s", status, adapters.ParseErrorMessage(raw))
	}

	var list struct {
		Entities []wireClient `json:"entities"`
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return 0, err
	}

	desired := mapClient(c)
	if len(list.Entities) == 0 {
		return a.createClient(ctx, desired)
	}

	existing := list.Entities[0]
	if clientMatches(existing, desired) {
		return existing.ID, nil
	}
	return existing.ID, a.updateClient(ctx, existing.ID, desired)
}

func (a *Adapter) createClient(ctx context.Context, c wireClient) (int64, error) {
	payload, err := json.Marshal(map[string]any{"client": c})
	if err != nil {
		return 0, err
	}
	status, raw, err := a.do(ctx, http.MethodPost, "/clients.json", payload)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return 0, fmt.Errorf("client create returned %d: %s", status, adapters.ParseErrorMessage(raw))
	}
	var created wireClient
	if err := json.Unmarshal(raw, &created); err != nil || created.ID == 0 {
		return 0, fmt.Errorf("client create returned no id")
	}
	a.log.Info("infakt client created", zap.Int64("client_id", created.ID), zap.String("nip", c.NIP))
	return created.ID, nil
}

func (a *Adapter) updateClient(ctx context.Context, id int64, c wireClient) error {
	payload, err := json.Marshal(map[string]any{"client": c})
	if err != nil {
		return err
	}
	status, raw, err := a.do(ctx, http.MethodPut, fmt.Sprintf("/clients/%d.json", id), payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("client update returned %d: %s", status, adapters.ParseErrorMessage(raw))
	}
	a.log.Info("infakt client updated", zap.Int64("client_id", id), zap.String("nip", c.NIP))
	return nil
}

// clientMatches compares the fields invoicing cares about,
// case-insensitively. Anything else InFakt stores is left alone.
func clientMatches(existing, desired wireClient) bool {
	return strings.EqualFold(existing.CompanyName, desired.CompanyName) &&
		strings.EqualFold(existing.Street, desired.Street) &&
		strings.EqualFold(existing.City, desired.City) &&
		strings.EqualFold(existing.PostalCode, desired.PostalCode) &&
		strings.EqualFold(existing.NIP, desired.NIP) &&
		strings.EqualFold(existing.Email, desired.Email)
}
