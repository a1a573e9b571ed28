// Package ifirma submits invoices to the iFirma API. Every request is
// signed with a per-request HMAC-SHA1 whose secret depends on the
// endpoint category; the response is a synchronous {Kod, Informacja,
// Identyfikator} envelope.
package ifirma

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/motodesk/motodesk/internal/config"
	"github.com/motodesk/motodesk/internal/invoicing/adapters"
	"github.com/motodesk/motodesk/internal/invoicing/domain"
	"go.uber.org/zap"
)

const (
	providerName = "iFirma"

	invoicePath = "/iapi/fakturakraj.json"
)

// secretCategories maps endpoint path prefixes to the named API key the
// request must be signed with. First match wins.
var secretCategories = []struct {
	prefix   string
	category string
}{
	{"/iapi/faktur", "faktura"},
	{"/iapi/abonent", "abonent"},
	{"/iapi/rachun", "rachunek"},
	{"/iapi/wydat", "wydatek"},
}

type Adapter struct {
	baseURL string
	user    string
	// secrets is instance-scoped, built from configuration at
	// construction: endpoint category -> hex-encoded HMAC key.
	secrets map[string]string
	client  *http.Client
	log     *zap.Logger
}

func NewAdapter(cfg config.Config, log *zap.Logger) *Adapter {
	return &Adapter{
		baseURL: cfg.IFirma.BaseURL,
		user:    cfg.IFirma.User,
		secrets: cfg.IFirma.Secrets,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.Named("invoicing.ifirma"),
	}
}

func (a *Adapter) Name() string { return providerName }

func (a *Adapter) Submit(ctx context.Context, invoice *domain.Invoice) (string, error) {
	body, err := mapInvoice(invoice)
	if err != nil {
		return "", err
	}

	resp, err := a.post(ctx, invoicePath, body)
	if err != nil {
		return "", err
	}

	if resp.Kod != 0 {
		return "", &domain.ProviderRejectedError{Provider: providerName, Message: resp.Informacja}
	}
	id := strings.TrimSpace(resp.Identyfikator.String())
	a.log.Info("invoice accepted", zap.String("identifier", id))
	return id, nil
}

func (a *Adapter) post(ctx context.Context, path string, body []byte) (*responseEnvelope, error) {
	keyName, secret, err := a.secretFor(path)
	if err != nil {
		return nil, err
	}
	signature, err := sign(path, a.user, keyName, body, secret)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authentication", fmt.Sprintf("IAPIS user=%s, hmac-sha1=%s", a.user, signature))

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &domain.ProviderUnavailableError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ProviderUnavailableError{Provider: providerName, Err: err}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &domain.ProviderUnavailableError{
			Provider: providerName,
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, adapters.ParseErrorMessage(raw)),
		}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &domain.ProviderRejectedError{
			Provider: providerName,
			Message:  adapters.ParseErrorMessage(raw),
		}
	}

	env, err := parseResponse(raw)
	if err != nil {
		return nil, &domain.ProviderRejectedError{
			Provider: providerName,
			Message:  adapters.ParseErrorMessage(raw),
		}
	}
	return env, nil
}

// secretFor resolves the endpoint category for the path and returns the
// category name together with its configured secret.
func (a *Adapter) secretFor(path string) (string, string, error) {
	for _, sc := range secretCategories {
		if strings.HasPrefix(path, sc.prefix) {
			secret, ok := a.secrets[sc.category]
			if !ok || secret == "" {
				return "", "", fmt.Errorf("ifirma: no secret configured for category %q", sc.category)
			}
			return sc.category, secret, nil
		}
	}
	return "", "", fmt.Errorf("ifirma: no secret category matches path %q", path)
}

// sign computes hmac-sha1 over {path}{user}{keyName}{body} using the
// hex-decoded secret, returning the hex digest.
func sign(path, user, keyName string, body []byte, hexSecret string) (string, error) {
	key, err := hex.DecodeString(hexSecret)
	if err != nil {
		return "", fmt.Errorf("ifirma: secret for %q is not valid hex", keyName)
	}
	mac := hmac.New(sha1.New, key)
	mac.Write([]byte(path))
	mac.Write([]byte(user))
	mac.Write([]byte(keyName))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil)), nil
}
