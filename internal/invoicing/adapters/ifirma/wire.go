package ifirma

import (
	"encoding/json"

	"github.com/motodesk/motodesk/internal/invoicing/domain"
)

const dateLayout = "2006-01-02"

// responseEnvelope is iFirma's synchronous result: Kod 0 is success and
// Identyfikator carries the created invoice id; any other Kod is a
// rejection explained by Informacja.
type responseEnvelope struct {
	Kod           int         `json:"Kod"`
	Informacja    string      `json:"Informacja"`
	Identyfikator json.Number `json:"Identyfikator"`
}

// parseResponse accepts both the bare envelope and the {"response":{…}}
// wrapper some endpoints use.
func parseResponse(raw []byte) (*responseEnvelope, error) {
	var wrapped struct {
		Response *responseEnvelope `json:"response"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Response != nil {
		return wrapped.Response, nil
	}
	var env responseEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

type wireInvoice struct {
	Numer              *string        `json:"Numer"`
	DataWystawienia    string         `json:"DataWystawienia"`
	DataSprzedazy      string         `json:"DataSprzedazy"`
	TerminPlatnosci    string         `json:"TerminPlatnosci"`
	MiejsceWystawienia string         `json:"MiejsceWystawienia,omitempty"`
	SposobZaplaty      string         `json:"SposobZaplaty,omitempty"`
	Uwagi              string         `json:"Uwagi,omitempty"`
	LiczOd             string         `json:"LiczOd"`
	Kontrahent         wireContractor `json:"Kontrahent"`
	Pozycje            []wirePosition `json:"Pozycje"`
}

type wireContractor struct {
	Nazwa       string `json:"Nazwa"`
	NIP         string `json:"NIP"`
	Ulica       string `json:"Ulica"`
	KodPocztowy string `json:"KodPocztowy"`
	Miejscowosc string `json:"Miejscowosc"`
	Email       string `json:"Email,omitempty"`
	Kraj        string `json:"Kraj"`
}

type wirePosition struct {
	NazwaPelna      string   `json:"PelnaNazwa"`
	Ilosc           int      `json:"Ilosc"`
	CenaJednostkowa float64  `json:"CenaJednostkowa"`
	StawkaVat       float64  `json:"StawkaVat"`
	TypStawkiVat    string   `json:"TypStawkiVat"`
	Rabat           *float64 `json:"Rabat,omitempty"`
	PKWiU           string   `json:"PKWiU,omitempty"`
	GTU             string   `json:"GTU,omitempty"`
}

// mapInvoice is a 1:1 field translation; the only business decision is
// the cosmetic "Kraj: Polska" default.
func mapInvoice(inv *domain.Invoice) ([]byte, error) {
	wire := wireInvoice{
		DataWystawienia:    inv.IssueDate.Format(dateLayout),
		DataSprzedazy:      inv.SaleDate.Format(dateLayout),
		TerminPlatnosci:    inv.PaymentDue.Format(dateLayout),
		MiejsceWystawienia: inv.PlaceOfIssue,
		SposobZaplaty:      inv.PaymentMethod,
		Uwagi:              inv.Notes,
		LiczOd:             "NET",
		Kontrahent: wireContractor{
			Nazwa:       inv.Contractor.Name,
			NIP:         inv.Contractor.NIP,
			Ulica:       inv.Contractor.Street,
			KodPocztowy: inv.Contractor.ZipCode,
			Miejscowosc: inv.Contractor.City,
			Email:       inv.Contractor.Email,
			Kraj:        "Polska",
		},
	}
	if inv.Number != "" {
		n := inv.Number
		wire.Numer = &n
	}
	for _, item := range inv.Items {
		pos := wirePosition{
			NazwaPelna:      item.Name,
			Ilosc:           item.Quantity,
			CenaJednostkowa: item.UnitPrice.InexactFloat64(),
			StawkaVat:       item.VatRate.InexactFloat64(),
			TypStawkiVat:    vatType(item.VatType),
			PKWiU:           item.PKWiU,
			GTU:             item.GTU,
		}
		if item.Discount != nil {
			d := item.Discount.InexactFloat64()
			pos.Rabat = &d
		}
		wire.Pozycje = append(wire.Pozycje, pos)
	}
	return json.Marshal(wire)
}

func vatType(t domain.VatType) string {
	if t == domain.VatTypeExempt {
		return "ZW"
	}
	return "PRC"
}
