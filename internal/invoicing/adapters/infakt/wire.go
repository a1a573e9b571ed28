package infakt

import (
	contractordomain "github.com/motodesk/motodesk/internal/contractor/domain"
	"github.com/motodesk/motodesk/internal/invoicing/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type wireClient struct {
	ID          int64  `json:"id,omitempty"`
	CompanyName string `json:"company_name"`
	Street      string `json:"street"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	NIP         string `json:"nip"`
	Email       string `json:"email,omitempty"`
	Country     string `json:"country,omitempty"`
}

// wireInvoice speaks groszy: InFakt represents money as integer minor
// units, so conversion happens here and nowhere earlier.
type wireInvoice struct {
	Number        string        `json:"number,omitempty"`
	ClientID      int64         `json:"client_id"`
	InvoiceDate   string        `json:"invoice_date"`
	SaleDate      string        `json:"sale_date"`
	PaymentDate   string        `json:"payment_date"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	Services      []wireService `json:"services"`
}

type wireService struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitNetPrice int64  `json:"unit_net_price"`
	NetPrice     int64  `json:"net_price"`
	TaxSymbol    string `json:"tax_symbol"`
	Discount     int64  `json:"discount,omitempty"`
	PKWiU        string `json:"pkwiu,omitempty"`
	GTUID        string `json:"gtu_id,omitempty"`
}

type taskStatusResponse struct {
	ProcessingCode        int    `json:"processing_code"`
	ProcessingDescription string `json:"processing_description"`
	InvoiceErrors         struct {
		Base []string `json:"base"`
	} `json:"invoice_errors"`
	Invoice struct {
		Number string `json:"number"`
		UUID   string `json:"uuid"`
	} `json:"invoice"`
}

func mapClient(c contractordomain.Contractor) wireClient {
	return wireClient{
		CompanyName: c.Name,
		Street:      c.Street,
		City:        c.City,
		PostalCode:  c.ZipCode,
		NIP:         c.NIP,
		Email:       c.Email,
		Country:     "PL",
	}
}

func mapInvoice(inv *domain.Invoice, clientID int64) wireInvoice {
	wire := wireInvoice{
		Number:        inv.Number,
		ClientID:      clientID,
		InvoiceDate:   inv.IssueDate.Format(dateLayout),
		SaleDate:      inv.SaleDate.Format(dateLayout),
		PaymentDate:   inv.PaymentDue.Format(dateLayout),
		PaymentMethod: inv.PaymentMethod,
		Notes:         inv.Notes,
	}
	for _, item := range inv.Items {
		svc := wireService{
			Name:         item.Name,
			Quantity:     item.Quantity,
			UnitNetPrice: domain.ToGroszy(item.UnitPrice),
			NetPrice:     domain.ToGroszy(item.Total()),
			TaxSymbol:    taxSymbol(item),
			PKWiU:        item.PKWiU,
			GTUID:        item.GTU,
		}
		if item.Discount != nil {
			svc.Discount = domain.ToGroszy(*item.Discount)
		}
		wire.Services = append(wire.Services, svc)
	}
	return wire
}

// taxSymbol renders a VAT rate the way InFakt expects: "23" for 23%,
// "zw" for exempt lines.
func taxSymbol(item domain.InvoiceItem) string {
	if item.VatType == domain.VatTypeExempt {
		return "zw"
	}
	return item.VatRate.Mul(decimal.NewFromInt(100)).String()
}
