package distributor

import "encoding/xml"

type envelope struct {
	XMLName xml.Name     `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    envelopeBody `xml:"Body"`
}

type envelopeBody struct {
	Content any `xml:",any"`
}

// responseEnvelope captures the body verbatim; the action-specific
// payload is unmarshalled from InnerXML in a second pass.
type responseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		InnerXML []byte `xml:",innerxml"`
	} `xml:"Body"`
}

type getOrdersRequest struct {
	XMLName  xml.Name `xml:"GetOrders"`
	Login    string   `xml:"login"`
	Password string   `xml:"password"`
	DateFrom string   `xml:"dateFrom"`
	DateTo   string   `xml:"dateTo"`
}

type getOrdersResponse struct {
	XMLName xml.Name    `xml:"GetOrdersResponse"`
	Orders  []wireOrder `xml:"orders>order"`
}

type wireOrder struct {
	ID               string          `xml:"id"`
	Number           string          `xml:"number"`
	EntryDate        string          `xml:"entryDate"`
	ContractorName   string          `xml:"contractor>name"`
	ContractorNumber string          `xml:"contractor>number"`
	Items            []wireOrderItem `xml:"items>item"`
}

type wireOrderItem struct {
	PartNumber string `xml:"partNumber"`
	Quantity   int    `xml:"quantity"`
	UnitPrice  string `xml:"unitPrice"`
	VatRate    string `xml:"vatRate"`
}

type getProductsRequest struct {
	XMLName  xml.Name `xml:"GetProducts"`
	Login    string   `xml:"login"`
	Password string   `xml:"password"`
}

type getProductsResponse struct {
	XMLName  xml.Name      `xml:"GetProductsResponse"`
	Products []wireProduct `xml:"products>product"`
}

type wireProduct struct {
	Number string `xml:"number"`
	Name   string `xml:"name"`
	EAN13  string `xml:"ean13"`
}
