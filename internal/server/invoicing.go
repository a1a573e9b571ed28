package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	invoicingdomain "github.com/motodesk/motodesk/internal/invoicing/domain"
)

const dateLayout = "2006-01-02"

type createInvoiceRequest struct {
	InvoiceNumber string   `json:"invoiceNumber"`
	IssueDate     string   `json:"issueDate" binding:"required"`
	SaleDate      string   `json:"saleDate" binding:"required"`
	Dates         []string `json:"dates" binding:"required,min=1"`
	OrderIDs      []string `json:"orderIds" binding:"required,min=1"`
	ContractorID  int64    `json:"contractorId" binding:"required"`
}

// CreateInvoice
// POST /invoicing/create
func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: err.Error()})
		return
	}

	issueDate, err := time.Parse(dateLayout, req.IssueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "issueDate must be YYYY-MM-DD"})
		return
	}
	saleDate, err := time.Parse(dateLayout, req.SaleDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "saleDate must be YYYY-MM-DD"})
		return
	}
	dates, err := parseDates(req.Dates)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "dates must be YYYY-MM-DD"})
		return
	}

	input := invoicingdomain.CreateInvoiceInput{
		Number:       req.InvoiceNumber,
		IssueDate:    issueDate,
		SaleDate:     saleDate,
		Dates:        dates,
		OrderIDs:     req.OrderIDs,
		ContractorID: req.ContractorID,
	}

	invoiceID, err := s.invoicingSvc.CreateInvoice(c.Request.Context(), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invoiceId": invoiceID})
}

type createBulkInvoicesRequest struct {
	DateFrom string `json:"dateFrom" binding:"required"`
	DateTo   string `json:"dateTo" binding:"required"`
}

// CreateBulkInvoices
// POST /invoicing/create-bulk
func (s *Server) CreateBulkInvoices(c *gin.Context) {
	var req createBulkInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: err.Error()})
		return
	}

	dateFrom, err := time.Parse(dateLayout, req.DateFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "dateFrom must be YYYY-MM-DD"})
		return
	}
	dateTo, err := time.Parse(dateLayout, req.DateTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "dateTo must be YYYY-MM-DD"})
		return
	}
	if dateTo.Before(dateFrom) {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "dateFrom must not be after dateTo"})
		return
	}

	invoiceIDs, err := s.invoicingSvc.CreateBulkInvoices(c.Request.Context(), dateFrom, dateTo)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, gin.H{"invoiceIds": invoiceIDs, "count": len(invoiceIDs)})
}

func parseDates(raw []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		d, err := time.Parse(dateLayout, r)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}
