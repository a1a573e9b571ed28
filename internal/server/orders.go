package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type orderItemView struct {
	PartNumber string `json:"partNumber"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unitPrice"`
	VatRate    string `json:"vatRate"`
}

type orderView struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	EntryDate      string          `json:"entryDate"`
	ContractorName string          `json:"contractorName"`
	ContractorNIP  string          `json:"contractorNip"`
	Excluded       bool            `json:"excluded"`
	Items          []orderItemView `json:"items"`
}

// ListOrders
// GET /orders?dateFrom=YYYY-MM-DD&dateTo=YYYY-MM-DD
func (s *Server) ListOrders(c *gin.Context) {
	dateFrom, err := time.Parse(dateLayout, c.Query("dateFrom"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "dateFrom must be YYYY-MM-DD"})
		return
	}
	dateTo, err := time.Parse(dateLayout, c.Query("dateTo"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_REQUEST", Message: "dateTo must be YYYY-MM-DD"})
		return
	}

	orders, err := s.orderSvc.ListOrders(c.Request.Context(), dateFrom, dateTo)
	if err != nil {
		s.respondError(c, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		view := orderView{
			ID:             o.Order.ID,
			Number:         o.Order.Number,
			EntryDate:      o.Order.EntryDate.Format(dateLayout),
			ContractorName: o.Order.Contractor.Name,
			ContractorNIP:  o.Order.Contractor.Number,
			Excluded:       o.Excluded,
		}
		for _, item := range o.Order.Items {
			view.Items = append(view.Items, orderItemView{
				PartNumber: item.PartNumber,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice.StringFixed(2),
				VatRate:    item.VatRate.String(),
			})
		}
		views = append(views, view)
	}
	respondData(c, gin.H{"orders": views, "count": len(views)})
}
