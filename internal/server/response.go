package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	invoicingdomain "github.com/motodesk/motodesk/internal/invoicing/domain"
	"go.uber.org/zap"
)

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// TaskReference is set for poll timeouts so the outcome can be
	// re-checked later.
	TaskReference string `json:"taskReference,omitempty"`
}

// respondError maps the invoicing error taxonomy to HTTP. Validation
// shaped errors are 400 with a machine-readable code; provider errors
// carry the provider's own message and nothing else — never auth
// material.
func (s *Server) respondError(c *gin.Context, err error) {
	var (
		rejected    *invoicingdomain.ProviderRejectedError
		unavailable *invoicingdomain.ProviderUnavailableError
		pollTimeout *invoicingdomain.PollTimeoutError
		upsert      *invoicingdomain.ClientUpsertError
	)

	switch {
	case errors.Is(err, invoicingdomain.ErrNoValidOrders):
		c.JSON(http.StatusBadRequest, errorResponse{Code: "NO_VALID_ORDERS", Message: "no invoiceable orders remain after exclusion"})
	case errors.Is(err, invoicingdomain.ErrNoOrdersFound):
		c.JSON(http.StatusBadRequest, errorResponse{Code: "NO_ORDERS_FOUND", Message: "none of the requested orders were found"})
	case errors.Is(err, invoicingdomain.ErrContractorNotFound):
		c.JSON(http.StatusBadRequest, errorResponse{Code: "CONTRACTOR_NOT_FOUND", Message: "no billing profile for the given contractor id"})
	case errors.As(err, &rejected):
		c.JSON(http.StatusBadGateway, errorResponse{Code: "PROVIDER_REJECTED", Message: rejected.Message})
	case errors.As(err, &pollTimeout):
		c.JSON(http.StatusBadGateway, errorResponse{
			Code:          "PROVIDER_POLL_TIMEOUT",
			Message:       pollTimeout.Error(),
			TaskReference: pollTimeout.TaskReference,
		})
	case errors.As(err, &upsert):
		c.JSON(http.StatusBadGateway, errorResponse{Code: "CLIENT_UPSERT_FAILED", Message: upsert.Error()})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusBadGateway, errorResponse{Code: "PROVIDER_UNAVAILABLE", Message: unavailable.Error()})
	default:
		s.log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "internal error"})
	}
}
