package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/billinghub/internal/adapters"
	"github.com/railzwaylabs/billinghub/internal/dispatcher"
	"github.com/railzwaylabs/billinghub/internal/domain"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

// AbortWithError writes the console error envelope for err.
func AbortWithError(c *gin.Context, err error) {
	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

func mapError(err error) (int, errorBody) {
	var (
		validation  *domain.ValidationError
		unsupported *domain.CapabilityUnsupportedError
		upstream    *domain.UpstreamError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, errorBody{
			Code:    domain.ErrValidation.Error(),
			Message: "The request has invalid fields.",
			Fields:  validation.Fields,
		}
	case errors.As(err, &unsupported):
		return http.StatusNotImplemented, errorBody{
			Code:    domain.ErrCapabilityUnsupported.Error(),
			Message: unsupported.Platform.DisplayName() + " does not support " + unsupported.Op.String() + " for " + string(unsupported.Kind) + ".",
		}
	case errors.As(err, &upstream):
		msg := upstream.VendorMessage
		if msg == "" {
			msg = "The billing platform rejected the request."
		}
		return http.StatusBadGateway, errorBody{Code: domain.ErrUpstream.Error(), Message: msg}
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusServiceUnavailable, errorBody{
			Code:    domain.ErrNetwork.Error(),
			Message: "The billing backend could not be reached.",
		}
	case errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound, errorBody{Code: domain.ErrNodeNotFound.Error(), Message: "Node not found."}
	case errors.Is(err, dispatcher.ErrNotExpandable),
		errors.Is(err, adapters.ErrUnknownPlatform),
		errors.Is(err, domain.ErrInvalidPlatform),
		errors.Is(err, domain.ErrInvalidConnection),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorBody{Code: ErrInvalidRequest.Error(), Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorBody{Code: ErrInternal.Error(), Message: "Internal server error."}
	}
}
