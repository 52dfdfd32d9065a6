package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	clientdomain "github.com/aquabill/aquabill/internal/client/domain"
	companydomain "github.com/aquabill/aquabill/internal/company/domain"
	delinquencydomain "github.com/aquabill/aquabill/internal/delinquency/domain"
	invoicedomain "github.com/aquabill/aquabill/internal/invoice/domain"
	meterdomain "github.com/aquabill/aquabill/internal/meter/domain"
	paymentdomain "github.com/aquabill/aquabill/internal/payment/domain"
	readingdomain "github.com/aquabill/aquabill/internal/reading/domain"
	"github.com/aquabill/aquabill/internal/tariff"
	"github.com/aquabill/aquabill/pkg/db"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`

	// Overpayment rejections report both sides of the mismatch.
	Remaining string `json:"remaining,omitempty"`
	Attempted string `json:"attempted,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	var overpayment *paymentdomain.OverpaymentError
	if errors.As(err, &overpayment) {
		return http.StatusUnprocessableEntity, errorPayload{
			Type:      "overpayment_rejected",
			Message:   "payment exceeds remaining balance",
			Remaining: overpayment.Remaining.String(),
			Attempted: overpayment.Attempted.String(),
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isUnprocessableError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    err.Error(),
			Message: unprocessableMessage(err),
		}
	case errors.Is(err, ErrServiceUnavailable) || db.IsTransientErr(err):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, tariff.ErrInvalidConsumption),
		errors.Is(err, tariff.ErrInvalidTariff),
		errors.Is(err, companydomain.ErrInvalidName),
		errors.Is(err, companydomain.ErrInvalidID),
		errors.Is(err, clientdomain.ErrInvalidCompany),
		errors.Is(err, clientdomain.ErrInvalidName),
		errors.Is(err, clientdomain.ErrInvalidID),
		errors.Is(err, meterdomain.ErrInvalidCompany),
		errors.Is(err, meterdomain.ErrInvalidClient),
		errors.Is(err, meterdomain.ErrInvalidSerial),
		errors.Is(err, meterdomain.ErrInvalidStatus),
		errors.Is(err, meterdomain.ErrInvalidReading),
		errors.Is(err, meterdomain.ErrInvalidID),
		errors.Is(err, readingdomain.ErrInvalidCompany),
		errors.Is(err, readingdomain.ErrInvalidReading),
		errors.Is(err, readingdomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidCompany),
		errors.Is(err, invoicedomain.ErrInvalidStatus),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, paymentdomain.ErrInvalidCompany),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidMethod),
		errors.Is(err, paymentdomain.ErrInvalidID),
		errors.Is(err, delinquencydomain.ErrInvalidCompany),
		errors.Is(err, delinquencydomain.ErrInvalidClient),
		errors.Is(err, auditdomain.ErrInvalidCompany),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, companydomain.ErrNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, meterdomain.ErrNotFound),
		errors.Is(err, readingdomain.ErrNotFound),
		errors.Is(err, readingdomain.ErrMeterNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrReadingNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrInvoiceNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, meterdomain.ErrSerialTaken),
		errors.Is(err, invoicedomain.ErrDuplicateInvoice),
		errors.Is(err, paymentdomain.ErrAlreadySettled):
		return true
	default:
		return false
	}
}

func isUnprocessableError(err error) bool {
	switch {
	case errors.Is(err, readingdomain.ErrMeterInactive),
		errors.Is(err, readingdomain.ErrReadingRegression),
		errors.Is(err, paymentdomain.ErrMethodNotAccepted),
		errors.Is(err, companydomain.ErrTariffNotConfigured):
		return true
	default:
		return false
	}
}

func unprocessableMessage(err error) string {
	switch {
	case errors.Is(err, readingdomain.ErrMeterInactive):
		return "meter does not accept readings"
	case errors.Is(err, readingdomain.ErrReadingRegression):
		return "reading is lower than the meter's last reading"
	case errors.Is(err, paymentdomain.ErrMethodNotAccepted):
		return "company does not accept this payment method"
	case errors.Is(err, companydomain.ErrTariffNotConfigured):
		return "company tariff is not configured"
	default:
		return "unprocessable"
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "invalid_request" {
		return "request"
	}
	return ""
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= 500:
		return "server_error", payload.Type
	case status >= 400:
		return "client_error", payload.Type
	default:
		return "", ""
	}
}
