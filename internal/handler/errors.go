package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	customError "github.com/segyhp/sacco-engine/pkg/errors"
	"github.com/segyhp/sacco-engine/pkg/response"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, customError.ErrLoanNotFound),
		errors.Is(err, customError.ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, customError.ErrInvalidLoanParameters),
		errors.Is(err, customError.ErrInvalidPaymentAmount),
		errors.Is(err, customError.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, customError.ErrOverrideExceedsPrincipal),
		errors.Is(err, customError.ErrLimitExceeded),
		errors.Is(err, customError.ErrGuarantorRequirementNotMet):
		return http.StatusUnprocessableEntity
	case errors.Is(err, customError.ErrLoanNotActive),
		errors.Is(err, customError.ErrPendingLoanExists),
		errors.Is(err, customError.ErrInvalidStatusTransition),
		errors.Is(err, customError.ErrCatchUpNotAllowed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *base) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		code := customError.Code(err)
		if code == "" {
			code = customError.ErrCodeInternal
		}
		response.ErrorWithCode(w, status, code, "internal server error", nil)
		return
	}

	response.ErrorWithCode(w, status, customError.Code(err), customError.Message(err), nil)
}
