package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/segyhp/sacco-engine/internal/domain"
	"github.com/segyhp/sacco-engine/pkg/response"
)

type LoanHandler struct {
	base
	service LoanService
}

func NewLoanHandler(service LoanService, logger *zap.Logger) *LoanHandler {
	return &LoanHandler{base: newBase(logger), service: service}
}

// PreviewLoan handles POST /loans/preview
func (h *LoanHandler) PreviewLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.PreviewLoanRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	schedule, err := h.service.PreviewLoan(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, schedule)
}

// CreateLoan handles POST /loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.service.CreateLoan(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, resp)
}

// GetLoan handles GET /loans/{loanId}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	loan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, loan)
}

// GetSchedule handles GET /loans/{loanId}/schedule
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	schedule, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, schedule)
}

// ListPayments handles GET /loans/{loanId}/payments
func (h *LoanHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	payments, err := h.service.ListPayments(r.Context(), loanID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, payments)
}

// MakePayment handles POST /loans/{loanId}/payments
func (h *LoanHandler) MakePayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req domain.MakePaymentRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.service.MakePayment(r.Context(), loanID, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, resp)
}

// ApproveLoan handles POST /loans/{loanId}/approve
func (h *LoanHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.service.ApproveLoan(r.Context(), loanID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, resp)
}

// RejectLoan handles POST /loans/{loanId}/reject
func (h *LoanHandler) RejectLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.service.RejectLoan(r.Context(), loanID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, resp)
}

// SetStatus handles PUT /loans/{loanId}/status
func (h *LoanHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req domain.SetStatusRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.service.SetStatus(r.Context(), loanID, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, resp)
}

// ImportLoans handles POST /loans/import. Row failures are reported in the
// body; the request itself only fails on a malformed upload.
func (h *LoanHandler) ImportLoans(w http.ResponseWriter, r *http.Request) {
	var req domain.ImportLoansRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.service.ImportLoans(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, resp)
}

// ListMemberLoans handles GET /members/{memberId}/loans
func (h *LoanHandler) ListMemberLoans(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathUUID(r, "memberId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	loans, err := h.service.ListMemberLoans(r.Context(), memberID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, loans)
}
