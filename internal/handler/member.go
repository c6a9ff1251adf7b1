package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/segyhp/sacco-engine/internal/domain"
	"github.com/segyhp/sacco-engine/pkg/response"
)

type MemberHandler struct {
	base
	service MemberService
}

func NewMemberHandler(service MemberService, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{base: newBase(logger), service: service}
}

// Eligibility handles GET /members/{memberId}/eligibility
func (h *MemberHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathUUID(r, "memberId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.service.Eligibility(r.Context(), memberID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Success(w, resp)
}

// Deposit handles POST /members/{memberId}/deposits
func (h *MemberHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.credit(w, r, h.service.Deposit)
}

// PayDividend handles POST /members/{memberId}/dividends
func (h *MemberHandler) PayDividend(w http.ResponseWriter, r *http.Request) {
	h.credit(w, r, h.service.PayDividend)
}

func (h *MemberHandler) credit(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, memberID uuid.UUID, request *domain.SavingsRequest) (*domain.SavingsResponse, error)) {
	memberID, err := pathUUID(r, "memberId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req domain.SavingsRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := apply(r.Context(), memberID, &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, resp)
}
