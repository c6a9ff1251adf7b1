package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound               = errors.New("loan not found")
	ErrMemberNotFound             = errors.New("member not found")
	ErrInvalidLoanParameters      = errors.New("invalid loan parameters")
	ErrInvalidPaymentAmount       = errors.New("invalid payment amount")
	ErrOverrideExceedsPrincipal   = errors.New("override principal exceeds principal with fee")
	ErrLoanNotActive              = errors.New("loan is not active")
	ErrLimitExceeded              = errors.New("loan limit exceeded")
	ErrPendingLoanExists          = errors.New("member already has a pending loan")
	ErrGuarantorRequirementNotMet = errors.New("guarantor requirement not met")
	ErrInvalidStatusTransition    = errors.New("invalid loan status transition")
	ErrCatchUpNotAllowed          = errors.New("catch-up allocation not allowed")
	ErrValidation                 = errors.New("validation failed")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLoanNotFound               = "LOAN_NOT_FOUND"
	ErrCodeMemberNotFound             = "MEMBER_NOT_FOUND"
	ErrCodeInvalidLoanParameters      = "INVALID_LOAN_PARAMETERS"
	ErrCodeInvalidPaymentAmount       = "INVALID_PAYMENT_AMOUNT"
	ErrCodeOverrideExceedsPrincipal   = "OVERRIDE_EXCEEDS_PRINCIPAL"
	ErrCodeLoanNotActive              = "LOAN_NOT_ACTIVE"
	ErrCodeLimitExceeded              = "LIMIT_EXCEEDED"
	ErrCodePendingLoanExists          = "PENDING_LOAN_EXISTS"
	ErrCodeGuarantorRequirementNotMet = "GUARANTOR_REQUIREMENT_NOT_MET"
	ErrCodeInvalidStatusTransition    = "INVALID_STATUS_TRANSITION"
	ErrCodeCatchUpNotAllowed          = "CATCH_UP_NOT_ALLOWED"
	ErrCodeValidation                 = "VALIDATION_ERROR"
	ErrCodeDatabaseError              = "DATABASE_ERROR"
	ErrCodeCacheError                 = "CACHE_ERROR"
	ErrCodeInternal                   = "INTERNAL_ERROR"
)

// Code returns the business error code carried by err, or "" when err is not a BusinessError.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Message returns the displayable message carried by err.
func Message(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Wrap common errors with business context
func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapMemberNotFound(memberID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMemberNotFound,
		fmt.Sprintf("Member with ID %s not found", memberID),
		ErrMemberNotFound,
	)
}

func WrapInvalidLoanParameters(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanParameters,
		fmt.Sprintf("Invalid loan parameters: %s", reason),
		ErrInvalidLoanParameters,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapOverrideExceedsPrincipal(principalPaid, principalWithFee string) *BusinessError {
	return NewBusinessError(
		ErrCodeOverrideExceedsPrincipal,
		fmt.Sprintf("Principal paid %s exceeds principal with fee %s", principalPaid, principalWithFee),
		ErrOverrideExceedsPrincipal,
	)
}

func WrapLoanNotActive(loanID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotActive,
		fmt.Sprintf("Loan with ID %s is %s and cannot receive payments", loanID, status),
		ErrLoanNotActive,
	)
}

func WrapLimitExceeded(requested, available string) *BusinessError {
	return NewBusinessError(
		ErrCodeLimitExceeded,
		fmt.Sprintf("Requested amount %s exceeds available loan limit %s", requested, available),
		ErrLimitExceeded,
	)
}

func WrapPendingLoanExists(memberID string) *BusinessError {
	return NewBusinessError(
		ErrCodePendingLoanExists,
		fmt.Sprintf("Member with ID %s already has a pending loan application", memberID),
		ErrPendingLoanExists,
	)
}

func WrapGuarantorRequirementNotMet(kind string, required, actual int) *BusinessError {
	return NewBusinessError(
		ErrCodeGuarantorRequirementNotMet,
		fmt.Sprintf("Exactly %d %s guarantor(s) required, got %d", required, kind, actual),
		ErrGuarantorRequirementNotMet,
	)
}

func WrapInvalidStatusTransition(from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStatusTransition,
		fmt.Sprintf("Loan cannot move from %s to %s", from, to),
		ErrInvalidStatusTransition,
	)
}

func WrapCatchUpNotAllowed(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCatchUpNotAllowed,
		fmt.Sprintf("Loan with ID %s already has recorded repayments", loanID),
		ErrCatchUpNotAllowed,
	)
}

func WrapValidation(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		err.Error(),
		ErrValidation,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
