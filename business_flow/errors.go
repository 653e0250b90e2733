// Package businessflow contains the core business logic for the lead and inventory distribution engine
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Allocation and routing errors
	ErrEmptyChannelList  = errors.New("channel list is empty")
	ErrZeroTotalWeight   = errors.New("total weight is zero")
	ErrNegativeWeight    = errors.New("weight cannot be negative")
	ErrNegativeTotal     = errors.New("total to allocate cannot be negative")
	ErrNoEligibleChannel = errors.New("no eligible channel for this traffic type")

	// Assignment errors
	ErrEmptyBatch          = errors.New("candidate batch is empty")
	ErrChannelNotFound     = errors.New("channel not found")
	ErrChannelInactive     = errors.New("channel is inactive")
	ErrDailyLimitExceeded  = errors.New("channel daily limit would be exceeded")
	ErrTotalLimitExceeded  = errors.New("channel total limit would be exceeded")
	ErrAssignmentNotFound  = errors.New("no active assignment for candidate")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrNoDistributableWork = errors.New("no channels enabled for auto distribution")

	// Lifecycle errors
	ErrDuplicateBooking  = errors.New("candidate already has a booking")
	ErrDuplicateContract = errors.New("candidate already has a contract")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrContractNotFound  = errors.New("contract not found")
	ErrIdentityRequired  = errors.New("identity number is required")
)

// ErrorClass groups business errors into the taxonomy the API surface maps
// onto HTTP statuses: validation, conflict, quota_exceeded, not_found.
type ErrorClass string

const (
	ClassValidation    ErrorClass = "validation"
	ClassConflict      ErrorClass = "conflict"
	ClassQuotaExceeded ErrorClass = "quota_exceeded"
	ClassNotFound      ErrorClass = "not_found"
	ClassInternal      ErrorClass = "internal"
)

// BusinessError carries the violated-invariant code verbatim so operator UIs
// can explain exactly which precondition failed.
type BusinessError struct {
	Code    string
	Message string
	Class   ErrorClass
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewValidationError(code, message string, err error) *BusinessError {
	return &BusinessError{Code: code, Message: message, Class: ClassValidation, Err: err}
}

func NewConflictError(code, message string, err error) *BusinessError {
	return &BusinessError{Code: code, Message: message, Class: ClassConflict, Err: err}
}

func NewQuotaExceededError(code, message string, err error) *BusinessError {
	return &BusinessError{Code: code, Message: message, Class: ClassQuotaExceeded, Err: err}
}

func NewNotFoundError(code, message string, err error) *BusinessError {
	return &BusinessError{Code: code, Message: message, Class: ClassNotFound, Err: err}
}

func NewInternalError(code, message string, err error) *BusinessError {
	return &BusinessError{Code: code, Message: message, Class: ClassInternal, Err: err}
}

func classOf(err error) ErrorClass {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Class
	}
	return ClassInternal
}

func IsValidationError(err error) bool {
	return classOf(err) == ClassValidation
}

func IsConflictError(err error) bool {
	return classOf(err) == ClassConflict
}

func IsQuotaExceededError(err error) bool {
	return classOf(err) == ClassQuotaExceeded
}

func IsNotFoundError(err error) bool {
	return classOf(err) == ClassNotFound
}

func IsNoEligibleChannel(err error) bool {
	return errors.Is(err, ErrNoEligibleChannel)
}

func IsChannelInactive(err error) bool {
	return errors.Is(err, ErrChannelInactive)
}

func IsDailyLimitExceeded(err error) bool {
	return errors.Is(err, ErrDailyLimitExceeded)
}

func IsTotalLimitExceeded(err error) bool {
	return errors.Is(err, ErrTotalLimitExceeded)
}

func IsDuplicateBooking(err error) bool {
	return errors.Is(err, ErrDuplicateBooking)
}

func IsDuplicateContract(err error) bool {
	return errors.Is(err, ErrDuplicateContract)
}

func IsBookingNotFound(err error) bool {
	return errors.Is(err, ErrBookingNotFound)
}

func IsContractNotFound(err error) bool {
	return errors.Is(err, ErrContractNotFound)
}

func IsCandidateNotFound(err error) bool {
	return errors.Is(err, ErrCandidateNotFound)
}

func IsAssignmentNotFound(err error) bool {
	return errors.Is(err, ErrAssignmentNotFound)
}
