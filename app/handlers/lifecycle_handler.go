package handlers

import (
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/qsr-platform/talent-distribution/app/dto"
	businessflow "github.com/qsr-platform/talent-distribution/business_flow"
)

// LifecycleHandlerInterface defines the contract for candidate lifecycle handlers
type LifecycleHandlerInterface interface {
	BookCandidate(c fiber.Ctx) error
	HireCandidate(c fiber.Ctx) error
	CancelContract(c fiber.Ctx) error
}

// LifecycleHandler handles candidate lifecycle transitions
type LifecycleHandler struct {
	lifecycleFlow businessflow.LifecycleFlow
	validator     *validator.Validate
}

// NewLifecycleHandler creates a new lifecycle handler
func NewLifecycleHandler(lifecycleFlow businessflow.LifecycleFlow) *LifecycleHandler {
	return &LifecycleHandler{
		lifecycleFlow: lifecycleFlow,
		validator:     validator.New(),
	}
}

// BookCandidate reserves a candidate with an identity number
func (h *LifecycleHandler) BookCandidate(c fiber.Ctx) error {
	candidateID, ok := paramCandidateID(c)
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid candidate id", "INVALID_CANDIDATE_ID", nil)
	}

	var req dto.BookCandidateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	actorID, ok := operatorID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Operator not found in context", "MISSING_OPERATOR_ID", nil)
	}

	booking, err := h.lifecycleFlow.TransitionToBooked(
		createRequestContext(c, "/api/v1/candidates/"+c.Params("id")+"/book"),
		candidateID, req.IdentityNumber, req.Notes, actorID, clientMetadata(c))
	if err != nil {
		log.Println("Candidate booking failed", err)
		return businessErrorResponse(c, err, "Candidate booking failed")
	}

	return successResponse(c, fiber.StatusCreated, "Candidate booked", dto.BookCandidateResponse{
		BookingID:   booking.ID,
		CandidateID: booking.CandidateID,
		BookedAt:    booking.BookedAt,
	})
}

// HireCandidate finalizes a candidate into a contract, consuming any booking
func (h *LifecycleHandler) HireCandidate(c fiber.Ctx) error {
	candidateID, ok := paramCandidateID(c)
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid candidate id", "INVALID_CANDIDATE_ID", nil)
	}

	var req dto.HireCandidateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	actorID, ok := operatorID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Operator not found in context", "MISSING_OPERATOR_ID", nil)
	}

	contract, err := h.lifecycleFlow.TransitionToHired(
		createRequestContext(c, "/api/v1/candidates/"+c.Params("id")+"/hire"),
		candidateID, req.IdentityNumber, req.ContractStartDate, actorID, clientMetadata(c))
	if err != nil {
		log.Println("Candidate hire failed", err)
		return businessErrorResponse(c, err, "Candidate hire failed")
	}

	return successResponse(c, fiber.StatusCreated, "Candidate hired", dto.HireCandidateResponse{
		ContractID:        contract.ID,
		CandidateID:       contract.CandidateID,
		ContractStartDate: contract.ContractStartDate,
	})
}

// CancelContract tears down a contract and returns the candidate to the pool
func (h *LifecycleHandler) CancelContract(c fiber.Ctx) error {
	candidateID, ok := paramCandidateID(c)
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid candidate id", "INVALID_CANDIDATE_ID", nil)
	}

	actorID, ok := operatorID(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Operator not found in context", "MISSING_OPERATOR_ID", nil)
	}

	if err := h.lifecycleFlow.CancelContract(
		createRequestContext(c, "/api/v1/candidates/"+c.Params("id")+"/contract/cancel"),
		candidateID, actorID, clientMetadata(c)); err != nil {
		log.Println("Contract cancellation failed", err)
		return businessErrorResponse(c, err, "Contract cancellation failed")
	}

	return successResponse(c, fiber.StatusOK, "Contract cancelled", nil)
}

func paramCandidateID(c fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
