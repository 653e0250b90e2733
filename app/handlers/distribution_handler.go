package handlers

import (
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/qsr-platform/talent-distribution/app/dto"
	businessflow "github.com/qsr-platform/talent-distribution/business_flow"
	"github.com/qsr-platform/talent-distribution/models"
)

// DistributionHandlerInterface defines the contract for distribution handlers
type DistributionHandlerInterface interface {
	AssignBatch(c fiber.Ctx) error
	AutoDistribute(c fiber.Ctx) error
	RemoveAssignment(c fiber.Ctx) error
	Sweep(c fiber.Ctx) error
	ListRules(c fiber.Ctx) error
	UpdateRule(c fiber.Ctx) error
	Stats(c fiber.Ctx) error
}

// DistributionHandler handles assignment and rule administration requests
type DistributionHandler struct {
	assignmentFlow businessflow.AssignmentFlow
	ruleFlow       businessflow.ChannelRuleFlow
	statsFlow      businessflow.StatsFlow
	validator      *validator.Validate
}

// NewDistributionHandler creates a new distribution handler
func NewDistributionHandler(
	assignmentFlow businessflow.AssignmentFlow,
	ruleFlow businessflow.ChannelRuleFlow,
	statsFlow businessflow.StatsFlow,
) *DistributionHandler {
	return &DistributionHandler{
		assignmentFlow: assignmentFlow,
		ruleFlow:       ruleFlow,
		statsFlow:      statsFlow,
		validator:      validator.New(),
	}
}

// AssignBatch assigns a batch of candidates to one channel. The whole batch
// is rejected when the channel's limits cannot absorb it.
func (h *DistributionHandler) AssignBatch(c fiber.Ctx) error {
	var req dto.AssignBatchRequest
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

	assigned, err := h.assignmentFlow.AssignBatch(
		createRequestContext(c, "/api/v1/distribution/assign"),
		req.CandidateIDs, req.ChannelID, actorID, req.Notes, clientMetadata(c))
	if err != nil {
		log.Println("Batch assignment failed", err)
		return businessErrorResponse(c, err, "Batch assignment failed")
	}

	return successResponse(c, fiber.StatusOK, "Batch assigned", dto.AssignBatchResponse{
		AssignedCount: assigned,
		ChannelID:     req.ChannelID,
	})
}

// AutoDistribute spreads unassigned candidates across auto-distribution
// channels proportionally to their weights.
func (h *DistributionHandler) AutoDistribute(c fiber.Ctx) error {
	var req dto.AutoDistributeRequest
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

	distributed, err := h.assignmentFlow.AutoDistribute(
		createRequestContext(c, "/api/v1/distribution/auto"),
		req.Total, actorID, clientMetadata(c))
	if err != nil {
		log.Println("Auto distribution failed", err)
		return businessErrorResponse(c, err, "Auto distribution failed")
	}

	total := 0
	for _, n := range distributed {
		total += n
	}
	return successResponse(c, fiber.StatusOK, "Candidates distributed", dto.AutoDistributeResponse{
		Distributed:   distributed,
		AssignedTotal: total,
	})
}

// RemoveAssignment releases a candidate's active assignment
func (h *DistributionHandler) RemoveAssignment(c fiber.Ctx) error {
	var req dto.RemoveAssignmentRequest
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

	if err := h.assignmentFlow.RemoveAssignment(
		createRequestContext(c, "/api/v1/distribution/remove"),
		req.CandidateID, actorID, clientMetadata(c)); err != nil {
		log.Println("Assignment removal failed", err)
		return businessErrorResponse(c, err, "Assignment removal failed")
	}

	return successResponse(c, fiber.StatusOK, "Assignment removed", nil)
}

// Sweep releases assignments older than the configured TTL
func (h *DistributionHandler) Sweep(c fiber.Ctx) error {
	if _, ok := operatorID(c); !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Operator not found in context", "MISSING_OPERATOR_ID", nil)
	}

	swept, err := h.assignmentFlow.SweepExpiredAssignments(createRequestContext(c, "/api/v1/distribution/sweep"))
	if err != nil {
		log.Println("Assignment sweep failed", err)
		return businessErrorResponse(c, err, "Assignment sweep failed")
	}

	return successResponse(c, fiber.StatusOK, "Sweep completed", dto.SweepResponse{SweptCount: swept})
}

// ListRules returns every channel with its distribution rule
func (h *DistributionHandler) ListRules(c fiber.Ctx) error {
	rules, err := h.ruleFlow.ListRules(createRequestContext(c, "/api/v1/distribution/rules"))
	if err != nil {
		log.Println("Rule listing failed", err)
		return businessErrorResponse(c, err, "Rule listing failed")
	}

	out := make([]dto.ChannelRuleDTO, 0, len(rules))
	for _, ch := range rules {
		out = append(out, toChannelRuleDTO(ch))
	}
	return successResponse(c, fiber.StatusOK, "Rules listed", out)
}

// UpdateRule updates one channel's distribution rule
func (h *DistributionHandler) UpdateRule(c fiber.Ctx) error {
	channelID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || channelID == 0 {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid channel id", "INVALID_CHANNEL_ID", nil)
	}

	var req dto.UpdateChannelRuleRequest
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

	update := &businessflow.ChannelRuleUpdate{
		Name:            req.Name,
		GoogleWeight:    req.GoogleWeight,
		OtherWeight:     req.OtherWeight,
		IsActive:        req.IsActive,
		AutoDistribute:  req.AutoDistribute,
		DailyLimit:      req.DailyLimit,
		ClearDailyLimit: req.ClearDailyLimit,
		TotalLimit:      req.TotalLimit,
		ClearTotalLimit: req.ClearTotalLimit,
		Priority:        req.Priority,
	}

	channel, err := h.ruleFlow.UpdateRule(
		createRequestContext(c, "/api/v1/distribution/rules/"+c.Params("id")),
		uint(channelID), update, actorID, clientMetadata(c))
	if err != nil {
		log.Println("Rule update failed", err)
		return businessErrorResponse(c, err, "Rule update failed")
	}

	return successResponse(c, fiber.StatusOK, "Rule updated", toChannelRuleDTO(channel))
}

// Stats returns the per-channel distribution dashboard figures
func (h *DistributionHandler) Stats(c fiber.Ctx) error {
	onlyActive := c.Query("active") == "true"

	rows, err := h.statsFlow.ChannelStats(createRequestContext(c, "/api/v1/distribution/stats"), onlyActive)
	if err != nil {
		log.Println("Stats aggregation failed", err)
		return businessErrorResponse(c, err, "Stats aggregation failed")
	}

	return successResponse(c, fiber.StatusOK, "Stats aggregated", rows)
}

func toChannelRuleDTO(ch *models.Channel) dto.ChannelRuleDTO {
	return dto.ChannelRuleDTO{
		ID:             ch.ID,
		Slug:           ch.Slug,
		Name:           ch.Name,
		GoogleWeight:   ch.GoogleWeight,
		OtherWeight:    ch.OtherWeight,
		IsActive:       ch.IsActive,
		AutoDistribute: ch.AutoDistribute,
		DailyLimit:     ch.DailyLimit,
		TotalLimit:     ch.TotalLimit,
		Priority:       ch.Priority,
		Nationality:    ch.Nationality,
		Position:       ch.Position,
	}
}
