// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/qsr-platform/talent-distribution/app/dto"
	businessflow "github.com/qsr-platform/talent-distribution/business_flow"
	"github.com/qsr-platform/talent-distribution/utils"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

func validationErrorMessages(err error) []string {
	var messages []string
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			messages = append(messages, getValidationErrorMessage(fe))
		}
	} else {
		messages = append(messages, err.Error())
	}
	return messages
}

func errorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func successResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// businessErrorResponse maps the business error taxonomy onto HTTP statuses:
// validation 400, conflict 409, quota 422, not found 404, everything else
// 500 with a generic body.
func businessErrorResponse(c fiber.Ctx, err error, fallbackMessage string) error {
	var be *businessflow.BusinessError
	if errors.As(err, &be) {
		status := fiber.StatusInternalServerError
		message := be.Message
		switch be.Class {
		case businessflow.ClassValidation:
			status = fiber.StatusBadRequest
		case businessflow.ClassConflict:
			status = fiber.StatusConflict
		case businessflow.ClassQuotaExceeded:
			status = fiber.StatusUnprocessableEntity
		case businessflow.ClassNotFound:
			status = fiber.StatusNotFound
		default:
			message = fallbackMessage
		}
		return errorResponse(c, status, message, be.Code, nil)
	}
	return errorResponse(c, fiber.StatusInternalServerError, fallbackMessage, "INTERNAL_ERROR", nil)
}

// clientMetadata extracts the client information every flow audits
func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))
	return metadata
}

// operatorID reads the authenticated operator set by the auth middleware
func operatorID(c fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("operator_id").(uint)
	return id, ok
}

// createRequestContext creates a context with timeout and request-scoped values
func createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	_ = cancel

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)

	return ctx
}
