// Package businessflow contains the core business logic for the lead and inventory distribution engine
package businessflow

import (
	"context"
	"encoding/json"

	"github.com/qsr-platform/talent-distribution/models"
	"github.com/qsr-platform/talent-distribution/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// buildActivityLog assembles an audit entry shared by all flows. The extra
// payload is marshaled into the jsonb metadata column; marshal failures drop
// the payload rather than the entry.
func buildActivityLog(ctx context.Context, actorID *uint, action, description string, success bool, errorMsg *string, extra any, metadata *ClientMetadata) *models.ActivityLog {
	entry := &models.ActivityLog{
		ActorID:      actorID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		ErrorMessage: errorMsg,
	}

	if metadata != nil {
		if metadata.IPAddress != "" {
			entry.IPAddress = utils.ToPtr(metadata.IPAddress)
		}
		if metadata.RequestID != "" {
			entry.RequestID = utils.ToPtr(metadata.RequestID)
		}
	}

	if entry.RequestID == nil {
		if requestID, ok := ctx.Value(utils.RequestIDKey).(string); ok && requestID != "" {
			entry.RequestID = &requestID
		}
	}

	if extra != nil {
		if bs, err := json.Marshal(extra); err == nil {
			entry.Metadata = bs
		}
	}

	return entry
}
