// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"log"
)

// NotificationService informs downstream consumers about candidate lifecycle
// events. Callers treat delivery as best-effort; a committed transition is
// never rolled back over a failed notification.
type NotificationService interface {
	NotifyCandidateBooked(ctx context.Context, candidateID uint, actorID uint) error
	NotifyCandidateHired(ctx context.Context, candidateID uint, actorID uint) error
}

// NotificationServiceImpl implements NotificationService
type NotificationServiceImpl struct {
	provider NotificationProvider
}

// NotificationProvider is the delivery backend (webhook, queue, ...)
type NotificationProvider interface {
	Deliver(ctx context.Context, event string, payload map[string]any) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(provider NotificationProvider) NotificationService {
	return &NotificationServiceImpl{provider: provider}
}

func (s *NotificationServiceImpl) NotifyCandidateBooked(ctx context.Context, candidateID uint, actorID uint) error {
	return s.deliver(ctx, "candidate.booked", candidateID, actorID)
}

func (s *NotificationServiceImpl) NotifyCandidateHired(ctx context.Context, candidateID uint, actorID uint) error {
	return s.deliver(ctx, "candidate.hired", candidateID, actorID)
}

func (s *NotificationServiceImpl) deliver(ctx context.Context, event string, candidateID, actorID uint) error {
	if s.provider == nil {
		return nil
	}
	return s.provider.Deliver(ctx, event, map[string]any{
		"candidate_id": candidateID,
		"actor_id":     actorID,
	})
}

// MockNotificationProvider logs events instead of delivering them
type MockNotificationProvider struct{}

func NewMockNotificationProvider() NotificationProvider {
	return &MockNotificationProvider{}
}

func (p *MockNotificationProvider) Deliver(ctx context.Context, event string, payload map[string]any) error {
	log.Printf("notification %s: %v", event, payload)
	return nil
}
