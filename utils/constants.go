package utils

import (
	"time"
)

// Context keys for request-scoped metadata propagated into business flows
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
)

// Token time constants
const (
	// AccessTokenTTL is the time-to-live for operator access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Distribution constants
const (
	// BucketTokenTTL is the nominal validity of a visitor bucket token; the
	// cookie store enforces it, the engine only documents it.
	BucketTokenTTL = 7 * 24 * time.Hour

	// SweepActorID marks assignment removals performed by the sweep entry
	// point rather than a human operator.
	SweepActorID uint = 0
)
