package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/qsr-platform/talent-distribution/app/dto"
	businessflow "github.com/qsr-platform/talent-distribution/business_flow"
	"github.com/qsr-platform/talent-distribution/config"
)

// RoutingHandlerInterface defines the contract for visitor routing handlers
type RoutingHandlerInterface interface {
	RouteVisitor(c fiber.Ctx) error
}

// RoutingHandler handles the public visitor routing endpoint
type RoutingHandler struct {
	routingFlow businessflow.RoutingFlow
	distCfg     config.DistributionConfig
	secCfg      config.SecurityConfig
}

// NewRoutingHandler creates a new routing handler
func NewRoutingHandler(routingFlow businessflow.RoutingFlow, distCfg config.DistributionConfig, secCfg config.SecurityConfig) *RoutingHandler {
	return &RoutingHandler{
		routingFlow: routingFlow,
		distCfg:     distCfg,
		secCfg:      secCfg,
	}
}

// RouteVisitor decides which channel page the visitor should land on. The
// sticky bucket token travels in a cookie; the referrer comes from the
// Referer header with a query override for landing pages that capture it
// client-side.
func (h *RoutingHandler) RouteVisitor(c fiber.Ctx) error {
	req := &businessflow.RouteVisitorRequest{
		Referrer:     c.Query("referrer", c.Get("Referer")),
		BucketToken:  c.Cookies(h.distCfg.BucketCookieName, c.Query("bucket")),
		UTMSource:    queryPtr(c, "utm_source"),
		UTMMedium:    queryPtr(c, "utm_medium"),
		UTMCampaign:  queryPtr(c, "utm_campaign"),
		GClID:        queryPtr(c, "gclid"),
		FBClID:       queryPtr(c, "fbclid"),
		MSClkID:      queryPtr(c, "msclkid"),
		TTClID:       queryPtr(c, "ttclid"),
		Language:     queryPtr(c, "lang"),
		ScreenWidth:  queryIntPtr(c, "sw"),
		ScreenHeight: queryIntPtr(c, "sh"),
	}

	result, err := h.routingFlow.RouteVisitor(createRequestContext(c, "/api/v1/route"), req, clientMetadata(c))
	if err != nil {
		// Routing must not fail the visitor; this only happens when even the
		// fallback table is unusable, which is a deployment problem.
		log.Println("Visitor routing failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Routing failed", "ROUTING_FAILED", nil)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.distCfg.BucketCookieName,
		Value:    result.BucketToken,
		MaxAge:   int(h.distCfg.BucketCookieTTL.Seconds()),
		Secure:   h.secCfg.CookieSecure,
		HTTPOnly: h.secCfg.CookieHTTPOnly,
		SameSite: h.secCfg.CookieSameSite,
	})

	return successResponse(c, fiber.StatusOK, "Visitor routed", dto.RouteVisitorResponse{
		ChannelSlug:  result.ChannelSlug,
		BucketToken:  result.BucketToken,
		IsPaidSearch: result.IsPaidSearch,
	})
}

func queryPtr(c fiber.Ctx, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}

func queryIntPtr(c fiber.Ctx, key string) *int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return &n
		}
	}
	return nil
}
