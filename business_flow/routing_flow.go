package businessflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/qsr-platform/talent-distribution/config"
	"github.com/qsr-platform/talent-distribution/models"
	"github.com/qsr-platform/talent-distribution/repository"
	"github.com/redis/go-redis/v9"
)

const rulesCacheKey = "distribution:rules:v1"

// RouteVisitorRequest carries everything the landing page knows about the
// visitor. All fields except the referrer and bucket token are tracking-only.
type RouteVisitorRequest struct {
	Referrer    string
	BucketToken string

	UTMSource    *string
	UTMMedium    *string
	UTMCampaign  *string
	GClID        *string
	FBClID       *string
	MSClkID      *string
	TTClID       *string
	Language     *string
	ScreenWidth  *int
	ScreenHeight *int
}

// RouteVisitorResult is the routing decision. BucketToken must be handed back
// to the visitor so the next visit lands on the same channel.
type RouteVisitorResult struct {
	ChannelID    uint
	ChannelSlug  string
	BucketToken  string
	IsPaidSearch bool
	UsedFallback bool
}

// RoutingFlow routes anonymous visitors to sales channels. It is the hottest
// public path of the engine and must answer even when the database or the
// rule cache is down.
type RoutingFlow interface {
	RouteVisitor(ctx context.Context, req *RouteVisitorRequest, metadata *ClientMetadata) (*RouteVisitorResult, error)
}

type RoutingFlowImpl struct {
	channelRepo repository.ChannelRepository
	visitRepo   repository.VisitRepository
	classifier  TrafficClassifier
	buckets     StickyBucketAssigner
	rc          *redis.Client
	distCfg     config.DistributionConfig
}

func NewRoutingFlow(
	channelRepo repository.ChannelRepository,
	visitRepo repository.VisitRepository,
	classifier TrafficClassifier,
	buckets StickyBucketAssigner,
	rc *redis.Client,
	distCfg config.DistributionConfig,
) RoutingFlow {
	return &RoutingFlowImpl{
		channelRepo: channelRepo,
		visitRepo:   visitRepo,
		classifier:  classifier,
		buckets:     buckets,
		rc:          rc,
		distCfg:     distCfg,
	}
}

func (f *RoutingFlowImpl) RouteVisitor(ctx context.Context, req *RouteVisitorRequest, metadata *ClientMetadata) (*RouteVisitorResult, error) {
	bucket := f.buckets.AssignBucket(req.BucketToken)
	isPaid := f.classifier.IsPaidSearch(req.Referrer)

	channels := f.loadActiveChannels(ctx)
	table, slugs := buildWeightTable(channels, isPaid)

	result := &RouteVisitorResult{
		BucketToken:  bucket.Token,
		IsPaidSearch: isPaid,
	}

	channelID, err := SelectChannel(table, bucket.Value)
	if err != nil {
		// No usable rule table. Fall back to a uniform split over the
		// configured default slugs so the visitor always gets a page.
		table, slugs = defaultWeightTable(f.distCfg.DefaultChannels)
		channelID, err = SelectChannel(table, bucket.Value)
		if err != nil {
			return nil, err
		}
		result.UsedFallback = true
		routingFallbacksTotal.Inc()
	}

	result.ChannelID = channelID
	result.ChannelSlug = slugs[channelID]

	source := "other"
	if isPaid {
		source = "google"
	}
	visitorsRoutedTotal.WithLabelValues(result.ChannelSlug, source).Inc()

	if !result.UsedFallback {
		f.trackVisit(ctx, channelID, isPaid, req, metadata)
	}

	return result, nil
}

// loadActiveChannels returns the active rule table, served from redis when
// fresh enough. Any cache or database failure yields nil and the caller falls
// back to the default channel list.
func (f *RoutingFlowImpl) loadActiveChannels(ctx context.Context) []*models.Channel {
	if f.rc != nil {
		if bs, err := f.rc.Get(ctx, rulesCacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached []*models.Channel
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached
			}
		}
	}

	channels, err := f.channelRepo.ListActive(ctx)
	if err != nil {
		return nil
	}

	if f.rc != nil && len(channels) > 0 {
		if bs, err := json.Marshal(channels); err == nil {
			_ = f.rc.Set(ctx, rulesCacheKey, bs, f.distCfg.RulesCacheTTL).Err()
		}
	}

	return channels
}

// buildWeightTable projects active channels onto the weight column for the
// classified traffic source, dropping zero-weight entries. The returned slug
// map resolves the selected channel ID back to its slug.
func buildWeightTable(channels []*models.Channel, isPaid bool) ([]ChannelWeight, map[uint]string) {
	table := make([]ChannelWeight, 0, len(channels))
	slugs := make(map[uint]string, len(channels))
	for _, ch := range channels {
		if !ch.IsActive {
			continue
		}
		w := ch.OtherWeight
		if isPaid {
			w = ch.GoogleWeight
		}
		if w <= 0 {
			continue
		}
		table = append(table, ChannelWeight{ChannelID: ch.ID, Weight: w})
		slugs[ch.ID] = ch.Slug
	}
	return table, slugs
}

// defaultWeightTable builds a uniform table over configured slugs. Synthetic
// IDs index into the slug list; they never reach the database.
func defaultWeightTable(defaultSlugs []string) ([]ChannelWeight, map[uint]string) {
	table := make([]ChannelWeight, 0, len(defaultSlugs))
	slugs := make(map[uint]string, len(defaultSlugs))
	for i, slug := range defaultSlugs {
		id := uint(i + 1)
		table = append(table, ChannelWeight{ChannelID: id, Weight: 1})
		slugs[id] = slug
	}
	return table, slugs
}

// trackVisit writes the tracking row best-effort. A failed insert must never
// surface to the visitor.
func (f *RoutingFlowImpl) trackVisit(ctx context.Context, channelID uint, isPaid bool, req *RouteVisitorRequest, metadata *ClientMetadata) {
	visit := &models.Visit{
		UUID:         uuid.New(),
		ChannelID:    channelID,
		IsPaidSearch: isPaid,
		UTMSource:    req.UTMSource,
		UTMMedium:    req.UTMMedium,
		UTMCampaign:  req.UTMCampaign,
		GClID:        req.GClID,
		FBClID:       req.FBClID,
		MSClkID:      req.MSClkID,
		TTClID:       req.TTClID,
		Language:     req.Language,
		ScreenWidth:  req.ScreenWidth,
		ScreenHeight: req.ScreenHeight,
		CreatedAt:    time.Now().UTC(),
	}
	if req.Referrer != "" {
		ref := req.Referrer
		visit.Referrer = &ref
	}
	if metadata != nil {
		if metadata.UserAgent != "" {
			ua := metadata.UserAgent
			visit.UserAgent = &ua
		}
		if metadata.IPAddress != "" {
			ip := metadata.IPAddress
			visit.IPAddress = &ip
		}
	}
	_ = f.visitRepo.Save(ctx, visit)
}
