package businessflow

import (
	"context"
	"testing"

	"github.com/qsr-platform/talent-distribution/config"
	"github.com/qsr-platform/talent-distribution/models"
	"github.com/qsr-platform/talent-distribution/repository"
	testingutil "github.com/qsr-platform/talent-distribution/testing"
	"github.com/qsr-platform/talent-distribution/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoutingFlowForTest(testDB *testingutil.TestDB) RoutingFlow {
	return NewRoutingFlow(
		repository.NewChannelRepository(testDB.DB),
		repository.NewVisitRepository(testDB.DB),
		NewTrafficClassifier(nil),
		NewStickyBucketAssigner(),
		nil, // routing must work without a cache
		config.DistributionConfig{DefaultChannels: []string{"apply", "apply-2", "apply-3"}},
	)
}

func TestRouteVisitor(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newRoutingFlowForTest(testDB)
		metadata := NewClientMetadata("203.0.113.7", "Mozilla/5.0")

		t.Run("StickyTokenRoutesToSameChannel", func(t *testing.T) {
			_, err := fixtures.CreateTestChannel("sticky-a")
			require.NoError(t, err)
			_, err = fixtures.CreateTestChannel("sticky-b")
			require.NoError(t, err)

			first, err := flow.RouteVisitor(context.Background(), &RouteVisitorRequest{
				Referrer:    "https://www.facebook.com/",
				BucketToken: "0.37",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "0.37", first.BucketToken)
			assert.False(t, first.UsedFallback)

			second, err := flow.RouteVisitor(context.Background(), &RouteVisitorRequest{
				Referrer:    "https://www.facebook.com/",
				BucketToken: first.BucketToken,
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, first.ChannelSlug, second.ChannelSlug)
		})

		require.NoError(t, testDB.ClearAllTables())

		t.Run("TrafficSourcePicksWeightColumn", func(t *testing.T) {
			_, err := fixtures.CreateTestChannel("paid-only", testingutil.WithWeights(100, 0))
			require.NoError(t, err)
			_, err = fixtures.CreateTestChannel("organic-only", testingutil.WithWeights(0, 100))
			require.NoError(t, err)

			paid, err := flow.RouteVisitor(context.Background(), &RouteVisitorRequest{
				Referrer:    "https://www.google.com/",
				BucketToken: "0.5",
			}, metadata)
			require.NoError(t, err)
			assert.True(t, paid.IsPaidSearch)
			assert.Equal(t, "paid-only", paid.ChannelSlug)

			organic, err := flow.RouteVisitor(context.Background(), &RouteVisitorRequest{
				Referrer:    "https://www.facebook.com/",
				BucketToken: "0.5",
			}, metadata)
			require.NoError(t, err)
			assert.False(t, organic.IsPaidSearch)
			assert.Equal(t, "organic-only", organic.ChannelSlug)
		})

		require.NoError(t, testDB.ClearAllTables())

		t.Run("InactiveChannelNeverSelected", func(t *testing.T) {
			_, err := fixtures.CreateTestChannel("live", testingutil.WithWeights(1, 1))
			require.NoError(t, err)
			_, err = fixtures.CreateTestChannel("dead", testingutil.WithWeights(1000, 1000), testingutil.WithInactive())
			require.NoError(t, err)

			for _, token := range []string{"0", "0.25", "0.5", "0.75", "0.999"} {
				result, err := flow.RouteVisitor(context.Background(), &RouteVisitorRequest{
					BucketToken: token,
				}, metadata)
				require.NoError(t, err)
				assert.Equal(t, "live", result.ChannelSlug)
			}
		})

		require.NoError(t, testDB.ClearAllTables())

		t.Run("FallbackWhenNoUsableRules", func(t *testing.T) {
			result, err := flow.RouteVisitor(context.Background(), &RouteVisitorRequest{
				Referrer:    "https://www.google.com/",
				BucketToken: "0.1",
			}, metadata)
			require.NoError(t, err)
			assert.True(t, result.UsedFallback)
			assert.Contains(t, []string{"apply", "apply-2", "apply-3"}, result.ChannelSlug)

			// Fallback routing writes no tracking rows
			visitRepo := repository.NewVisitRepository(testDB.DB)
			visits, err := visitRepo.ByFilter(context.Background(), models.VisitFilter{}, "", 0, 0)
			require.NoError(t, err)
			assert.Empty(t, visits)
		})

		t.Run("MalformedTokenGetsFreshBucket", func(t *testing.T) {
			result, err := flow.RouteVisitor(context.Background(), &RouteVisitorRequest{
				BucketToken: "not-a-float",
			}, metadata)
			require.NoError(t, err)
			assert.NotEqual(t, "not-a-float", result.BucketToken)
			assert.NotEmpty(t, result.BucketToken)
		})

		require.NoError(t, testDB.ClearAllTables())

		t.Run("VisitTrackedWithAttribution", func(t *testing.T) {
			channel, err := fixtures.CreateTestChannel("tracked")
			require.NoError(t, err)

			result, err := flow.RouteVisitor(context.Background(), &RouteVisitorRequest{
				Referrer:    "https://www.google.com/search?q=jobs&gclid=abc123",
				BucketToken: "0.5",
				UTMSource:   utils.ToPtr("google"),
				UTMCampaign: utils.ToPtr("august-hiring"),
				GClID:       utils.ToPtr("abc123"),
				Language:    utils.ToPtr("en-US"),
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "tracked", result.ChannelSlug)

			visitRepo := repository.NewVisitRepository(testDB.DB)
			visits, err := visitRepo.ByFilter(context.Background(), models.VisitFilter{
				ChannelID: &channel.ID,
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, visits, 1)

			visit := visits[0]
			assert.True(t, visit.IsPaidSearch)
			require.NotNil(t, visit.UTMSource)
			assert.Equal(t, "google", *visit.UTMSource)
			require.NotNil(t, visit.GClID)
			assert.Equal(t, "abc123", *visit.GClID)
			require.NotNil(t, visit.UserAgent)
			assert.Equal(t, "Mozilla/5.0", *visit.UserAgent)
			require.NotNil(t, visit.IPAddress)
			assert.Equal(t, "203.0.113.7", *visit.IPAddress)
		})

		return nil
	})
	require.NoError(t, err)
}
