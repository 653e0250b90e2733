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

func newChannelRuleFlowForTest(testDB *testingutil.TestDB) ChannelRuleFlow {
	return NewChannelRuleFlow(
		testDB.DB,
		repository.NewChannelRepository(testDB.DB),
		repository.NewActivityLogRepository(testDB.DB),
		nil,
	)
}

func TestListRules(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newChannelRuleFlowForTest(testDB)

		_, err := fixtures.CreateTestChannel("low", testingutil.WithPriority(1))
		require.NoError(t, err)
		_, err = fixtures.CreateTestChannel("high", testingutil.WithPriority(10))
		require.NoError(t, err)
		_, err = fixtures.CreateTestChannel("off", testingutil.WithInactive())
		require.NoError(t, err)

		rules, err := flow.ListRules(context.Background())
		require.NoError(t, err)
		require.Len(t, rules, 3)

		// Ordered by priority, inactive channels included
		assert.Equal(t, "high", rules[0].Slug)
		assert.Equal(t, "low", rules[1].Slug)
		assert.Equal(t, "off", rules[2].Slug)

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateRule(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newChannelRuleFlowForTest(testDB)
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("PartialUpdateLeavesOtherFieldsAlone", func(t *testing.T) {
			channel, err := fixtures.CreateTestChannel("tune-me",
				testingutil.WithWeights(50, 50), testingutil.WithDailyLimit(10))
			require.NoError(t, err)

			updated, err := flow.UpdateRule(context.Background(), channel.ID, &ChannelRuleUpdate{
				GoogleWeight: utils.ToPtr(80.0),
			}, testOperatorID, metadata)
			require.NoError(t, err)

			assert.Equal(t, 80.0, updated.GoogleWeight)
			assert.Equal(t, 50.0, updated.OtherWeight)
			require.NotNil(t, updated.DailyLimit)
			assert.Equal(t, 10, *updated.DailyLimit)
			assert.True(t, updated.IsActive)
		})

		t.Run("ClearFlagsResetLimits", func(t *testing.T) {
			channel, err := fixtures.CreateTestChannel("uncap-me",
				testingutil.WithDailyLimit(5), testingutil.WithTotalLimit(100))
			require.NoError(t, err)

			updated, err := flow.UpdateRule(context.Background(), channel.ID, &ChannelRuleUpdate{
				ClearDailyLimit: true,
				ClearTotalLimit: true,
			}, testOperatorID, metadata)
			require.NoError(t, err)
			assert.Nil(t, updated.DailyLimit)
			assert.Nil(t, updated.TotalLimit)
		})

		t.Run("DeactivationPersists", func(t *testing.T) {
			channel, err := fixtures.CreateTestChannel("pause-me")
			require.NoError(t, err)

			updated, err := flow.UpdateRule(context.Background(), channel.ID, &ChannelRuleUpdate{
				IsActive: utils.ToPtr(false),
			}, testOperatorID, metadata)
			require.NoError(t, err)
			assert.False(t, updated.IsActive)

			channelRepo := repository.NewChannelRepository(testDB.DB)
			reloaded, err := channelRepo.ByID(context.Background(), channel.ID)
			require.NoError(t, err)
			assert.False(t, reloaded.IsActive)
		})

		t.Run("NegativeWeightRejected", func(t *testing.T) {
			channel, err := fixtures.CreateTestChannel("strict")
			require.NoError(t, err)

			_, err = flow.UpdateRule(context.Background(), channel.ID, &ChannelRuleUpdate{
				GoogleWeight: utils.ToPtr(-1.0),
			}, testOperatorID, metadata)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})

		t.Run("UnknownChannelIsNotFound", func(t *testing.T) {
			_, err := flow.UpdateRule(context.Background(), 999999, &ChannelRuleUpdate{
				GoogleWeight: utils.ToPtr(10.0),
			}, testOperatorID, metadata)
			require.Error(t, err)
			assert.True(t, IsNotFoundError(err))
		})

		t.Run("UpdateIsAudited", func(t *testing.T) {
			channel, err := fixtures.CreateTestChannel("audited")
			require.NoError(t, err)

			_, err = flow.UpdateRule(context.Background(), channel.ID, &ChannelRuleUpdate{
				Priority: utils.ToPtr(7),
			}, testOperatorID, metadata)
			require.NoError(t, err)

			activityRepo := repository.NewActivityLogRepository(testDB.DB)
			logs, err := activityRepo.ByFilter(context.Background(), models.ActivityLogFilter{
				Action: utils.ToPtr(models.ActivityActionChannelRuleUpdated),
			}, "", 0, 0)
			require.NoError(t, err)
			assert.NotEmpty(t, logs)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestChannelStats(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		statsFlow := NewStatsFlow(
			repository.NewChannelRepository(testDB.DB),
			repository.NewAssignmentRepository(testDB.DB),
			repository.NewBookingRepository(testDB.DB),
			repository.NewContractRepository(testDB.DB),
			repository.NewVisitRepository(testDB.DB),
			repository.NewChannelStatRepository(testDB.DB),
		)
		assignFlow := newAssignmentFlowForTest(testDB, testDistConfig())
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		channel, err := fixtures.CreateTestChannel("dashboard")
		require.NoError(t, err)
		idle, err := fixtures.CreateTestChannel("idle-board", testingutil.WithInactive())
		require.NoError(t, err)

		candidates, err := fixtures.CreateTestCandidates(3)
		require.NoError(t, err)
		_, err = assignFlow.AssignBatch(context.Background(),
			[]uint{candidates[0].ID, candidates[1].ID, candidates[2].ID},
			channel.ID, testOperatorID, nil, metadata)
		require.NoError(t, err)

		_, err = fixtures.CreateTestBooking(candidates[0].ID, "STATS-ID", testOperatorID)
		require.NoError(t, err)
		_, err = fixtures.CreateTestVisit(channel.ID, true)
		require.NoError(t, err)
		_, err = fixtures.CreateTestVisit(channel.ID, false)
		require.NoError(t, err)

		t.Run("AggregatesPerChannel", func(t *testing.T) {
			row, err := statsFlow.ChannelStatsByID(context.Background(), channel.ID)
			require.NoError(t, err)

			assert.Equal(t, "dashboard", row.Slug)
			assert.Equal(t, int64(3), row.ActiveAssignments)
			assert.Equal(t, int64(3), row.AssignedToday)
			assert.Equal(t, int64(3), row.TotalAssigned)
			assert.Equal(t, int64(1), row.Bookings)
			assert.Equal(t, int64(0), row.Contracts)
			assert.Equal(t, int64(2), row.VisitsToday)
		})

		t.Run("ActiveFilterHidesInactiveChannels", func(t *testing.T) {
			all, err := statsFlow.ChannelStats(context.Background(), false)
			require.NoError(t, err)
			assert.Len(t, all, 2)

			active, err := statsFlow.ChannelStats(context.Background(), true)
			require.NoError(t, err)
			require.Len(t, active, 1)
			assert.Equal(t, "dashboard", active[0].Slug)
			assert.NotEqual(t, idle.Slug, active[0].Slug)
		})

		t.Run("UnknownChannelIsNotFound", func(t *testing.T) {
			_, err := statsFlow.ChannelStatsByID(context.Background(), 999999)
			require.Error(t, err)
			assert.True(t, IsNotFoundError(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func testDistConfig() config.DistributionConfig {
	return config.DistributionConfig{}
}
