package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/qsr-platform/talent-distribution/config"
	"github.com/qsr-platform/talent-distribution/models"
	"github.com/qsr-platform/talent-distribution/repository"
	testingutil "github.com/qsr-platform/talent-distribution/testing"
	"github.com/qsr-platform/talent-distribution/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOperatorID uint = 42

func newAssignmentFlowForTest(testDB *testingutil.TestDB, distCfg config.DistributionConfig) AssignmentFlow {
	return NewAssignmentFlow(
		testDB.DB,
		repository.NewChannelRepository(testDB.DB),
		repository.NewCandidateRepository(testDB.DB),
		repository.NewAssignmentRepository(testDB.DB),
		repository.NewChannelStatRepository(testDB.DB),
		repository.NewActivityLogRepository(testDB.DB),
		distCfg,
	)
}

func activeAssignments(t *testing.T, testDB *testingutil.TestDB, channelID uint) []*models.Assignment {
	t.Helper()
	assignmentRepo := repository.NewAssignmentRepository(testDB.DB)
	rows, err := assignmentRepo.ByFilter(context.Background(), models.AssignmentFilter{
		ChannelID: &channelID,
		IsActive:  utils.ToPtr(true),
	}, "", 0, 0)
	require.NoError(t, err)
	return rows
}

func TestAssignBatch(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newAssignmentFlowForTest(testDB, config.DistributionConfig{})
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("SuccessfulBatchAssignment", func(t *testing.T) {
			channel, err := fixtures.CreateTestChannel("batch-ok")
			require.NoError(t, err)
			candidates, err := fixtures.CreateTestCandidates(3)
			require.NoError(t, err)

			ids := []uint{candidates[0].ID, candidates[1].ID, candidates[2].ID}
			assigned, err := flow.AssignBatch(context.Background(), ids, channel.ID, testOperatorID, nil, metadata)
			require.NoError(t, err)
			assert.Equal(t, 3, assigned)

			rows := activeAssignments(t, testDB, channel.ID)
			assert.Len(t, rows, 3)
			for _, row := range rows {
				assert.Equal(t, testOperatorID, row.AssignedBy)
				assert.True(t, row.IsActive)
			}

			// Audit log recorded the successful batch
			activityRepo := repository.NewActivityLogRepository(testDB.DB)
			logs, err := activityRepo.ByFilter(context.Background(), models.ActivityLogFilter{
				Action: utils.ToPtr(models.ActivityActionBatchAssigned),
			}, "", 0, 0)
			require.NoError(t, err)
			require.NotEmpty(t, logs)
		})

		t.Run("ReassignmentDeactivatesPreviousRow", func(t *testing.T) {
			first, err := fixtures.CreateTestChannel("move-from")
			require.NoError(t, err)
			second, err := fixtures.CreateTestChannel("move-to")
			require.NoError(t, err)
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)

			_, err = flow.AssignBatch(context.Background(), []uint{candidate.ID}, first.ID, testOperatorID, nil, metadata)
			require.NoError(t, err)
			_, err = flow.AssignBatch(context.Background(), []uint{candidate.ID}, second.ID, testOperatorID, nil, metadata)
			require.NoError(t, err)

			assert.Empty(t, activeAssignments(t, testDB, first.ID))
			assert.Len(t, activeAssignments(t, testDB, second.ID), 1)

			// The historical row survives as inactive
			assignmentRepo := repository.NewAssignmentRepository(testDB.DB)
			history, err := assignmentRepo.ByFilter(context.Background(), models.AssignmentFilter{
				CandidateID: &candidate.ID,
			}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, history, 2)
		})

		t.Run("DailyLimitRejectsWholeBatch", func(t *testing.T) {
			channel, err := fixtures.CreateTestChannel("daily-limited", testingutil.WithDailyLimit(2))
			require.NoError(t, err)
			candidates, err := fixtures.CreateTestCandidates(3)
			require.NoError(t, err)

			ids := []uint{candidates[0].ID, candidates[1].ID, candidates[2].ID}
			_, err = flow.AssignBatch(context.Background(), ids, channel.ID, testOperatorID, nil, metadata)
			require.Error(t, err)
			assert.True(t, IsDailyLimitExceeded(err))
			assert.True(t, IsQuotaExceededError(err))

			// No partial assignment
			assert.Empty(t, activeAssignments(t, testDB, channel.ID))
		})

		t.Run("TotalLimitCountsExistingActiveRows", func(t *testing.T) {
			channel, err := fixtures.CreateTestChannel("total-limited", testingutil.WithTotalLimit(2))
			require.NoError(t, err)
			existing, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)
			_, err = fixtures.CreateTestAssignment(existing.ID, channel.ID, testOperatorID)
			require.NoError(t, err)

			candidates, err := fixtures.CreateTestCandidates(2)
			require.NoError(t, err)
			_, err = flow.AssignBatch(context.Background(),
				[]uint{candidates[0].ID, candidates[1].ID}, channel.ID, testOperatorID, nil, metadata)
			require.Error(t, err)
			assert.True(t, IsTotalLimitExceeded(err))

			// A batch that fits still goes through
			assigned, err := flow.AssignBatch(context.Background(),
				[]uint{candidates[0].ID}, channel.ID, testOperatorID, nil, metadata)
			require.NoError(t, err)
			assert.Equal(t, 1, assigned)
		})

		t.Run("InactiveChannelRejected", func(t *testing.T) {
			channel, err := fixtures.CreateTestChannel("switched-off", testingutil.WithInactive())
			require.NoError(t, err)
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)

			_, err = flow.AssignBatch(context.Background(), []uint{candidate.ID}, channel.ID, testOperatorID, nil, metadata)
			require.Error(t, err)
			assert.True(t, IsChannelInactive(err))
			assert.True(t, IsConflictError(err))
		})

		t.Run("UnknownChannelRejected", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)

			_, err = flow.AssignBatch(context.Background(), []uint{candidate.ID}, 999999, testOperatorID, nil, metadata)
			require.Error(t, err)
			assert.True(t, IsNotFoundError(err))
		})

		t.Run("MissingCandidateRejectsBatch", func(t *testing.T) {
			channel, err := fixtures.CreateTestChannel("missing-candidate")
			require.NoError(t, err)
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)

			_, err = flow.AssignBatch(context.Background(),
				[]uint{candidate.ID, 999999}, channel.ID, testOperatorID, nil, metadata)
			require.Error(t, err)
			assert.True(t, IsCandidateNotFound(err))
			assert.Empty(t, activeAssignments(t, testDB, channel.ID))
		})

		t.Run("EmptyBatchRejected", func(t *testing.T) {
			_, err := flow.AssignBatch(context.Background(), nil, 1, testOperatorID, nil, metadata)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAutoDistribute(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newAssignmentFlowForTest(testDB, config.DistributionConfig{})
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("ProportionalSplit", func(t *testing.T) {
			heavy, err := fixtures.CreateTestChannel("heavy", testingutil.WithWeights(60, 15))
			require.NoError(t, err)
			light, err := fixtures.CreateTestChannel("light", testingutil.WithWeights(20, 5))
			require.NoError(t, err)
			_, err = fixtures.CreateTestCandidates(8)
			require.NoError(t, err)

			distributed, err := flow.AutoDistribute(context.Background(), 8, testOperatorID, metadata)
			require.NoError(t, err)

			// 75/25 over 8 candidates
			assert.Equal(t, 6, distributed["heavy"])
			assert.Equal(t, 2, distributed["light"])
			assert.Len(t, activeAssignments(t, testDB, heavy.ID), 6)
			assert.Len(t, activeAssignments(t, testDB, light.ID), 2)
		})

		require.NoError(t, testDB.ClearAllTables())

		t.Run("LimitShrinksTakeInsteadOfRejecting", func(t *testing.T) {
			capped, err := fixtures.CreateTestChannel("capped", testingutil.WithWeights(50, 50), testingutil.WithDailyLimit(2))
			require.NoError(t, err)
			open, err := fixtures.CreateTestChannel("open", testingutil.WithWeights(50, 50))
			require.NoError(t, err)
			_, err = fixtures.CreateTestCandidates(10)
			require.NoError(t, err)

			distributed, err := flow.AutoDistribute(context.Background(), 10, testOperatorID, metadata)
			require.NoError(t, err)

			// Equal weights would give 5 each; the cap shrinks one side and
			// the remainder stays unassigned rather than spilling over.
			assert.Equal(t, 2, distributed["capped"])
			assert.Equal(t, 5, distributed["open"])
			assert.Len(t, activeAssignments(t, testDB, capped.ID), 2)
			assert.Len(t, activeAssignments(t, testDB, open.ID), 5)
		})

		require.NoError(t, testDB.ClearAllTables())

		t.Run("EligibilityRulesFilterCandidates", func(t *testing.T) {
			picky, err := fixtures.CreateTestChannel("picky",
				testingutil.WithWeights(100, 0), testingutil.WithRules("PH", ""))
			require.NoError(t, err)

			_, err = fixtures.CreateTestCandidates(3, testingutil.WithProfile("PH", ""))
			require.NoError(t, err)
			_, err = fixtures.CreateTestCandidates(3, testingutil.WithProfile("IN", ""))
			require.NoError(t, err)

			distributed, err := flow.AutoDistribute(context.Background(), 6, testOperatorID, metadata)
			require.NoError(t, err)

			assert.Equal(t, 3, distributed["picky"])
			rows := activeAssignments(t, testDB, picky.ID)
			require.Len(t, rows, 3)

			candidateRepo := repository.NewCandidateRepository(testDB.DB)
			for _, row := range rows {
				c, err := candidateRepo.ByID(context.Background(), row.CandidateID)
				require.NoError(t, err)
				require.NotNil(t, c.Nationality)
				assert.Equal(t, "PH", *c.Nationality)
			}
		})

		require.NoError(t, testDB.ClearAllTables())

		t.Run("NonAutoChannelsAreSkipped", func(t *testing.T) {
			_, err := fixtures.CreateTestChannel("manual-only",
				testingutil.WithWeights(100, 0), testingutil.WithoutAutoDistribute())
			require.NoError(t, err)
			_, err = fixtures.CreateTestCandidates(2)
			require.NoError(t, err)

			_, err = flow.AutoDistribute(context.Background(), 2, testOperatorID, metadata)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})

		require.NoError(t, testDB.ClearAllTables())

		t.Run("EmptyPoolDistributesNothing", func(t *testing.T) {
			_, err := fixtures.CreateTestChannel("idle", testingutil.WithWeights(100, 0))
			require.NoError(t, err)

			distributed, err := flow.AutoDistribute(context.Background(), 5, testOperatorID, metadata)
			require.NoError(t, err)
			assert.Empty(t, distributed)
		})

		t.Run("NegativeTotalRejected", func(t *testing.T) {
			_, err := flow.AutoDistribute(context.Background(), -1, testOperatorID, metadata)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})

		t.Run("ZeroTotalDistributesNothing", func(t *testing.T) {
			distributed, err := flow.AutoDistribute(context.Background(), 0, testOperatorID, metadata)
			require.NoError(t, err)
			assert.Empty(t, distributed)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRemoveAssignment(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newAssignmentFlowForTest(testDB, config.DistributionConfig{})
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("ReleasesActiveAssignment", func(t *testing.T) {
			channel, err := fixtures.CreateTestChannel("release")
			require.NoError(t, err)
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)
			_, err = fixtures.CreateTestAssignment(candidate.ID, channel.ID, testOperatorID)
			require.NoError(t, err)

			require.NoError(t, flow.RemoveAssignment(context.Background(), candidate.ID, testOperatorID, metadata))
			assert.Empty(t, activeAssignments(t, testDB, channel.ID))

			assignmentRepo := repository.NewAssignmentRepository(testDB.DB)
			row, err := assignmentRepo.ActiveByCandidateID(context.Background(), candidate.ID)
			require.NoError(t, err)
			assert.Nil(t, row)

			history, err := assignmentRepo.ByFilter(context.Background(), models.AssignmentFilter{
				CandidateID: &candidate.ID,
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.False(t, history[0].IsActive)
			require.NotNil(t, history[0].RemovedBy)
			assert.Equal(t, testOperatorID, *history[0].RemovedBy)
			assert.NotNil(t, history[0].RemovedAt)
		})

		t.Run("NoActiveAssignmentIsNotFound", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)

			err = flow.RemoveAssignment(context.Background(), candidate.ID, testOperatorID, metadata)
			require.Error(t, err)
			assert.True(t, IsAssignmentNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSweepExpiredAssignments(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		channel, err := fixtures.CreateTestChannel("sweepable")
		require.NoError(t, err)
		stale, err := fixtures.CreateTestCandidate()
		require.NoError(t, err)
		fresh, err := fixtures.CreateTestCandidate()
		require.NoError(t, err)

		_, err = fixtures.CreateAgedAssignment(stale.ID, channel.ID, testOperatorID, 48*time.Hour)
		require.NoError(t, err)
		_, err = fixtures.CreateTestAssignment(fresh.ID, channel.ID, testOperatorID)
		require.NoError(t, err)

		t.Run("ZeroTTLDisablesSweeping", func(t *testing.T) {
			flow := newAssignmentFlowForTest(testDB, config.DistributionConfig{})
			swept, err := flow.SweepExpiredAssignments(context.Background())
			require.NoError(t, err)
			assert.Zero(t, swept)
			assert.Len(t, activeAssignments(t, testDB, channel.ID), 2)
		})

		t.Run("SweepsOnlyRowsPastTTL", func(t *testing.T) {
			flow := newAssignmentFlowForTest(testDB, config.DistributionConfig{AssignmentTTL: 24 * time.Hour})
			swept, err := flow.SweepExpiredAssignments(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(1), swept)

			rows := activeAssignments(t, testDB, channel.ID)
			require.Len(t, rows, 1)
			assert.Equal(t, fresh.ID, rows[0].CandidateID)

			// The swept row is attributed to the sweep actor
			assignmentRepo := repository.NewAssignmentRepository(testDB.DB)
			history, err := assignmentRepo.ByFilter(context.Background(), models.AssignmentFilter{
				CandidateID: &stale.ID,
			}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, history, 1)
			require.NotNil(t, history[0].RemovedBy)
			assert.Equal(t, utils.SweepActorID, *history[0].RemovedBy)
		})

		return nil
	})
	require.NoError(t, err)
}
