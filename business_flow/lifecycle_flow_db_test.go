package businessflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/qsr-platform/talent-distribution/app/services"
	"github.com/qsr-platform/talent-distribution/models"
	"github.com/qsr-platform/talent-distribution/repository"
	testingutil "github.com/qsr-platform/talent-distribution/testing"
	"github.com/qsr-platform/talent-distribution/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLifecycleFlowForTest(testDB *testingutil.TestDB) LifecycleFlow {
	return NewLifecycleFlow(
		testDB.DB,
		repository.NewCandidateRepository(testDB.DB),
		repository.NewBookingRepository(testDB.DB),
		repository.NewContractRepository(testDB.DB),
		repository.NewActivityLogRepository(testDB.DB),
		services.NewNotificationService(services.NewMockNotificationProvider()),
	)
}

func candidateStatus(t *testing.T, testDB *testingutil.TestDB, candidateID uint) string {
	t.Helper()
	candidateRepo := repository.NewCandidateRepository(testDB.DB)
	candidate, err := candidateRepo.ByID(context.Background(), candidateID)
	require.NoError(t, err)
	require.NotNil(t, candidate)
	return candidate.Status
}

func TestTransitionToBooked(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newLifecycleFlowForTest(testDB)
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("SuccessfulBooking", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)

			booking, err := flow.TransitionToBooked(context.Background(), candidate.ID, "784-1234-5678901-2", nil, testOperatorID, metadata)
			require.NoError(t, err)
			require.NotNil(t, booking)
			assert.Equal(t, candidate.ID, booking.CandidateID)
			assert.Equal(t, "784-1234-5678901-2", booking.IdentityNumber)
			assert.Equal(t, testOperatorID, booking.BookedBy)

			assert.Equal(t, models.CandidateStatusBooked, candidateStatus(t, testDB, candidate.ID))
		})

		t.Run("MissingIdentityRejected", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)

			_, err = flow.TransitionToBooked(context.Background(), candidate.ID, "", nil, testOperatorID, metadata)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, models.CandidateStatusNew, candidateStatus(t, testDB, candidate.ID))
		})

		t.Run("DoubleBookingConflicts", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)

			_, err = flow.TransitionToBooked(context.Background(), candidate.ID, "ID-1", nil, testOperatorID, metadata)
			require.NoError(t, err)

			_, err = flow.TransitionToBooked(context.Background(), candidate.ID, "ID-2", nil, testOperatorID, metadata)
			require.Error(t, err)
			assert.True(t, IsDuplicateBooking(err))
			assert.True(t, IsConflictError(err))

			// Failure was audited
			activityRepo := repository.NewActivityLogRepository(testDB.DB)
			logs, err := activityRepo.ByFilter(context.Background(), models.ActivityLogFilter{
				Action:  utils.ToPtr(models.ActivityActionCandidateBookFailed),
				Success: utils.ToPtr(false),
			}, "", 0, 0)
			require.NoError(t, err)
			assert.NotEmpty(t, logs)
		})

		t.Run("HiredCandidateCannotBeBooked", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)
			_, err = flow.TransitionToHired(context.Background(), candidate.ID, "ID-3", nil, testOperatorID, metadata)
			require.NoError(t, err)

			_, err = flow.TransitionToBooked(context.Background(), candidate.ID, "ID-3", nil, testOperatorID, metadata)
			require.Error(t, err)
			assert.True(t, IsDuplicateContract(err))
		})

		t.Run("UnknownCandidateIsNotFound", func(t *testing.T) {
			_, err := flow.TransitionToBooked(context.Background(), 999999, "ID-4", nil, testOperatorID, metadata)
			require.Error(t, err)
			assert.True(t, IsCandidateNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTransitionToHired(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newLifecycleFlowForTest(testDB)
		metadata := NewClientMetadata("127.0.0.1", "test-agent")
		bookingRepo := repository.NewBookingRepository(testDB.DB)

		t.Run("HireFromBookingConsumesItAndInheritsIdentity", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)
			_, err = flow.TransitionToBooked(context.Background(), candidate.ID, "BOOKED-ID", nil, testOperatorID, metadata)
			require.NoError(t, err)

			contract, err := flow.TransitionToHired(context.Background(), candidate.ID, "", nil, testOperatorID, metadata)
			require.NoError(t, err)
			require.NotNil(t, contract)
			assert.Equal(t, "BOOKED-ID", contract.IdentityNumber)
			assert.Equal(t, models.CandidateStatusHired, candidateStatus(t, testDB, candidate.ID))

			// Booking is gone
			booking, err := bookingRepo.ByCandidateID(context.Background(), candidate.ID)
			require.NoError(t, err)
			assert.Nil(t, booking)
		})

		t.Run("DirectHireFromNew", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)

			startDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
			contract, err := flow.TransitionToHired(context.Background(), candidate.ID, "DIRECT-ID", &startDate, testOperatorID, metadata)
			require.NoError(t, err)
			assert.Equal(t, "DIRECT-ID", contract.IdentityNumber)
			assert.True(t, contract.ContractStartDate.Equal(startDate))
			assert.Equal(t, models.CandidateStatusHired, candidateStatus(t, testDB, candidate.ID))
		})

		t.Run("DirectHireWithoutIdentityRejected", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)

			_, err = flow.TransitionToHired(context.Background(), candidate.ID, "", nil, testOperatorID, metadata)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, models.CandidateStatusNew, candidateStatus(t, testDB, candidate.ID))
		})

		t.Run("ExplicitIdentityOverridesBooking", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)
			_, err = flow.TransitionToBooked(context.Background(), candidate.ID, "OLD-ID", nil, testOperatorID, metadata)
			require.NoError(t, err)

			contract, err := flow.TransitionToHired(context.Background(), candidate.ID, "NEW-ID", nil, testOperatorID, metadata)
			require.NoError(t, err)
			assert.Equal(t, "NEW-ID", contract.IdentityNumber)
		})

		t.Run("DoubleHireConflicts", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)
			_, err = flow.TransitionToHired(context.Background(), candidate.ID, "FIRST-ID", nil, testOperatorID, metadata)
			require.NoError(t, err)

			_, err = flow.TransitionToHired(context.Background(), candidate.ID, "SECOND-ID", nil, testOperatorID, metadata)
			require.Error(t, err)
			assert.True(t, IsDuplicateContract(err))
		})

		t.Run("ConcurrentHiresProduceOneContract", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)

			const attempts = 5
			var wg sync.WaitGroup
			errs := make([]error, attempts)
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = flow.TransitionToHired(context.Background(), candidate.ID, "RACE-ID", nil, testOperatorID, metadata)
				}(i)
			}
			wg.Wait()

			succeeded := 0
			for _, e := range errs {
				if e == nil {
					succeeded++
				} else {
					assert.True(t, IsDuplicateContract(e))
				}
			}
			assert.Equal(t, 1, succeeded)

			contractRepo := repository.NewContractRepository(testDB.DB)
			contracts, err := contractRepo.ByFilter(context.Background(), models.ContractFilter{
				CandidateID: &candidate.ID,
			}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, contracts, 1)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCancelContract(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newLifecycleFlowForTest(testDB)
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("CancellationReturnsCandidateToNew", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)
			_, err = flow.TransitionToHired(context.Background(), candidate.ID, "CANCEL-ID", nil, testOperatorID, metadata)
			require.NoError(t, err)

			require.NoError(t, flow.CancelContract(context.Background(), candidate.ID, testOperatorID, metadata))
			assert.Equal(t, models.CandidateStatusNew, candidateStatus(t, testDB, candidate.ID))

			contractRepo := repository.NewContractRepository(testDB.DB)
			contract, err := contractRepo.ByCandidateID(context.Background(), candidate.ID)
			require.NoError(t, err)
			assert.Nil(t, contract)
		})

		t.Run("BookingIsNotResurrected", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)
			_, err = flow.TransitionToBooked(context.Background(), candidate.ID, "KEEP-ID", nil, testOperatorID, metadata)
			require.NoError(t, err)
			_, err = flow.TransitionToHired(context.Background(), candidate.ID, "", nil, testOperatorID, metadata)
			require.NoError(t, err)

			require.NoError(t, flow.CancelContract(context.Background(), candidate.ID, testOperatorID, metadata))

			bookingRepo := repository.NewBookingRepository(testDB.DB)
			booking, err := bookingRepo.ByCandidateID(context.Background(), candidate.ID)
			require.NoError(t, err)
			assert.Nil(t, booking)
			assert.Equal(t, models.CandidateStatusNew, candidateStatus(t, testDB, candidate.ID))
		})

		t.Run("NoContractIsNotFound", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)

			err = flow.CancelContract(context.Background(), candidate.ID, testOperatorID, metadata)
			require.Error(t, err)
			assert.True(t, IsContractNotFound(err))
		})

		t.Run("RehireAfterCancellation", func(t *testing.T) {
			candidate, err := fixtures.CreateTestCandidate()
			require.NoError(t, err)
			_, err = flow.TransitionToHired(context.Background(), candidate.ID, "AGAIN-ID", nil, testOperatorID, metadata)
			require.NoError(t, err)
			require.NoError(t, flow.CancelContract(context.Background(), candidate.ID, testOperatorID, metadata))

			contract, err := flow.TransitionToHired(context.Background(), candidate.ID, "AGAIN-ID", nil, testOperatorID, metadata)
			require.NoError(t, err)
			assert.NotNil(t, contract)
		})

		return nil
	})
	require.NoError(t, err)
}
