package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/qsr-platform/talent-distribution/app/services"
	"github.com/qsr-platform/talent-distribution/models"
	"github.com/qsr-platform/talent-distribution/repository"
	"github.com/qsr-platform/talent-distribution/utils"
	"gorm.io/gorm"
)

// LifecycleFlow drives candidate state transitions: NEW -> BOOKED -> HIRED,
// the direct NEW -> HIRED shortcut, and contract cancellation back to NEW.
// Every transition locks the candidate row so two operators cannot finalize
// the same candidate twice.
type LifecycleFlow interface {
	TransitionToBooked(ctx context.Context, candidateID uint, identityNumber string, notes *string, actorID uint, metadata *ClientMetadata) (*models.Booking, error)
	TransitionToHired(ctx context.Context, candidateID uint, identityNumber string, contractStartDate *time.Time, actorID uint, metadata *ClientMetadata) (*models.Contract, error)
	CancelContract(ctx context.Context, candidateID uint, actorID uint, metadata *ClientMetadata) error
}

type LifecycleFlowImpl struct {
	db            *gorm.DB
	candidateRepo repository.CandidateRepository
	bookingRepo   repository.BookingRepository
	contractRepo  repository.ContractRepository
	activityRepo  repository.ActivityLogRepository
	notifier      services.NotificationService
}

func NewLifecycleFlow(
	db *gorm.DB,
	candidateRepo repository.CandidateRepository,
	bookingRepo repository.BookingRepository,
	contractRepo repository.ContractRepository,
	activityRepo repository.ActivityLogRepository,
	notifier services.NotificationService,
) LifecycleFlow {
	return &LifecycleFlowImpl{
		db:            db,
		candidateRepo: candidateRepo,
		bookingRepo:   bookingRepo,
		contractRepo:  contractRepo,
		activityRepo:  activityRepo,
		notifier:      notifier,
	}
}

// TransitionToBooked reserves a NEW candidate. The identity number is
// mandatory here; it carries over to the contract on hire.
func (f *LifecycleFlowImpl) TransitionToBooked(ctx context.Context, candidateID uint, identityNumber string, notes *string, actorID uint, metadata *ClientMetadata) (*models.Booking, error) {
	if identityNumber == "" {
		return nil, NewValidationError("IdentityRequired", "Identity number is required to book a candidate", ErrIdentityRequired)
	}

	var booking *models.Booking
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		candidate, err := f.lockCandidate(txCtx, candidateID)
		if err != nil {
			return err
		}

		existing, err := f.bookingRepo.ByCandidateID(txCtx, candidateID)
		if err != nil {
			return NewInternalError("BookingLookupFailed", "Failed to load booking", err)
		}
		if existing != nil {
			return NewConflictError("DuplicateBooking",
				fmt.Sprintf("Candidate %s is already booked", candidate.ReferenceCode), ErrDuplicateBooking)
		}

		contract, err := f.contractRepo.ByCandidateID(txCtx, candidateID)
		if err != nil {
			return NewInternalError("ContractLookupFailed", "Failed to load contract", err)
		}
		if contract != nil {
			return NewConflictError("DuplicateContract",
				fmt.Sprintf("Candidate %s is already hired", candidate.ReferenceCode), ErrDuplicateContract)
		}

		booking = &models.Booking{
			CandidateID:    candidateID,
			IdentityNumber: identityNumber,
			Notes:          notes,
			BookedBy:       actorID,
			BookedAt:       utils.UTCNow(),
		}
		if err := f.bookingRepo.Save(txCtx, booking); err != nil {
			return NewInternalError("BookingSaveFailed", "Failed to save booking", err)
		}

		if err := f.candidateRepo.UpdateStatus(txCtx, candidateID, models.CandidateStatusBooked); err != nil {
			return NewInternalError("StatusUpdateFailed", "Failed to update candidate status", err)
		}
		return nil
	})
	if err != nil {
		f.auditFailure(ctx, actorID, models.ActivityActionCandidateBookFailed,
			fmt.Sprintf("Booking of candidate %d failed", candidateID), err, metadata)
		lifecycleTransitionsTotal.WithLabelValues("book", "failure").Inc()
		return nil, err
	}

	lifecycleTransitionsTotal.WithLabelValues("book", "success").Inc()
	_ = f.activityRepo.Save(ctx, buildActivityLog(ctx, &actorID, models.ActivityActionCandidateBooked,
		fmt.Sprintf("Booked candidate %d", candidateID), true, nil,
		map[string]any{"booking_id": booking.ID}, metadata))

	// Notification failures never undo a committed booking.
	_ = f.notifier.NotifyCandidateBooked(ctx, candidateID, actorID)

	return booking, nil
}

// TransitionToHired finalizes a candidate into a contract. Works from BOOKED
// (consuming the booking and inheriting its identity number when none is
// given) and directly from NEW when an identity number is supplied.
func (f *LifecycleFlowImpl) TransitionToHired(ctx context.Context, candidateID uint, identityNumber string, contractStartDate *time.Time, actorID uint, metadata *ClientMetadata) (*models.Contract, error) {
	var contract *models.Contract
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		candidate, err := f.lockCandidate(txCtx, candidateID)
		if err != nil {
			return err
		}

		existing, err := f.contractRepo.ByCandidateID(txCtx, candidateID)
		if err != nil {
			return NewInternalError("ContractLookupFailed", "Failed to load contract", err)
		}
		if existing != nil {
			return NewConflictError("DuplicateContract",
				fmt.Sprintf("Candidate %s is already hired", candidate.ReferenceCode), ErrDuplicateContract)
		}

		booking, err := f.bookingRepo.ByCandidateID(txCtx, candidateID)
		if err != nil {
			return NewInternalError("BookingLookupFailed", "Failed to load booking", err)
		}
		if candidate.Status == models.CandidateStatusBooked && booking == nil {
			return NewConflictError("BookingNotFound",
				fmt.Sprintf("Candidate %s is marked booked but has no booking", candidate.ReferenceCode), ErrBookingNotFound)
		}

		if booking != nil {
			if identityNumber == "" {
				identityNumber = booking.IdentityNumber
			}
			if err := f.bookingRepo.DeleteByID(txCtx, booking.ID); err != nil {
				return NewInternalError("BookingDeleteFailed", "Failed to consume booking", err)
			}
		}
		if identityNumber == "" {
			return NewValidationError("IdentityRequired", "Identity number is required to hire a candidate", ErrIdentityRequired)
		}

		startDate := utils.UTCNow()
		if contractStartDate != nil {
			startDate = contractStartDate.UTC()
		}

		contract = &models.Contract{
			CandidateID:       candidateID,
			IdentityNumber:    identityNumber,
			ContractStartDate: startDate,
			CreatedBy:         actorID,
		}
		if err := f.contractRepo.Save(txCtx, contract); err != nil {
			return NewInternalError("ContractSaveFailed", "Failed to save contract", err)
		}

		if err := f.candidateRepo.UpdateStatus(txCtx, candidateID, models.CandidateStatusHired); err != nil {
			return NewInternalError("StatusUpdateFailed", "Failed to update candidate status", err)
		}
		return nil
	})
	if err != nil {
		f.auditFailure(ctx, actorID, models.ActivityActionCandidateHireFailed,
			fmt.Sprintf("Hire of candidate %d failed", candidateID), err, metadata)
		lifecycleTransitionsTotal.WithLabelValues("hire", "failure").Inc()
		return nil, err
	}

	lifecycleTransitionsTotal.WithLabelValues("hire", "success").Inc()
	_ = f.activityRepo.Save(ctx, buildActivityLog(ctx, &actorID, models.ActivityActionCandidateHired,
		fmt.Sprintf("Hired candidate %d", candidateID), true, nil,
		map[string]any{"contract_id": contract.ID}, metadata))

	_ = f.notifier.NotifyCandidateHired(ctx, candidateID, actorID)

	return contract, nil
}

// CancelContract tears down a contract and returns the candidate to NEW. The
// booking consumed on hire is not resurrected.
func (f *LifecycleFlowImpl) CancelContract(ctx context.Context, candidateID uint, actorID uint, metadata *ClientMetadata) error {
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		candidate, err := f.lockCandidate(txCtx, candidateID)
		if err != nil {
			return err
		}

		contract, err := f.contractRepo.ByCandidateID(txCtx, candidateID)
		if err != nil {
			return NewInternalError("ContractLookupFailed", "Failed to load contract", err)
		}
		if contract == nil {
			return NewNotFoundError("ContractNotFound",
				fmt.Sprintf("Candidate %s has no contract", candidate.ReferenceCode), ErrContractNotFound)
		}

		if err := f.contractRepo.DeleteByID(txCtx, contract.ID); err != nil {
			return NewInternalError("ContractDeleteFailed", "Failed to delete contract", err)
		}

		if err := f.candidateRepo.UpdateStatus(txCtx, candidateID, models.CandidateStatusNew); err != nil {
			return NewInternalError("StatusUpdateFailed", "Failed to update candidate status", err)
		}
		return nil
	})
	if err != nil {
		f.auditFailure(ctx, actorID, models.ActivityActionContractCancelFailed,
			fmt.Sprintf("Contract cancellation for candidate %d failed", candidateID), err, metadata)
		lifecycleTransitionsTotal.WithLabelValues("cancel", "failure").Inc()
		return err
	}

	lifecycleTransitionsTotal.WithLabelValues("cancel", "success").Inc()
	_ = f.activityRepo.Save(ctx, buildActivityLog(ctx, &actorID, models.ActivityActionContractCancelled,
		fmt.Sprintf("Cancelled contract of candidate %d", candidateID), true, nil, nil, metadata))
	return nil
}

func (f *LifecycleFlowImpl) lockCandidate(ctx context.Context, candidateID uint) (*models.Candidate, error) {
	candidate, err := f.candidateRepo.ByIDForUpdate(ctx, candidateID)
	if err != nil {
		return nil, NewInternalError("CandidateLookupFailed", "Failed to load candidate", err)
	}
	if candidate == nil {
		return nil, NewNotFoundError("CandidateNotFound",
			fmt.Sprintf("Candidate %d not found", candidateID), ErrCandidateNotFound)
	}
	return candidate, nil
}

func (f *LifecycleFlowImpl) auditFailure(ctx context.Context, actorID uint, action, description string, err error, metadata *ClientMetadata) {
	errMsg := err.Error()
	_ = f.activityRepo.Save(ctx, buildActivityLog(ctx, &actorID, action, description, false, &errMsg, nil, metadata))
}
