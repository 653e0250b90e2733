package businessflow

import (
	"context"
	"fmt"

	"github.com/qsr-platform/talent-distribution/config"
	"github.com/qsr-platform/talent-distribution/models"
	"github.com/qsr-platform/talent-distribution/repository"
	"github.com/qsr-platform/talent-distribution/utils"
	"gorm.io/gorm"
)

// AssignmentFlow moves candidate inventory onto channels. Batch assignment is
// all-or-nothing against channel limits; auto distribution splits the
// unassigned pool proportionally and shrinks per-channel takes to fit the
// limits instead of rejecting.
type AssignmentFlow interface {
	AssignBatch(ctx context.Context, candidateIDs []uint, channelID uint, actorID uint, notes *string, metadata *ClientMetadata) (int, error)
	AutoDistribute(ctx context.Context, total int, actorID uint, metadata *ClientMetadata) (map[string]int, error)
	RemoveAssignment(ctx context.Context, candidateID uint, actorID uint, metadata *ClientMetadata) error
	SweepExpiredAssignments(ctx context.Context) (int64, error)
}

type AssignmentFlowImpl struct {
	db            *gorm.DB
	channelRepo   repository.ChannelRepository
	candidateRepo repository.CandidateRepository
	repo          repository.AssignmentRepository
	statRepo      repository.ChannelStatRepository
	activityRepo  repository.ActivityLogRepository
	distCfg       config.DistributionConfig
}

func NewAssignmentFlow(
	db *gorm.DB,
	channelRepo repository.ChannelRepository,
	candidateRepo repository.CandidateRepository,
	repo repository.AssignmentRepository,
	statRepo repository.ChannelStatRepository,
	activityRepo repository.ActivityLogRepository,
	distCfg config.DistributionConfig,
) AssignmentFlow {
	return &AssignmentFlowImpl{
		db:            db,
		channelRepo:   channelRepo,
		candidateRepo: candidateRepo,
		repo:          repo,
		statRepo:      statRepo,
		activityRepo:  activityRepo,
		distCfg:       distCfg,
	}
}

// AssignBatch assigns all listed candidates to one channel inside a single
// transaction. The whole batch is rejected when it would push the channel
// past its daily or total limit; partial assignment never happens.
func (f *AssignmentFlowImpl) AssignBatch(ctx context.Context, candidateIDs []uint, channelID uint, actorID uint, notes *string, metadata *ClientMetadata) (int, error) {
	if len(candidateIDs) == 0 {
		return 0, NewValidationError("EmptyBatch", "Candidate batch is empty", ErrEmptyBatch)
	}

	var channelSlug string
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		channel, err := f.lockChannel(txCtx, channelID)
		if err != nil {
			return err
		}
		channelSlug = channel.Slug

		candidates, err := f.candidateRepo.ListByIDs(txCtx, candidateIDs)
		if err != nil {
			return NewInternalError("CandidateLookupFailed", "Failed to load candidates", err)
		}
		if len(candidates) != len(candidateIDs) {
			return NewNotFoundError("CandidateNotFound",
				fmt.Sprintf("Batch references %d candidates, found %d", len(candidateIDs), len(candidates)),
				ErrCandidateNotFound)
		}

		if err := f.checkLimits(txCtx, channel, len(candidateIDs)); err != nil {
			return err
		}

		return f.moveCandidates(txCtx, candidateIDs, channel, actorID, notes)
	})
	if err != nil {
		errMsg := err.Error()
		_ = f.activityRepo.Save(ctx, buildActivityLog(ctx, &actorID, models.ActivityActionBatchAssignFailed,
			fmt.Sprintf("Batch assignment of %d candidates to channel %d failed", len(candidateIDs), channelID),
			false, &errMsg, nil, metadata))
		return 0, err
	}

	assignmentsTotal.WithLabelValues(channelSlug, "batch").Add(float64(len(candidateIDs)))
	_ = f.activityRepo.Save(ctx, buildActivityLog(ctx, &actorID, models.ActivityActionBatchAssigned,
		fmt.Sprintf("Assigned %d candidates to channel %s", len(candidateIDs), channelSlug),
		true, nil, map[string]any{"channel_id": channelID, "candidate_ids": candidateIDs}, metadata))

	return len(candidateIDs), nil
}

// AutoDistribute pulls up to total unassigned NEW candidates and spreads them
// across auto-distribution channels proportionally to their inventory weight.
// Channel eligibility rules (nationality, position) and limits shrink each
// channel's take; leftover candidates stay unassigned. Returns assigned
// counts keyed by channel slug.
func (f *AssignmentFlowImpl) AutoDistribute(ctx context.Context, total int, actorID uint, metadata *ClientMetadata) (map[string]int, error) {
	if total < 0 {
		return nil, NewValidationError("NegativeTotal", "Total to distribute cannot be negative", ErrNegativeTotal)
	}

	distributed := make(map[string]int)
	if total == 0 {
		return distributed, nil
	}
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		channels, err := f.channelRepo.ListAutoDistribute(txCtx)
		if err != nil {
			return NewInternalError("ChannelLookupFailed", "Failed to load auto-distribution channels", err)
		}

		weights := make([]ChannelWeight, 0, len(channels))
		byID := make(map[uint]*models.Channel, len(channels))
		for _, ch := range channels {
			w := ch.InventoryWeight()
			if w <= 0 {
				continue
			}
			weights = append(weights, ChannelWeight{ChannelID: ch.ID, Weight: w})
			byID[ch.ID] = ch
		}
		if len(weights) == 0 {
			return NewValidationError("NoAutoDistributeChannels", "No channels enabled for auto distribution", ErrNoDistributableWork)
		}

		pool, err := f.candidateRepo.ListUnassignedNew(txCtx, total)
		if err != nil {
			return NewInternalError("CandidateLookupFailed", "Failed to load unassigned candidates", err)
		}
		if len(pool) == 0 {
			return nil
		}

		quotas, err := Allocate(weights, len(pool))
		if err != nil {
			return err
		}

		taken := make(map[uint]bool, len(pool))
		for _, quota := range quotas {
			if quota.Count == 0 {
				continue
			}
			channel := byID[quota.ChannelID]

			take := quota.Count
			if room, err := f.remainingCapacity(txCtx, channel); err != nil {
				return err
			} else if room >= 0 && take > room {
				take = room
			}
			if take <= 0 {
				continue
			}

			picked := pickEligible(pool, taken, channel, take)
			if len(picked) == 0 {
				continue
			}

			if err := f.moveCandidates(txCtx, picked, channel, actorID, nil); err != nil {
				return err
			}
			distributed[channel.Slug] += len(picked)
		}

		return nil
	})
	if err != nil {
		errMsg := err.Error()
		_ = f.activityRepo.Save(ctx, buildActivityLog(ctx, &actorID, models.ActivityActionAutoDistributeFailed,
			fmt.Sprintf("Auto distribution of %d candidates failed", total), false, &errMsg, nil, metadata))
		return nil, err
	}

	assignedTotal := 0
	for slug, n := range distributed {
		assignedTotal += n
		assignmentsTotal.WithLabelValues(slug, "auto").Add(float64(n))
	}
	_ = f.activityRepo.Save(ctx, buildActivityLog(ctx, &actorID, models.ActivityActionAutoDistributed,
		fmt.Sprintf("Auto-distributed %d candidates across %d channels", assignedTotal, len(distributed)),
		true, nil, distributed, metadata))

	return distributed, nil
}

// RemoveAssignment releases the candidate's active assignment back to the
// unassigned pool. The historical row stays, marked inactive.
func (f *AssignmentFlowImpl) RemoveAssignment(ctx context.Context, candidateID uint, actorID uint, metadata *ClientMetadata) error {
	var channelID uint
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		assignment, err := f.repo.ActiveByCandidateID(txCtx, candidateID)
		if err != nil {
			return NewInternalError("AssignmentLookupFailed", "Failed to load assignment", err)
		}
		if assignment == nil {
			return NewNotFoundError("AssignmentNotFound", "Candidate has no active assignment", ErrAssignmentNotFound)
		}
		channelID = assignment.ChannelID

		now := utils.UTCNow()
		if _, err := f.repo.DeactivateActiveByCandidateIDs(txCtx, []uint{candidateID}, actorID, now); err != nil {
			return NewInternalError("AssignmentRemoveFailed", "Failed to deactivate assignment", err)
		}

		return f.refreshActiveCount(txCtx, channelID)
	})
	if err != nil {
		errMsg := err.Error()
		_ = f.activityRepo.Save(ctx, buildActivityLog(ctx, &actorID, models.ActivityActionAssignmentRemoved,
			fmt.Sprintf("Assignment removal for candidate %d failed", candidateID), false, &errMsg, nil, metadata))
		return err
	}

	_ = f.activityRepo.Save(ctx, buildActivityLog(ctx, &actorID, models.ActivityActionAssignmentRemoved,
		fmt.Sprintf("Removed active assignment of candidate %d from channel %d", candidateID, channelID),
		true, nil, nil, metadata))
	return nil
}

// SweepExpiredAssignments releases active assignments older than the
// configured TTL. A zero TTL disables sweeping.
func (f *AssignmentFlowImpl) SweepExpiredAssignments(ctx context.Context) (int64, error) {
	ttl := f.distCfg.AssignmentTTL
	if ttl <= 0 {
		return 0, nil
	}

	var swept int64
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		cutoff := utils.UTCNow().Add(-ttl)
		n, err := f.repo.DeactivateActiveOlderThan(txCtx, cutoff, utils.SweepActorID)
		if err != nil {
			return NewInternalError("SweepFailed", "Failed to sweep expired assignments", err)
		}
		swept = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	if swept > 0 {
		assignmentsSweptTotal.Add(float64(swept))
		actorID := utils.SweepActorID
		_ = f.activityRepo.Save(ctx, buildActivityLog(ctx, &actorID, models.ActivityActionAssignmentsSwept,
			fmt.Sprintf("Swept %d assignments older than %s", swept, ttl), true, nil, nil, nil))
	}
	return swept, nil
}

// lockChannel loads the channel under FOR UPDATE so concurrent batches on the
// same channel serialize their limit checks.
func (f *AssignmentFlowImpl) lockChannel(ctx context.Context, channelID uint) (*models.Channel, error) {
	channel, err := f.channelRepo.ByIDForUpdate(ctx, channelID)
	if err != nil {
		return nil, NewInternalError("ChannelLookupFailed", "Failed to load channel", err)
	}
	if channel == nil {
		return nil, NewNotFoundError("ChannelNotFound", fmt.Sprintf("Channel %d not found", channelID), ErrChannelNotFound)
	}
	if !channel.IsActive {
		return nil, NewConflictError("ChannelInactive", fmt.Sprintf("Channel %s is inactive", channel.Slug), ErrChannelInactive)
	}
	return channel, nil
}

// checkLimits verifies the whole batch fits under the channel's daily and
// total limits. Must run with the channel row locked.
func (f *AssignmentFlowImpl) checkLimits(ctx context.Context, channel *models.Channel, batchSize int) error {
	if channel.DailyLimit != nil {
		today, err := f.repo.CountActiveByChannelSince(ctx, channel.ID, utils.TodayUTC())
		if err != nil {
			return NewInternalError("LimitCheckFailed", "Failed to count today's assignments", err)
		}
		if int(today)+batchSize > *channel.DailyLimit {
			quotaRejectionsTotal.WithLabelValues("daily").Inc()
			return NewQuotaExceededError("DailyLimit",
				fmt.Sprintf("Channel %s daily limit %d would be exceeded (%d assigned today, batch of %d)",
					channel.Slug, *channel.DailyLimit, today, batchSize),
				ErrDailyLimitExceeded)
		}
	}
	if channel.TotalLimit != nil {
		active, err := f.repo.CountActiveByChannel(ctx, channel.ID)
		if err != nil {
			return NewInternalError("LimitCheckFailed", "Failed to count active assignments", err)
		}
		if int(active)+batchSize > *channel.TotalLimit {
			quotaRejectionsTotal.WithLabelValues("total").Inc()
			return NewQuotaExceededError("TotalLimit",
				fmt.Sprintf("Channel %s total limit %d would be exceeded (%d active, batch of %d)",
					channel.Slug, *channel.TotalLimit, active, batchSize),
				ErrTotalLimitExceeded)
		}
	}
	return nil
}

// remainingCapacity is the shrink-to-fit variant of checkLimits used by auto
// distribution. Returns -1 for unlimited channels.
func (f *AssignmentFlowImpl) remainingCapacity(ctx context.Context, channel *models.Channel) (int, error) {
	room := -1
	if channel.DailyLimit != nil {
		today, err := f.repo.CountActiveByChannelSince(ctx, channel.ID, utils.TodayUTC())
		if err != nil {
			return 0, NewInternalError("LimitCheckFailed", "Failed to count today's assignments", err)
		}
		room = *channel.DailyLimit - int(today)
	}
	if channel.TotalLimit != nil {
		active, err := f.repo.CountActiveByChannel(ctx, channel.ID)
		if err != nil {
			return 0, NewInternalError("LimitCheckFailed", "Failed to count active assignments", err)
		}
		totalRoom := *channel.TotalLimit - int(active)
		if room < 0 || totalRoom < room {
			room = totalRoom
		}
	}
	if room < 0 && (channel.DailyLimit != nil || channel.TotalLimit != nil) {
		room = 0
	}
	return room, nil
}

// moveCandidates deactivates any previous active assignments for the batch,
// inserts the new rows, and bumps the channel's per-day counter. Must run
// inside the caller's transaction.
func (f *AssignmentFlowImpl) moveCandidates(ctx context.Context, candidateIDs []uint, channel *models.Channel, actorID uint, notes *string) error {
	now := utils.UTCNow()

	if _, err := f.repo.DeactivateActiveByCandidateIDs(ctx, candidateIDs, actorID, now); err != nil {
		return NewInternalError("AssignmentMoveFailed", "Failed to deactivate previous assignments", err)
	}

	rows := make([]*models.Assignment, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		rows = append(rows, &models.Assignment{
			CandidateID: id,
			ChannelID:   channel.ID,
			AssignedBy:  actorID,
			AssignedAt:  now,
			IsActive:    true,
			Notes:       notes,
		})
	}
	if err := f.repo.SaveBatch(ctx, rows); err != nil {
		return NewInternalError("AssignmentMoveFailed", "Failed to insert assignments", err)
	}

	active, err := f.repo.CountActiveByChannel(ctx, channel.ID)
	if err != nil {
		return NewInternalError("StatUpdateFailed", "Failed to count active assignments", err)
	}
	if err := f.statRepo.IncrementAssigned(ctx, channel.ID, utils.TodayUTC(), len(candidateIDs), int(active)); err != nil {
		return NewInternalError("StatUpdateFailed", "Failed to update channel stats", err)
	}
	return nil
}

// refreshActiveCount rewrites today's active counter after a removal.
func (f *AssignmentFlowImpl) refreshActiveCount(ctx context.Context, channelID uint) error {
	active, err := f.repo.CountActiveByChannel(ctx, channelID)
	if err != nil {
		return NewInternalError("StatUpdateFailed", "Failed to count active assignments", err)
	}
	if err := f.statRepo.IncrementAssigned(ctx, channelID, utils.TodayUTC(), 0, int(active)); err != nil {
		return NewInternalError("StatUpdateFailed", "Failed to update channel stats", err)
	}
	return nil
}

// pickEligible walks the pool in order and takes up to limit candidates that
// match the channel's nationality and position rules and were not already
// taken by an earlier channel in the same run.
func pickEligible(pool []*models.Candidate, taken map[uint]bool, channel *models.Channel, limit int) []uint {
	picked := make([]uint, 0, limit)
	for _, c := range pool {
		if len(picked) == limit {
			break
		}
		if taken[c.ID] {
			continue
		}
		if channel.Nationality != nil && (c.Nationality == nil || *c.Nationality != *channel.Nationality) {
			continue
		}
		if channel.Position != nil && (c.Position == nil || *c.Position != *channel.Position) {
			continue
		}
		taken[c.ID] = true
		picked = append(picked, c.ID)
	}
	return picked
}
