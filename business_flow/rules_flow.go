package businessflow

import (
	"context"
	"fmt"

	"github.com/qsr-platform/talent-distribution/models"
	"github.com/qsr-platform/talent-distribution/repository"
	"github.com/qsr-platform/talent-distribution/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ChannelRuleUpdate carries the fields an admin may change on a channel rule.
// Nil pointers leave the current value untouched; the Clear flags reset the
// optional limits to unlimited.
type ChannelRuleUpdate struct {
	Name            *string
	GoogleWeight    *float64
	OtherWeight     *float64
	IsActive        *bool
	AutoDistribute  *bool
	DailyLimit      *int
	ClearDailyLimit bool
	TotalLimit      *int
	ClearTotalLimit bool
	Priority        *int
}

// ChannelRuleFlow is the admin surface over channel distribution rules.
// Every successful update invalidates the cached rule table so routing picks
// up the change within one cache miss.
type ChannelRuleFlow interface {
	ListRules(ctx context.Context) ([]*models.Channel, error)
	UpdateRule(ctx context.Context, channelID uint, update *ChannelRuleUpdate, actorID uint, metadata *ClientMetadata) (*models.Channel, error)
}

type ChannelRuleFlowImpl struct {
	db           *gorm.DB
	channelRepo  repository.ChannelRepository
	activityRepo repository.ActivityLogRepository
	rc           *redis.Client
}

func NewChannelRuleFlow(
	db *gorm.DB,
	channelRepo repository.ChannelRepository,
	activityRepo repository.ActivityLogRepository,
	rc *redis.Client,
) ChannelRuleFlow {
	return &ChannelRuleFlowImpl{
		db:           db,
		channelRepo:  channelRepo,
		activityRepo: activityRepo,
		rc:           rc,
	}
}

func (f *ChannelRuleFlowImpl) ListRules(ctx context.Context) ([]*models.Channel, error) {
	channels, err := f.channelRepo.ByFilter(ctx, models.ChannelFilter{}, "priority DESC, id ASC", 0, 0)
	if err != nil {
		return nil, NewInternalError("ChannelLookupFailed", "Failed to load channels", err)
	}
	return channels, nil
}

func (f *ChannelRuleFlowImpl) UpdateRule(ctx context.Context, channelID uint, update *ChannelRuleUpdate, actorID uint, metadata *ClientMetadata) (*models.Channel, error) {
	if err := validateRuleUpdate(update); err != nil {
		return nil, err
	}

	var channel *models.Channel
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var err error
		channel, err = f.channelRepo.ByIDForUpdate(txCtx, channelID)
		if err != nil {
			return NewInternalError("ChannelLookupFailed", "Failed to load channel", err)
		}
		if channel == nil {
			return NewNotFoundError("ChannelNotFound", fmt.Sprintf("Channel %d not found", channelID), ErrChannelNotFound)
		}

		applyRuleUpdate(channel, update)
		channel.UpdatedAt = utils.UTCNow()

		if err := f.channelRepo.Update(txCtx, channel); err != nil {
			return NewInternalError("ChannelUpdateFailed", "Failed to update channel", err)
		}
		return nil
	})
	if err != nil {
		errMsg := err.Error()
		_ = f.activityRepo.Save(ctx, buildActivityLog(ctx, &actorID, models.ActivityActionChannelRuleUpdateFailed,
			fmt.Sprintf("Rule update for channel %d failed", channelID), false, &errMsg, nil, metadata))
		return nil, err
	}

	f.invalidateRulesCache(ctx)

	_ = f.activityRepo.Save(ctx, buildActivityLog(ctx, &actorID, models.ActivityActionChannelRuleUpdated,
		fmt.Sprintf("Updated rules of channel %s", channel.Slug), true, nil, channel, metadata))

	return channel, nil
}

func (f *ChannelRuleFlowImpl) invalidateRulesCache(ctx context.Context) {
	if f.rc != nil {
		_ = f.rc.Del(ctx, rulesCacheKey).Err()
	}
}

func validateRuleUpdate(update *ChannelRuleUpdate) error {
	if update == nil {
		return NewValidationError("EmptyUpdate", "Rule update is empty", nil)
	}
	if update.GoogleWeight != nil && *update.GoogleWeight < 0 {
		return NewValidationError("NegativeWeight", "Google weight cannot be negative", ErrNegativeWeight)
	}
	if update.OtherWeight != nil && *update.OtherWeight < 0 {
		return NewValidationError("NegativeWeight", "Other weight cannot be negative", ErrNegativeWeight)
	}
	if update.DailyLimit != nil && *update.DailyLimit < 0 {
		return NewValidationError("NegativeLimit", "Daily limit cannot be negative", nil)
	}
	if update.TotalLimit != nil && *update.TotalLimit < 0 {
		return NewValidationError("NegativeLimit", "Total limit cannot be negative", nil)
	}
	return nil
}

func applyRuleUpdate(channel *models.Channel, update *ChannelRuleUpdate) {
	if update.Name != nil {
		channel.Name = *update.Name
	}
	if update.GoogleWeight != nil {
		channel.GoogleWeight = *update.GoogleWeight
	}
	if update.OtherWeight != nil {
		channel.OtherWeight = *update.OtherWeight
	}
	if update.IsActive != nil {
		channel.IsActive = *update.IsActive
	}
	if update.AutoDistribute != nil {
		channel.AutoDistribute = *update.AutoDistribute
	}
	if update.ClearDailyLimit {
		channel.DailyLimit = nil
	} else if update.DailyLimit != nil {
		channel.DailyLimit = update.DailyLimit
	}
	if update.ClearTotalLimit {
		channel.TotalLimit = nil
	} else if update.TotalLimit != nil {
		channel.TotalLimit = update.TotalLimit
	}
	if update.Priority != nil {
		channel.Priority = *update.Priority
	}
}
