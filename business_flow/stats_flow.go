package businessflow

import (
	"context"

	"github.com/qsr-platform/talent-distribution/models"
	"github.com/qsr-platform/talent-distribution/repository"
	"github.com/qsr-platform/talent-distribution/utils"
)

// ChannelStatsRow is one channel's aggregated view for the admin dashboard.
type ChannelStatsRow struct {
	ChannelID    uint    `json:"channel_id"`
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	GoogleWeight float64 `json:"google_weight"`
	OtherWeight  float64 `json:"other_weight"`
	IsActive     bool    `json:"is_active"`

	ActiveAssignments int64 `json:"active_assignments"`
	AssignedToday     int64 `json:"assigned_today"`
	TotalAssigned     int64 `json:"total_assigned"`
	Bookings          int64 `json:"bookings"`
	Contracts         int64 `json:"contracts"`
	VisitsToday       int64 `json:"visits_today"`
}

// StatsFlow aggregates per-channel distribution figures. Reads only; stats
// writes happen inside the assignment transactions.
type StatsFlow interface {
	ChannelStats(ctx context.Context, onlyActive bool) ([]*ChannelStatsRow, error)
	ChannelStatsByID(ctx context.Context, channelID uint) (*ChannelStatsRow, error)
}

type StatsFlowImpl struct {
	channelRepo  repository.ChannelRepository
	repo         repository.AssignmentRepository
	bookingRepo  repository.BookingRepository
	contractRepo repository.ContractRepository
	visitRepo    repository.VisitRepository
	statRepo     repository.ChannelStatRepository
}

func NewStatsFlow(
	channelRepo repository.ChannelRepository,
	repo repository.AssignmentRepository,
	bookingRepo repository.BookingRepository,
	contractRepo repository.ContractRepository,
	visitRepo repository.VisitRepository,
	statRepo repository.ChannelStatRepository,
) StatsFlow {
	return &StatsFlowImpl{
		channelRepo:  channelRepo,
		repo:         repo,
		bookingRepo:  bookingRepo,
		contractRepo: contractRepo,
		visitRepo:    visitRepo,
		statRepo:     statRepo,
	}
}

func (f *StatsFlowImpl) ChannelStats(ctx context.Context, onlyActive bool) ([]*ChannelStatsRow, error) {
	filter := models.ChannelFilter{}
	if onlyActive {
		filter.IsActive = utils.ToPtr(true)
	}
	channels, err := f.channelRepo.ByFilter(ctx, filter, "priority DESC, id ASC", 0, 0)
	if err != nil {
		return nil, NewInternalError("ChannelLookupFailed", "Failed to load channels", err)
	}

	rows := make([]*ChannelStatsRow, 0, len(channels))
	for _, ch := range channels {
		row, err := f.buildRow(ctx, ch)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (f *StatsFlowImpl) ChannelStatsByID(ctx context.Context, channelID uint) (*ChannelStatsRow, error) {
	channel, err := f.channelRepo.ByID(ctx, channelID)
	if err != nil {
		return nil, NewInternalError("ChannelLookupFailed", "Failed to load channel", err)
	}
	if channel == nil {
		return nil, NewNotFoundError("ChannelNotFound", "Channel not found", ErrChannelNotFound)
	}
	return f.buildRow(ctx, channel)
}

func (f *StatsFlowImpl) buildRow(ctx context.Context, ch *models.Channel) (*ChannelStatsRow, error) {
	row := &ChannelStatsRow{
		ChannelID:    ch.ID,
		Slug:         ch.Slug,
		Name:         ch.Name,
		GoogleWeight: ch.GoogleWeight,
		OtherWeight:  ch.OtherWeight,
		IsActive:     ch.IsActive,
	}

	today := utils.TodayUTC()

	var err error
	if row.ActiveAssignments, err = f.repo.CountActiveByChannel(ctx, ch.ID); err != nil {
		return nil, NewInternalError("StatsQueryFailed", "Failed to count active assignments", err)
	}
	if row.AssignedToday, err = f.repo.CountActiveByChannelSince(ctx, ch.ID, today); err != nil {
		return nil, NewInternalError("StatsQueryFailed", "Failed to count today's assignments", err)
	}
	if row.TotalAssigned, err = f.statRepo.SumAssignedByChannel(ctx, ch.ID); err != nil {
		return nil, NewInternalError("StatsQueryFailed", "Failed to sum assignment counters", err)
	}
	if row.Bookings, err = f.bookingRepo.CountByChannel(ctx, ch.ID); err != nil {
		return nil, NewInternalError("StatsQueryFailed", "Failed to count bookings", err)
	}
	if row.Contracts, err = f.contractRepo.CountByChannel(ctx, ch.ID); err != nil {
		return nil, NewInternalError("StatsQueryFailed", "Failed to count contracts", err)
	}
	if row.VisitsToday, err = f.visitRepo.CountByChannelSince(ctx, ch.ID, today); err != nil {
		return nil, NewInternalError("StatsQueryFailed", "Failed to count visits", err)
	}

	return row, nil
}
