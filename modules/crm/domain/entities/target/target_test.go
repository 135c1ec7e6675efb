package target_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bankcrm/modules/crm/domain/entities/target"
)

func quarterTarget(t *testing.T, value int64) target.Target {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	tgt, err := target.New("Q1 revenue", target.TypeRevenue, target.PeriodQuarterly, start, end, decimal.NewFromInt(value), 3, 4)
	require.NoError(t, err)
	return tgt
}

func TestNewRejectsInvertedPeriod(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := target.New("bad", target.TypeRevenue, target.PeriodMonthly, start, start.AddDate(0, -1, 0), decimal.NewFromInt(100), 1, 1)
	require.ErrorIs(t, err, target.ErrInvalidPeriod)
}

func TestCoversIsInclusive(t *testing.T) {
	tgt := quarterTarget(t, 500000)
	assert.True(t, tgt.Covers(tgt.PeriodStart()))
	assert.True(t, tgt.Covers(tgt.PeriodEnd()))
	assert.True(t, tgt.Covers(time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)))
	assert.False(t, tgt.Covers(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, tgt.Covers(time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)))
}

func TestApplyAchievementAccumulates(t *testing.T) {
	tgt := quarterTarget(t, 500000)
	tgt = tgt.ApplyAchievement(decimal.NewFromInt(150000))
	tgt = tgt.ApplyAchievement(decimal.NewFromInt(100000))
	assert.True(t, decimal.NewFromInt(250000).Equal(tgt.AchievedValue()))
	assert.True(t, decimal.NewFromInt(50).Equal(tgt.AchievementPercentage()))
}

func TestApplyAchievementIgnoresNegative(t *testing.T) {
	tgt := quarterTarget(t, 500000)
	tgt = tgt.ApplyAchievement(decimal.NewFromInt(100000))
	tgt = tgt.ApplyAchievement(decimal.NewFromInt(-40000))
	assert.True(t, decimal.NewFromInt(100000).Equal(tgt.AchievedValue()))
}

func TestAchievementPercentageZeroTarget(t *testing.T) {
	tgt := quarterTarget(t, 0)
	tgt = tgt.ApplyAchievement(decimal.NewFromInt(100000))
	assert.True(t, tgt.AchievementPercentage().IsZero())
}

func TestIsOnTrack(t *testing.T) {
	tgt := quarterTarget(t, 300000)
	mid := tgt.PeriodStart().Add(tgt.PeriodEnd().Sub(tgt.PeriodStart()) / 2)

	assert.False(t, tgt.IsOnTrack(mid), "no achievement halfway through")

	tgt = tgt.ApplyAchievement(decimal.NewFromInt(150000))
	assert.True(t, tgt.IsOnTrack(mid), "half achieved halfway through")

	assert.True(t, tgt.IsOnTrack(tgt.PeriodStart().Add(-time.Hour)), "before the period starts everything is on track")
	assert.False(t, tgt.IsOnTrack(tgt.PeriodEnd().Add(time.Hour)), "half achieved after the period ended")
}
