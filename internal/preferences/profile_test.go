package preferences

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_SnapshotNormalizesByMax(t *testing.T) {
	now := time.Now()
	p := NewProfile(uuid.New())
	p.DestinationTypes.Add("beach", 4, now)
	p.DestinationTypes.Add("mountain", 1, now)

	snap := p.Snapshot(now, DefaultConfidenceThreshold)

	// The strongest signal is exactly 1.0; mountain at 0.25 falls under the
	// confidence threshold and disappears from the view.
	assert.InDelta(t, 1.0, snap.DestinationTypes["beach"], 1e-9)
	_, ok := snap.DestinationTypes["mountain"]
	assert.False(t, ok)
}

func TestProfile_WeakSignalCanResurface(t *testing.T) {
	now := time.Now()
	p := NewProfile(uuid.New())
	p.DestinationTypes.Add("beach", 4, now)
	p.DestinationTypes.Add("mountain", 1, now)

	// The raw weight was never deleted, so once it accumulates enough it
	// clears the threshold again.
	p.DestinationTypes.Add("mountain", 2, now)

	snap := p.Snapshot(now, DefaultConfidenceThreshold)
	assert.InDelta(t, 0.75, snap.DestinationTypes["mountain"], 1e-9)
}

func TestDecayFactorFor(t *testing.T) {
	tests := []struct {
		name   string
		age    time.Duration
		factor float64
	}{
		{"fresh", 10 * 24 * time.Hour, 1.0},
		{"stale", 60 * 24 * time.Hour, decayFactorStale},
		{"ancient", 120 * 24 * time.Hour, decayFactorAncient},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.factor, decayFactorFor(tc.age), 1e-9)
		})
	}
}

func TestProfile_StaleEntriesLoseGroundToFreshOnes(t *testing.T) {
	now := time.Now()
	p := NewProfile(uuid.New())
	p.Climates.Add("alpine", 4, now.Add(-120*24*time.Hour))
	p.Climates.Add("tropical", 3, now)

	// Alpine once dominated, but at 120 days old it decays to 2.0 while the
	// freshly reinforced tropical keeps its full 3.0 and becomes the maximum.
	snap := p.Snapshot(now, DefaultConfidenceThreshold)
	assert.InDelta(t, 1.0, snap.Climates["tropical"], 1e-9)
	assert.InDelta(t, 2.0/3.0, snap.Climates["alpine"], 1e-9)
}

func TestProfile_StaleEntryCanDecayBelowThreshold(t *testing.T) {
	now := time.Now()
	p := NewProfile(uuid.New())
	p.Activities.Add("surfing", 2, now)
	p.Activities.Add("skiing", 1, now)

	// Both clear the threshold while fresh.
	fresh := p.Snapshot(now, DefaultConfidenceThreshold)
	assert.InDelta(t, 0.5, fresh.Activities["skiing"], 1e-9)

	// Four months later only surfing was reinforced; skiing decays to
	// 0.5/2.2 and drops out of the view.
	later := now.Add(120 * 24 * time.Hour)
	p.Activities.Add("surfing", 0.2, later)

	snap := p.Snapshot(later, DefaultConfidenceThreshold)
	assert.InDelta(t, 1.0, snap.Activities["surfing"], 1e-9)
	_, ok := snap.Activities["skiing"]
	assert.False(t, ok)
}

func TestProfile_SnapshotEmptyProfile(t *testing.T) {
	p := NewProfile(uuid.New())
	snap := p.Snapshot(time.Now(), DefaultConfidenceThreshold)

	require.NotNil(t, snap)
	assert.True(t, snap.Empty())
	assert.NotNil(t, snap.DestinationTypes)
	assert.False(t, snap.Budget.Known)
}

func TestBudgetStats(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		stats := budgetStats(nil)
		assert.False(t, stats.Known)
	})

	t.Run("odd count", func(t *testing.T) {
		stats := budgetStats([]float64{100, 300, 200})
		assert.True(t, stats.Known)
		assert.Equal(t, float64(100), stats.Min)
		assert.Equal(t, float64(300), stats.Max)
		assert.Equal(t, float64(200), stats.Median)
		assert.InDelta(t, 200, stats.Mean, 1e-9)
	})

	t.Run("even count", func(t *testing.T) {
		stats := budgetStats([]float64{100, 200, 300, 400})
		assert.Equal(t, float64(250), stats.Median)
		assert.InDelta(t, 250, stats.Mean, 1e-9)
	})
}

func TestAppendBounded(t *testing.T) {
	var history []float64
	for i := 1; i <= 25; i++ {
		history = appendBounded(history, float64(i), 20)
	}

	require.Len(t, history, 20)
	// Oldest samples rolled off, newest kept.
	assert.Equal(t, float64(6), history[0])
	assert.Equal(t, float64(25), history[19])
}

func TestSnapshot_EmptyOnNil(t *testing.T) {
	var snap *Snapshot
	assert.True(t, snap.Empty())
}
