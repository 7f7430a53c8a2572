package claimmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntervalsElapsed(t *testing.T) {
	tests := []struct {
		name       string
		now        int64
		next       int64
		interval   int64
		maxCatchup int64
		want       int64
	}{
		{"before due", 999, 1000, 100, 30, 0},
		{"exactly due", 1000, 1000, 100, 30, 1},
		{"just inside first interval", 1099, 1000, 100, 30, 1},
		{"second interval boundary", 1100, 1000, 100, 30, 2},
		{"ten intervals late", 1900, 1000, 100, 30, 10},
		{"capped at max catchup", 100000, 1000, 100, 30, 30},
		{"zero max catchup is uncapped", 4000, 1000, 100, 0, 31},
		{"zero interval", 5000, 1000, 0, 30, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intervalsElapsed(tt.now, tt.next, tt.interval, tt.maxCatchup)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEntitledAmount(t *testing.T) {
	t.Run("one day at 4 percent", func(t *testing.T) {
		// 6,000,000 units staked, 400 pips, one day:
		// floor(6000000*400*86400 / (10000*31536000)) = 657
		assert.Equal(t, int64(657), entitledAmount(6000000, 400, 86400))
	})

	t.Run("full year at full rate", func(t *testing.T) {
		assert.Equal(t, int64(1000000), entitledAmount(1000000, 10000, 31536000))
	})

	t.Run("numerator exceeds int64", func(t *testing.T) {
		// 5e15 * 10000 * 31536000 overflows int64 but the entitlement does
		// not.
		assert.Equal(t, int64(5000000000000000), entitledAmount(5000000000000000, 10000, 31536000))
	})

	t.Run("dust rounds to zero", func(t *testing.T) {
		assert.Equal(t, int64(0), entitledAmount(1, 400, 86400))
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		assert.Equal(t, int64(0), entitledAmount(0, 400, 86400))
		assert.Equal(t, int64(0), entitledAmount(100, 0, 86400))
		assert.Equal(t, int64(0), entitledAmount(100, 400, 0))
	})
}

func TestAssetUnits(t *testing.T) {
	t.Run("par price", func(t *testing.T) {
		assert.Equal(t, int64(500), assetUnits(500, 10000))
	})
	t.Run("asset worth two base units", func(t *testing.T) {
		assert.Equal(t, int64(250), assetUnits(500, 20000))
	})
	t.Run("asset worth half a base unit", func(t *testing.T) {
		assert.Equal(t, int64(1000), assetUnits(500, 5000))
	})
	t.Run("floors", func(t *testing.T) {
		assert.Equal(t, int64(333), assetUnits(1000, 30000))
	})
	t.Run("non positive", func(t *testing.T) {
		assert.Equal(t, int64(0), assetUnits(0, 10000))
		assert.Equal(t, int64(0), assetUnits(100, 0))
	})
}

func TestBaseValue(t *testing.T) {
	t.Run("round trips an even price", func(t *testing.T) {
		assert.Equal(t, int64(328), baseValue(assetUnits(328, 20000), 20000))
	})
	t.Run("drops conversion dust", func(t *testing.T) {
		assert.Equal(t, int64(999), baseValue(assetUnits(1000, 30000), 30000))
	})
	t.Run("non positive", func(t *testing.T) {
		assert.Equal(t, int64(0), baseValue(0, 10000))
		assert.Equal(t, int64(0), baseValue(100, 0))
	})
}

func TestPercentShare(t *testing.T) {
	assert.Equal(t, int64(50), percentShare(1000, 500))
	assert.Equal(t, int64(32), percentShare(657, 500))
	assert.Equal(t, int64(1000), percentShare(1000, 10000))
	assert.Equal(t, int64(0), percentShare(1000, 0))
	assert.Equal(t, int64(0), percentShare(0, 500))
}
