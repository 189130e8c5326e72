package classify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	want := map[string]Category{
		"completed":   Success,
		"succeeded":   Success,
		"in_progress": Info,
		"running":     Info,
		"scheduled":   Purple,
		"todo":        Neutral,
		"failed":      Danger,
		"blocked":     Danger,
	}
	for raw, c := range want {
		assert.Equal(t, c, ClassifyStatus(raw), raw)
		assert.True(t, KnownStatus(raw), raw)
	}

	for _, raw := range []string{"", "queued", "COMPLETED", "in progress", "done", "canceled"} {
		assert.Equal(t, Neutral, ClassifyStatus(raw), raw)
		assert.False(t, KnownStatus(raw), raw)
	}
}

func TestClassifyPriorityBands(t *testing.T) {
	for p := -5; p <= 10; p++ {
		got := ClassifyPriority(p)
		switch {
		case p >= 4:
			assert.Equal(t, Danger, got, "p=%d", p)
		case p == 3:
			assert.Equal(t, Warning, got, "p=%d", p)
		default:
			assert.Equal(t, Info, got, "p=%d", p)
		}
		assert.Equal(t, p >= 4, IsHighPriority(p), "p=%d", p)
	}
}

func TestPriorityLabel(t *testing.T) {
	assert.Equal(t, "P5 - High", PriorityLabel(5))
	assert.Equal(t, "P4 - High", PriorityLabel(4))
	assert.Equal(t, "P3 - Medium", PriorityLabel(3))
	assert.Equal(t, "P2 - Normal", PriorityLabel(2))
}

func TestClassifyTaskKind(t *testing.T) {
	assert.Equal(t, Danger, ClassifyTaskKind("repair"))
	assert.Equal(t, Info, ClassifyTaskKind("pm"))
	assert.Equal(t, Warning, ClassifyTaskKind("inspection"))
	assert.Equal(t, Neutral, ClassifyTaskKind("other"))
	assert.Equal(t, Neutral, ClassifyTaskKind("road_test"))
}

func TestCategoryStringIsTotal(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Categories() {
		s := c.String()
		assert.False(t, seen[s], "duplicate name %s", s)
		seen[s] = true
	}
	assert.Len(t, seen, 6)
	assert.Panics(t, func() { _ = fmt.Sprint(Category(42).String()) })
}
