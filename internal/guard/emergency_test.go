package guard

import (
	"testing"
	"time"

	"github.com/mabhi256/vardig/utils"
	"github.com/stretchr/testify/assert"
)

type fakeEnv struct {
	now   time.Time
	alloc uint64
}

func newTestEmergency(limits Limits) (*Emergency, *fakeEnv) {
	env := &fakeEnv{now: time.Unix(1000, 0), alloc: 1 << 20}
	e := NewEmergency(limits)
	e.now = func() time.Time { return env.now }
	e.memAlloc = func() uint64 { return env.alloc }
	e.Reset()
	return e, env
}

func defaultLimits() Limits {
	return Limits{
		MaxNesting:          3,
		MaxCall:             2,
		MaxRuntime:          time.Second,
		MemoryBudget:        utils.MB,
		MemoryCheckInterval: 1,
	}
}

func TestEmergency(t *testing.T) {
	t.Run("NestingLimit", testNestingLimit)
	t.Run("RuntimeTripIsSticky", testRuntimeTripIsSticky)
	t.Run("MemoryTrip", testMemoryTrip)
	t.Run("MemoryCheckInterval", testMemoryCheckInterval)
	t.Run("MaxCallSurvivesReset", testMaxCallSurvivesReset)
}

func testNestingLimit(t *testing.T) {
	e, _ := newTestEmergency(defaultLimits())

	for i := 0; i < 3; i++ {
		e.UpOneNestingLevel()
		assert.False(t, e.CheckNesting(), "level %d should be allowed", e.Level())
	}

	e.UpOneNestingLevel()
	assert.True(t, e.CheckNesting())

	for i := 0; i < 4; i++ {
		e.DownOneNestingLevel()
	}
	assert.Equal(t, 0, e.Level())
}

func testRuntimeTripIsSticky(t *testing.T) {
	e, env := newTestEmergency(defaultLimits())
	assert.True(t, e.CheckEmergencyBreak())

	env.now = env.now.Add(2 * time.Second)
	assert.False(t, e.CheckEmergencyBreak())

	// going back in time does not re-arm the guard
	env.now = env.now.Add(-2 * time.Second)
	assert.False(t, e.CheckEmergencyBreak())
	assert.Equal(t, "runtime", e.Stats().TripReason)

	e.Reset()
	assert.True(t, e.CheckEmergencyBreak())
}

func testMemoryTrip(t *testing.T) {
	e, env := newTestEmergency(defaultLimits())
	env.alloc += uint64(utils.MB / 2)
	assert.True(t, e.CheckEmergencyBreak())

	env.alloc += uint64(utils.MB)
	assert.False(t, e.CheckEmergencyBreak())
	assert.True(t, e.Tripped())
	assert.Equal(t, "memory", e.Stats().TripReason)
}

func testMemoryCheckInterval(t *testing.T) {
	limits := defaultLimits()
	limits.MemoryCheckInterval = 4
	e, env := newTestEmergency(limits)
	env.alloc += uint64(2 * utils.MB)

	// memory is only sampled every fourth check
	assert.True(t, e.CheckEmergencyBreak())
	assert.True(t, e.CheckEmergencyBreak())
	assert.True(t, e.CheckEmergencyBreak())
	assert.False(t, e.CheckEmergencyBreak())
}

func testMaxCallSurvivesReset(t *testing.T) {
	e, _ := newTestEmergency(defaultLimits())

	assert.False(t, e.CheckMaxCall())
	e.Reset()
	assert.False(t, e.CheckMaxCall())
	e.Reset()
	assert.True(t, e.CheckMaxCall())
	assert.Equal(t, 3, e.CallCount())
}

func TestSetClockRestartsBudget(t *testing.T) {
	e := NewEmergency(defaultLimits())
	now := time.Unix(5000, 0)
	e.SetClock(func() time.Time { return now })

	assert.True(t, e.CheckEmergencyBreak())
	now = now.Add(2 * time.Second)
	assert.False(t, e.CheckEmergencyBreak())
	assert.Equal(t, "runtime", e.Stats().TripReason)
}
