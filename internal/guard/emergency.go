package guard

import (
	"runtime"
	"time"

	"github.com/mabhi256/vardig/utils"
)

// Limits holds the budgets the emergency guard enforces
type Limits struct {
	MaxNesting          int
	MaxCall             int
	MaxRuntime          time.Duration
	MemoryBudget        utils.MemorySize
	MemoryCheckInterval int // check memory every N emergency checks
}

// Emergency tracks nesting depth, runtime, memory growth and the number of
// top-level calls. All checks are advisory: they report, callers bail out.
type Emergency struct {
	limits Limits

	// Per top-level call state, cleared by Reset
	nestingLevel  int
	startTime     time.Time
	initialMemory uint64
	checks        int
	allIsOk       bool
	tripReason    string

	// Process-lifetime state
	callCounter int

	// Hooks for testing
	now      func() time.Time
	memAlloc func() uint64
}

// Stats is a snapshot of the guard used in report footers
type Stats struct {
	NestingLevel int
	MaxNesting   int
	CallCount    int
	MaxCall      int
	Elapsed      time.Duration
	MemoryUsed   utils.MemorySize
	Tripped      bool
	TripReason   string
}

// NewEmergency creates a guard with the given limits
func NewEmergency(limits Limits) *Emergency {
	if limits.MemoryCheckInterval < 1 {
		limits.MemoryCheckInterval = 1
	}

	e := &Emergency{
		limits:   limits,
		now:      time.Now,
		memAlloc: readHeapAlloc,
	}
	e.Reset()
	return e
}

// Reset starts a new top-level call. The call counter survives.
func (e *Emergency) Reset() {
	e.nestingLevel = 0
	e.startTime = e.now()
	e.initialMemory = e.memAlloc()
	e.checks = 0
	e.allIsOk = true
	e.tripReason = ""
}

// SetClock replaces the time source and restarts the runtime budget
func (e *Emergency) SetClock(now func() time.Time) {
	e.now = now
	e.startTime = now()
}

// UpOneNestingLevel must be paired with DownOneNestingLevel on every path
func (e *Emergency) UpOneNestingLevel() {
	e.nestingLevel++
}

// DownOneNestingLevel undoes UpOneNestingLevel
func (e *Emergency) DownOneNestingLevel() {
	e.nestingLevel--
}

// Level returns the current nesting depth
func (e *Emergency) Level() int {
	return e.nestingLevel
}

// CheckNesting reports true when the current depth exceeds the maximum
func (e *Emergency) CheckNesting() bool {
	return e.nestingLevel > e.limits.MaxNesting
}

// CheckEmergencyBreak reports true while runtime and memory are within budget.
// Once it reports false it keeps doing so until the next Reset.
func (e *Emergency) CheckEmergencyBreak() bool {
	if !e.allIsOk {
		return false
	}

	if elapsed := e.now().Sub(e.startTime); elapsed > e.limits.MaxRuntime {
		e.trip("runtime")
		return false
	}

	e.checks++
	if e.checks%e.limits.MemoryCheckInterval != 0 {
		return true
	}

	if e.memoryUsed() > e.limits.MemoryBudget {
		e.trip("memory")
		return false
	}

	return true
}

// CheckMaxCall counts one more top-level call and reports true when the
// ceiling has been exceeded.
func (e *Emergency) CheckMaxCall() bool {
	e.callCounter++
	return e.callCounter > e.limits.MaxCall
}

// CallCount returns the number of top-level calls counted so far
func (e *Emergency) CallCount() int {
	return e.callCounter
}

// Tripped reports whether the emergency break fired in this call
func (e *Emergency) Tripped() bool {
	return !e.allIsOk
}

// Stats returns a snapshot for reporting
func (e *Emergency) Stats() Stats {
	return Stats{
		NestingLevel: e.nestingLevel,
		MaxNesting:   e.limits.MaxNesting,
		CallCount:    e.callCounter,
		MaxCall:      e.limits.MaxCall,
		Elapsed:      e.now().Sub(e.startTime),
		MemoryUsed:   e.memoryUsed(),
		Tripped:      !e.allIsOk,
		TripReason:   e.tripReason,
	}
}

func (e *Emergency) trip(reason string) {
	e.allIsOk = false
	e.tripReason = reason
}

func (e *Emergency) memoryUsed() utils.MemorySize {
	current := e.memAlloc()
	if current <= e.initialMemory {
		return 0
	}
	return utils.MemorySize(current - e.initialMemory)
}

func readHeapAlloc() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}
