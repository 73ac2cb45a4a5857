package analyzer

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"reflect"
	"runtime/debug"
	"slices"
	"strings"
	"testing"

	"github.com/mabhi256/vardig/internal/config"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type getterSubject struct{}

func (getterSubject) GetA() int              { return 1 }
func (getterSubject) GetB() int              { panic("broken getter") }
func (getterSubject) GetC() (int, error)     { return 0, errors.New("nope") }
func (getterSubject) GetD() (string, error)  { return "d", nil }
func (getterSubject) Get() int               { return 0 }
func (getterSubject) GetE(x int) int         { return x }
func (getterSubject) GetF() (int, int, bool) { return 1, 2, true }

func TestGetterPoller(t *testing.T) {
	root := newTestSession(nil, "g", "").Analyse(getterSubject{}, "g")

	group := root.FindChild("Getter")
	require.NotNil(t, group)
	require.Len(t, group.Children, 2)

	a := group.Children[0]
	assert.Equal(t, "GetA", a.Name)
	assert.Equal(t, "1", a.Normal)
	assert.Equal(t, "g.GetA()", a.Source)
	assert.Equal(t, "getter int", a.Type)

	assert.Equal(t, "GetD", group.Children[1].Name)
	assert.Equal(t, `"d"`, group.Children[1].Normal)
}

func TestGetterDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.AnalyseGetter = false
	root := newTestSession(cfg, "", "").Analyse(getterSubject{}, "g")
	assert.Nil(t, root.FindChild("Getter"))
}

type stringer struct {
	n int
}

func (s *stringer) String() string { return fmt.Sprintf("stringer(%d)", s.n) }

type panicky struct{}

func (*panicky) String() string { panic("no") }

func TestDebugMethods(t *testing.T) {
	t.Run("called", func(t *testing.T) {
		root := newTestSession(nil, "s", "").Analyse(&stringer{n: 3}, "s")
		group := root.FindChild("Debug methods")
		require.NotNil(t, group)
		call := group.FindChild("String")
		require.NotNil(t, call)
		assert.Equal(t, `"stringer(3)"`, call.Normal)
		assert.Equal(t, "s.String()", call.Source)
	})

	t.Run("denied", func(t *testing.T) {
		cfg := config.Default()
		cfg.DebugMethodsDeny = "*analyzer.stringer.String"
		root := newTestSession(cfg, "", "").Analyse(&stringer{n: 3}, "s")
		assert.Nil(t, root.FindChild("Debug methods"))
	})

	t.Run("panicking method is left out", func(t *testing.T) {
		root := newTestSession(nil, "", "").Analyse(&panicky{}, "p")
		assert.Nil(t, root.FindChild("Debug methods"))
	})
}

type ring struct {
	items []string
}

func (r *ring) Len() int         { return len(r.items) }
func (r *ring) At(i int) string  { return r.items[i] }
func (r *ring) label() string    { return "ring" }
func (r *ring) Join(sep string, extra ...string) string {
	return strings.Join(append(slices.Clone(r.items), extra...), sep)
}

func TestArrayAccess(t *testing.T) {
	root := newTestSession(nil, "r", "").Analyse(&ring{items: []string{"x", "y"}}, "r")

	count, ok := root.GetData("Count")
	require.True(t, ok)
	assert.Equal(t, "2", count)

	access := root.FindChild("Array access")
	require.NotNil(t, access)
	require.Len(t, access.Children, 2)
	assert.Equal(t, `"y"`, access.Children[1].Normal)
	assert.Equal(t, "r.At(1)", access.Children[1].Source)
}

func TestArrayAccessLimit(t *testing.T) {
	cfg := config.Default()
	cfg.IterationLimit = 1
	root := newTestSession(cfg, "", "").Analyse(&ring{items: []string{"x", "y", "z"}}, "r")

	access := root.FindChild("Array access")
	require.NotNil(t, access)
	assert.Len(t, access.Children, 1)
	truncated, _ := access.GetData("Truncated")
	assert.Equal(t, "showing 1 of 3", truncated)
}

func TestMethodWalker(t *testing.T) {
	root := newTestSession(nil, "r", "").Analyse(&ring{items: []string{"x"}}, "r")

	methods := root.FindChild("Methods")
	require.NotNil(t, methods)

	var names []string
	for _, m := range methods.Children {
		names = append(names, m.Name)
	}
	// unexported methods need the source index
	assert.Equal(t, []string{"At", "Join", "Len"}, names)

	join := methods.FindChild("Join")
	mods, _ := join.GetData("Modifiers")
	assert.Equal(t, "public pointer receiver variadic", mods)
	params, _ := join.GetData("Parameters")
	assert.Equal(t, "(string, ...string)", params)
	assert.Empty(t, join.Source)

	length := methods.FindChild("Len")
	assert.Equal(t, "r.Len()", length.Source)
}

type leaf struct {
	V int
}

func (l *leaf) Value() int { return l.V }

type pair struct {
	Left  *leaf
	Right *leaf
}

func TestMethodsRenderedOncePerType(t *testing.T) {
	root := newTestSession(nil, "", "").Analyse(&pair{Left: &leaf{1}, Right: &leaf{2}}, "p")

	first := root.Path("Left", "Methods")
	second := root.Path("Right", "Methods")
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.False(t, first.IsRecursion())
	assert.True(t, second.IsRecursion())
	assert.Equal(t, first.DomID, second.RecursionTarget)
}

type bag struct {
	m map[string]int
}

func (b *bag) All() iter.Seq2[string, int] { return maps.All(b.m) }

func TestIteratorFetch(t *testing.T) {
	root := newTestSession(nil, "b", "").Analyse(&bag{m: map[string]int{"y": 2, "x": 1}}, "b")

	all := root.FindChild("All")
	require.NotNil(t, all)
	assert.Equal(t, "maps.Collect(b.All())", all.Source)
	require.Len(t, all.Children, 2)
	assert.Equal(t, `"x"`, all.Children[0].Name)
	assert.Equal(t, `maps.Collect(b.All())["x"]`, all.Children[0].Source)
}

func TestDirectIterator(t *testing.T) {
	seq := slices.Values([]int{4, 5, 6})
	root := newTestSession(nil, "seq", "").Analyse(seq, "seq")

	assert.Equal(t, model.KindClosure, root.Kind)
	require.Len(t, root.Children, 1)
	values := root.Children[0]
	require.Len(t, values.Children, 3)
	assert.Equal(t, "6", values.Children[2].Normal)
	assert.Equal(t, "slices.Collect(seq)[2]", values.Children[2].Source)
}

func TestIteratorLimit(t *testing.T) {
	cfg := config.Default()
	cfg.IterationLimit = 5

	var endless iter.Seq[int] = func(yield func(int) bool) {
		for i := 0; ; i++ {
			if !yield(i) {
				return
			}
		}
	}

	root := newTestSession(cfg, "", "").Analyse(endless, "endless")
	require.Len(t, root.Children, 1)
	assert.Len(t, root.Children[0].Children, 5)
	_, truncated := root.Children[0].GetData("Truncated")
	assert.True(t, truncated)
}

func TestClosure(t *testing.T) {
	fn := func(a int, rest ...string) (bool, error) { return false, nil }
	root := newTestSession(nil, "", "").Analyse(fn, "fn")

	assert.Equal(t, model.KindClosure, root.Kind)
	name, _ := root.GetData("Name")
	assert.Contains(t, name, "TestClosure")
	params, _ := root.GetData("Parameters")
	assert.Equal(t, "(int, ...string)", params)
	results, _ := root.GetData("Results")
	assert.Equal(t, "(bool, error)", results)
	declared, _ := root.GetData("Declared in")
	assert.Contains(t, declared, "pollers_test.go:")
}

func TestErrorChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", errors.Join(errors.New("one"), errors.New("two")))
	root := newTestSession(nil, "", "").Analyse(err, "err")

	chain := root.FindChild("Error chain")
	require.NotNil(t, chain)
	require.Len(t, chain.Children, 4)
	assert.Equal(t, `"outer: one\ntwo"`, chain.Children[0].Normal)
	assert.Equal(t, `"one"`, chain.Children[2].Normal)
	depth, _ := chain.Children[3].GetData("Depth")
	assert.Equal(t, "2", depth)
	assert.Empty(t, chain.Children[0].Source)
}

type dynamicSubject struct {
	Name string `default:"anonymous" json:"name"`
}

func (d *dynamicSubject) DynamicFields() map[string]any {
	return map[string]any{"extra": 42}
}

func TestDynamicFieldsAndDefaults(t *testing.T) {
	root := newTestSession(nil, "d", "").Analyse(&dynamicSubject{}, "d")

	name := root.FindChild("Name")
	require.NotNil(t, name)
	def, _ := name.GetData("Default")
	assert.Equal(t, "anonymous", def)
	attrs, _ := name.GetData("Attributes")
	assert.Equal(t, "default: anonymous, json: name", attrs)

	extra := root.FindChild(`"extra"`)
	require.NotNil(t, extra)
	assert.Equal(t, "dynamic int", extra.Type)
	assert.Equal(t, `d.DynamicFields()["extra"]`, extra.Source)
}

func TestCallUntrusted(t *testing.T) {
	out := CallUntrusted(reflect.ValueOf(func() int { panic("boom") }))
	assert.False(t, out.OK())
	assert.ErrorContains(t, out.Err, "boom")

	out = CallUntrusted(reflect.ValueOf(func(a, b int) int { return a + b }), reflect.ValueOf(1), reflect.ValueOf(2))
	require.True(t, out.OK())
	assert.Equal(t, int64(3), out.Values[0].Int())

	var p *int
	assert.Error(t, Protect(func() { _ = *p }))

	// the fault trap is restored after every call
	assert.False(t, debug.SetPanicOnFault(false))
}

func TestBacktrace(t *testing.T) {
	frames := CaptureFrames(0)
	require.NotEmpty(t, frames)

	root := newTestSession(nil, "", "").AnalyseBacktrace(frames)
	require.NotEmpty(t, root.Children)

	top := root.Children[0]
	assert.Contains(t, top.Normal, "TestBacktrace")
	source, _ := top.GetData("Source")
	assert.Contains(t, source, "> ")
	assert.Contains(t, source, "CaptureFrames(0)")
	assert.Empty(t, top.Source)
}

type countingRing struct {
	calls int
}

func (r *countingRing) Len() int { return 3 }

func (r *countingRing) At(i int) int {
	r.calls++
	return i
}

func (r *countingRing) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		r.calls++
		for i := range 3 {
			if !yield(i) {
				return
			}
		}
	}
}

func TestIteratorsRespectNestingLimit(t *testing.T) {
	t.Run("denied", func(t *testing.T) {
		cfg := config.Default()
		cfg.MaxNesting = 1
		r := &countingRing{}

		s := newTestSession(cfg, "", "")
		root := s.Analyse(r, "r")

		assert.Nil(t, root.FindChild("Array access"))
		assert.Nil(t, root.FindChild("All"))
		assert.Zero(t, r.calls)
		assert.Equal(t, 0, s.Emergency().Level())
	})

	t.Run("allowed", func(t *testing.T) {
		cfg := config.Default()
		cfg.MaxNesting = 2
		r := &countingRing{}

		root := newTestSession(cfg, "", "").Analyse(r, "r")

		access := root.FindChild("Array access")
		require.NotNil(t, access)
		assert.Len(t, access.Children, 3)
		require.NotNil(t, root.FindChild("All"))
		assert.Equal(t, 4, r.calls)
	})
}
