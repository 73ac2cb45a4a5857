package caller

import (
	"testing"

	"github.com/mabhi256/vardig/internal/codegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `package demo

import "example.com/vardig"

type Server struct{ cfg Config }

func (s *Server) Start() {
	vardig.Dump(s)
	vardig.Dump(s.cfg.Routes["api"])
	vardig.Dump(a); vardig.Dump(b)
	vardig.Dump()
}

func helper(items []int) {
	Dump(items)
}
`

func TestFromSource(t *testing.T) {
	tests := []struct {
		name     string
		line     int
		wantVar  string
		wantSelf string
	}{
		{"receiver", 8, "s", "s"},
		{"nested expression", 9, `s.cfg.Routes["api"]`, "s"},
		{"ambiguous line", 10, codegen.UnknownScope, ""},
		{"no arguments", 11, codegen.UnknownScope, ""},
		{"plain function", 15, "items", ""},
		{"no call", 3, codegen.UnknownScope, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site, err := FromSource("demo.go", []byte(sample), tt.line, "Dump")
			require.NoError(t, err)
			assert.Equal(t, tt.wantVar, site.VarName)
			assert.Equal(t, tt.wantSelf, site.SelfToken)
		})
	}
}

func TestFromSourceParseError(t *testing.T) {
	site, err := FromSource("bad.go", []byte("package"), 1, "Dump")
	assert.Error(t, err)
	assert.Equal(t, codegen.UnknownScope, site.VarName)
}

type probe struct{}

func (p *probe) run() Site {
	return capture(p)
}

func capture(v any) Site {
	return Find(1, "capture")
}

func TestFindReadsOwnSource(t *testing.T) {
	site := (&probe{}).run()
	assert.Equal(t, "p", site.VarName)
	assert.Equal(t, "p", site.SelfToken)
	assert.Contains(t, site.File, "caller_test.go")
	assert.NotZero(t, site.Line)
}
