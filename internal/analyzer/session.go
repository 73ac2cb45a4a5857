package analyzer

import (
	"io"
	"log/slog"
	"reflect"

	"github.com/mabhi256/vardig/internal/codegen"
	"github.com/mabhi256/vardig/internal/comment"
	"github.com/mabhi256/vardig/internal/config"
	"github.com/mabhi256/vardig/internal/guard"
	"github.com/mabhi256/vardig/internal/model"
	"github.com/mabhi256/vardig/internal/registry"
)

// GlobalsMarker is a map key reserved for the global scope anchor. Entries
// under it are never rendered.
const GlobalsMarker = "__vardig_globals__"

// Options configures a Session
type Options struct {
	Config    *config.Config
	Emergency *guard.Emergency
	Resolver  *comment.Resolver
	Index     *comment.Index
	Logger    *slog.Logger

	// Scope is the expression the dump was called with, SelfToken the
	// receiver name of the method the call was made from.
	Scope     string
	SelfToken string
}

// Session holds the state of one top-level analysis call. A new session
// starts with an empty hive, so nothing seen in an earlier call leaks in.
type Session struct {
	cfg       *config.Config
	emergency *guard.Emergency
	hive      *registry.Hive
	codegen   *codegen.Codegen
	resolver  *comment.Resolver
	index     *comment.Index
	logger    *slog.Logger
	callCount int
}

// LimitsFromConfig extracts the guard limits from a configuration
func LimitsFromConfig(cfg *config.Config) guard.Limits {
	return guard.Limits{
		MaxNesting:          cfg.MaxNesting,
		MaxCall:             cfg.MaxCall,
		MaxRuntime:          cfg.MaxRuntime,
		MemoryBudget:        cfg.MemoryBudget,
		MemoryCheckInterval: cfg.MemoryCheckInterval,
	}
}

// NewSession creates the state for one top-level call. Missing options fall
// back to defaults; the emergency guard is reset but its call counter kept.
func NewSession(opts Options) *Session {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	emergency := opts.Emergency
	if emergency == nil {
		emergency = guard.NewEmergency(LimitsFromConfig(cfg))
	}
	emergency.Reset()

	resolver := opts.Resolver
	if resolver == nil {
		resolver = comment.NewResolver()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	gen := codegen.New()
	gen.SetScope(opts.Scope, opts.SelfToken)

	return &Session{
		cfg:       cfg,
		emergency: emergency,
		hive:      registry.NewHive(),
		codegen:   gen,
		resolver:  resolver,
		index:     opts.Index,
		logger:    logger,
		callCount: emergency.CallCount(),
	}
}

// Emergency returns the guard of this session
func (s *Session) Emergency() *guard.Emergency { return s.emergency }

// Hive returns the identity registry of this session
func (s *Session) Hive() *registry.Hive { return s.hive }

// Codegen returns the code generator of this session
func (s *Session) Codegen() *codegen.Codegen { return s.codegen }

// Analyse walks v and returns the root node with generated sources filled in.
// A nil interface yields a nil node, never a nil result.
func (s *Session) Analyse(v any, name string) *model.Node {
	root := s.AnalysisHub(reflect.ValueOf(v), Context{Name: name})
	if root == nil {
		root = model.NewNode(name, "", model.KindInfo)
		root.Normal = "analysis aborted"
		root.AddData("Reason", s.emergency.Stats().TripReason)
	}

	s.codegen.Apply(root)

	if s.emergency.Tripped() {
		stats := s.emergency.Stats()
		s.logger.Warn("emergency break during analysis",
			"reason", stats.TripReason,
			"elapsed", stats.Elapsed,
			"memory", stats.MemoryUsed.String(),
		)
	}
	return root
}

// Context carries how a value was reached from its parent
type Context struct {
	Name           string
	ConnectorLeft  string
	ConnectorRight string

	// TypePrefix is prepended to the type tag, e.g. "private"
	TypePrefix  string
	CodegenType model.CodegenType
	NoCodegen   bool

	// TypeAssertion names the dynamic type of a value read through an interface
	TypeAssertion string

	// Pointee marks a value reached by dereferencing the pointer being
	// analysed; the pointer already holds its identity.
	Pointee bool

	// ElementLeft and ElementRight override the element connectors used when
	// the value is analysed as an array.
	ElementLeft  string
	ElementRight string

	Data []model.KeyValue
}

func (ctx Context) elementConnectors() (string, string) {
	if ctx.ElementLeft != "" || ctx.ElementRight != "" {
		return ctx.ElementLeft, ctx.ElementRight
	}
	return "[", "]"
}
