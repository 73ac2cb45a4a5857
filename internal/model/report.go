package model

import (
	"time"

	"github.com/mabhi256/vardig/internal/guard"
)

// ReportKind tells dumps and backtraces apart
type ReportKind int

const (
	ReportDump ReportKind = iota
	ReportBacktrace
)

// Report is everything a renderer needs for one top-level call
type Report struct {
	Kind        ReportKind
	Title       string
	VarName     string
	CallerFile  string
	CallerLine  int
	GeneratedAt time.Time
	Root        *Node
	Stats       guard.Stats
	Messages    []string
}

// AddMessage records a notice shown above the tree (emergency break, limits, ...)
func (r *Report) AddMessage(msg string) {
	r.Messages = append(r.Messages, msg)
}
