package testeng

import (
	"github.com/cwbudde/algo-testeng/internal/engine"
	"github.com/cwbudde/algo-testeng/internal/fut"
)

// Harness types. The canonical definitions are in internal/engine.
type (
	Context    = engine.Context
	Config     = engine.Config
	Options    = engine.Options
	Fullness   = engine.Fullness
	Descriptor = engine.Descriptor
	Mode       = engine.Mode
	Table      = engine.Table
	TableRow   = engine.TableRow
	Report     = engine.Report
	CaseResult = engine.CaseResult
	Status     = engine.Status
	Category   = engine.Category
)

// Registry types. The canonical definitions are in internal/fut.
type (
	Registry = fut.Registry
	Entry    = fut.Entry
)

// Fullness levels.
const (
	Brief     = engine.Brief
	Full      = engine.Full
	Sanity    = engine.Sanity
	AllLevels = engine.AllLevels
)

// Call modes of transform cases.
const (
	ModeOutOfPlace = engine.ModeOutOfPlace
	ModeInPlace    = engine.ModeInPlace
)

// Case verdicts.
const (
	StatusPass      = engine.StatusPass
	StatusFail      = engine.StatusFail
	StatusNotTested = engine.StatusNotTested
)
