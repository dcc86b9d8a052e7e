package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Status is the verdict of one case.
type Status uint8

const (
	StatusPass Status = iota
	StatusFail
	StatusNotTested
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	case StatusNotTested:
		return "NOT TESTED"
	default:
		return fmt.Sprintf("Status(%d)", s)
	}
}

// Category names the kind of problem behind a failed or skipped case.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryAllocation
	CategoryMalformed
	CategoryCorruption
	CategoryAccuracy
	CategoryMissing
	// CategoryDescriptor marks vectors that do not fit the function's
	// declared formats or sizes.
	CategoryDescriptor
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return ""
	case CategoryAllocation:
		return "allocation"
	case CategoryMalformed:
		return "malformed"
	case CategoryCorruption:
		return "corruption"
	case CategoryAccuracy:
		return "accuracy"
	case CategoryMissing:
		return "missing"
	case CategoryDescriptor:
		return "descriptor"
	case CategoryInternal:
		return "internal"
	default:
		return fmt.Sprintf("Category(%d)", c)
	}
}

// CaseResult is the outcome of one test case.
type CaseResult struct {
	// Case is the 1-based row of a transform file or the case id of a
	// data-driven file.
	Case     int
	Name     string
	Status   Status
	Category Category
	Detail   string
	Err      error

	// Transform cases only. SINAD is NaN when no frame was scored.
	Frames int
	SINAD  float64
	EFB    int
}

func newCaseResult(n int, name string) CaseResult {
	return CaseResult{Case: n, Name: name, SINAD: math.NaN(), EFB: -1}
}

// finish sets the verdict from err.
func (r *CaseResult) finish(err error) {
	r.Err = err
	r.Status, r.Category = classify(err)

	if err != nil {
		r.Detail = err.Error()
	}
}

func (r CaseResult) String() string {
	s := fmt.Sprintf("case %d %s: %s", r.Case, r.Name, r.Status)
	if r.Category != CategoryNone {
		s += " (" + r.Category.String() + ")"
	}

	if !math.IsNaN(r.SINAD) {
		s += fmt.Sprintf(" sinad=%.2fdB efb=%d", r.SINAD, r.EFB)
	}

	if r.Detail != "" {
		s += ": " + r.Detail
	}

	return s
}

// Report collects the cases of one test file.
type Report struct {
	RunID    uuid.UUID
	Function string
	File     string
	Cases    []CaseResult

	// Calls and PerCall time the function under test.
	Calls   int64
	PerCall time.Duration
}

// Counts returns the number of cases per status.
func (r *Report) Counts() (pass, fail, notTested int) {
	for _, c := range r.Cases {
		switch c.Status {
		case StatusPass:
			pass++
		case StatusFail:
			fail++
		case StatusNotTested:
			notTested++
		}
	}

	return pass, fail, notTested
}

// Passed reports whether no case failed.
func (r *Report) Passed() bool {
	_, fail, _ := r.Counts()
	return fail == 0
}

// Status summarizes the file: FAIL if any case failed, NOT TESTED if no
// case ran, PASS otherwise.
func (r *Report) Status() Status {
	pass, fail, _ := r.Counts()

	switch {
	case fail > 0:
		return StatusFail
	case pass == 0:
		return StatusNotTested
	default:
		return StatusPass
	}
}

// MinSINAD returns the lowest SINAD over the scored cases, or NaN.
func (r *Report) MinSINAD() float64 {
	m := math.NaN()

	for _, c := range r.Cases {
		if math.IsNaN(c.SINAD) {
			continue
		}

		if math.IsNaN(m) || c.SINAD < m {
			m = c.SINAD
		}
	}

	return m
}

func (r *Report) add(c CaseResult) {
	r.Cases = append(r.Cases, c)
}
