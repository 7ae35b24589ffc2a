package sphere

import (
	"errors"
	"fmt"
	"math"
)

// ValidationSeverity indicates whether a finding blocks construction.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks construction
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single configuration finding.
type ValidationError struct {
	Field    string
	Message  string
	Severity ValidationSeverity
	Err      error // sentinel for errors.Is, nil for warnings
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Field, e.Message)
}

func (e ValidationError) Unwrap() error { return e.Err }

// Validate checks c and returns every finding. It never mutates c.
func (c Config) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateSize(c.Size)...)
	errs = append(errs, validateQuadsPerRow(c.QuadsPerRow)...)
	errs = append(errs, validateSubdivisions(c.StartingSubdivisions, c.SubdivisionDistances)...)
	errs = append(errs, validateScale(c)...)
	errs = append(errs, validateWeldTolerance(c)...)
	return errs
}

// Err joins the blocking findings of Validate into one error, or returns
// nil when c can be built.
func (c Config) Err() error {
	var errs []error
	for _, v := range c.Validate() {
		if v.Severity == SeverityError {
			errs = append(errs, v)
		}
	}
	return errors.Join(errs...)
}

// Warnings returns the non-blocking findings of Validate.
func (c Config) Warnings() []ValidationError {
	var warnings []ValidationError
	for _, v := range c.Validate() {
		if v.Severity == SeverityWarning {
			warnings = append(warnings, v)
		}
	}
	return warnings
}

func validateSize(size float64) []ValidationError {
	if size > 0 && !math.IsInf(size, 0) {
		return nil
	}
	return []ValidationError{{
		Field:    "size",
		Message:  fmt.Sprintf("size is %v, must be positive and finite", size),
		Severity: SeverityError,
		Err:      ErrInvalidSize,
	}}
}

func validateQuadsPerRow(n int) []ValidationError {
	if n >= 1 && n <= MaxQuadsPerRow {
		return nil
	}
	return []ValidationError{{
		Field:    "quads_per_row",
		Message:  fmt.Sprintf("quads per row is %d, must be between 1 and %d", n, MaxQuadsPerRow),
		Severity: SeverityError,
		Err:      ErrInvalidQuadsPerRow,
	}}
}

func validateSubdivisions(starting int, distances []float64) []ValidationError {
	var errs []ValidationError
	if starting < 0 || starting > MaxStartingSubdivisions {
		errs = append(errs, ValidationError{
			Field: "starting_subdivisions",
			Message: fmt.Sprintf("starting subdivisions is %d, must be between 0 and %d",
				starting, MaxStartingSubdivisions),
			Severity: SeverityError,
			Err:      ErrInvalidSubdivisions,
		})
	}
	if len(distances) > MaxSubdivisionLevels {
		errs = append(errs, ValidationError{
			Field: "subdivision_distances",
			Message: fmt.Sprintf("%d distance levels, at most %d allowed",
				len(distances), MaxSubdivisionLevels),
			Severity: SeverityError,
			Err:      ErrTooManyLevels,
		})
	}
	for i, d := range distances {
		if d < 0 || math.IsNaN(d) {
			errs = append(errs, ValidationError{
				Field:    fmt.Sprintf("subdivision_distances[%d]", i),
				Message:  fmt.Sprintf("distance is %v, must not be negative", d),
				Severity: SeverityError,
				Err:      ErrInvalidDistance,
			})
		}
	}
	// Deeper levels should only split closer to the observer. Not enforced.
	for i := 1; i < len(distances); i++ {
		if distances[i] > distances[i-1] {
			errs = append(errs, ValidationError{
				Field: fmt.Sprintf("subdivision_distances[%d]", i),
				Message: fmt.Sprintf("distance %v exceeds the previous level's %v; LOD will not be monotonic",
					distances[i], distances[i-1]),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

func validateScale(c Config) []ValidationError {
	var errs []ValidationError
	for _, axis := range []struct {
		name string
		v    float64
	}{{"x", c.Scale.X}, {"y", c.Scale.Y}, {"z", c.Scale.Z}} {
		if axis.v == 0 || math.IsNaN(axis.v) || math.IsInf(axis.v, 0) {
			errs = append(errs, ValidationError{
				Field:    "scale." + axis.name,
				Message:  fmt.Sprintf("scale %s is %v, must be non-zero and finite", axis.name, axis.v),
				Severity: SeverityError,
				Err:      ErrInvalidScale,
			})
		}
	}
	return errs
}

// validateWeldTolerance rejects an explicit tolerance that could merge the
// corners of the smallest leaf the configuration can produce.
func validateWeldTolerance(c Config) []ValidationError {
	edge := c.MinLeafEdge()
	if c.WeldTolerance <= 0 || edge <= 0 || c.WeldTolerance < edge/4 {
		return nil
	}
	return []ValidationError{{
		Field: "weld_tolerance",
		Message: fmt.Sprintf("weld tolerance %g is not below a quarter of the smallest leaf edge %g",
			c.WeldTolerance, edge),
		Severity: SeverityError,
		Err:      ErrInvalidWeldTolerance,
	}}
}
