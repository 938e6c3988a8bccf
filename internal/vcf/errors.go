package vcf

import (
	"fmt"

	"go.uber.org/zap"
)

// ErrorKind classifies a structural parse failure.
type ErrorKind int

const (
	// IoFailure indicates the underlying byte source returned an error.
	IoFailure ErrorKind = iota
	// MalformedInput indicates the stream has no readable #CHROM header.
	MalformedInput
	// DuplicateField indicates a plan has a case-insensitive name collision
	// that a case-insensitive-key sink cannot represent.
	DuplicateField
	// InvalidPlan indicates contradictory overrides or an unknown type token.
	InvalidPlan
)

func (k ErrorKind) String() string {
	switch k {
	case IoFailure:
		return "IoFailure"
	case MalformedInput:
		return "MalformedInput"
	case DuplicateField:
		return "DuplicateField"
	case InvalidPlan:
		return "InvalidPlan"
	default:
		return "Unknown"
	}
}

// ParseError is a structural failure, optionally anchored to a line number.
// A Line of zero means the failure is not tied to a specific data line
// (e.g. a missing header or a plan-resolution error).
type ParseError struct {
	Kind    ErrorKind
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("vcf: %s at line %d: %s", e.Kind, e.Line, e.Message)
	}
	return fmt.Sprintf("vcf: %s: %s", e.Kind, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

func newIoFailure(line int, err error) *ParseError {
	return &ParseError{Kind: IoFailure, Line: line, Message: err.Error(), Err: err}
}

func newMalformedInput(line int, msg string) *ParseError {
	return &ParseError{Kind: MalformedInput, Line: line, Message: msg}
}

func newInvalidPlan(msg string) *ParseError {
	return &ParseError{Kind: InvalidPlan, Message: msg}
}

func newDuplicateField(name string) *ParseError {
	return &ParseError{Kind: DuplicateField, Message: fmt.Sprintf("case-insensitive collision on %q", name)}
}

// WarningKind classifies a recoverable parse anomaly.
type WarningKind int

const (
	DuplicateHeader WarningKind = iota
	UnknownField
	ParseValue
	ExtraSamples
)

func (k WarningKind) String() string {
	switch k {
	case DuplicateHeader:
		return "DuplicateHeader"
	case UnknownField:
		return "UnknownField"
	case ParseValue:
		return "ParseValue"
	case ExtraSamples:
		return "ExtraSamples"
	default:
		return "Unknown"
	}
}

// Warning is a non-fatal anomaly encountered while parsing a record. The
// offending cell is always filled with the field's configured fill value.
type Warning struct {
	Kind    WarningKind
	Line    int
	Field   string
	Message string
}

func (w Warning) String() string {
	if w.Field != "" {
		return fmt.Sprintf("line %d: %s(%s): %s", w.Line, w.Kind, w.Field, w.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", w.Line, w.Kind, w.Message)
}

// warningSink is the single place a recoverable anomaly passes through: it
// logs via the caller's zap.Logger and, for the anomalies spec.md assigns a
// WarningKind, records a Warning the caller can retrieve afterward through
// Engine.Warnings. Anomalies outside the four defined kinds (a malformed
// header attribute list, say) are logged but not collected.
type warningSink struct {
	logger   *zap.Logger
	warnings []Warning
}

func newWarningSink(logger *zap.Logger) *warningSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &warningSink{logger: logger}
}

// warn logs msg and records a Warning of the given kind.
func (s *warningSink) warn(kind WarningKind, line int, field, msg string, fields ...zap.Field) {
	s.logger.Warn(msg, fields...)
	s.warnings = append(s.warnings, Warning{Kind: kind, Line: line, Field: field, Message: msg})
}

// log emits msg without recording a Warning, for anomalies outside the four
// defined kinds.
func (s *warningSink) log(msg string, fields ...zap.Field) {
	s.logger.Warn(msg, fields...)
}
