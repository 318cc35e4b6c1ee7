package gdbindex

import (
	"errors"
	"fmt"
)

// unsupportedFormatError reports debug info that uses a DWARF feature this
// indexer does not implement: DWARF64, unknown versions, unit types, forms
// or address sizes. The producer's output is valid, we just can't index it.
type unsupportedFormatError struct {
	msg string
}

func (e unsupportedFormatError) Error() string {
	return "unsupported debug info: " + e.msg
}

func unsupportedf(format string, args ...interface{}) error {
	return unsupportedFormatError{msg: fmt.Sprintf(format, args...)}
}

// corruptionError reports debug info that is structurally inconsistent:
// truncated sections, abbreviation tables missing the referenced record, or
// name entries pointing at no known compilation unit. There is no partial
// index; the whole build aborts.
type corruptionError struct {
	section string
	offset  uint64
	msg     string
}

func (e corruptionError) Error() string {
	if e.section == "" {
		return "corrupted debug info: " + e.msg
	}
	return fmt.Sprintf("corrupted debug info: %s at offset 0x%x: %s", e.section, e.offset, e.msg)
}

func corruptf(section string, offset uint64, format string, args ...interface{}) error {
	return corruptionError{section: section, offset: offset, msg: fmt.Sprintf(format, args...)}
}

// IsUnsupportedFormat reports whether err (or any error it wraps) signals a
// DWARF feature outside the indexer's scope.
func IsUnsupportedFormat(err error) bool {
	var e unsupportedFormatError
	return errors.As(err, &e)
}

// IsCorruption reports whether err (or any error it wraps) signals
// mismatched or truncated debug info.
func IsCorruption(err error) bool {
	var e corruptionError
	return errors.As(err, &e)
}

func errorClass(err error) string {
	switch {
	case IsUnsupportedFormat(err):
		return "unsupported_format"
	case IsCorruption(err):
		return "corruption"
	default:
		return "other"
	}
}
