// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package oom

import (
	"errors"
	"fmt"
)

// Status codes of the Southbound API. Non-negative values mean success.
const (
	StatusOK         = 0
	StatusAccess     = -1
	StatusOutOfRange = -2
	StatusAllocation = -3
)

// ErrNotSupported is wrapped by an AccessError when a provider lacks an operation.
var ErrNotSupported = errors.New("operation not supported by provider")

// ErrPortNotFound is wrapped by an AccessError when a provider does not know a port.
var ErrPortNotFound = errors.New("port not found")

// AccessError reports a provider or transport failure.
type AccessError struct {
	Op   string
	Port int
	Err  error
}

func (e *AccessError) Error() string {
	if e.Port < 0 {
		return fmt.Sprintf("%s: access failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: port %d: access failed: %v", e.Op, e.Port, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// OutOfRangeError reports a request outside of the addressable window or the passed buffer.
type OutOfRangeError struct {
	Op     string
	Offset int
	Length int
	Limit  int
	Reason string
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: offset %d length %d out of range (limit %d): %s", e.Op, e.Offset, e.Length, e.Limit, e.Reason)
}

// AllocationError reports a buffer that can not be sized as requested.
type AllocationError struct {
	Requested int
	Limit     int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("can not allocate %d entries (limit %d)", e.Requested, e.Limit)
}

// NewAccessError wraps err as an AccessError unless it already is one of the typed errors.
func NewAccessError(op string, port int, err error) error {
	if err == nil {
		return nil
	}
	var accessErr *AccessError
	var rangeErr *OutOfRangeError
	var allocErr *AllocationError
	if errors.As(err, &accessErr) || errors.As(err, &rangeErr) || errors.As(err, &allocErr) {
		return err
	}
	return &AccessError{Op: op, Port: port, Err: err}
}

// StatusOf maps an error onto a Southbound status code.
func StatusOf(err error) int {
	if err == nil {
		return StatusOK
	}
	var rangeErr *OutOfRangeError
	if errors.As(err, &rangeErr) {
		return StatusOutOfRange
	}
	var allocErr *AllocationError
	if errors.As(err, &allocErr) {
		return StatusAllocation
	}
	return StatusAccess
}

// ErrorForStatus turns a negative status code into the matching typed error.
func ErrorForStatus(status int, op string, port int, message string) error {
	if status >= 0 {
		return nil
	}
	switch status {
	case StatusOutOfRange:
		return &OutOfRangeError{Op: op, Reason: message}
	case StatusAllocation:
		return &AllocationError{Requested: -1}
	default:
		return &AccessError{Op: op, Port: port, Err: fmt.Errorf("status %d: %s", status, message)}
	}
}
