package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource != "" && e.ID != "":
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	case e.Resource != "":
		return fmt.Sprintf("%s not found", e.Resource)
	default:
		return "not found"
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

// BadRequestError covers client-correctable failures: validation, a country
// without gateway credentials, or a request the gateway refused.
type BadRequestError struct {
	Msg string
	Err error
}

func (e BadRequestError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "bad request"
	}
}

func (e BadRequestError) Unwrap() error { return e.Err }

// IrreconcilableError is raised for notifications that can never be matched
// to local state. It is logged and acknowledged, never surfaced to the gateway.
type IrreconcilableError struct {
	ResourceID string
	Reason     string
	Err        error
}

func (e IrreconcilableError) Error() string {
	msg := "irreconcilable notification"
	if e.ResourceID != "" {
		msg += " " + e.ResourceID
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e IrreconcilableError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsBadRequest(err error) bool {
	var target BadRequestError
	return errors.As(err, &target)
}

func IsIrreconcilable(err error) bool {
	var target IrreconcilableError
	return errors.As(err, &target)
}
