package xerrors

import (
	"errors"
	"fmt"
)

const (
	ErrCodeSuccess uint32 = iota
	ErrCodeGeneric
	ErrCodeCommit
	ErrCodeNotFoundResult
	ErrCodeInvalidParams
)

// governance error codes
const (
	ErrCodeArityMismatch uint32 = 100 + iota
	ErrCodeNotFound
	ErrCodeUnknownBatch
	ErrCodeUnknownVoteType
	ErrCodeAlreadyBound
	ErrCodeAlreadyInitialized
	ErrCodeDuplicateVote
	ErrCodeMalformedBallot
	ErrCodeInvalidProposalOrType
	ErrCodeUnauthorized
	ErrCodeInvalidTransition
	ErrCodeVotingActiveOrExecuted
	ErrCodeNotExecutable
	ErrCodeNotVotable
	ErrCodeReentrantCall
	ErrCodeCallFailed
)

var (
	ErrCommit         = NewWith(ErrCodeCommit, "commit failed")
	ErrNotFoundResult = NewWith(ErrCodeNotFoundResult, "not found result")
	ErrInvalidParams  = NewWith(ErrCodeInvalidParams, "invalid parameters")

	ErrArityMismatch          = NewWith(ErrCodeArityMismatch, "array length mismatch")
	ErrNotFound               = NewWith(ErrCodeNotFound, "not found")
	ErrUnknownBatch           = NewWith(ErrCodeUnknownBatch, "unknown or already bound action batch")
	ErrUnknownVoteType        = NewWith(ErrCodeUnknownVoteType, "unknown vote type")
	ErrAlreadyBound           = NewWith(ErrCodeAlreadyBound, "action batch already bound")
	ErrAlreadyInitialized     = NewWith(ErrCodeAlreadyInitialized, "already initialized")
	ErrDuplicateVote          = NewWith(ErrCodeDuplicateVote, "already voted")
	ErrMalformedBallot        = NewWith(ErrCodeMalformedBallot, "ballot incorrectly formatted")
	ErrInvalidProposalOrType  = NewWith(ErrCodeInvalidProposalOrType, "invalid vote type or proposal")
	ErrUnauthorized           = NewWith(ErrCodeUnauthorized, "unauthorized caller")
	ErrInvalidTransition      = NewWith(ErrCodeInvalidTransition, "invalid state transition")
	ErrVotingActiveOrExecuted = NewWith(ErrCodeVotingActiveOrExecuted, "voting active or executed")
	ErrNotExecutable          = NewWith(ErrCodeNotExecutable, "not executable")
	ErrNotVotable             = NewWith(ErrCodeNotVotable, "proposal not votable")
	ErrReentrantCall          = NewWith(ErrCodeReentrantCall, "reentrant call")
	ErrCallFailed             = NewWith(ErrCodeCallFailed, "call failed")
)

type XError interface {
	Code() uint32
	Error() string
	Cause() error
	With(error) XError
	Wrap(error) XError
	Wrapf(string, ...any) XError
	Unwrap() error
	Is(error) bool
}

type xerr struct {
	code  uint32
	msg   string
	cause error
}

func New(m string) XError {
	return &xerr{
		code: ErrCodeGeneric,
		msg:  m,
	}
}

func NewWith(code uint32, msg string) XError {
	return &xerr{
		code: code,
		msg:  msg,
	}
}

// From converts err to XError. An XError is returned as it is.
func From(err error) XError {
	if err == nil {
		return nil
	}
	var xe XError
	if errors.As(err, &xe) {
		return xe
	}
	return &xerr{
		code: ErrCodeGeneric,
		msg:  err.Error(),
	}
}

func (e *xerr) Code() uint32 {
	return e.code
}

func (e *xerr) Error() string {
	if e.cause != nil {
		return e.msg + "<<" + e.cause.Error()
	}
	return e.msg
}

func (e *xerr) Cause() error {
	return e.cause
}

func (e *xerr) Unwrap() error {
	return e.Cause()
}

// Is reports whether target carries the same code.
// Generic errors are compared by identity.
func (e *xerr) Is(target error) bool {
	t, ok := target.(*xerr)
	if !ok {
		return false
	}
	if e.code == ErrCodeGeneric {
		return e == t
	}
	return e.code == t.code
}

func (e *xerr) With(err error) XError {
	return &xerr{
		code:  e.code,
		msg:   e.msg,
		cause: err,
	}
}

func (e *xerr) Wrap(err error) XError {
	return &xerr{
		code:  e.code,
		msg:   e.msg,
		cause: err,
	}
}

func (e *xerr) Wrapf(format string, args ...any) XError {
	return e.Wrap(fmt.Errorf(format, args...))
}
