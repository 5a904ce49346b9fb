package chooser

import (
	"errors"

	"github.com/danielpatrickdp/choicerank/internal/entry"
)

// #region query

// Query names what the caller wants candidates for. The model treats it as
// an opaque value: identity comparison decides whether a SetQuery call is a
// no-op, and the CandidateSource gives it meaning. The empty query stands
// for "no query" and resolves to nothing.
type Query string

// #endregion query

// #region collaborators

// CandidateSource supplies the resolved entries for a query. Returning an
// empty slice is fine; an error is treated as zero candidates. Resolve is
// called with the model lock held and must not call back into the model.
type CandidateSource interface {
	Resolve(q Query) ([]entry.Entry, error)
}

// ChoiceListener sees a choice before it is recorded. Returning true
// consumes the choice: no history record is appended and the caller gets
// no payload. OnChosen runs with the model lock held and must not call
// back into the model.
type ChoiceListener interface {
	OnChosen(payload string) bool
}

// TaskRunner runs submitted tasks strictly in submission order, one at a
// time, without blocking the submitter.
type TaskRunner interface {
	Submit(name string, fn func())
}

// #endregion collaborators

// #region constants

const (
	// DefaultHistoryName is the store name used when an application wants
	// persistence but has no better name.
	DefaultHistoryName = "choice_history.xml"

	// DefaultEntryInflation is added on top of the weight gap when a
	// record is synthesized by SetDefaultEntry, so the new default
	// survives a few decayed comparisons.
	DefaultEntryInflation = 5

	// invalidIndex is returned by IndexOf for unknown IDs.
	invalidIndex = -1
)

// #endregion constants

// #region errors

var (
	// ErrIndexOutOfRange reports an entry index not backed by the current
	// ordered list.
	ErrIndexOutOfRange = errors.New("entry index out of range")

	// ErrInvalidState reports a persist attempted before any read of the
	// choice history was requested. That ordering is a bug in the calling
	// code, not bad input.
	ErrInvalidState = errors.New("no preceding read of the choice history")
)

// #endregion errors
