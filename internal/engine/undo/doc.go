// Package undo implements the transaction-based undo/redo engine for
// rich-text documents.
//
// # Recording
//
// The engine implements document.ChangeListener: every document
// mutation is reported before it lands, letting the engine snapshot
// the styling a destructive change is about to overwrite. Operations
// accumulate into groups. A group is either a whole transaction
// (BeginTransaction/EndTransaction pair, reference-counted for
// nesting) or a single operation recorded outside any transaction.
// Groups are the unit of undo and redo.
//
// # Merging
//
// Single-character, non-newline edits coalesce into the previous
// operation so that typing a word costs one undo step, not one per
// keystroke. Runs of spaces and runs of non-spaces group separately.
// Any non-mergeable operation, or a fresh outermost transaction,
// severs further merging.
//
// # Capacity and failure
//
// Both queues are bounded by the configured depth; pushing past the
// bound evicts the oldest group. An optional byte budget models
// allocation pressure: recording past the budget reports OutOfMemory,
// drops the half-built group, and disables recording for the rest of
// the transaction. Low-memory mode discards all history and disables
// recording until cleared.
//
// The engine is single-threaded and re-entrant: replay freezes
// recording around its own document mutations, so undoing an edit
// never records a new one.
package undo
