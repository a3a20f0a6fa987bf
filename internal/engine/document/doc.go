// Package document provides the tagged rich-text document model.
//
// A Document stores character-offset-addressed text plus a layer of
// attribute spans (bold, color, alignment, bullets, image markers)
// applied over half-open ranges. Key concepts:
//
// # Offsets
//
// All positions are character (rune) offsets, not byte offsets. Ranges
// are half-open: [Start, End).
//
// # Spans
//
// A Span is a style predicate (kind plus an optional scalar value, such
// as a color or font name). Spans are interned into a Registry which
// hands out small integer Ref handles; the document and the undo log
// compare spans by handle, never by pointer identity.
//
// # Change listener
//
// Every low-level mutation (insert, delete, span apply/remove, format
// mode switch, selection change, justification change) is reported to
// the registered ChangeListener before it is applied. The undo engine
// implements ChangeListener; replay re-enters the same hooks and relies
// on the engine's freeze counter to ignore its own mutations.
//
// # Format modes
//
// A document is either rich text or plain text. Switching to plain text
// strips every span; the listener is notified first so the prior span
// layout can be snapshotted.
package document
