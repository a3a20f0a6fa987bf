// Package html converts between HTML markup and tagged documents.
//
// The importer understands the small dialect rich-text notes are saved
// in: inline style tags (b, i, u, s, sub, sup, font), block alignment
// (div/p align), bullet lists (ul/li), images and line breaks. Unknown
// markup is skipped, entities are decoded by the tokenizer. The
// exporter walks span boundaries and emits the same dialect back.
//
// Importing is a bulk programmatic edit; run it before wiring an undo
// engine, or under Freeze, so it leaves no history.
package html
