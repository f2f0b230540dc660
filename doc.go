// Package quire is the composition root of the Quire notes library.
//
// It wires the notes store (pkg/core) and the theme preferences store
// (pkg/theme) to a key-value storage adapter chosen by name:
//
//   - fs: one file per key in a directory, atomic writes, change watching
//   - badger: embedded BadgerDB, both collections written in one transaction
//   - sqlite / postgres: a single key-value table
//   - memory: nothing survives the process
//
// Notes and categories are stored as two JSON blobs under fixed keys, so a
// directory written by one adapter can be read back by any other holding the
// same keys.
//
// Usage:
//
//	app, err := quire.Open(ctx, "./.quire", quire.WithLogger(logger))
//	if err != nil {
//		logger.Warn("starting with defaults", "error", err)
//	}
//	defer app.Close()
//
//	note, err := app.Notes.AddNote(ctx, core.NoteInput{Title: "Groceries", Category: "Shopping"})
package quire
