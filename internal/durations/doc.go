// Package durations owns the duration index: one row per chapter with the
// clip's true playable length, file size, and a sanity flag. The index is
// the single source of truth the segment packer reads; file sizes are never
// used for timing. It is persisted in SQLite and fully regenerable from the
// audio directory, with a CSV export for spreadsheet review.
//
// The Store is the only writer; the analyzer runs as a single pass after
// synthesis completes, so there are no concurrent writers to the table.
package durations
