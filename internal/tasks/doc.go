// Package tasks runs long operations over the movie board with progress reporting.
//
// # Snapshot Export
//
// [SnapshotEngine.Export] fetches the board once, orders it and writes it in several formats
// concurrently. A fixed pool of workers renders one format per job; partial failures are collected per
// format rather than aborting the run, and an export_manifest.json summarizing every file is written last.
//
// # Progress Reporting
//
// Operations accept a progress channel of [ProgressUpdate] values. Updates are sent with select/default so
// a slow or absent reader never blocks the export.
package tasks
