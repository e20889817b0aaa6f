// Package tasks implements the multi-step operations behind the CLI, TUI and JSON API.
//
// # Mirror
//
// [MirrorEngine.Refresh] replaces the local release mirror with the user's remote collection:
//
//  1. Fetch every collection page
//  2. Backfill zero years from master records (a missing master keeps zero)
//  3. Flatten each entry with [FlattenRelease]
//  4. Replace the mirror in one transaction
//
// Remote failures happen before step 4, so a failed refresh leaves the previous mirror in place.
// Every attempt is recorded in mirror_runs.
//
// # Catalog
//
// [Catalog] imports release track listings as songs, manages the two tape sides and downloads cover images,
// either one at a time or through a rate-limited worker pool ([Catalog.DownloadCovers]).
//
// # Progress Reporting
//
// Long-running operations accept an optional channel of [ProgressUpdate].
// Sends use select with default so a slow or absent reader never blocks the operation.
package tasks
