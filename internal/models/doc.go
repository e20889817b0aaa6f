// Package models defines the domain entities shared by the mirror, the query surface, the tape and the export layer.
//
// The package contains three groups of types:
//
// 1. Mirrored catalog data
//   - [Release] : one flattened row of the mirrored collection
//   - [ValueCount] : a token and its number of occurrences in a column
//   - [MirrorRun] : bookkeeping for one refresh attempt
//
// 2. User-curated data
//   - [Song] : a track entry, either typed in or imported from a release track listing
//   - [SongQuery] : ANDed filters over songs
//   - [TapeEntry], [Tape], [SideStats] : the two-sided mixtape and its playtime
//
// 3. Helpers
//   - [MultiValue] : the pipe-delimited multi-value column format and its token matcher
//
// The Repository[T] interface describes the store operations shared by the user-curated repositories.
package models
