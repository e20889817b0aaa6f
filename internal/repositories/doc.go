// Package repositories implements SQLite persistence for the mirrored catalog and the user-curated data.
//
// Key Implementations:
//   - [ReleaseRepository] : the mirrored release table, its token index and the query surface (get, browse, unique values)
//   - [SongRepository] : user-curated songs with ANDed filter queries
//   - [TapeRepository] : the two tape sides with dense per-side positions
//   - [RunRepository] : mirror refresh history
//
// The RELEASES table is not created by migrations. [ReleaseRepository.ReplaceAll] builds it in a staging table and swaps it in
// within one transaction, so a failed refresh leaves the previous mirror untouched. Until the first refresh every query
// returns [shared.ErrNotMirrored].
//
// All values are bound as parameters. Column names are interpolated only after they have been checked against
// [models.ReleaseColumns].
package repositories
