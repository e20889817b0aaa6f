// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// Views:
//  1. [ArtistView] : unique artists of the mirrored collection ("r" refreshes the mirror)
//  2. [ReleaseView] : an artist's releases
//  3. [TrackView] : a release's tracks, imported on first visit ("enter" adds to side A, "b" to side B)
//  4. [TapeView] : both sides with totals ("x" removes the selected entry)
//  5. [RefreshView] : mirror refresh progress
//
// Blocking calls run as [tea.Cmd] functions and report back through the [Msg] union type.
// Refresh progress flows through a channel from [tasks.MirrorEngine].
package ui
