// Package models defines the domain types exchanged with the panel server and
// the pure logic derived from them.
//
// Types mirror the server's JSON contract field for field:
//   - [Config] : server-owned generation defaults, replaced wholesale
//   - [Project] : a named grouping of generated audio files; "Default" is protected
//   - [AudioFile] : a generated artifact scoped to a project
//   - [HistoryEntry] : parameters the server recorded when producing a file
//   - [Favorite] : a saved (title, prompt) pair for quick reuse
//   - [ModelInfo] : a discoverable model checkpoint
//
// Derivations with no I/O live here too: the latest-wins history join
// ([LatestByFile]), file ordering ([SortFilesByMtime]), favorite title
// suggestion ([SuggestTitle]) and the simple-mode quality presets.
package models
