// Package ui implements the interactive control panel using bubbletea's Elm architecture.
//
// The panel is organized as tabs over the server's collections:
//  1. [GenerateView] : Compose and submit generation requests
//  2. [FilesView] : Browse, play, download, rename and delete generated audio
//  3. [ProjectsView] : Switch, create, rename and delete projects
//  4. [FavoritesView] : Saved prompt snippets
//  5. [SettingsView] : Server-side generation defaults
//
// The [Model] implements bubbletea's standard Init/Update/View pattern. All
// server work happens inside tea.Cmd closures that call the domain stores
// and report back through typed messages; the render path only reads state.
//
// Transient UI state is explicit: toasts carry their expiry, at most one
// modal and one dropdown menu exist at a time, and switching between simple
// and advanced mode never clears form values.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
