// Package preflight provides readiness checks for the filesystem paths
// StarBank depends on.
//
// The CLI "starbank config validate" command runs RunAll and renders each
// Result as a status line. The cache root check is advisory because the game
// client may not have populated it yet; the directories StarBank writes to are
// required.
package preflight
