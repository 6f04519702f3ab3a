// Package syncer sequences the pull (Trakt to store) and push (store to
// Plex) workflows behind one orchestrator used by both the CLI and the
// dashboard server.
package syncer
