// Package store persists the reconciliation dataset: ingested watch history
// and the pending-rating queue.
//
// Two relations back the dataset. films is keyed by the Trakt history event
// id and carries the rating and Plex mirror flags; pending_ratings is keyed
// by slug and holds watched films awaiting a rating decision. All writes are
// independent, immediately-committed operations so an interrupted batch
// leaves a consistent partial result.
package store
