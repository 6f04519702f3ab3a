// Package trakt talks to the Trakt API: device-authorization credential
// acquisition, paginated watch-history ingestion, and rating reconciliation
// and submission.
package trakt
