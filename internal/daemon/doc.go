// Package daemon serves the dashboard JSON API: triggering sync and mirror
// runs, browsing stored history, and submitting rating decisions.
package daemon
