// Package services defines the shared error taxonomy used across the Trakt
// client and the Plex mirroring driver.
package services
