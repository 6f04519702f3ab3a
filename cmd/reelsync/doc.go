// Command reelsync syncs Trakt watch history and ratings into a local store
// and mirrors them onto Plex through its web interface.
package main
