// Package browserui drives the Plex web app through a real browser. It is
// the gesture-level backend for the mirror driver: searching, clicking the
// watched toggle, and dragging the rating slider, since Plex offers no write
// API for history or ratings.
package browserui
