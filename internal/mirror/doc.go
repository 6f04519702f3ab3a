// Package mirror replays locally stored watch events and ratings onto a film
// surface that has no write API, by driving its user interface.
package mirror
