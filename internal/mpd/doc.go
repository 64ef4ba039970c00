// Package mpd owns the connection to the Music Player Daemon.
// It exposes a blocking wait for subsystem changes plus point queries for
// the player status and the current song, built on gompd.
package mpd
