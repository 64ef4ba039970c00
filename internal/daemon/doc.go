// Package daemon provides the main orchestration for mpdnotifyd.
// It runs the idle loop that turns server changes into notifications,
// reconnects with backoff when the server goes away, and hot-reloads the
// notification settings from the config file.
package daemon
