// Package viz formats the human-readable reports printed by the inspection
// commands (info, timing, profiles) using lipgloss styles.
package viz
