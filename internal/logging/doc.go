// Package logging builds the slog loggers used by the mediasniff CLI.
//
// Two formats are supported: "console" renders one line per record as
// `ts LEVEL component: msg key=value`, "json" emits one object per record
// with ts, level and msg keys.
package logging
