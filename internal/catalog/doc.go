// Package catalog persists directory scan results in SQLite.
//
// Each scan is a run with its own ID. Files are keyed by path, so the
// latest run to see a file owns its row. Only one writer may hold a run at
// a time; the lock is a flock on a sibling ".lock" file.
package catalog
