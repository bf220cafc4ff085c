// Package tracking defines the fire-and-forget event sink used to report
// sync activity, plus a few stock sinks.
//
// Recorders never return errors. A sink that can fail (for example the
// SQLite journal in package store) logs the failure and moves on.
package tracking
