// Package testutil holds fixtures shared by tests across packages: canned
// projects, deterministic id generators and a logger that writes through
// testing.T.
package testutil
