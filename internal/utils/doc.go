// Package utils provides shared utility functions for envault.
//
// This package contains general-purpose helpers used across multiple
// packages. Functions are organized into logical groups:
//
// # Filesystem Utilities
//
// Functions for working with the filesystem and project structure:
//   - FindProjectRoot: walks up directories to find .envault
//
// # Project Utilities
//
//   - IsValidStageName: checks stage names for storage-key safety
//
// # Terminal Utilities
//
// Functions for terminal detection and interaction:
//   - ReadPassphrase: reads a passphrase without echoing
//   - IsTerminal: checks if stdin is a terminal
package utils
