// Package envfile models .env-style files as ordered key/value documents.
//
// A Document preserves declaration order and per-entry quoting style so that
// derived artifacts (pulled files, example files) keep the shape of the
// original. The package also owns envault's provenance header: a bordered
// comment block naming the stage and sync time, stripped before any
// structural comparison and regenerated from a fixed template when files are
// written.
//
// Header detection is a best-effort heuristic keyed on the marker string and
// border lines. When the marker is absent the whole file is treated as
// variable definitions; hand-edited files that coincidentally reproduce the
// marker inside a leading comment block can be mis-detected, which is a
// known and accepted edge case.
package envfile
