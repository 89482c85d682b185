// Package metadata maintains the per-stage version ledger.
//
// Every stage of a project carries a metadata.json object next to its
// encrypted blobs. The ledger lists one entry per uploaded version and
// a latest pointer naming the newest one. Version numbers start at 1
// and grow by one per upload, so the ledger of a stage with N uploads
// always reads 1 through N.
//
// # Reading
//
// Manager.Read treats a missing ledger as (nil, nil) rather than an
// error. Stages written by older clients have blobs but no ledger, and
// callers handle that case by falling back to the alias object.
//
// # Writing
//
// The ledger is written after the version blob it describes, so a
// crash between the two uploads leaves a blob the ledger does not
// mention yet. The next upload reuses that number and overwrites the
// orphan.
package metadata
