// Package dataset builds and serves the validated, indexed in-memory tables
// behind every recommendation operation. Like the retrieval index it grew out
// of, the package is deliberately dependency-free and does no logging: the
// store is immutable once constructed, safe for concurrent readers, and all
// failure reporting happens eagerly at build time.
//
// Two error families cover everything that can go wrong during a build:
//
//   - SchemaError:    a record is malformed in isolation (missing field,
//     out-of-vocabulary value, invalid number).
//   - IntegrityError: records are individually well-formed but do not hold
//     together (dangling foreign key, duplicate primary key, provenance
//     violation).
//
// Both are fatal: the store never serves a partially valid dataset.
package dataset

import "fmt"

// SchemaError reports a malformed record detected at load time.
type SchemaError struct {
	Entity string // collection name, e.g. "product"
	ID     string // primary key of the offending record, "" if the key itself is missing
	Field  string // offending field
	Reason string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset: schema: %s %q field %q: %s", e.Entity, e.ID, e.Field, e.Reason)
}

// IntegrityError reports a referential or uniqueness violation detected at
// load time.
type IntegrityError struct {
	Entity string
	ID     string
	Reason string
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("dataset: integrity: %s %q: %s", e.Entity, e.ID, e.Reason)
}

func schemaErr(entity, id, field, reason string) error {
	return &SchemaError{Entity: entity, ID: id, Field: field, Reason: reason}
}

func integrityErr(entity, id, reason string) error {
	return &IntegrityError{Entity: entity, ID: id, Reason: reason}
}
