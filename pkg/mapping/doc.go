// Package mapping persists the association between provider-scoped external
// identity ids and local user ids.
//
// The Store is a thin facade over the host's generic object-field storage
// (the KeyValue interface): it namespaces every entry under a single
// provider-scoped key and converts local user ids between their integer and
// wire forms. It performs no validation beyond delegating to the storage.
//
// Three KeyValue implementations ship with the package: in-memory for tests
// and single-process use, file-backed JSON for development, and PostgreSQL
// for production. Hosts with their own storage engine implement KeyValue
// directly.
package mapping
