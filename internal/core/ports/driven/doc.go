// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the vector index, the cross-encoder scorer,
// the answer generator, settings persistence and the ingest ledger.
package driven
