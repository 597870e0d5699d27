// Package domain contains the core types of Local Lode: records retrieved
// from the vector index, reranked and formatted results, chunks produced at
// ingestion time, query specifications and the streaming event protocol.
//
// Domain types carry no behaviour beyond construction and validation; all
// orchestration lives in the services package.
package domain
