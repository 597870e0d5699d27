// Package services implements the core pipelines: index lifecycle,
// retrieval, reranking, result formatting, the query orchestrator
// (synchronous and streaming), ingestion and settings management.
// Services depend only on domain types and driven ports.
package services
