// Package services implements the application's core use cases:
// building vector collections from chunks, answering questions over a
// collection, and routing questions to the right collection.
//
// Services implement the driving ports and depend only on domain types
// and driven ports. All infrastructure (embedding, vector store, LLM)
// is injected.
package services
