// Package services contains the business logic orchestration layer.
//
// Services implement the driving ports and coordinate between domain
// logic and driven ports (assembler, cache, storage, embedding provider).
// They depend only on interfaces, never on concrete adapters.
package services
