// Package services holds the chat engine: ingestion, indexing, retrieval,
// conversation memory and the session cache. Everything outside the core
// reaches it through the driving ports and it reaches the world only
// through the driven ones.
package services
