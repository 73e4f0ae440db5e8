// Package logger initialises the global zerolog logger of the inventory API.
//
// Output goes to the console (JSON or human readable), to rolling files split
// by level, or both. Every log statement is counted in the Prometheus counter
// inventory_api_log_statements_total, labelled by level.
package logger
