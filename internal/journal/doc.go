// Package journal persists one record per synchronization run in a local
// SQLite database so past offsets and failures can be reviewed.
package journal
