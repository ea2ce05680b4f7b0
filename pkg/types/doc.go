// Package types defines the records exchanged by the compass engine: project
// and skill metadata, parsed task ledgers, selections, mutation results,
// system states, configuration, and the standard error values.
//
// The records are plain data. Packages under internal/ produce and consume
// them; callers serialize them (the CLI emits JSON) and decide what to show.
package types
