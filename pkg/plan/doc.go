// Package plan resolves where a run finds photos and where it keeps the raw
// and final metadata tables.
package plan
