// Package report renders verification outcomes as human-readable
// text through configurable templates.
package report
