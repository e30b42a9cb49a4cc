// Package models holds the records persisted by the storage layer.
package models

import "time"

// Report is a stored consistency analysis.
type Report struct {
	ID                  string // UUID
	DeckHash            string
	Commander           string
	TotalScore          float64
	Tier                string
	Seed                uint64
	MulliganIterations  int
	EarlyTurnIterations int
	MulliganPolicy      string // "london" or "vancouver"
	PrimaryIssue        string
	Payload             []byte // JSON of the full analysis report
	CreatedAt           time.Time
}
