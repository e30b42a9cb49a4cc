package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency"
	"github.com/ramonehamilton/commander-consistency/internal/storage/models"
)

// SaveReport stores an analysis report and returns the stored record.
func (db *DB) SaveReport(ctx context.Context, report *consistency.Report) (*models.Report, error) {
	record, err := NewReportRecord(report)
	if err != nil {
		return nil, err
	}
	if err := db.reports.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// LoadReport decodes the analysis stored in record.
func LoadReport(record *models.Report) (*consistency.Report, error) {
	var report consistency.Report
	if err := json.Unmarshal(record.Payload, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", record.ID, err)
	}
	return &report, nil
}

// NewReportRecord flattens an analysis report into its stored form.
func NewReportRecord(report *consistency.Report) (*models.Report, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	record := &models.Report{
		DeckHash:     report.DeckHash,
		Commander:    report.Commander.Name,
		TotalScore:   report.Score.Total,
		Tier:         string(report.Score.Tier),
		Seed:         report.Seed,
		PrimaryIssue: report.Diagnosis.PrimaryIssue,
		Payload:      payload,
		CreatedAt:    report.GeneratedAt,
	}
	if report.Mulligan != nil {
		record.MulliganIterations = report.Mulligan.Iterations
		record.MulliganPolicy = string(report.Mulligan.Policy)
	}
	if report.EarlyTurn != nil {
		record.EarlyTurnIterations = report.EarlyTurn.Iterations
	}
	return record, nil
}
