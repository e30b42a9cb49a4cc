// Package export writes stored report history as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ramonehamilton/commander-consistency/internal/storage/models"
)

// Format represents the export format.
type Format string

const (
	// FormatCSV represents CSV export format.
	FormatCSV Format = "csv"
	// FormatJSON represents JSON export format.
	FormatJSON Format = "json"
)

// ParseFormat converts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// HistoryRow is one stored report in flattened form.
type HistoryRow struct {
	CreatedAt           time.Time `json:"created_at"`
	ID                  string    `json:"id"`
	Commander           string    `json:"commander"`
	TotalScore          float64   `json:"total_score"`
	Tier                string    `json:"tier"`
	PrimaryIssue        string    `json:"primary_issue"`
	MulliganPolicy      string    `json:"mulligan_policy"`
	MulliganIterations  int       `json:"mulligan_iterations"`
	EarlyTurnIterations int       `json:"early_turn_iterations"`
	Seed                uint64    `json:"seed"`
}

var historyHeader = []string{
	"created_at", "id", "commander", "total_score", "tier", "primary_issue",
	"mulligan_policy", "mulligan_iterations", "early_turn_iterations", "seed",
}

// HistoryRows flattens stored reports, keeping their order.
func HistoryRows(records []*models.Report) []HistoryRow {
	rows := make([]HistoryRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, HistoryRow{
			CreatedAt:           r.CreatedAt,
			ID:                  r.ID,
			Commander:           r.Commander,
			TotalScore:          r.TotalScore,
			Tier:                r.Tier,
			PrimaryIssue:        r.PrimaryIssue,
			MulliganPolicy:      r.MulliganPolicy,
			MulliganIterations:  r.MulliganIterations,
			EarlyTurnIterations: r.EarlyTurnIterations,
			Seed:                r.Seed,
		})
	}
	return rows
}

func (r HistoryRow) csvRecord() []string {
	return []string{
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.ID,
		r.Commander,
		strconv.FormatFloat(r.TotalScore, 'f', 1, 64),
		r.Tier,
		r.PrimaryIssue,
		r.MulliganPolicy,
		strconv.Itoa(r.MulliganIterations),
		strconv.Itoa(r.EarlyTurnIterations),
		strconv.FormatUint(r.Seed, 10),
	}
}

// WriteHistory writes rows to w. JSON output is indented.
func WriteHistory(w io.Writer, format Format, rows []HistoryRow) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(rows); err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return nil
	case FormatCSV:
		writer := csv.NewWriter(w)
		if err := writer.Write(historyHeader); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		for i, row := range rows {
			if err := writer.Write(row.csvRecord()); err != nil {
				return fmt.Errorf("failed to write CSV row %d: %w", i, err)
			}
		}
		writer.Flush()
		return writer.Error()
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// WriteHistoryFile writes rows to path, creating its directory. An existing
// file is replaced only when overwrite is set.
func WriteHistoryFile(path string, format Format, rows []HistoryRow, overwrite bool) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if _, statErr := os.Stat(path); statErr == nil && !overwrite {
		return fmt.Errorf("file already exists: %s (use overwrite option to replace)", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return WriteHistory(file, format, rows)
}
