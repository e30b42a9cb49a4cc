package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/commander-consistency/internal/storage/models"
)

// ErrReportNotFound is returned when no report matches the lookup.
var ErrReportNotFound = errors.New("report not found")

const timeLayout = "2006-01-02 15:04:05.999999"

// ReportRepository handles database operations for analysis reports.
type ReportRepository interface {
	// Create stores a report, assigning its ID and creation time when unset.
	Create(ctx context.Context, report *models.Report) error

	// GetByID retrieves a report by ID.
	GetByID(ctx context.Context, id string) (*models.Report, error)

	// ListByDeckHash returns reports for a deck, newest first. A limit of zero
	// returns every report.
	ListByDeckHash(ctx context.Context, deckHash string, limit int) ([]*models.Report, error)

	// Latest returns the newest report for a deck.
	Latest(ctx context.Context, deckHash string) (*models.Report, error)

	// Delete removes a report by ID.
	Delete(ctx context.Context, id string) error
}

// reportRepository is the concrete implementation of ReportRepository.
type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

const reportColumns = `id, deck_hash, commander, total_score, tier, seed,
	mulligan_iterations, early_turn_iterations, mulligan_policy, primary_issue, payload, created_at`

// Create stores a report.
func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	if report.MulliganPolicy == "" {
		report.MulliganPolicy = "london"
	}

	query := `INSERT INTO analysis_reports (` + reportColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.DeckHash,
		report.Commander,
		report.TotalScore,
		report.Tier,
		strconv.FormatUint(report.Seed, 10),
		report.MulliganIterations,
		report.EarlyTurnIterations,
		report.MulliganPolicy,
		report.PrimaryIssue,
		string(report.Payload),
		report.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetByID retrieves a report by ID.
func (r *reportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM analysis_reports WHERE id = ?`
	return scanReport(r.db.QueryRowContext(ctx, query, id))
}

// ListByDeckHash returns reports for a deck, newest first.
func (r *reportRepository) ListByDeckHash(ctx context.Context, deckHash string, limit int) ([]*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM analysis_reports
		WHERE deck_hash = ?
		ORDER BY created_at DESC, id`
	args := []any{deckHash}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	reports := []*models.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

// Latest returns the newest report for a deck.
func (r *reportRepository) Latest(ctx context.Context, deckHash string) (*models.Report, error) {
	reports, err := r.ListByDeckHash(ctx, deckHash, 1)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, ErrReportNotFound
	}
	return reports[0], nil
}

// Delete removes a report by ID.
func (r *reportRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM analysis_reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if n == 0 {
		return ErrReportNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	report := &models.Report{}
	var seed, payload, createdAt string

	err := row.Scan(
		&report.ID,
		&report.DeckHash,
		&report.Commander,
		&report.TotalScore,
		&report.Tier,
		&seed,
		&report.MulliganIterations,
		&report.EarlyTurnIterations,
		&report.MulliganPolicy,
		&report.PrimaryIssue,
		&payload,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}

	if report.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return nil, fmt.Errorf("parse report seed %q: %w", seed, err)
	}
	report.Payload = []byte(payload)
	if report.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse report time %q: %w", createdAt, err)
	}
	return report, nil
}
