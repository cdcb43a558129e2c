package analysisinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/careerlens/careerlens/analysis"
	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/pkg/logx"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) analysis.Repository {
	return &PostgresRepository{db: db}
}

// dbRecord is the database model; the report itself is stored as JSONB.
type dbRecord struct {
	ID           string    `db:"id"`
	RequestToken string    `db:"request_token"`
	CompanyName  string    `db:"company_name"`
	Source       string    `db:"source"`
	Report       string    `db:"report"`
	ResumeChars  int       `db:"resume_chars"`
	JobChars     int       `db:"job_chars"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r *PostgresRepository) Create(ctx context.Context, rec *analysis.Record) error {
	query := `
		INSERT INTO analyses (
			id, request_token, company_name, source, report,
			resume_chars, job_chars, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8
		)
	`

	reportJSON, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		rec.ID.String(), rec.RequestToken.String(), rec.CompanyName, string(rec.Source),
		string(reportJSON), rec.ResumeChars, rec.JobChars, rec.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("analysis already exists: %w", err)
		}
		return fmt.Errorf("create analysis: %w", err)
	}

	logx.Infof("Created analysis record: %s", rec.ID)
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id kernel.AnalysisID) (*analysis.Record, error) {
	query := `
		SELECT id, request_token, company_name, source, report,
			resume_chars, job_chars, created_at
		FROM analyses
		WHERE id = $1
	`

	var row dbRecord
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, analysis.ErrAnalysisNotFound().WithDetail("id", id)
		}
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	return toDomainRecord(&row)
}

func (r *PostgresRepository) GetByRequestToken(ctx context.Context, token kernel.RequestToken) (*analysis.Record, error) {
	query := `
		SELECT id, request_token, company_name, source, report,
			resume_chars, job_chars, created_at
		FROM analyses
		WHERE request_token = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var row dbRecord
	if err := r.db.GetContext(ctx, &row, query, token.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, analysis.ErrAnalysisNotFound().WithDetail("request_token", token)
		}
		return nil, fmt.Errorf("get analysis by token: %w", err)
	}

	return toDomainRecord(&row)
}

func (r *PostgresRepository) List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[analysis.Record], error) {
	pagination = pagination.Normalize()

	countQuery := `SELECT COUNT(*) FROM analyses`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, fmt.Errorf("count analyses: %w", err)
	}

	query := `
		SELECT id, request_token, company_name, source, report,
			resume_chars, job_chars, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var rows []dbRecord
	if err := r.db.SelectContext(ctx, &rows, query, pagination.PageSize, pagination.Offset()); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	records := make([]analysis.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := toDomainRecord(&row)
		if err != nil {
			logx.Errorf("Failed to convert analysis %s: %v", row.ID, err)
			continue
		}
		records = append(records, *rec)
	}

	return &kernel.Paginated[analysis.Record]{
		Items: records,
		Page: kernel.Page{
			Number: pagination.Page,
			Size:   pagination.PageSize,
			Total:  total,
		},
	}, nil
}

func toDomainRecord(row *dbRecord) (*analysis.Record, error) {
	var report analysis.Report
	if err := json.Unmarshal([]byte(row.Report), &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}

	return &analysis.Record{
		ID:           kernel.AnalysisID(row.ID),
		RequestToken: kernel.RequestToken(row.RequestToken),
		CompanyName:  row.CompanyName,
		Source:       analysis.Source(row.Source),
		Report:       report,
		ResumeChars:  row.ResumeChars,
		JobChars:     row.JobChars,
		CreatedAt:    row.CreatedAt,
	}, nil
}
