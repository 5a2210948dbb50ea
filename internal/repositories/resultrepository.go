package repositories

import (
	"context"
	"fmt"

	"github.com/Totarae/openelex/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool методы pgxpool.Pool, которые использует репозиторий.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// ResultRepository хранит документы и результаты в PostgreSQL.
type ResultRepository struct {
	DB Pool
}

// NewResultRepository создаёт новый экземпляр ResultRepository.
func NewResultRepository(db Pool) *ResultRepository {
	return &ResultRepository{DB: db}
}

var resultColumns = []string{
	"document_key", "jurisdiction", "year", "county", "precinct", "office",
	"office_district", "candidate", "party", "winner", "write_in", "votes",
}

// SaveDocument сохраняет метаданные документа, тело в БД не хранится.
func (r *ResultRepository) SaveDocument(ctx context.Context, doc *model.Document) error {
	query := `INSERT INTO documents (key, jurisdiction, url, checksum, content_type, fetched_at)
              VALUES ($1, $2, $3, $4, $5, $6)
              ON CONFLICT (key) DO UPDATE
              SET checksum = EXCLUDED.checksum,
                  content_type = EXCLUDED.content_type,
                  fetched_at = EXCLUDED.fetched_at`

	_, err := r.DB.Exec(ctx, query, doc.Key, doc.Jurisdiction, doc.URL, doc.Checksum, doc.ContentType, doc.FetchedAt)
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.Key, err)
	}
	return nil
}

// SaveResults заменяет строки результатов документа в рамках транзакции.
func (r *ResultRepository) SaveResults(ctx context.Context, documentKey string, year int, rows []model.ResultRow) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM results WHERE document_key = $1`, documentKey); err != nil {
		return fmt.Errorf("failed to delete previous results: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"results"}, resultColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			row := rows[i]
			return []any{
				documentKey, row.Jurisdiction, year, row.County, row.Precinct, row.Office,
				row.OfficeDistrict, row.Candidate, row.Party, row.Winner, row.WriteIn, row.Votes,
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("failed to copy results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ResultsByJurisdiction возвращает результаты юрисдикции. year = 0 означает все годы.
func (r *ResultRepository) ResultsByJurisdiction(ctx context.Context, jurisdiction string, year int) ([]model.ResultRow, error) {
	query := `SELECT document_key, jurisdiction, year, county, precinct, office, office_district,
                     candidate, party, winner, write_in, votes
              FROM results
              WHERE jurisdiction = $1 AND ($2 = 0 OR year = $2)
              ORDER BY year, id`
	rows, err := r.DB.Query(ctx, query, jurisdiction, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []model.ResultRow
	for rows.Next() {
		var row model.ResultRow
		err := rows.Scan(&row.DocumentKey, &row.Jurisdiction, &row.Year, &row.County, &row.Precinct,
			&row.Office, &row.OfficeDistrict, &row.Candidate, &row.Party, &row.Winner, &row.WriteIn, &row.Votes)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	return results, nil
}

// CountByJurisdiction количество строк результатов по юрисдикциям
func (r *ResultRepository) CountByJurisdiction(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.Query(ctx, `SELECT jurisdiction, COUNT(*) FROM results GROUP BY jurisdiction`)
	if err != nil {
		return nil, fmt.Errorf("failed to count results: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			slug  string
			count int
		)
		if err := rows.Scan(&slug, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts[slug] = count
	}
	return counts, rows.Err()
}

// Ping проверяет доступность базы данных.
func (r *ResultRepository) Ping(ctx context.Context) error {
	return r.DB.Ping(ctx)
}
