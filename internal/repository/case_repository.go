package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caseworks/servicedesk/internal/domain"
)

// CaseFilter captures search parameters over the full case backlog. Absent
// groups impose no restriction; present groups are AND-combined.
type CaseFilter struct {
	OwnerID    *int64
	SearchTerm *string
	States     []domain.CaseState
	Priorities []domain.CasePriority
}

// CaseRepository encapsulates service case persistence.
type CaseRepository interface {
	Create(ctx context.Context, sc *domain.ServiceCase) error
	Update(ctx context.Context, sc *domain.ServiceCase) error
	GetByID(ctx context.Context, id int64) (*domain.ServiceCase, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.ServiceCase, error)
	ListAll(ctx context.Context) ([]domain.ServiceCase, error)
	ListWithFilter(ctx context.Context, filter CaseFilter) ([]domain.ServiceCase, error)
}

type caseRepository struct {
	pool *pgxpool.Pool
}

// NewCaseRepository instantiates repository.
func NewCaseRepository(pool *pgxpool.Pool) CaseRepository {
	return &caseRepository{pool: pool}
}

func (r *caseRepository) Create(ctx context.Context, sc *domain.ServiceCase) error {
	const query = `
        INSERT INTO service_cases (title, description, priority, state, owner_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		sc.Title,
		sc.Description,
		sc.Priority,
		sc.State,
		sc.OwnerID,
	).Scan(&sc.ID, &sc.CreatedAt)
}

func (r *caseRepository) Update(ctx context.Context, sc *domain.ServiceCase) error {
	const query = `
        UPDATE service_cases SET state=$1
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, sc.State, sc.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *caseRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceCase, error) {
	const query = `
        SELECT id, title, description, priority, state, owner_id, created_at
        FROM service_cases WHERE id=$1`
	var sc domain.ServiceCase
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&sc.ID,
		&sc.Title,
		&sc.Description,
		&sc.Priority,
		&sc.State,
		&sc.OwnerID,
		&sc.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *caseRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.ServiceCase, error) {
	return r.ListWithFilter(ctx, CaseFilter{OwnerID: &ownerID})
}

func (r *caseRepository) ListAll(ctx context.Context) ([]domain.ServiceCase, error) {
	return r.ListWithFilter(ctx, CaseFilter{})
}

func (r *caseRepository) ListWithFilter(ctx context.Context, filter CaseFilter) ([]domain.ServiceCase, error) {
	where, args := buildCaseFilterClause(filter)
	query := fmt.Sprintf(`SELECT id, title, description, priority, state, owner_id, created_at
             FROM service_cases WHERE %s ORDER BY created_at ASC`, where)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCases(rows)
}

// buildCaseFilterClause translates a CaseFilter into a WHERE clause and its
// positional arguments. A term matches title or description
// case-insensitively; state and priority sets become IN lists.
func buildCaseFilterClause(filter CaseFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}
	if len(filter.States) > 0 {
		placeholders := make([]string, len(filter.States))
		for i, state := range filter.States {
			args = append(args, state)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("state IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}

	return strings.Join(clauses, " AND "), args
}

func scanCases(rows pgx.Rows) ([]domain.ServiceCase, error) {
	var result []domain.ServiceCase
	for rows.Next() {
		var sc domain.ServiceCase
		if err := rows.Scan(
			&sc.ID,
			&sc.Title,
			&sc.Description,
			&sc.Priority,
			&sc.State,
			&sc.OwnerID,
			&sc.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}
