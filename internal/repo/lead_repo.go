package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"lead-management-server/internal/leadfilter"
	"lead-management-server/internal/models"
)

const leadColumns = `id, first_name, last_name, email, phone, company, city, state,
		source, status, score, lead_value, last_activity_at, is_qualified, created_at, updated_at`

type LeadRepo struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

var _ LeadStore = (*LeadRepo)(nil)

func NewLeadRepo(pool *pgxpool.Pool, timeout time.Duration) *LeadRepo {
	return &LeadRepo{pool: pool, timeout: timeout}
}

func (r *LeadRepo) Create(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			first_name, last_name, email, phone, company, city, state,
			source, status, score, lead_value, is_qualified
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, created_at, updated_at
	`,
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.Phone,
		lead.Company,
		lead.City,
		lead.State,
		lead.Source,
		lead.Status,
		lead.Score,
		lead.LeadValue,
		lead.IsQualified,
	)

	if err := row.Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepo) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	return r.getBy(ctx, "id", id)
}

func (r *LeadRepo) GetByEmail(ctx context.Context, email string) (*models.Lead, error) {
	return r.getBy(ctx, "email", email)
}

func (r *LeadRepo) getBy(ctx context.Context, column, value string) (*models.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM leads WHERE %s = $1", leadColumns, column)
	row := r.pool.QueryRow(ctx, query, value)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get lead by %s: %w", column, err)
	}
	return lead, nil
}

func (r *LeadRepo) Update(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			first_name = $1, last_name = $2, email = $3, phone = $4,
			company = $5, city = $6, state = $7, source = $8, status = $9,
			score = $10, lead_value = $11, last_activity_at = $12,
			is_qualified = $13, updated_at = NOW()
		WHERE id = $14
		RETURNING updated_at
	`,
		lead.FirstName,
		lead.LastName,
		lead.Email,
		lead.Phone,
		lead.Company,
		lead.City,
		lead.State,
		lead.Source,
		lead.Status,
		lead.Score,
		lead.LeadValue,
		lead.LastActivityAt,
		lead.IsQualified,
		lead.ID,
	)

	if err := row.Scan(&lead.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd, err := r.pool.Exec(ctx, "DELETE FROM leads WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List runs the compiled filter, then the matching count with the same WHERE
// clause so the caller can derive total pages.
func (r *LeadRepo) List(ctx context.Context, query *leadfilter.Query) ([]models.Lead, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	whereSQL, args := buildLeadWhere(query)

	listSQL := fmt.Sprintf(`
		SELECT %s
		FROM leads
		%s
		ORDER BY %s %s
		LIMIT %d OFFSET %d
	`, leadColumns, whereSQL, query.SortBy, strings.ToUpper(query.SortOrder), query.Limit, query.Offset())

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var results []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		results = append(results, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate leads: %w", err)
	}

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM leads %s", whereSQL)
	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	return results, total, nil
}

// buildLeadWhere translates the typed filter specification into a WHERE
// clause with positional args. Column and sort names are taken from the
// compiler's whitelists, never from raw input.
func buildLeadWhere(query *leadfilter.Query) (string, []any) {
	clauses := []string{"WHERE 1=1"}
	args := []any{}
	index := 1

	arg := func(value any) string {
		args = append(args, value)
		placeholder := fmt.Sprintf("$%d", index)
		index++
		return placeholder
	}

	for _, match := range query.Strings {
		if match.Contains != "" {
			clauses = append(clauses, fmt.Sprintf("AND %s ILIKE %s", match.Field, arg("%"+match.Contains+"%")))
		} else {
			clauses = append(clauses, fmt.Sprintf("AND LOWER(%s) = %s", match.Field, arg(match.Exact)))
		}
	}

	for _, match := range query.Enums {
		if len(match.In) > 0 {
			clauses = append(clauses, fmt.Sprintf("AND %s = ANY(%s)", match.Field, arg(match.In)))
		} else {
			clauses = append(clauses, fmt.Sprintf("AND %s = %s", match.Field, arg(match.Eq)))
		}
	}

	for _, rng := range query.Numbers {
		if rng.Eq != nil {
			clauses = append(clauses, fmt.Sprintf("AND %s = %s", rng.Field, arg(*rng.Eq)))
		}
		if rng.GT != nil {
			clauses = append(clauses, fmt.Sprintf("AND %s > %s", rng.Field, arg(*rng.GT)))
		}
		if rng.LT != nil {
			clauses = append(clauses, fmt.Sprintf("AND %s < %s", rng.Field, arg(*rng.LT)))
		}
		if rng.GTE != nil {
			clauses = append(clauses, fmt.Sprintf("AND %s >= %s", rng.Field, arg(*rng.GTE)))
		}
		if rng.LTE != nil {
			clauses = append(clauses, fmt.Sprintf("AND %s <= %s", rng.Field, arg(*rng.LTE)))
		}
	}

	for _, rng := range query.Dates {
		if rng.GT != nil {
			clauses = append(clauses, fmt.Sprintf("AND %s > %s", rng.Field, arg(*rng.GT)))
		}
		if rng.LT != nil {
			clauses = append(clauses, fmt.Sprintf("AND %s < %s", rng.Field, arg(*rng.LT)))
		}
		if rng.GTE != nil {
			clauses = append(clauses, fmt.Sprintf("AND %s >= %s", rng.Field, arg(*rng.GTE)))
		}
		if rng.LTE != nil {
			clauses = append(clauses, fmt.Sprintf("AND %s <= %s", rng.Field, arg(*rng.LTE)))
		}
	}

	for _, match := range query.Bools {
		clauses = append(clauses, fmt.Sprintf("AND %s = %s", match.Field, arg(match.Value)))
	}

	if query.Search != "" {
		placeholder := arg("%" + query.Search + "%")
		parts := make([]string, 0, len(leadfilter.SearchFields))
		for _, field := range leadfilter.SearchFields {
			parts = append(parts, fmt.Sprintf("%s ILIKE %s", field, placeholder))
		}
		clauses = append(clauses, "AND ("+strings.Join(parts, " OR ")+")")
	}

	return strings.Join(clauses, "\n"), args
}

func scanLead(row pgx.Row) (*models.Lead, error) {
	var lead models.Lead
	if err := row.Scan(
		&lead.ID,
		&lead.FirstName,
		&lead.LastName,
		&lead.Email,
		&lead.Phone,
		&lead.Company,
		&lead.City,
		&lead.State,
		&lead.Source,
		&lead.Status,
		&lead.Score,
		&lead.LeadValue,
		&lead.LastActivityAt,
		&lead.IsQualified,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
