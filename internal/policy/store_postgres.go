package policy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"lanewise/pkg/domain"
)

const uniqueViolation = "23505"

// PostgresStore persists policies in PostgreSQL. The breakdown and payment
// record are JSONB snapshots; the unique index on quote_id enforces at most
// one policy per quote even if two binders race past the quote CAS.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const policyColumns = `id, reference, quote_id, quote_reference, status, agent_id, breakdown, payment, effective_at, expires_at, bound_at, cancelled_at`

func (s *PostgresStore) Create(ctx context.Context, p *Policy) error {
	breakdown, err := json.Marshal(p.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal policy breakdown: %w", err)
	}
	payment, err := json.Marshal(p.Payment)
	if err != nil {
		return fmt.Errorf("marshal policy payment: %w", err)
	}
	query := `
		INSERT INTO policies (` + policyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(ctx, query,
		p.ID.String(), p.Reference, p.QuoteID.String(), p.QuoteRef, string(p.Status), p.AgentID,
		breakdown, payment, p.EffectiveAt, p.ExpiresAt, p.BoundAt, nullTime(p.CancelledAt))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if strings.Contains(pqErr.Constraint, "quote") {
				return ErrQuoteBound
			}
			return ErrDuplicateRef
		}
		return fmt.Errorf("create policy: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.PolicyID) (*Policy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE id = $1`, id.String())
	return scanPolicy(row)
}

func (s *PostgresStore) GetByReference(ctx context.Context, ref string) (*Policy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE reference = $1`, ref)
	return scanPolicy(row)
}

func (s *PostgresStore) GetByQuoteID(ctx context.Context, quoteID domain.QuoteID) (*Policy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+policyColumns+` FROM policies WHERE quote_id = $1`, quoteID.String())
	return scanPolicy(row)
}

func (s *PostgresStore) Update(ctx context.Context, p *Policy) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE policies SET status = $2, cancelled_at = $3 WHERE id = $1
	`, p.ID.String(), string(p.Status), nullTime(p.CancelledAt))
	if err != nil {
		return fmt.Errorf("update policy: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update policy: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) TransitionStatus(ctx context.Context, id domain.PolicyID, from, to domain.PolicyStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE policies SET status = $3 WHERE id = $1 AND status = $2
	`, id.String(), string(from), string(to))
	if err != nil {
		return fmt.Errorf("transition policy status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition policy status: %w", err)
	}
	if affected == 1 {
		return nil
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM policies WHERE id = $1)`, id.String()).Scan(&exists); err != nil {
		return fmt.Errorf("transition policy status: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusConflict
}

func scanPolicy(row *sql.Row) (*Policy, error) {
	var (
		p           Policy
		rawID       string
		rawQuoteID  string
		rawStatus   string
		breakdown   []byte
		payment     []byte
		cancelledAt sql.NullTime
	)
	err := row.Scan(&rawID, &p.Reference, &rawQuoteID, &p.QuoteRef, &rawStatus, &p.AgentID,
		&breakdown, &payment, &p.EffectiveAt, &p.ExpiresAt, &p.BoundAt, &cancelledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan policy: %w", err)
	}
	p.ID, err = domain.ParsePolicyID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan policy id: %w", err)
	}
	p.QuoteID, err = domain.ParseQuoteID(rawQuoteID)
	if err != nil {
		return nil, fmt.Errorf("scan policy quote id: %w", err)
	}
	p.Status, err = domain.ParsePolicyStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("scan policy status: %w", err)
	}
	if err := json.Unmarshal(breakdown, &p.Breakdown); err != nil {
		return nil, fmt.Errorf("unmarshal policy breakdown: %w", err)
	}
	if err := json.Unmarshal(payment, &p.Payment); err != nil {
		return nil, fmt.Errorf("unmarshal policy payment: %w", err)
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		p.CancelledAt = &t
	}
	return &p, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
