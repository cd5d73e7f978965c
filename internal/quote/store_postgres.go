package quote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"lanewise/internal/rating"
	"lanewise/pkg/domain"
)

// uniqueViolation is the PostgreSQL error code raised when the reference
// unique index rejects an insert.
const uniqueViolation = "23505"

// PostgresStore persists quotes in PostgreSQL. Rating inputs and the premium
// breakdown are stored as JSONB snapshots; lifecycle fields are columns so
// status transitions can be done as conditional updates.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type quoteSnapshot struct {
	Driver    rating.DriverInput         `json:"driver"`
	Vehicles  []rating.VehicleInput      `json:"vehicles"`
	Location  rating.LocationInput       `json:"location"`
	Coverages []rating.CoverageSelection `json:"coverages"`
}

func (s *PostgresStore) Create(ctx context.Context, q *Quote) error {
	snap, breakdown, err := marshalQuote(q)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO quotes (id, reference, status, agent_id, inputs, breakdown, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(ctx, query,
		q.ID.String(), q.Reference, string(q.Status), q.AgentID, snap, breakdown, q.CreatedAt, q.ExpiresAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateRef
		}
		return fmt.Errorf("create quote: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.QuoteID) (*Quote, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, reference, status, agent_id, inputs, breakdown, created_at, expires_at
		FROM quotes WHERE id = $1
	`, id.String())
	return scanQuote(row)
}

func (s *PostgresStore) GetByReference(ctx context.Context, ref string) (*Quote, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, reference, status, agent_id, inputs, breakdown, created_at, expires_at
		FROM quotes WHERE reference = $1
	`, ref)
	return scanQuote(row)
}

func (s *PostgresStore) Update(ctx context.Context, q *Quote) error {
	snap, breakdown, err := marshalQuote(q)
	if err != nil {
		return err
	}
	query := `
		UPDATE quotes
		SET status = $2, inputs = $3, breakdown = $4, expires_at = $5
		WHERE id = $1 AND reference = $6
	`
	res, err := s.db.ExecContext(ctx, query,
		q.ID.String(), string(q.Status), snap, breakdown, q.ExpiresAt, q.Reference)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// TransitionStatus performs the status compare-and-swap as a conditional
// UPDATE. Zero affected rows means either the quote does not exist or a
// concurrent writer changed the status first; the follow-up SELECT
// disambiguates.
func (s *PostgresStore) TransitionStatus(ctx context.Context, id domain.QuoteID, from, to domain.QuoteStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE quotes SET status = $3 WHERE id = $1 AND status = $2
	`, id.String(), string(from), string(to))
	if err != nil {
		return fmt.Errorf("transition quote status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition quote status: %w", err)
	}
	if affected == 1 {
		return nil
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM quotes WHERE id = $1)`, id.String()).Scan(&exists); err != nil {
		return fmt.Errorf("transition quote status: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusConflict
}

func (s *PostgresStore) ListByAgent(ctx context.Context, agentID string) ([]*Quote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, reference, status, agent_id, inputs, breakdown, created_at, expires_at
		FROM quotes WHERE agent_id = $1 ORDER BY created_at DESC
	`, agentID)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]*Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return quotes, nil
}

func marshalQuote(q *Quote) (inputs, breakdown []byte, err error) {
	inputs, err = json.Marshal(quoteSnapshot{
		Driver:    q.Driver,
		Vehicles:  q.Vehicles,
		Location:  q.Location,
		Coverages: q.Coverages,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("marshal quote inputs: %w", err)
	}
	breakdown, err = json.Marshal(q.Breakdown)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal quote breakdown: %w", err)
	}
	return inputs, breakdown, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (*Quote, error) {
	var (
		q         Quote
		rawID     string
		rawStatus string
		inputs    []byte
		breakdown []byte
	)
	err := row.Scan(&rawID, &q.Reference, &rawStatus, &q.AgentID, &inputs, &breakdown, &q.CreatedAt, &q.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan quote: %w", err)
	}
	q.ID, err = domain.ParseQuoteID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan quote id: %w", err)
	}
	q.Status, err = domain.ParseQuoteStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("scan quote status: %w", err)
	}
	var snap quoteSnapshot
	if err := json.Unmarshal(inputs, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal quote inputs: %w", err)
	}
	q.Driver = snap.Driver
	q.Vehicles = snap.Vehicles
	q.Location = snap.Location
	q.Coverages = snap.Coverages
	if len(breakdown) > 0 && string(breakdown) != "null" {
		q.Breakdown = &rating.PremiumBreakdown{}
		if err := json.Unmarshal(breakdown, q.Breakdown); err != nil {
			return nil, fmt.Errorf("unmarshal quote breakdown: %w", err)
		}
	}
	return &q, nil
}
