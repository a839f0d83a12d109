package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ticketing-svc/models"

	"go.uber.org/zap"
)

// ErrTicketUsed means the identifier was already redeemed.
var ErrTicketUsed = errors.New("ticket already used")

// ErrTicketNotFound means no ticket carries the identifier.
var ErrTicketNotFound = errors.New("ticket not found")

type TicketStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewTicketStore(db *sql.DB, logger *zap.Logger) *TicketStore {
	return &TicketStore{db: db, logger: logger}
}

// Create records a freshly generated ticket with status 'generated'.
func (s *TicketStore) Create(ctx context.Context, t *models.Ticket) error {
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO tickets (identifier, paystack_reference, ticket_type, name, seq, status) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at",
		t.Identifier, t.PaystackReference, t.TicketType, t.Name, t.Seq, t.Status,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ticket record: %w", err)
	}
	return nil
}

// UpdateStatus moves a ticket between fulfillment states
// (generated -> emailed, or -> failed).
func (s *TicketStore) UpdateStatus(ctx context.Context, identifier string, status models.TicketStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE tickets SET status = $1 WHERE identifier = $2",
		status, identifier,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// Redeem marks a ticket used, exactly once. The conditional UPDATE is
// the single-use gate: a second redemption matches no rows and is
// reported as ErrTicketUsed.
func (s *TicketStore) Redeem(ctx context.Context, identifier string) (*models.Ticket, error) {
	var t models.Ticket
	err := s.db.QueryRowContext(ctx,
		"UPDATE tickets SET used = TRUE WHERE identifier = $1 AND used = FALSE RETURNING id, identifier, paystack_reference, ticket_type, name, seq, status, used, created_at",
		identifier,
	).Scan(&t.ID, &t.Identifier, &t.PaystackReference, &t.TicketType, &t.Name, &t.Seq, &t.Status, &t.Used, &t.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		// Either unknown or already redeemed; one more lookup tells
		// the scanner which.
		var exists bool
		if lookupErr := s.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM tickets WHERE identifier = $1)",
			identifier,
		).Scan(&exists); lookupErr != nil {
			return nil, fmt.Errorf("failed to look up ticket: %w", lookupErr)
		}
		if exists {
			return nil, ErrTicketUsed
		}
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to redeem ticket: %w", err)
	}

	s.logger.Info("Ticket redeemed",
		zap.String("identifier", identifier),
		zap.String("reference", t.PaystackReference),
	)
	return &t, nil
}
