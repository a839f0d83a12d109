package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ticketing-svc/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ErrDuplicateReference means a purchase with this Paystack reference
// is already in the ledger. It is an expected outcome of webhook
// redelivery, not a failure.
var ErrDuplicateReference = errors.New("purchase reference already recorded")

const uniqueViolation = pq.ErrorCode("23505")

type PurchaseStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPurchaseStore(db *sql.DB, logger *zap.Logger) *PurchaseStore {
	return &PurchaseStore{db: db, logger: logger}
}

// Record inserts the purchase, relying on the unique index on
// paystack_reference to reject duplicates. Concurrent deliveries of
// the same reference race here; exactly one insert wins and the rest
// get ErrDuplicateReference whatever their arrival order.
func (s *PurchaseStore) Record(ctx context.Context, p *models.Purchase) error {
	inventory, err := json.Marshal(p.Inventory)
	if err != nil {
		return fmt.Errorf("failed to marshal inventory: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"INSERT INTO purchases (buyer_name, buyer_email, inventory, total_amount, paystack_reference) VALUES ($1, $2, $3, $4, $5) RETURNING id, purchase_date",
		p.BuyerName, p.BuyerEmail, inventory, p.TotalAmount, p.PaystackReference,
	).Scan(&p.ID, &p.PurchaseDate)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to record purchase: %w", err)
	}

	s.logger.Info("Purchase recorded",
		zap.Int("purchase_id", p.ID),
		zap.String("reference", p.PaystackReference),
		zap.Int64("total_amount", p.TotalAmount),
	)
	return nil
}
