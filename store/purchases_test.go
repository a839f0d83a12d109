package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"ticketing-svc/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func setupPurchaseTest(t *testing.T) (*PurchaseStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	return NewPurchaseStore(db, logger), mock
}

func testPurchase() *models.Purchase {
	return &models.Purchase{
		BuyerName:         "Jane Doe",
		BuyerEmail:        "a@x.com",
		Inventory:         []models.CartLine{{TicketType: "regular", Quantity: 2, Name: "Regular Ticket"}},
		TotalAmount:       500000,
		PaystackReference: "abc123",
	}
}

func TestPurchaseStore_Record_Success(t *testing.T) {
	s, mock := setupPurchaseTest(t)

	mock.ExpectQuery("INSERT INTO purchases").
		WithArgs("Jane Doe", "a@x.com", sqlmock.AnyArg(), int64(500000), "abc123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "purchase_date"}).AddRow(7, time.Now()))

	p := testPurchase()
	if err := s.Record(context.Background(), p); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if p.ID != 7 {
		t.Errorf("Expected purchase ID 7, got %d", p.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestPurchaseStore_Record_DuplicateReference(t *testing.T) {
	s, mock := setupPurchaseTest(t)

	mock.ExpectQuery("INSERT INTO purchases").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "purchases_paystack_reference_key"})

	err := s.Record(context.Background(), testPurchase())
	if !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("Expected ErrDuplicateReference, got %v", err)
	}
}

func TestPurchaseStore_Record_Failure(t *testing.T) {
	s, mock := setupPurchaseTest(t)

	mock.ExpectQuery("INSERT INTO purchases").
		WillReturnError(errors.New("connection refused"))

	err := s.Record(context.Background(), testPurchase())
	if err == nil {
		t.Fatal("Expected error for failed insert")
	}
	if errors.Is(err, ErrDuplicateReference) {
		t.Fatal("Generic failure must not be reported as duplicate")
	}
}
