package models

import "time"

type TicketStatus string

const (
	TicketStatusGenerated TicketStatus = "generated"
	TicketStatusEmailed   TicketStatus = "emailed"
	TicketStatusFailed    TicketStatus = "failed"
)

// CartLine is one ticket-type selection from the purchaser's cart. It
// arrives inside Paystack metadata exactly as the initialization
// endpoint sent it out.
type CartLine struct {
	TicketType string `json:"type" binding:"required" validate:"required"`
	Quantity   int    `json:"quantity" binding:"gte=0" validate:"gte=0"`
	Name       string `json:"name" binding:"required" validate:"required"`
}

// Unit is one individual ticket instance expanded from a cart line.
// Units are never persisted directly; the tickets table records what
// became of each one.
type Unit struct {
	TicketType string
	Name       string
	Seq        int
}

// Purchase is the ledger record, written at most once per Paystack
// reference. The unique index on paystack_reference is what makes
// webhook redelivery safe.
type Purchase struct {
	ID                int        `json:"id"`
	BuyerName         string     `json:"buyer_name"`
	BuyerEmail        string     `json:"buyer_email"`
	Inventory         []CartLine `json:"inventory"`
	TotalAmount       int64      `json:"total_amount"`
	PaystackReference string     `json:"paystack_reference"`
	PurchaseDate      time.Time  `json:"purchase_date"`
}

// Ticket is the persisted per-unit fulfillment record, keyed by the
// identifier embedded in the QR code.
type Ticket struct {
	ID                int          `json:"id"`
	Identifier        string       `json:"identifier"`
	PaystackReference string       `json:"paystack_reference"`
	TicketType        string       `json:"ticket_type"`
	Name              string       `json:"name"`
	Seq               int          `json:"seq"`
	Status            TicketStatus `json:"status"`
	Used              bool         `json:"used"`
	CreatedAt         time.Time    `json:"created_at"`
}
