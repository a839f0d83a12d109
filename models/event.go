package models

// PaymentEvent is the typed form of a Paystack webhook delivery,
// parsed only after the signature check has passed.
type PaymentEvent struct {
	Event string `json:"event" validate:"required"`
	Data  struct {
		Reference string `json:"reference" validate:"required"`
		Amount    int64  `json:"amount" validate:"gt=0"`
		Customer  struct {
			Email string `json:"email" validate:"required,email"`
		} `json:"customer"`
		Metadata struct {
			FullName string     `json:"full_name" validate:"required"`
			Cart     []CartLine `json:"cart" validate:"required,min=1,dive"`
		} `json:"metadata"`
	} `json:"data"`
}

// EventChargeSuccess is the only Paystack event that triggers
// fulfillment; everything else is acknowledged and ignored.
const EventChargeSuccess = "charge.success"

// InitializePaymentRequest is the body of POST /payments.
type InitializePaymentRequest struct {
	Email  string     `json:"email" binding:"required,email"`
	Name   string     `json:"name" binding:"required"`
	Amount int64      `json:"amount" binding:"required,gt=0"`
	Cart   []CartLine `json:"cart" binding:"required,min=1,dive"`
}

// TicketEvent is published to Kafka after each unit is processed so
// downstream consumers can track fulfillment outcomes.
type TicketEvent struct {
	EventType         string `json:"event_type"` // ticket_issued, ticket_failed
	PaystackReference string `json:"paystack_reference"`
	Identifier        string `json:"identifier,omitempty"`
	TicketType        string `json:"ticket_type"`
	Name              string `json:"name"`
	Seq               int    `json:"seq"`
	BuyerEmail        string `json:"buyer_email"`
	Reason            string `json:"reason,omitempty"`
}
