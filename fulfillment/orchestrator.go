package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketing-svc/kafka"
	"ticketing-svc/mailer"
	"ticketing-svc/middleware"
	"ticketing-svc/models"
	"ticketing-svc/store"
	"ticketing-svc/tickets"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type Outcome string

const (
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeFulfilled        Outcome = "fulfilled"
	OutcomeExpandFailed     Outcome = "expand_failed"
)

// UnitResult is the per-unit record of what happened. Failures are
// collected here instead of propagating across unit boundaries.
type UnitResult struct {
	Unit       models.Unit
	Identifier string
	Stage      string // generate, persist, email
	Err        error
}

// Report is the outcome of processing one verified charge.success
// delivery, logged centrally once fulfillment completes.
type Report struct {
	ProcessingID string
	Reference    string
	Outcome      Outcome
	Emailed      int
	Failed       int
	Results      []UnitResult
}

type Orchestrator struct {
	purchases   *store.PurchaseStore
	ticketStore *store.TicketStore
	generator   *tickets.Generator
	mail        mailer.Mailer
	producer    sarama.SyncProducer
	topic       string
	unitTimeout time.Duration
	logger      *zap.Logger
}

func NewOrchestrator(
	purchases *store.PurchaseStore,
	ticketStore *store.TicketStore,
	generator *tickets.Generator,
	mail mailer.Mailer,
	producer sarama.SyncProducer,
	topic string,
	unitTimeout time.Duration,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		purchases:   purchases,
		ticketStore: ticketStore,
		generator:   generator,
		mail:        mail,
		producer:    producer,
		topic:       topic,
		unitTimeout: unitTimeout,
		logger:      logger,
	}
}

// Process runs fulfillment for a verified charge.success event. The
// ledger write comes first: a duplicate reference short-circuits the
// whole delivery, while any other ledger failure is logged and
// fulfillment proceeds best-effort. Unit failures never abort sibling
// units, and the caller acknowledges the webhook regardless of how
// many units succeeded.
func (o *Orchestrator) Process(ctx context.Context, event models.PaymentEvent) *Report {
	ctx, span := otel.Tracer("ticketing-service").Start(ctx, "ProcessFulfillment")
	defer span.End()

	report := &Report{
		ProcessingID: uuid.NewString(),
		Reference:    event.Data.Reference,
	}

	span.SetAttributes(
		attribute.String("paystack.reference", event.Data.Reference),
		attribute.String("processing.id", report.ProcessingID),
	)

	purchase := &models.Purchase{
		BuyerName:         event.Data.Metadata.FullName,
		BuyerEmail:        event.Data.Customer.Email,
		Inventory:         event.Data.Metadata.Cart,
		TotalAmount:       event.Data.Amount,
		PaystackReference: event.Data.Reference,
	}

	err := o.purchases.Record(ctx, purchase)
	switch {
	case errors.Is(err, store.ErrDuplicateReference):
		report.Outcome = OutcomeAlreadyProcessed
		middleware.RecordWebhookOutcome("already_processed")
		o.logger.Info("Duplicate delivery, fulfillment skipped",
			zap.String("processing_id", report.ProcessingID),
			zap.String("reference", report.Reference),
		)
		return report
	case err != nil:
		// Ledger unavailable. Tickets are still issued best-effort;
		// a retry storm is worse than a purchase row filled in by
		// hand later.
		span.RecordError(err)
		o.logger.Error("Failed to record purchase, continuing fulfillment",
			zap.String("processing_id", report.ProcessingID),
			zap.String("reference", report.Reference),
			zap.Error(err),
		)
	}

	units, err := tickets.Expand(event.Data.Metadata.Cart)
	if err != nil {
		report.Outcome = OutcomeExpandFailed
		middleware.RecordWebhookOutcome("expand_failed")
		span.RecordError(err)
		o.logger.Error("Failed to expand cart",
			zap.String("processing_id", report.ProcessingID),
			zap.String("reference", report.Reference),
			zap.Error(err),
		)
		return report
	}

	report.Outcome = OutcomeFulfilled
	middleware.RecordWebhookOutcome("fulfilled")

	span.SetAttributes(attribute.Int("units.total", len(units)))

	for _, unit := range units {
		result := o.fulfillUnit(ctx, event, unit)
		report.Results = append(report.Results, result)
		if result.Err != nil {
			report.Failed++
			middleware.RecordTicketFulfilled("failed")
		} else {
			report.Emailed++
			middleware.RecordTicketFulfilled("emailed")
		}
	}

	o.logReport(report)
	span.SetAttributes(
		attribute.Int("units.emailed", report.Emailed),
		attribute.Int("units.failed", report.Failed),
	)
	return report
}

func (o *Orchestrator) fulfillUnit(ctx context.Context, event models.PaymentEvent, unit models.Unit) UnitResult {
	ctx, cancel := context.WithTimeout(ctx, o.unitTimeout)
	defer cancel()

	result := UnitResult{Unit: unit}

	artifact, err := o.generator.Generate(unit)
	if err != nil {
		result.Stage = "generate"
		result.Err = err
		o.logger.Error("Failed to generate ticket artifact",
			zap.String("reference", event.Data.Reference),
			zap.String("ticket_type", unit.TicketType),
			zap.String("ticket_name", unit.Name),
			zap.Int("seq", unit.Seq),
			zap.Error(err),
		)
		o.publishOutcome(ctx, event, result)
		return result
	}
	result.Identifier = artifact.Identifier

	ticket := &models.Ticket{
		Identifier:        artifact.Identifier,
		PaystackReference: event.Data.Reference,
		TicketType:        unit.TicketType,
		Name:              unit.Name,
		Seq:               unit.Seq,
		Status:            models.TicketStatusGenerated,
	}
	if err := o.ticketStore.Create(ctx, ticket); err != nil {
		// Same best-effort stance as the ledger: the purchaser still
		// gets the ticket, the status row is what we lose.
		o.logger.Error("Failed to persist ticket record",
			zap.String("identifier", artifact.Identifier),
			zap.String("reference", event.Data.Reference),
			zap.Error(err),
		)
	}

	err = o.mail.SendTicket(ctx, event.Data.Customer.Email, event.Data.Metadata.FullName, unit, artifact.Identifier, artifact.Image)
	if err != nil {
		result.Stage = "email"
		result.Err = err
		o.logger.Error("Failed to email ticket",
			zap.String("identifier", artifact.Identifier),
			zap.String("to", event.Data.Customer.Email),
			zap.String("ticket_name", unit.Name),
			zap.Int("seq", unit.Seq),
			zap.Error(err),
		)
		if updateErr := o.ticketStore.UpdateStatus(ctx, artifact.Identifier, models.TicketStatusFailed); updateErr != nil {
			o.logger.Error("Failed to mark ticket failed", zap.String("identifier", artifact.Identifier), zap.Error(updateErr))
		}
		o.publishOutcome(ctx, event, result)
		return result
	}

	if updateErr := o.ticketStore.UpdateStatus(ctx, artifact.Identifier, models.TicketStatusEmailed); updateErr != nil {
		o.logger.Error("Failed to mark ticket emailed", zap.String("identifier", artifact.Identifier), zap.Error(updateErr))
	}
	o.publishOutcome(ctx, event, result)
	return result
}

func (o *Orchestrator) publishOutcome(ctx context.Context, event models.PaymentEvent, result UnitResult) {
	if o.producer == nil {
		return
	}

	ticketEvent := models.TicketEvent{
		EventType:         "ticket_issued",
		PaystackReference: event.Data.Reference,
		Identifier:        result.Identifier,
		TicketType:        result.Unit.TicketType,
		Name:              result.Unit.Name,
		Seq:               result.Unit.Seq,
		BuyerEmail:        event.Data.Customer.Email,
	}
	if result.Err != nil {
		ticketEvent.EventType = "ticket_failed"
		ticketEvent.Reason = result.Err.Error()
	}

	if err := kafka.PublishTicketEvent(ctx, o.producer, o.topic, ticketEvent, o.logger); err != nil {
		o.logger.Error("Failed to publish ticket event",
			zap.String("reference", event.Data.Reference),
			zap.Error(err),
		)
	}
}

func (o *Orchestrator) logReport(report *Report) {
	fields := []zap.Field{
		zap.String("processing_id", report.ProcessingID),
		zap.String("reference", report.Reference),
		zap.Int("emailed", report.Emailed),
		zap.Int("failed", report.Failed),
	}
	for i, r := range report.Results {
		if r.Err != nil {
			fields = append(fields, zap.String(
				fmt.Sprintf("failure_%d", i),
				fmt.Sprintf("%s seq=%d %s: %v", r.Unit.TicketType, r.Unit.Seq, r.Stage, r.Err),
			))
		}
	}
	o.logger.Info("Fulfillment completed", fields...)
}
