package mailer

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"ticketing-svc/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestTicketBody(t *testing.T) {
	body := ticketBody("Jane Doe", "Regular Ticket", "ULES-REGULAR-1A2B3C4D")

	for _, want := range []string{"Jane Doe", "Regular Ticket", "ULES-REGULAR-1A2B3C4D"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}
}

func TestSMTPMailer_SendTicket_StalledRelay(t *testing.T) {
	// A relay that accepts the connection but never sends the SMTP
	// greeting: the dial blocks forever unless the context bounds it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	done := make(chan struct{})
	t.Cleanup(func() {
		close(done)
		ln.Close()
	})
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		<-done
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("Failed to split listener address: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("Failed to parse listener port: %v", err)
	}

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	m := NewSMTPMailer(host, port, "", "", "tickets@ules.events", logger)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = m.SendTicket(ctx, "a@x.com", "Jane Doe",
		models.Unit{TicketType: "regular", Name: "Regular Ticket", Seq: 0},
		"ULES-REGULAR-1A2B3C4D", []byte{0x89, 'P', 'N', 'G'})

	if err == nil {
		t.Fatal("Expected error from stalled relay")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected SendTicket to return at the timeout, took %v", elapsed)
	}
}
