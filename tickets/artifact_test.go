package tickets

import (
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"regexp"
	"testing"

	"ticketing-svc/models"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var identifierPattern = regexp.MustCompile(`^ULES-REGULAR-[0-9A-F]{8}$`)

func writeBaseImage(t *testing.T, dir, ticketType string) {
	t.Helper()
	base := imaging.New(900, 500, color.NRGBA{R: 30, G: 30, B: 60, A: 255})
	if err := imaging.Save(base, filepath.Join(dir, ticketType+".png")); err != nil {
		t.Fatalf("Failed to write base image: %v", err)
	}
}

func TestNewIdentifier_Format(t *testing.T) {
	id, err := NewIdentifier("regular")
	if err != nil {
		t.Fatalf("NewIdentifier returned error: %v", err)
	}
	if !identifierPattern.MatchString(id) {
		t.Errorf("Identifier %q does not match ULES-REGULAR-XXXXXXXX", id)
	}
}

func TestNewIdentifier_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewIdentifier("vip")
		if err != nil {
			t.Fatalf("NewIdentifier returned error: %v", err)
		}
		if seen[id] {
			t.Fatalf("Identifier %q generated twice", id)
		}
		seen[id] = true
	}
}

func TestGenerator_Generate(t *testing.T) {
	dir := t.TempDir()
	writeBaseImage(t, dir, "regular")

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	gen := NewGenerator(dir, logger)

	artifact, err := gen.Generate(models.Unit{TicketType: "regular", Name: "Regular Ticket", Seq: 0})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if !identifierPattern.MatchString(artifact.Identifier) {
		t.Errorf("Identifier %q does not match expected format", artifact.Identifier)
	}

	img, err := png.Decode(bytes.NewReader(artifact.Image))
	if err != nil {
		t.Fatalf("Artifact is not a decodable PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 900 || bounds.Dy() != 500 {
		t.Errorf("Expected artifact to keep base dimensions 900x500, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestGenerator_MissingBaseImage(t *testing.T) {
	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	gen := NewGenerator(t.TempDir(), logger)

	_, err := gen.Generate(models.Unit{TicketType: "vip", Name: "VIP Ticket", Seq: 0})
	if err == nil {
		t.Fatal("Expected error for missing base image")
	}
}
