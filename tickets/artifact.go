package tickets

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"ticketing-svc/models"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const (
	// identifierTag prefixes every issued identifier, giving the form
	// ULES-<TYPE>-<8 hex chars>.
	identifierTag = "ULES"

	// randomSuffixBytes of entropy per identifier. At 4 bytes the
	// collision probability across a single event's ticket volume is
	// negligible, so no uniqueness check against prior identifiers is
	// made; the tickets table UNIQUE constraint would surface one.
	randomSuffixBytes = 4

	codeImageSize = 256

	// Where the QR code lands on the base image, for every type.
	overlayX = 560
	overlayY = 120
)

// Artifact is the finished per-unit output: the identifier embedded in
// the QR code and the composited PNG bytes.
type Artifact struct {
	Identifier string
	Image      []byte
}

// Generator builds one artifact per unit. A failure in any step fails
// that unit only; callers isolate it from sibling units.
type Generator struct {
	assetDir string
	logger   *zap.Logger
}

func NewGenerator(assetDir string, logger *zap.Logger) *Generator {
	return &Generator{assetDir: assetDir, logger: logger}
}

// NewIdentifier derives a practically unique ticket identifier from
// the ticket type and random bytes.
func NewIdentifier(ticketType string) (string, error) {
	suffix := make([]byte, randomSuffixBytes)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return fmt.Sprintf("%s-%s-%s",
		identifierTag,
		strings.ToUpper(ticketType),
		strings.ToUpper(hex.EncodeToString(suffix)),
	), nil
}

func (g *Generator) Generate(unit models.Unit) (*Artifact, error) {
	identifier, err := NewIdentifier(unit.TicketType)
	if err != nil {
		return nil, err
	}

	code, err := qrcode.New(identifier, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to render code for %s: %w", identifier, err)
	}
	codeImage := code.Image(codeImageSize)

	basePath := filepath.Join(g.assetDir, unit.TicketType+".png")
	base, err := imaging.Open(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load base image %s: %w", basePath, err)
	}

	composed := imaging.Overlay(base, codeImage, image.Pt(overlayX, overlayY), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, composed, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode artifact for %s: %w", identifier, err)
	}

	g.logger.Debug("Artifact generated",
		zap.String("identifier", identifier),
		zap.String("ticket_type", unit.TicketType),
		zap.Int("bytes", buf.Len()),
	)

	return &Artifact{Identifier: identifier, Image: buf.Bytes()}, nil
}
