package tickets

import (
	"fmt"

	"ticketing-svc/models"
)

// Expand flattens a cart into one Unit per ticket instance, preserving
// line order and then intra-line sequence. A zero quantity contributes
// nothing; a negative quantity is a caller error.
func Expand(cart []models.CartLine) ([]models.Unit, error) {
	var units []models.Unit
	for i, line := range cart {
		if line.Quantity < 0 {
			return nil, fmt.Errorf("cart line %d (%s): negative quantity %d", i, line.TicketType, line.Quantity)
		}
		for seq := 0; seq < line.Quantity; seq++ {
			units = append(units, models.Unit{
				TicketType: line.TicketType,
				Name:       line.Name,
				Seq:        seq,
			})
		}
	}
	return units, nil
}
