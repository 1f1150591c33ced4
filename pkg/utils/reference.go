package utils

import (
	"fmt"
	"time"
)

// QuoteReference builds the human readable number printed on a devis,
// e.g. DV-2026-000042.
func QuoteReference(date time.Time, id uint) string {
	return fmt.Sprintf("DV-%d-%06d", date.Year(), id)
}
