package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// QuoteStatus represents the status of a devis
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "EN ATTENTE"
	QuoteStatusAccepted QuoteStatus = "ACCEPTE"
	QuoteStatusRefused  QuoteStatus = "REFUSE"
)

// ParseQuoteStatus accepts the stored labels, case-insensitively. An empty
// string yields the default status.
func ParseQuoteStatus(s string) (QuoteStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(QuoteStatusPending), "EN_ATTENTE":
		return QuoteStatusPending, true
	case string(QuoteStatusAccepted):
		return QuoteStatusAccepted, true
	case string(QuoteStatusRefused):
		return QuoteStatusRefused, true
	}
	return "", false
}

func (s QuoteStatus) String() string {
	return string(s)
}

func (s QuoteStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *QuoteStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = QuoteStatus(str)
	return nil
}

func (s QuoteStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *QuoteStatus) Scan(value interface{}) error {
	if value == nil {
		*s = QuoteStatusPending
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = QuoteStatus(v)
	case []byte:
		*s = QuoteStatus(string(v))
	}
	return nil
}
