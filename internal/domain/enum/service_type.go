package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// ServiceType is the internal code a tariff is priced under
type ServiceType string

const (
	ServiceTypeCiternage ServiceType = "CITERNAGE"
	ServiceTypeTransport ServiceType = "TRANSPORT"
	ServiceTypeVol       ServiceType = "VOL"
	ServiceTypeEssai     ServiceType = "ESSAI"
)

// ServiceTypes lists every known service type
var ServiceTypes = []ServiceType{
	ServiceTypeCiternage,
	ServiceTypeTransport,
	ServiceTypeVol,
	ServiceTypeEssai,
}

// ParseServiceType normalizes s (trimmed, upper-cased) and reports whether
// it names a known service type.
func ParseServiceType(s string) (ServiceType, bool) {
	t := ServiceType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.IsValid()
}

// IsValid reports whether t is one of the known service types
func (t ServiceType) IsValid() bool {
	for _, known := range ServiceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Equal compares two service types case-insensitively, ignoring surrounding spaces
func (t ServiceType) Equal(other ServiceType) bool {
	return strings.EqualFold(strings.TrimSpace(string(t)), strings.TrimSpace(string(other)))
}

func (t ServiceType) String() string {
	return string(t)
}

func (t ServiceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *ServiceType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*t = ServiceType(strings.ToUpper(strings.TrimSpace(str)))
	return nil
}

func (t ServiceType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *ServiceType) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = ServiceType(v)
	case []byte:
		*t = ServiceType(string(v))
	case nil:
		*t = ""
	}
	return nil
}
