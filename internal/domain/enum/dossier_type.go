package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// DossierType is the user-facing category of a quote
type DossierType string

const (
	DossierTypeCiternage   DossierType = "CITERNAGE"
	DossierTypeProcesVol   DossierType = "PROCES_VOL"
	DossierTypeEssaiReseau DossierType = "ESSAI_RESEAU"
)

var dossierServiceTypes = map[DossierType]ServiceType{
	DossierTypeCiternage:   ServiceTypeCiternage,
	DossierTypeProcesVol:   ServiceTypeVol,
	DossierTypeEssaiReseau: ServiceTypeEssai,
}

var dossierSaleTypes = map[DossierType]SaleType{
	DossierTypeCiternage:   SaleTypeVente,
	DossierTypeProcesVol:   SaleTypeVol,
	DossierTypeEssaiReseau: SaleTypeEssai,
}

// ParseDossierType normalizes s and reports whether it is a known dossier type
func ParseDossierType(s string) (DossierType, bool) {
	d := DossierType(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := dossierServiceTypes[d]
	return d, ok
}

// ServiceType maps the dossier to the service type its tariff is stored under
func (d DossierType) ServiceType() (ServiceType, bool) {
	st, ok := dossierServiceTypes[d]
	return st, ok
}

// SaleType maps the dossier to the type recorded on the sale row
func (d DossierType) SaleType() (SaleType, bool) {
	st, ok := dossierSaleTypes[d]
	return st, ok
}

// RequiresTransport reports whether pricing this dossier always resolves
// the TRANSPORT service as a second step.
func (d DossierType) RequiresTransport() bool {
	return d == DossierTypeCiternage
}

func (d DossierType) String() string {
	return string(d)
}

func (d DossierType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(d))
}

func (d *DossierType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*d = DossierType(strings.ToUpper(strings.TrimSpace(str)))
	return nil
}

func (d DossierType) Value() (driver.Value, error) {
	return string(d), nil
}

func (d *DossierType) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*d = DossierType(v)
	case []byte:
		*d = DossierType(string(v))
	}
	return nil
}

// SaleType is the storage code of a sale row
type SaleType string

const (
	SaleTypeVente SaleType = "VENTE"
	SaleTypeVol   SaleType = "VOL"
	SaleTypeEssai SaleType = "ESSAI"
)

func (t SaleType) String() string {
	return string(t)
}

func (t SaleType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *SaleType) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = SaleType(v)
	case []byte:
		*t = SaleType(string(v))
	}
	return nil
}
