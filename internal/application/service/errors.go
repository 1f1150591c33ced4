package service

import (
	"errors"

	"github.com/sangkips/devis-eau-api/internal/domain/pricing"
	"github.com/sangkips/devis-eau-api/pkg/apperror"
)

// mapPricingError turns pricing errors into transport-level application
// errors. Anything else is returned unchanged.
func mapPricingError(err error) error {
	if err == nil {
		return nil
	}

	var verrs pricing.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, len(verrs))
		for i, e := range verrs {
			fields[i] = apperror.FieldError{Field: e.Field, Message: e.Message}
		}
		return apperror.NewValidationError(fields)
	}

	var dup *pricing.DuplicateTariffError
	if errors.As(err, &dup) {
		details := map[string]interface{}{
			"existing_tariff_id": dup.ExistingID,
			"service_type":       dup.ServiceType,
		}
		if dup.ReferenceVolume != nil {
			details["reference_volume"] = *dup.ReferenceVolume
		}
		return apperror.NewConflictErrorWithDetails(dup.Error(), details)
	}

	if errors.Is(err, pricing.ErrTariffNotFound) {
		return apperror.NewUnprocessableError(err.Error())
	}
	return err
}

func validationError(field, message string) error {
	return apperror.NewValidationError([]apperror.FieldError{{Field: field, Message: message}})
}
