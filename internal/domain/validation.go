package domain

import (
	"fmt"
	"strings"
)

// Validation constants
const (
	MaxTenantIDLength    = 128
	MaxDescriptionLength = 1024
	MaxMetadataSize      = 10240 // 10KB
	DefaultCurrency      = "usd"
)

// Valid currency codes (ISO 4217, lowercase as delivered by the payment
// provider).
var validCurrencies = map[string]bool{
	"usd": true, "eur": true, "gbp": true, "jpy": true,
	"cny": true, "aud": true, "cad": true, "chf": true,
	"sek": true, "nzd": true, "krw": true, "sgd": true,
	"nok": true, "mxn": true, "inr": true, "brl": true,
}

// ValidateTenantID validates a tenant identifier.
func ValidateTenantID(tenantID string) error {
	tenantID = strings.TrimSpace(tenantID)

	if tenantID == "" {
		return fmt.Errorf("%w: tenant id is required", ErrValidation)
	}

	if len(tenantID) > MaxTenantIDLength {
		return fmt.Errorf("%w: tenant id exceeds %d characters", ErrValidation, MaxTenantIDLength)
	}

	return nil
}

// ValidateCurrency validates a currency code. Empty is allowed; the recorder
// defaults it to DefaultCurrency.
func ValidateCurrency(currency string) error {
	if currency == "" {
		return nil
	}

	if !validCurrencies[strings.ToLower(currency)] {
		return fmt.Errorf("%w: %s is not a supported ISO 4217 currency code", ErrValidation, currency)
	}

	return nil
}

// ValidateDescription validates the human-readable audit description.
func ValidateDescription(description string) error {
	description = strings.TrimSpace(description)

	if description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}

	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	}

	return nil
}

// ValidateMetadata validates metadata size.
func ValidateMetadata(metadata JSON) error {
	if metadata == nil {
		return nil
	}

	// Estimate size (rough approximation)
	size := 0
	for k, v := range metadata {
		size += len(k)
		size += len(fmt.Sprintf("%v", v))
	}

	if size > MaxMetadataSize {
		return fmt.Errorf("%w: metadata size %d bytes exceeds limit of %d bytes", ErrValidation, size, MaxMetadataSize)
	}

	return nil
}
