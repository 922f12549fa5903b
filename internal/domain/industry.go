package domain

import "fmt"

// Industry is the category named by the major industry identifier, the
// leading digit of an issuer prefix.
type Industry string

// Industry categories.
const (
	IndustryAirline       Industry = "Airline"
	IndustryTravel        Industry = "Travel and entertainment"
	IndustryBanking       Industry = "Banking and financial"
	IndustryMerchandising Industry = "Merchandising and banking"
	IndustryPetroleum     Industry = "Petroleum"
	IndustryTelecom       Industry = "Telecommunications"
	IndustryNational      Industry = "National assignment"
)

var industries = [10]Industry{
	1: IndustryAirline,
	2: IndustryAirline,
	3: IndustryTravel,
	4: IndustryBanking,
	5: IndustryBanking,
	6: IndustryMerchandising,
	7: IndustryPetroleum,
	8: IndustryTelecom,
	9: IndustryNational,
}

// IndustryOf maps the leading digit of a six-digit issuer prefix to its industry.
// A leading digit of 0, or a prefix wider than six digits, yields ErrInvalidIndustryCode.
func IndustryOf(iin int) (Industry, error) {
	code := iin / 100_000
	if code <= 0 || code >= len(industries) {
		return "", fmt.Errorf("%w: %d", ErrInvalidIndustryCode, code)
	}
	return industries[code], nil
}

// Brand is a payment network recognized from the issuer prefix.
type Brand string

// Known brands.
const (
	BrandVisa            Brand = "Visa"
	BrandAmericanExpress Brand = "American Express"
	BrandMastercard      Brand = "Mastercard"
	BrandUnknown         Brand = "Unknown"
)

// BrandOf identifies the payment network for a six-digit issuer prefix.
func BrandOf(iin int) Brand {
	lead, pair := iin/100_000, iin/10_000
	switch {
	case lead == 4:
		return BrandVisa
	case pair == 34 || pair == 37:
		return BrandAmericanExpress
	case pair == 51 || pair == 55:
		return BrandMastercard
	default:
		return BrandUnknown
	}
}
