package sanitizer

import "strings"

const (
	VehicleClassLiteral = "literal"
	VehicleClassFixed   = "fixed"
)

func NormalizeGender(gender string) string {
	gender = trimAndUpper(gender)
	switch {
	case strings.HasPrefix(gender, Female):
		return Female
	case strings.HasPrefix(gender, Male):
		return Male
	default:
		return gender
	}
}

func NormalizeEducation(education string) string {
	if reBachelorPrefix.MatchString(education) {
		return Bachelor
	}
	return education
}

// NormalizeVehicleClass only matches an uppercase "L" or a lowercase "u" as the
// first character. NormalizeVehicleClassFixed accepts both cases of each letter.
func NormalizeVehicleClass(class string) string {
	return normalizeVehicleClass(class, reLuxuryPrefix.MatchString)
}

func NormalizeVehicleClassFixed(class string) string {
	return normalizeVehicleClass(class, reLuxuryPrefixAnyCase.MatchString)
}

func normalizeVehicleClass(class string, luxuryPrefix func(string) bool) string {
	if luxuryPrefix(class) {
		class = Luxury
	}
	if reSportsWord.MatchString(class) {
		class = Luxury
	}
	return class
}

// VehicleClassStrategy returns the vehicle class rule for mode. Unknown modes
// fall back to the literal rule.
func VehicleClassStrategy(mode string) Strategy {
	if mode == VehicleClassFixed {
		return NormalizeVehicleClassFixed
	}
	return NormalizeVehicleClass
}
