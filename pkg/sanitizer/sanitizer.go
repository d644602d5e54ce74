package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

const (
	Unknown  = "Unknown"
	Female   = "F"
	Male     = "M"
	Bachelor = "Bachelor"
	Luxury   = "Luxury"
)

var (
	reBachelorPrefix      = regexp.MustCompile(`^[Bb]`)
	reLuxuryPrefix        = regexp.MustCompile(`^[Lu]`)
	reLuxuryPrefixAnyCase = regexp.MustCompile(`^[LlUu]`)
	reSportsWord          = regexp.MustCompile(`\bSports\b`)
	reComplaintsCount     = regexp.MustCompile(`/(\d+)/`)

	columnRenames = map[string]string{
		"st":     "state",
		"income": "customer_income",
	}
)

func lower(s string) string {
	return strings.ToLower(s)
}

func trimAndUpper(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToUpper(s)
	return s
}

func spacesToUnderscores(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}

func renameColumn(s string) string {
	if renamed, ok := columnRenames[s]; ok {
		return renamed
	}
	return s
}

func NormalizeColumnName(name string) string {
	p := Pipeline{
		lower,
		spacesToUnderscores,
		renameColumn,
	}
	return p.Apply(name)
}
