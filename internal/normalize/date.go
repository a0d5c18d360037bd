package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	isoDate      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayMonthYear = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	dayMonth     = regexp.MustCompile(`^\d{2}/\d{2}$`)
)

// Date turns a raw invoice date into ISO form (YYYY-MM-DD) using the
// reference month to fill in what the invoice omitted:
//   - ISO dates pass through
//   - DD/MM/YYYY is rearranged
//   - DD/MM takes the reference month's year and the candidate's own month
//   - a missing or unrecognized date defaults to the first day of the
//     reference month, or 1970-01-01 when there is no reference month
func Date(raw, referenceMonth string) string {
	raw = strings.TrimSpace(raw)

	fallback := "1970-01-01"
	if referenceMonth != "" {
		fallback = referenceMonth + "-01"
	}

	switch {
	case raw == "":
		return fallback
	case isoDate.MatchString(raw):
		return raw
	case dayMonthYear.MatchString(raw):
		parts := strings.Split(raw, "/")

		return fmt.Sprintf("%s-%s-%s", parts[2], parts[1], parts[0])
	case dayMonth.MatchString(raw) && referenceMonth != "":
		year := strings.SplitN(referenceMonth, "-", 2)[0]
		parts := strings.Split(raw, "/")

		return fmt.Sprintf("%s-%s-%s", year, parts[1], parts[0])
	default:
		return fallback
	}
}
