package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	fullDateRe  = regexp.MustCompile(`^(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})$`)
	kanjiDateRe = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日$`)
	shortDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)

	amountStripRe = regexp.MustCompile(`[,￥¥円\s　]`)
)

// ParseDate parses the date formats Japanese banking sites commonly render:
// YYYY/MM/DD, YYYY-MM-DD, YYYY年MM月DD日, and MM/DD (assumed to be in the
// current year). The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if m := fullDateRe.FindStringSubmatch(s); m != nil {
		return makeDate(m[1], m[2], m[3])
	}
	if m := kanjiDateRe.FindStringSubmatch(s); m != nil {
		return makeDate(m[1], m[2], m[3])
	}
	if m := shortDateRe.FindStringSubmatch(s); m != nil {
		year := strconv.Itoa(time.Now().UTC().Year())
		return makeDate(year, m[1], m[2])
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

func makeDate(year, month, day string) (time.Time, error) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)

	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, fmt.Errorf("date out of range: %04d-%02d-%02d", y, m, d)
	}

	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), nil
}

// ParseAmount parses a displayed money amount into yen. Currency symbols,
// thousands separators, and whitespace are stripped; a leading minus sign is
// preserved.
func ParseAmount(s string) (int64, error) {
	cleaned := amountStripRe.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount: %q", s)
	}

	amount, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q: %w", s, err)
	}
	return amount, nil
}

// ExternalID builds the stable dedup key for a scraped transaction:
// institution name, ISO date, amount, the first ten characters of the
// description with whitespace removed, and a per-statement index that
// disambiguates otherwise-identical rows.
func ExternalID(institution string, date time.Time, amount int64, description string, index int) string {
	runes := []rune(description)
	if len(runes) > 10 {
		runes = runes[:10]
	}

	var b strings.Builder
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}

	return fmt.Sprintf("%s-%s-%d-%s-%d", institution, date.Format("2006-01-02"), amount, b.String(), index)
}
