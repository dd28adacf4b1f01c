package filters

import (
	"regexp"
	"strconv"
	"strings"
)

// Date input suffixes used by the GOV.UK date input component.
const (
	DaySuffix   = "-day"
	MonthSuffix = "-month"
	YearSuffix  = "-year"
)

// filterKeyRe matches list filter parameters: "flt", a position, "_", then
// the filter argument name, e.g. flt0_age or flt2_created_at-day.
var filterKeyRe = regexp.MustCompile(`(?s)^flt(\d+)_(.*)$`)

// IsFilterKey reports whether key follows the list filter naming convention.
func IsFilterKey(key string) bool {
	return filterKeyRe.MatchString(key)
}

// ParseFilterKey splits a filter key into its position and argument name.
// ok is false when key is not a filter key or names no argument.
func ParseFilterKey(key string) (pos int, arg string, ok bool) {
	m := filterKeyRe.FindStringSubmatch(key)
	if m == nil || m[2] == "" {
		return 0, "", false
	}
	pos, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return pos, m[2], true
}

// FilterKey builds the key of the filter at pos with argument arg.
func FilterKey(pos int, arg string) string {
	return "flt" + strconv.Itoa(pos) + "_" + arg
}

// Normalize returns a rewritten copy of raw for the filter parser. Filter keys
// whose values are all blank are dropped. Each complete day/month/year triple
// of filter keys is replaced by its base key holding a YYYY-MM-DD string;
// incomplete triples are passed through untouched. raw is not modified.
func Normalize(raw Args) Args {
	out := raw.Clone()

	for key, v := range raw {
		if IsFilterKey(key) && v.blank() {
			delete(out, key)
		}
	}

	for key := range raw {
		if !IsFilterKey(key) || !strings.HasSuffix(key, DaySuffix) {
			continue
		}
		base := strings.TrimSuffix(key, DaySuffix)
		monthKey, yearKey := base+MonthSuffix, base+YearSuffix
		if !raw.Has(monthKey) || !raw.Has(yearKey) {
			continue
		}

		day := strings.TrimSpace(raw.Get(key))
		month := strings.TrimSpace(raw.Get(monthKey))
		year := strings.TrimSpace(raw.Get(yearKey))
		if day == "" || month == "" || year == "" {
			continue
		}

		out[base] = Scalar(year + "-" + zeroPad(month) + "-" + zeroPad(day))
		delete(out, key)
		delete(out, monthKey)
		delete(out, yearKey)
	}

	return out
}

// zeroPad left-pads s with zeros to two characters.
func zeroPad(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}
