package valueparse

import (
	"regexp"
	"strconv"
	"time"
)

// isoRe matches the ISO8601 grammar: a date, an optional T-time with an
// optional embedded offset or "Z", and/or a trailing " GMT±HH:MM" /
// " GMT" / " Z" suffix.
var isoRe = regexp.MustCompile(`(?i)^(?P<y>\d{4})-(?P<mo>\d{2})-(?P<d>\d{2})` +
	`(?:T(?P<h>\d{2}):(?P<mi>\d{2})(?::(?P<s>\d{2})(?:\.(?P<f>\d{1,3}))?)?` +
	`(?:(?P<z1>Z)|(?P<sign1>[+-])(?P<oh1>\d{2}):(?P<om1>\d{2}))?)?` +
	`(?:\s+GMT(?:(?P<sign2>[+-])(?P<oh2>\d{2}):(?P<om2>\d{2}))?|\s+(?P<z2>Z))?$`)

// usRe matches the US-format grammar: M[M]/D[D]/YYYY with an optional
// 12-hour clock time and AM/PM marker, and/or a trailing " GMT±HH:MM" /
// " Z" suffix.
var usRe = regexp.MustCompile(`(?i)^(?P<mo>\d{1,2})/(?P<d>\d{1,2})/(?P<y>\d{4})` +
	`(?:\s+(?P<h>\d{1,2}):(?P<mi>\d{2})(?::(?P<s>\d{2})(?:\.(?P<f>\d{1,3}))?)?\s*(?P<ampm>AM|PM))?` +
	`(?:\s+GMT(?P<sign2>[+-])(?P<oh2>\d{2}):(?P<om2>\d{2})|\s+(?P<z2>Z))?$`)

func namedGroups(re *regexp.Regexp, raw string) (map[string]string, bool) {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	groups := map[string]string{}
	for i, name := range re.SubexpNames() {
		if name != "" && m[i] != "" {
			groups[name] = m[i]
		}
	}
	return groups, true
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	n, _ := strconv.Atoi(s)
	return n
}

// fracToNanos converts a truncated fractional-seconds string (1-3 digits)
// to nanoseconds.
func fracToNanos(s string) int {
	if s == "" {
		return 0
	}
	for len(s) < 3 {
		s += "0"
	}
	n, _ := strconv.Atoi(s)
	return n * 1_000_000
}

// buildInstant constructs a time.Time from calendar components, resolving
// to loc when no explicit offset was present in the lexeme: a naked date
// literal is reinterpreted in the expression's configured time zone.
func buildInstant(y, mo, d, h, mi, s, nsec int, hasZ bool, sign string, oh, om int, loc *time.Location) time.Time {
	switch {
	case hasZ:
		return time.Date(y, time.Month(mo), d, h, mi, s, nsec, time.UTC)
	case sign != "":
		offsetSeconds := (oh*3600 + om*60)
		if sign == "-" {
			offsetSeconds = -offsetSeconds
		}
		return time.Date(y, time.Month(mo), d, h, mi, s, nsec, time.FixedZone("", offsetSeconds))
	default:
		return time.Date(y, time.Month(mo), d, h, mi, s, nsec, loc)
	}
}

// parseISO8601 attempts to parse raw as the ISO8601 grammar. ok is false
// when raw does not match the shape at all.
func parseISO8601(raw string, loc *time.Location) (t time.Time, hasOffset bool, ok bool) {
	g, matched := namedGroups(isoRe, raw)
	if !matched {
		return time.Time{}, false, false
	}
	y := atoi(g["y"], 0)
	mo := atoi(g["mo"], 1)
	d := atoi(g["d"], 1)
	h := atoi(g["h"], 0)
	mi := atoi(g["mi"], 0)
	s := atoi(g["s"], 0)
	nsec := fracToNanos(g["f"])

	sign, oh, om := g["sign1"], atoi(g["oh1"], 0), atoi(g["om1"], 0)
	hasZ := g["z1"] != "" || g["z2"] != ""
	if sign == "" {
		sign, oh, om = g["sign2"], atoi(g["oh2"], 0), atoi(g["om2"], 0)
	}
	if g["z2"] != "" {
		hasZ = true
	}
	hasOffset = hasZ || sign != ""
	return buildInstant(y, mo, d, h, mi, s, nsec, hasZ, sign, oh, om, loc), hasOffset, true
}

// parseUSDate attempts to parse raw as the US-format grammar.
func parseUSDate(raw string, loc *time.Location) (t time.Time, hasOffset bool, ok bool) {
	g, matched := namedGroups(usRe, raw)
	if !matched {
		return time.Time{}, false, false
	}
	y := atoi(g["y"], 0)
	mo := atoi(g["mo"], 1)
	d := atoi(g["d"], 1)
	h := atoi(g["h"], 0)
	mi := atoi(g["mi"], 0)
	s := atoi(g["s"], 0)
	nsec := fracToNanos(g["f"])

	if ampm := g["ampm"]; ampm != "" {
		switch {
		case equalsFold(ampm, "PM") && h < 12:
			h += 12
		case equalsFold(ampm, "AM") && h == 12:
			h = 0
		}
	}

	sign, oh, om := g["sign2"], atoi(g["oh2"], 0), atoi(g["om2"], 0)
	hasZ := g["z2"] != ""
	hasOffset = hasZ || sign != ""
	return buildInstant(y, mo, d, h, mi, s, nsec, hasZ, sign, oh, om, loc), hasOffset, true
}

func equalsFold(s, want string) bool {
	if len(s) != len(want) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c, w := s[i], want[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if w >= 'a' && w <= 'z' {
			w -= 'a' - 'A'
		}
		if c != w {
			return false
		}
	}
	return true
}
