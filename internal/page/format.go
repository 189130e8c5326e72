package page

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/coachtui/woflo/internal/model"
)

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006 15:04"
)

// ShortID is the first eight characters of an identifier.
func ShortID(id string) string { return Truncate(id, 8) }

// Truncate keeps at most n runes of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "n/a"
	}
	return t.Local().Format(dateTimeLayout)
}

func formatDay(d *model.Date) string {
	if d == nil || d.IsZero() {
		return "n/a"
	}
	return d.Time().Format(dateLayout)
}

// relative renders t against now, e.g. "3 days from now".
func relative(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// formatMinutes renders a duration in minutes as "1h 30m", "2h" or "45m".
func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}

func formatSolveTime(ms *int64) string {
	if ms == nil {
		return ""
	}
	return fmt.Sprintf("%.2fs", float64(*ms)/1000)
}

// statusLabel turns a wire status into its display form.
func statusLabel(raw string) string {
	return strings.ReplaceAll(raw, "_", " ")
}

func titleCase(s string) string {
	words := strings.Fields(statusLabel(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func count(n int) string { return humanize.Comma(int64(n)) }

func float(f float64) string { return humanize.Ftoa(f) }
