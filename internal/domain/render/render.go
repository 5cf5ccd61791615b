// Package render turns a ranked entry list into the final board
// published to the display surface.
package render

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/holoboard/holoboard/internal/domain/rank"
)

// Template placeholders.
const (
	titleNameToken = "{placeholder_name}"
	rankToken      = "{rank}"
	playerToken    = "{player}"
	valueToken     = "{value}"
)

// placeholderLine is rendered when a board has no entries at all.
const placeholderLine = "No entries yet."

// Board is a fully rendered leaderboard: a title plus one line per
// ranked entry. It is published as a single value; readers never see a
// partially built board.
type Board struct {
	Title string
	Lines []string
}

var valuePrinter = message.NewPrinter(language.English)

// FormatValue renders a metric value with thousands grouping and no
// fraction digits.
func FormatValue(v float64) string {
	return valuePrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}

// Render builds a Board from sorted entries. Entries beyond topN are
// ignored; an empty list yields a single placeholder line.
func Render(titleTemplate, lineTemplate, sourceName string, entries []rank.Entry, topN int) Board {
	b := Board{
		Title: strings.ReplaceAll(titleTemplate, titleNameToken, sourceName),
	}

	if len(entries) == 0 {
		b.Lines = []string{placeholderLine}
		return b
	}

	n := len(entries)
	if topN > 0 && n > topN {
		n = topN
	}
	b.Lines = make([]string, 0, n)
	for i := 0; i < n; i++ {
		line := lineTemplate
		line = strings.ReplaceAll(line, rankToken, strconv.Itoa(i+1))
		line = strings.ReplaceAll(line, playerToken, entries[i].DisplayName)
		line = strings.ReplaceAll(line, valueToken, FormatValue(entries[i].Value))
		b.Lines = append(b.Lines, line)
	}
	return b
}

// PrettyMetricName strips placeholder markers from a live metric name
// for use in titles: "%player_gold%" becomes "player gold".
func PrettyMetricName(metric string) string {
	s := strings.ReplaceAll(metric, "%", "")
	return strings.ReplaceAll(s, "_", " ")
}

// FriendlyColumnName converts a snake_case column name to a
// word-capitalized display form: "times_fished" becomes "Times Fished".
func FriendlyColumnName(column string) string {
	var b strings.Builder
	upper := true
	for _, c := range column {
		if c == '_' {
			b.WriteByte(' ')
			upper = true
			continue
		}
		if upper {
			b.WriteRune(toUpper(c))
			upper = false
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func toUpper(c rune) rune {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// Capitalize upper-cases the first character of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
