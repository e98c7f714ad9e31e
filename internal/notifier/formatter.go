package notifier

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"EmaSentinel/internal/model"
)

// FormatPrice renders p as $#,###.##.
func FormatPrice(p float64) string {
	s := strconv.FormatFloat(math.Abs(p), 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if p < 0 {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// FormatCrossoverLine renders one event as "YYYY-MM-DD | LABEL | Price: $#,###.##".
func FormatCrossoverLine(e model.CrossoverEvent) string {
	return fmt.Sprintf("%s | %s | Price: %s", e.Date.Format(model.DateLayout), e.Category.Label(), FormatPrice(e.Price))
}

// FormatCrossovers lists up to limit events in the given order. limit <= 0 means all.
func FormatCrossovers(events []model.CrossoverEvent, limit int) string {
	if len(events) == 0 {
		return "No crossovers found in the historical data."
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	lines := make([]string, len(events))
	for i, e := range events {
		lines[i] = html.EscapeString(FormatCrossoverLine(e))
	}
	return strings.Join(lines, "\n")
}

// FormatSummary renders the interval statistics of each category.
func FormatSummary(rows []model.IntervalSummary) string {
	if len(rows) == 0 {
		return "No recurring crossovers, no interval statistics."
	}
	var b strings.Builder
	for _, s := range rows {
		sd := "undefined"
		if s.StdDev != nil {
			sd = fmt.Sprintf("%.1f", *s.StdDev)
		}
		b.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(s.Category.Label())))
		b.WriteString(fmt.Sprintf("  avg %.1f d | median %.1f d | min %d | max %d\n", s.Mean, s.Median, s.Min, s.Max))
		b.WriteString(fmt.Sprintf("  std dev %s | intervals %d\n", sd, s.Count))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatReport builds the /latest reply.
func FormatReport(r *model.Report, limit int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s EMA crossovers</b> | %s\n", html.EscapeString(r.Symbol), r.GeneratedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Status: %s | bars %d | events %d\n\n", r.Status, len(r.Indicators), len(r.Crossovers)))

	if r.Status == model.StatusInsufficientHistory {
		b.WriteString("Not enough history to compute the slow EMA.")
		return b.String()
	}
	if n := len(r.Indicators); n > 0 {
		last := r.Indicators[n-1]
		b.WriteString(fmt.Sprintf("Last close %s on %s\n", FormatPrice(last.Close), last.Date.Format(model.DateLayout)))
		b.WriteString(fmt.Sprintf("EMA fast %s | mid %s | slow %s\n\n", FormatPrice(last.EMAFast), FormatPrice(last.EMAMid), FormatPrice(last.EMASlow)))
	}
	b.WriteString("<b>Recent crossovers</b>\n")
	b.WriteString(FormatCrossovers(r.Crossovers, limit))
	return b.String()
}

// FormatNewSignals announces crossovers that appeared since the last run.
func FormatNewSignals(symbol string, events []model.CrossoverEvent) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔔 <b>New EMA crossover on %s</b>\n\n", html.EscapeString(symbol)))
	b.WriteString(FormatCrossovers(events, 0))
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return strings.Join([]string{
		"<b>Commands</b>",
		"/latest - recent crossovers of the last run",
		"/summary - interval statistics per category",
		"/run - run the analysis now",
		"/help - this message",
	}, "\n")
}
