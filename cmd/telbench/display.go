package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/open-telco/telbench/internal/models"
	"github.com/open-telco/telbench/internal/scoring"
)

// ---------------------------------------------------------------------------
// Shared display helpers for command output formatting. Every command
// renders through these so the output shape stays uniform.
//
// Convention:
//   Section header:  "emoji Title: summary\n"
//   Status line:     "   emoji  message\n"   (3-space indent, emoji, 2-space gap)
//
// 3-state icons:  ✅ = ok/passed   ⚠️ = warning   ❌ = error/failed
// ---------------------------------------------------------------------------

type writer = interface{ Write([]byte) (int, error) }

// writeSection prints a section header: "emoji Title: summary\n".
//
//nolint:errcheck
func writeSection(w writer, emoji, title, summary string) {
	if summary != "" {
		fmt.Fprintf(w, "%s %s: %s\n", emoji, title, summary)
	} else {
		fmt.Fprintf(w, "%s %s\n", emoji, title)
	}
}

// writeStatus prints a status line: "   icon  message\n".
//
//nolint:errcheck
func writeStatus(w writer, icon, message string) {
	fmt.Fprintf(w, "   %s  %s\n", icon, message)
}

// statusIcon returns the standard 3-state icon for the given state.
func statusIcon(state string) string {
	switch state {
	case "ok":
		return "✅"
	case "warning":
		return "⚠️"
	case "error":
		return "❌"
	default:
		return "—"
	}
}

// truncateName shortens a name to maxLen runes, replacing the last rune with "…" if needed.
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) <= maxLen {
		return name
	}
	return string(runes[:maxLen-1]) + "…"
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// sanitizeModelName replaces characters that are invalid in filenames.
func sanitizeModelName(name string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	return r.Replace(name)
}

// displayLeaderboard renders ranked entries as a fixed-width table. Rows
// without a defined index show "—" in the rank and TCI columns and sort
// after ranked rows, which [scoring.TCIConfig.Rank] already guarantees.
//
//nolint:errcheck
func displayLeaderboard(w writer, ranked []scoring.RankedEntry) {
	const maxModelWidth = 32
	const minModelWidth = 12

	// Compute dynamic column width from the longest model string.
	modelWidth := len("Model")
	for _, re := range ranked {
		if rl := runewidth.StringWidth(re.Model); rl > modelWidth {
			modelWidth = rl
		}
	}
	if modelWidth > maxModelWidth {
		modelWidth = maxModelWidth
	}
	if modelWidth < minModelWidth {
		modelWidth = minModelWidth
	}

	const colRank = 4
	const colTCI = 13
	const colScore = 8
	const colDate = 10
	totalWidth := colRank + modelWidth + colTCI + 4*colScore + colDate + 16 // 16 = 8 gaps × 2 spaces

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("═", totalWidth))
	fmt.Fprintf(w, " OPEN TELCO LLM LEADERBOARD\n")
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("═", totalWidth))

	fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s  %s  %s\n",
		padRight("Rank", colRank),
		padRight("Model", modelWidth),
		padRight("TCI", colTCI),
		padRight("TeleQnA", colScore),
		padRight("TeleLogs", colScore),
		padRight("TeleMath", colScore),
		padRight("3GPP", colScore),
		"Date")
	fmt.Fprintf(w, "%s\n", strings.Repeat("─", totalWidth))

	for _, re := range ranked {
		rank := "—"
		if re.Rank > 0 {
			rank = fmt.Sprintf("%d", re.Rank)
		}
		tci := "—"
		if re.TCI != nil {
			tci = fmt.Sprintf("%.1f", *re.TCI)
			if re.TCIError != nil {
				tci = fmt.Sprintf("%.1f ±%.2f", *re.TCI, *re.TCIError)
			}
		}
		fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s  %s  %s\n",
			padRight(rank, colRank),
			padRight(truncateName(re.Model, modelWidth), modelWidth),
			padRight(tci, colTCI),
			padRight(scoreCell(re.Score(models.BenchmarkTeleQnA)), colScore),
			padRight(scoreCell(re.Score(models.BenchmarkTeleLogs)), colScore),
			padRight(scoreCell(re.Score(models.BenchmarkTeleMath)), colScore),
			padRight(scoreCell(re.Score(models.BenchmarkThreeGPP)), colScore),
			re.Date)
	}
	fmt.Fprintf(w, "\n")
}

// scoreCell formats one benchmark column value; absent scores render as "—".
func scoreCell(s *models.BenchmarkScore) string {
	if s == nil {
		return "—"
	}
	return fmt.Sprintf("%.1f", s.Value)
}
