package parser

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultScore      = 5
	DefaultFinalScore = 50
)

var (
	scorePattern      = regexp.MustCompile(`(\d+)/10`)
	finalScorePattern = regexp.MustCompile(`(?i)Final Score:\s*(\d+)`)
	finalScoreLine    = regexp.MustCompile(`(?i)Final Score:[^\n]*(\n|$)`)
	questionLabel     = regexp.MustCompile(`(?i)^(\*\*)?question( \d+)?:(\*\*)?\s*`)
)

// Score returns the first "<n>/10" value in text, clamped to 0..10, or DefaultScore.
func Score(text string) int {
	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultScore
	}
	return atoiClamped(m[1], 0, 10)
}

// FinalSummary extracts "Final Score: <n>" and returns the remaining text as the summary.
func FinalSummary(text string) (int, string) {
	score := DefaultFinalScore
	if m := finalScorePattern.FindStringSubmatch(text); m != nil {
		score = atoiClamped(m[1], 0, 100)
	}

	summary := text
	if loc := finalScoreLine.FindStringIndex(text); loc != nil {
		summary = text[:loc[0]] + text[loc[1]:]
	}
	return score, strings.TrimSpace(summary)
}

// QuestionText normalises a generated question body.
func QuestionText(text string) string {
	text = strings.TrimSpace(text)
	text = questionLabel.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

func atoiClamped(s string, lo, hi int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		// digit runs too long for int
		return hi
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
