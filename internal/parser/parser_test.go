package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"labelled", "Good answer. Score: 7/10 because it covers the basics", 7},
		{"first match wins", "Score: 3/10, could have been 9/10", 3},
		{"perfect", "10/10", 10},
		{"clamped", "Score: 15/10", 10},
		{"overflow digits", "Score: 99999999999999999999999/10", 10},
		{"no score", "no score here", DefaultScore},
		{"empty", "", DefaultScore},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.text))
		})
	}
}

func TestFinalSummary(t *testing.T) {
	score, summary := FinalSummary("Final Score: 85\nGreat work.")
	assert.Equal(t, 85, score)
	assert.Equal(t, "Great work.", summary)
}

func TestFinalSummaryCaseInsensitive(t *testing.T) {
	score, summary := FinalSummary("Overall assessment\nfinal score:   62\nSolid fundamentals.\n")
	assert.Equal(t, 62, score)
	assert.Equal(t, "Overall assessment\nSolid fundamentals.", summary)
}

func TestFinalSummaryScoreOnLastLine(t *testing.T) {
	score, summary := FinalSummary("Needs practice.\nFinal Score: 40")
	assert.Equal(t, 40, score)
	assert.Equal(t, "Needs practice.", summary)
}

func TestFinalSummaryDefaults(t *testing.T) {
	score, summary := FinalSummary("  The candidate did fine.  ")
	assert.Equal(t, DefaultFinalScore, score)
	assert.Equal(t, "The candidate did fine.", summary)

	score, summary = FinalSummary("")
	assert.Equal(t, DefaultFinalScore, score)
	assert.Empty(t, summary)
}

func TestFinalSummaryClamps(t *testing.T) {
	score, _ := FinalSummary("Final Score: 250\nwow")
	assert.Equal(t, 100, score)
}

func TestQuestionText(t *testing.T) {
	assert.Equal(t, "What is a closure?", QuestionText("  What is a closure?\n"))
	assert.Equal(t, "Explain the event loop.", QuestionText("Question: Explain the event loop."))
	assert.Equal(t, "Explain the event loop.", QuestionText("**Question 3:** Explain the event loop."))
	assert.Equal(t, "Why use indexes?", QuestionText(`"Why use indexes?"`))
	assert.Empty(t, QuestionText("   "))
}
