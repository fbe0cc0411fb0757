package gateway

import (
	_ "embed"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/raflytch/interview-assistant/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed fallback_questions.yaml
var fallbackQuestionsYAML []byte

const (
	summaryExcellent = "Excellent performance! Strong technical knowledge across all difficulty levels."
	summaryGood      = "Good performance with solid understanding of core concepts. Some areas for improvement in advanced topics."
	summaryAverage   = "Average performance. Needs improvement in technical depth and problem-solving skills."
	summaryBelow     = "Below expectations. Significant gaps in fundamental knowledge. Recommend further study and practice."
)

type Rand interface {
	Intn(n int) int
}

type questionTable map[domain.Difficulty][]string

type bankFile struct {
	Generic questionTable                    `yaml:"generic"`
	Roles   map[domain.JobRole]questionTable `yaml:"roles"`
}

// QuestionBank serves canned questions when the model is unreachable.
type QuestionBank struct {
	generic questionTable
	roles   map[domain.JobRole]questionTable

	mu   sync.Mutex
	rand Rand
}

func NewQuestionBank(r Rand) (*QuestionBank, error) {
	return ParseQuestionBank(fallbackQuestionsYAML, r)
}

func ParseQuestionBank(data []byte, r Rand) (*QuestionBank, error) {
	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fallback questions: %w", err)
	}

	for _, d := range domain.QuestionPlan {
		if len(file.Generic[d]) == 0 {
			return nil, fmt.Errorf("generic fallback questions missing difficulty %q", d)
		}
	}

	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &QuestionBank{
		generic: file.Generic,
		roles:   file.Roles,
		rand:    r,
	}, nil
}

func (b *QuestionBank) Pick(role domain.JobRole, difficulty domain.Difficulty) domain.Question {
	if !difficulty.Valid() {
		difficulty = domain.DifficultyMedium
	}

	pool := b.generic[difficulty]
	if table, ok := b.roles[role]; ok && len(table[difficulty]) > 0 {
		pool = table[difficulty]
	}

	b.mu.Lock()
	idx := b.rand.Intn(len(pool))
	b.mu.Unlock()

	return domain.Question{
		Text:             pool[idx],
		Difficulty:       difficulty,
		TimeLimitSeconds: domain.TimeLimitFor(difficulty),
	}
}

// FallbackScore grades by trimmed answer length.
func FallbackScore(answer string) int {
	n := utf8.RuneCountInString(strings.TrimSpace(answer))
	switch {
	case n < 10:
		return 2
	case n < 50:
		return 5
	default:
		return 7
	}
}

func FallbackSummary(scores []int) domain.Summary {
	finalScore := 0
	if len(scores) > 0 {
		total := decimal.Zero
		for _, s := range scores {
			total = total.Add(decimal.NewFromInt(int64(s)))
		}
		mean := total.Div(decimal.NewFromInt(int64(len(scores))))
		finalScore = int(mean.Mul(decimal.NewFromInt(10)).Round(0).IntPart())
	}

	var text string
	switch {
	case finalScore >= 80:
		text = summaryExcellent
	case finalScore >= 60:
		text = summaryGood
	case finalScore >= 40:
		text = summaryAverage
	default:
		text = summaryBelow
	}

	return domain.Summary{FinalScore: finalScore, Text: text}
}
