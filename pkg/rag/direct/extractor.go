package direct

import (
	"regexp"
	"strings"
)

// QaPair is a question/answer pair extracted from a stored document.
type QaPair struct {
	Question string
	Answer   string
}

// Pattern attempts run in order: Chinese bracket markers, [Q]/[A] markers,
// then Q:/A: colon markers (full-width colons accepted).
var (
	cnQaPattern      = regexp.MustCompile(`(?s)【问题】\s*(.+?)\s*【回答】\s*(.+)`)
	bracketQaPattern = regexp.MustCompile(`(?is)\[q\]\s*(.+?)\s*\[a\]\s*(.+)`)
	colonQaPattern   = regexp.MustCompile(`(?is)\bq\s*[:：]\s*(.+?)\s*\ba\s*[:：]\s*(.+)`)
)

// ExtractQa pulls a Q/A pair out of free text. The first pattern that
// matches with non-empty question and answer wins.
func ExtractQa(text string) (QaPair, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return QaPair{}, false
	}

	for _, pattern := range []*regexp.Regexp{cnQaPattern, bracketQaPattern, colonQaPattern} {
		if pair, ok := matchQa(pattern, trimmed); ok {
			return pair, true
		}
	}

	return QaPair{}, false
}

func matchQa(pattern *regexp.Regexp, text string) (QaPair, bool) {
	groups := pattern.FindStringSubmatch(text)
	if groups == nil {
		return QaPair{}, false
	}

	question := strings.TrimSpace(groups[1])
	answer := strings.TrimSpace(groups[2])
	if question == "" || answer == "" {
		return QaPair{}, false
	}

	return QaPair{Question: question, Answer: answer}, true
}
