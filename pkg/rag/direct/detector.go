// FILE: pkg/rag/direct/detector.go
// PURPOSE: Decide whether the top retrieval match can answer directly,
//          bypassing LLM generation entirely.

package direct

import (
	"strings"

	"ai-kbchat-be/internal/constant"
	"ai-kbchat-be/internal/entity"
)

// TryDirectAnswer inspects the top retrieval match and returns an extracted
// answer when it is a confident Q/A hit:
//
//  1. top score must clear QaDirectMinScore
//  2. when a runner-up exists, the top-2 gap must clear QaDirectMargin
//     (an ambiguous gap disqualifies a confident hit)
//  3. the document must either be typed as chat_qa or structurally look
//     like a Q/A pair
//
// False negatives are fine (the caller falls through to generation);
// the score/margin/structure gates bound false positives.
func TryDirectAnswer(docs []*entity.ScoredDocument, question string) (string, bool) {
	if len(docs) == 0 {
		return "", false
	}

	top := docs[0]
	topScore := top.Score
	secondScore := 0.0
	if len(docs) > 1 {
		secondScore = docs[1].Score
	}

	if topScore < constant.QaDirectMinScore {
		return "", false
	}
	if len(docs) > 1 && topScore-secondScore < constant.QaDirectMargin {
		return "", false
	}

	text := pickBestText(top)
	if text == "" {
		return "", false
	}

	if !isChatQaType(top.Document) && !looksLikeQa(text) {
		return "", false
	}

	pair, ok := ExtractQa(text)
	if !ok {
		return "", false
	}

	return strings.TrimSpace(pair.Answer), true
}

// pickBestText selects the richest available text from the match:
// primary content, then metadata fullText, then metadata preview.
func pickBestText(doc *entity.ScoredDocument) string {
	if doc == nil || doc.Document == nil {
		return ""
	}

	if strings.TrimSpace(doc.Document.Content) != "" {
		return doc.Document.Content
	}

	if meta := doc.Document.Metadata; meta != nil {
		if full, ok := meta["fullText"].(string); ok && full != "" {
			return full
		}
		if preview, ok := meta["preview"].(string); ok && preview != "" {
			return preview
		}
	}

	return ""
}

func isChatQaType(doc *entity.KbDocument) bool {
	return doc != nil && strings.EqualFold(doc.DocType, constant.DocTypeChatQa)
}

// looksLikeQa checks for any of the structural Q/A markers.
func looksLikeQa(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(text, "【问题】") && strings.Contains(text, "【回答】") {
		return true
	}
	if strings.Contains(lower, "[q]") && strings.Contains(lower, "[a]") {
		return true
	}
	return colonQaPattern.MatchString(text)
}
