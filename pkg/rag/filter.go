// FILE: pkg/rag/filter.go
// PURPOSE: Dynamic score-threshold filtering for retrieval precision

package rag

import (
	"ai-kbchat-be/internal/constant"
	"ai-kbchat-be/internal/entity"
)

// FilterByDynamicScore keeps the documents whose similarity clears a
// threshold derived from the actual score distribution:
//
//   - topScore >= requestedMinScore: tighten to
//     max(requestedMinScore, topScore - margin)
//   - topScore < requestedMinScore: relax to
//     max(AbsoluteFloorScore, topScore - margin)
//
// The threshold never exceeds the top score, so the best match is never
// filtered away. If everything is filtered out anyway (floating point edge
// cases), the single best document is kept as a fallback.
//
// Pure function: input order is preserved, the input slice is not mutated,
// and a non-empty input always yields a non-empty output.
func FilterByDynamicScore(docs []*entity.ScoredDocument, requestedMinScore float64) []*entity.ScoredDocument {
	if len(docs) == 0 {
		return nil
	}

	// The repository orders by similarity, but compute the max explicitly
	// rather than trusting docs[0].
	topScore := docs[0].Score
	best := docs[0]
	for _, d := range docs[1:] {
		if d.Score > topScore {
			topScore = d.Score
			best = d
		}
	}

	threshold := dynamicMinScore(requestedMinScore, topScore)

	filtered := make([]*entity.ScoredDocument, 0, len(docs))
	for _, d := range docs {
		if d.Score >= threshold {
			filtered = append(filtered, d)
		}
	}

	// Safety net: keep at least the best document.
	if len(filtered) == 0 {
		filtered = append(filtered, best)
	}

	return filtered
}

// dynamicMinScore computes the effective threshold from the requested
// preference and the observed top score.
func dynamicMinScore(requestedMinScore, topScore float64) float64 {
	fromTop := topScore - constant.TopScoreMargin

	var threshold float64
	if topScore >= requestedMinScore {
		// High-confidence regime: keep only matches close to the best one,
		// and never below the requested preference.
		threshold = max(requestedMinScore, fromTop)
	} else {
		// Low-confidence regime: relax, but keep a noise floor.
		threshold = max(constant.AbsoluteFloorScore, fromTop)
	}

	// Never exceed topScore (corner case when the margin is very small).
	if threshold > topScore {
		threshold = topScore
	}

	return threshold
}
