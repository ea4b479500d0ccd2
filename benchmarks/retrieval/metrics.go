// ABOUTME: Scoring for retrieval benchmarks: faithfulness, context recall, citations
// ABOUTME: Deterministic substring checks against each query's ground truth

package retrieval

import (
	"fmt"
	"strings"

	"github.com/documentgpt/docchat/internal/models"
)

// passThreshold is the minimum per-metric score for a PASS.
const passThreshold = 0.9

// queryScore holds the per-query metric values before aggregation.
type queryScore struct {
	faithfulness float64
	recall       float64
	citations    float64
	detail       string
}

// scoreFaithfulness checks expected and forbidden strings in the answer.
func scoreFaithfulness(answer string, expected, forbidden []string) (float64, string) {
	answerUpper := strings.ToUpper(answer)

	var missing, leaked []string
	for _, want := range expected {
		if !strings.Contains(answerUpper, strings.ToUpper(want)) {
			missing = append(missing, want)
		}
	}
	for _, bad := range forbidden {
		if strings.Contains(answerUpper, strings.ToUpper(bad)) {
			leaked = append(leaked, bad)
		}
	}

	switch {
	case len(missing) == 0 && len(leaked) == 0:
		return 1.0, "answer matches ground truth"
	case len(missing) > 0 && len(leaked) > 0:
		return 0.0, fmt.Sprintf("missing %v, forbidden present %v", missing, leaked)
	case len(missing) > 0:
		return 0.5, fmt.Sprintf("missing expected strings %v", missing)
	default:
		return 0.5, fmt.Sprintf("forbidden strings present %v", leaked)
	}
}

// scoreRecall computes the fraction of expected context strings found in the
// retrieved passages.
func scoreRecall(passages []models.ScoredChunk, expected []string) (float64, string) {
	if len(expected) == 0 {
		return 1.0, "no context expectations"
	}

	var sb strings.Builder
	for _, p := range passages {
		sb.WriteString(p.Chunk.Text)
		sb.WriteString(" ")
	}
	all := strings.ToUpper(sb.String())

	found := 0
	var missing []string
	for _, want := range expected {
		if strings.Contains(all, strings.ToUpper(want)) {
			found++
		} else {
			missing = append(missing, want)
		}
	}

	recall := float64(found) / float64(len(expected))
	if recall == 1.0 {
		return 1.0, "all expected passages retrieved"
	}
	return recall, fmt.Sprintf("recall %.2f, missing %v", recall, missing)
}

// scoreCitations checks that a grounded answer carries citations when the
// ground truth requires them.
func scoreCitations(resp *models.ChatResponse, required bool) (float64, string) {
	if !required {
		return 1.0, "citations not required"
	}
	if resp == nil || len(resp.Citations) == 0 {
		return 0.0, "no citations on grounded answer"
	}
	return 1.0, fmt.Sprintf("%d citation(s)", len(resp.Citations))
}

// aggregate folds per-query scores into a scenario Result.
func aggregate(s Scenario, scores []queryScore) Result {
	var faith, recall, cites float64
	details := map[string]interface{}{}
	for i, qs := range scores {
		faith += qs.faithfulness
		recall += qs.recall
		cites += qs.citations
		details[fmt.Sprintf("query_%d", i+1)] = qs.detail
	}
	n := float64(len(scores))
	if n == 0 {
		n = 1
	}
	faith /= n
	recall /= n
	cites /= n

	status := "FAIL"
	if faith >= passThreshold && recall >= passThreshold && cites >= passThreshold {
		status = "PASS"
	}

	return Result{
		ScenarioID:         s.ID,
		ScenarioName:       s.Name,
		FaithfulnessScore:  faith,
		ContextRecallScore: recall,
		CitationScore:      cites,
		OverallScore:       (faith + recall + cites) / 3,
		Status:             status,
		Details:            details,
	}
}
