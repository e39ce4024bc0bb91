package categorizer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fjacquet/txcat/internal/models"
)

// defaultBatchConfidence is used when an answer line has no usable confidence.
const defaultBatchConfidence = 50.0

// BatchLine is one accepted answer line: index|category|confidence.
type BatchLine struct {
	Index      int
	Category   string
	Confidence float64
}

// ParseIssue describes an answer line that was not accepted.
type ParseIssue struct {
	Line   int // 1-based line number in the response
	Text   string
	Reason string
}

// Reasons reported in ParseIssue.
const (
	IssueBadIndex     = "index is not an integer"
	IssueOutOfRange   = "index out of range"
	IssueDuplicate    = "duplicate index"
	IssueMissingField = "missing category"
)

// ParseBatchResponse reads a batch answer for a chunk of size items.
//
// Grammar, per line: INDEX "|" CATEGORY [ "|" CONFIDENCE [ "%" ] ] with
// optional whitespace around every field. Lines without "|" are ignored
// silently. UNKNOWN categories produce no entry but still claim their index.
// Confidence is clamped to [0, 100] and defaults to 50 when absent or not a
// number. When an index appears more than once the first line wins. Missing
// indices are simply absent from the result.
func ParseBatchResponse(text string, size int) ([]BatchLine, []ParseIssue) {
	var lines []BatchLine
	var issues []ParseIssue
	seen := make(map[int]struct{})

	for n, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if !strings.Contains(line, "|") {
			continue
		}
		issue := func(reason string) {
			issues = append(issues, ParseIssue{Line: n + 1, Text: line, Reason: reason})
		}

		fields := strings.Split(line, "|")
		index, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			issue(IssueBadIndex)
			continue
		}
		if index < 0 || index >= size {
			issue(IssueOutOfRange)
			continue
		}

		category := strings.TrimSpace(fields[1])
		if category == "" {
			issue(IssueMissingField)
			continue
		}
		if _, dup := seen[index]; dup {
			issue(IssueDuplicate)
			continue
		}
		seen[index] = struct{}{}

		if strings.EqualFold(category, models.UnknownAnswer) {
			continue
		}

		confidence := defaultBatchConfidence
		if len(fields) > 2 {
			confidence = parseConfidence(fields[2])
		}
		lines = append(lines, BatchLine{Index: index, Category: category, Confidence: confidence})
	}
	return lines, issues
}

func parseConfidence(field string) float64 {
	s := strings.TrimSuffix(strings.TrimSpace(field), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return defaultBatchConfidence
	}
	return math.Max(models.MinConfidence, math.Min(models.MaxConfidence, v))
}

func (p ParseIssue) String() string {
	return fmt.Sprintf("line %d: %s: %q", p.Line, p.Reason, p.Text)
}
