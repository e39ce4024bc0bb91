package categorizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBatchResponse(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		size       int
		lines      []BatchLine
		issueCount int
	}{
		{
			name:  "well formed",
			text:  "0|Groceries|90\n1|Transport|75",
			size:  2,
			lines: []BatchLine{{0, "Groceries", 90}, {1, "Transport", 75}},
		},
		{
			name:  "whitespace, CRLF and percent sign",
			text:  "  0 | Groceries | 90% \r\n\r\n 1|Transport|  60.5 ",
			size:  2,
			lines: []BatchLine{{0, "Groceries", 90}, {1, "Transport", 60.5}},
		},
		{
			name:  "missing confidence defaults to 50",
			text:  "0|Groceries",
			size:  1,
			lines: []BatchLine{{0, "Groceries", 50}},
		},
		{
			name:  "unparsable confidence defaults to 50",
			text:  "0|Groceries|high\n1|Transport|NaN",
			size:  2,
			lines: []BatchLine{{0, "Groceries", 50}, {1, "Transport", 50}},
		},
		{
			name:  "confidence is clamped",
			text:  "0|Groceries|150\n1|Transport|-20",
			size:  2,
			lines: []BatchLine{{0, "Groceries", 100}, {1, "Transport", 0}},
		},
		{
			name:  "lines without separator are ignored",
			text:  "Here are the results:\n```\n0|Groceries|80\n```",
			size:  1,
			lines: []BatchLine{{0, "Groceries", 80}},
		},
		{
			name:  "unknown answers produce no entry",
			text:  "0|UNKNOWN|0\n1|unknown\nUNKNOWN|0",
			size:  2,
			lines: nil,
			// "UNKNOWN|0" has no integer index
			issueCount: 1,
		},
		{
			name:       "bad and out of range indices",
			text:       "x|Groceries|80\n-1|Groceries|80\n2|Groceries|80\n1|Transport|70",
			size:       2,
			lines:      []BatchLine{{1, "Transport", 70}},
			issueCount: 3,
		},
		{
			name:       "first occurrence wins",
			text:       "0|Groceries|80\n0|Transport|99\n1|UNKNOWN|0\n1|Transport|90",
			size:       2,
			lines:      []BatchLine{{0, "Groceries", 80}},
			issueCount: 2,
		},
		{
			name:       "empty category",
			text:       "0| |80",
			size:       1,
			issueCount: 1,
		},
		{
			name:  "fewer lines than items",
			text:  "3|Transport|70",
			size:  10,
			lines: []BatchLine{{3, "Transport", 70}},
		},
		{
			name: "empty response",
			text: "",
			size: 5,
		},
		{
			name:  "extra fields are ignored",
			text:  "0|Groceries|80|because tesco",
			size:  1,
			lines: []BatchLine{{0, "Groceries", 80}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, issues := ParseBatchResponse(tt.text, tt.size)
			assert.Equal(t, tt.lines, lines)
			assert.Len(t, issues, tt.issueCount, "issues: %v", issues)
		})
	}
}

func TestParseBatchResponse_NeverExceedsSize(t *testing.T) {
	text := "0|A|1\n1|B|1\n2|C|1\n3|D|1\n0|E|1"
	lines, _ := ParseBatchResponse(text, 3)
	assert.LessOrEqual(t, len(lines), 3)
}

func TestParseIssue_String(t *testing.T) {
	issue := ParseIssue{Line: 4, Text: "9|X|1", Reason: IssueOutOfRange}
	assert.Equal(t, `line 4: index out of range: "9|X|1"`, issue.String())
}
