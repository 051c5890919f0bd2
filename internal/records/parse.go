package records

import (
	"regexp"
	"strings"
)

const (
	ColumnMeetingID = "meeting_id"
	ColumnContent   = "content"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// Parse turns uploaded CSV text into an ordered store.
//
// The first non-blank line is the header and must name both the meeting_id and
// content columns (case-insensitive, any order). Fields are split on bare commas:
// quoting is not supported, so a comma inside a value shifts the columns of that
// row. Rows missing either value are skipped.
func Parse(text string) ([]Record, error) {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return []Record{}, nil
	}

	idIndex, contentIndex := -1, -1
	for i, cell := range strings.Split(lines[0], ",") {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case ColumnMeetingID:
			if idIndex == -1 {
				idIndex = i
			}
		case ColumnContent:
			if contentIndex == -1 {
				contentIndex = i
			}
		}
	}
	if idIndex == -1 || contentIndex == -1 {
		return nil, ErrMalformedSchema
	}

	out := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cols := strings.Split(line, ",")
		id := field(cols, idIndex)
		content := field(cols, contentIndex)
		if id == "" || content == "" {
			continue
		}
		out = append(out, Record{ID: id, ImageReference: content})
	}
	return out, nil
}

func nonBlankLines(text string) []string {
	raw := lineBreak.Split(text, -1)
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func field(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return strings.TrimSpace(cols[idx])
}
