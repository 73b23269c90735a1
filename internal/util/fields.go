package util

import (
	"regexp"
	"strings"

	"github.com/fadilmartias/cert-verifier/internal/model"
)

// Field names used as keys of FieldLines.
const (
	FieldOverallMarks    = "overall_marks"
	FieldAssignmentScore = "assignment_score"
	FieldProctoredScore  = "proctored_score"
)

// FieldLines maps each score field to its 0-based line in the issuer's
// certificate template.
var FieldLines = map[string]int{
	FieldAssignmentScore: 7,
	FieldProctoredScore:  8,
	FieldOverallMarks:    9,
}

// NameMatch selects which qualifying line becomes the candidate name when
// several lines look like a name.
type NameMatch int

const (
	FirstMatch NameMatch = iota
	LastMatch
)

// DefaultNameMatch keeps the first uppercase, digit-free line.
const DefaultNameMatch = FirstMatch

var (
	uppercasePattern = regexp.MustCompile(`^[A-Z][A-Z\s]+$`)
	digitPattern     = regexp.MustCompile(`\d`)
)

type FieldParser struct {
	NameMatch NameMatch
	Lines     map[string]int
}

func NewFieldParser() *FieldParser {
	return &FieldParser{NameMatch: DefaultNameMatch, Lines: FieldLines}
}

// ParseText splits text on newlines and parses the result.
func (p *FieldParser) ParseText(text string) model.ParsedFields {
	return p.ParseFields(strings.Split(text, "\n"))
}

func (p *FieldParser) ParseFields(lines []string) model.ParsedFields {
	var fields model.ParsedFields
	for _, line := range lines {
		if !isNameLine(line) {
			continue
		}
		name := strings.TrimSpace(line)
		fields.Name = &name
		if p.NameMatch == FirstMatch {
			break
		}
	}

	table := p.Lines
	if table == nil {
		table = FieldLines
	}
	fields.OverallMarks = fieldAt(lines, table, FieldOverallMarks, false)
	fields.AssignmentScore = fieldAt(lines, table, FieldAssignmentScore, true)
	fields.ProctoredScore = fieldAt(lines, table, FieldProctoredScore, true)
	return fields
}

// fieldAt reads the line mapped to field; a field absent from the table is nil.
func fieldAt(lines []string, table map[string]int, field string, beforeSlash bool) *string {
	idx, ok := table[field]
	if !ok {
		return nil
	}
	return lineAt(lines, idx, beforeSlash)
}

func isNameLine(line string) bool {
	return uppercasePattern.MatchString(strings.TrimSpace(line)) && !digitPattern.MatchString(line)
}

// lineAt returns the trimmed line at idx, cut before the first "/" when
// beforeSlash is set ("23/25" -> "23").
func lineAt(lines []string, idx int, beforeSlash bool) *string {
	if idx < 0 || idx >= len(lines) {
		return nil
	}
	v := strings.TrimSpace(lines[idx])
	if beforeSlash {
		if i := strings.Index(v, "/"); i >= 0 {
			v = strings.TrimSpace(v[:i])
		}
	}
	return &v
}
