package analysis

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

const fence = "```"

// Normalize parses raw model output into a ResumeAnalysis. It fails only when
// the text is not a single JSON object; missing or mistyped fields fall back
// to their defaults.
func Normalize(raw string) (ResumeAnalysis, error) {
	obj, err := decodeObject(StripCodeFence(raw))
	if err != nil {
		return ResumeAnalysis{}, err
	}
	return resumeFromObject(obj), nil
}

// NormalizeJobMatch is Normalize for the job-specific response schema.
func NormalizeJobMatch(raw string) (JobMatchAnalysis, error) {
	obj, err := decodeObject(StripCodeFence(raw))
	if err != nil {
		return JobMatchAnalysis{}, err
	}

	return JobMatchAnalysis{
		ResumeAnalysis:    resumeFromObject(obj),
		JobRelevancyScore: coerceScore(obj["jobRelevancyScore"]),
		JobMatchSummary:   coerceString(obj["jobMatchSummary"], DefaultJobMatchSummary),
		SkillMatches:      coerceStringList(obj["skillMatches"], 0),
		SkillGaps:         coerceStringList(obj["skillGaps"], 0),
	}, nil
}

// StripCodeFence removes one leading ``` opener (with an optional language
// tag) and one trailing ``` closer.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, fence) {
		text = text[len(fence):]
		i := 0
		for i < len(text) && isTagByte(text[i]) {
			i++
		}
		text = text[i:]
	}

	text = strings.TrimSuffix(text, fence)

	return strings.TrimSpace(text)
}

func isTagByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func resumeFromObject(obj map[string]any) ResumeAnalysis {
	return ResumeAnalysis{
		Name:          coerceString(obj["name"], DefaultName),
		Email:         coerceString(obj["email"], DefaultEmail),
		Phone:         coerceNullableString(obj["phone"]),
		PriorityScore: coerceScore(obj["priorityScore"]),
		Summary:       coerceString(obj["summary"], DefaultSummary),
		KeySkills:     coerceStringList(obj["keySkills"], MaxKeySkills),
		Experience:    coerceString(obj["experience"], DefaultExperience),
		Education:     coerceString(obj["education"], DefaultEducation),
		Highlights:    coerceStringList(obj["highlights"], MaxHighlights),
		Concerns:      coerceStringList(obj["concerns"], MaxConcerns),
	}
}

func decodeObject(text string) (map[string]any, error) {
	if text == "" {
		return nil, &ParseError{Kind: ParseErrorEmpty}
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, &ParseError{Kind: ParseErrorMalformed, Err: err}
	}

	var trailing any
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Kind: ParseErrorMalformed, Err: errors.New("unexpected data after top-level value")}
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, &ParseError{Kind: ParseErrorNotObject}
	}

	return obj, nil
}

// coerceString returns the trimmed string value, or def when the value is
// absent, not a string, or blank.
func coerceString(v any, def string) string {
	s, ok := v.(string)
	if !ok {
		return def
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// coerceNullableString keeps strings and number literals; anything else is nil.
func coerceNullableString(v any) *string {
	var s string
	switch val := v.(type) {
	case string:
		s = strings.TrimSpace(val)
	case json.Number:
		s = val.String()
	default:
		return nil
	}
	if s == "" {
		return nil
	}
	return &s
}

// coerceScore rounds numeric values (or numeric strings) to the nearest
// integer and clamps them into [MinScore, MaxScore]. Everything else is
// DefaultScore.
func coerceScore(v any) int {
	var raw string
	switch val := v.(type) {
	case json.Number:
		raw = val.String()
	case string:
		raw = strings.TrimSpace(val)
	case float64:
		raw = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return DefaultScore
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil && !math.IsInf(f, 0) {
		return DefaultScore
	}
	if math.IsNaN(f) {
		return DefaultScore
	}

	f = math.Max(MinScore, math.Min(MaxScore, math.Round(f)))
	return int(f)
}

// coerceStringList keeps the non-blank string elements of an array, in
// order, up to limit. A limit of zero means unbounded. Non-arrays produce an
// empty, non-nil slice.
func coerceStringList(v any, limit int) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}

	return out
}
