package question

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrMissingRequiredOption = errors.New("options A and B are required")
	ErrUnknownLabel          = errors.New("option labels must be A to E")
	ErrDuplicateLabel        = errors.New("option label repeated")
	ErrCorrectNotPresent     = errors.New("correct answer must name a present option")
)

// buildOptions normalizes labels and drops options without text.
func buildOptions(in []OptionDTO) ([]Option, error) {
	seen := map[string]bool{}
	var out []Option
	for _, o := range in {
		label := strings.ToUpper(strings.TrimSpace(o.Label))
		text := strings.TrimSpace(o.Text)
		if !slices.Contains(Labels, label) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, o.Label)
		}
		if seen[label] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLabel, label)
		}
		seen[label] = true
		if text == "" {
			continue
		}
		out = append(out, Option{Label: label, Text: text})
	}
	if !hasText(out, "A") || !hasText(out, "B") {
		return nil, ErrMissingRequiredOption
	}
	slices.SortFunc(out, func(a, b Option) int { return strings.Compare(a.Label, b.Label) })
	return out, nil
}

func hasText(opts []Option, label string) bool {
	return slices.ContainsFunc(opts, func(o Option) bool { return o.Label == label })
}

// applyDTO validates dto and writes it onto q.
func applyDTO(q *Question, dto QuestionDTO) error {
	opts, err := buildOptions(dto.Options)
	if err != nil {
		return err
	}
	correct := strings.ToUpper(strings.TrimSpace(dto.CorrectAnswer))
	if !hasText(opts, correct) {
		return ErrCorrectNotPresent
	}
	encoded, err := encodeOptions(opts)
	if err != nil {
		return err
	}

	q.Text = strings.TrimSpace(dto.Text)
	q.Options = encoded
	q.CorrectAnswer = correct
	q.Marks = dto.Marks
	if q.Marks <= 0 {
		q.Marks = 1
	}
	q.Explanation = nil
	if e := strings.TrimSpace(dto.Explanation); e != "" {
		q.Explanation = &e
	}
	return nil
}
