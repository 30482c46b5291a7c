// Package questions models the question JSON documents produced by the
// question-parsing collaborator. Only the questionNumber and content
// fields are interpreted; every other field passes through load and save
// byte-preserved.
package questions

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Question is a single exam question. Number and Content are the fields
// this tool reads and writes; all other JSON fields are carried through
// untouched.
type Question struct {
	Number  int
	Content string

	extra map[string]json.RawMessage
}

// UnmarshalJSON decodes a question, retaining unrecognized fields.
func (q *Question) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if raw, ok := fields["questionNumber"]; ok {
		var number float64
		if err := json.Unmarshal(raw, &number); err != nil {
			return fmt.Errorf("invalid questionNumber: %w", err)
		}
		q.Number = int(number)
		delete(fields, "questionNumber")
	}
	if raw, ok := fields["content"]; ok {
		if err := json.Unmarshal(raw, &q.Content); err != nil {
			return fmt.Errorf("invalid content: %w", err)
		}
		delete(fields, "content")
	}

	q.extra = fields
	return nil
}

// MarshalJSON encodes the question, merging the interpreted fields back
// with the retained ones.
func (q *Question) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(q.extra)+2)
	for k, v := range q.extra {
		fields[k] = v
	}

	number, err := json.Marshal(q.Number)
	if err != nil {
		return nil, err
	}
	fields["questionNumber"] = number

	content, err := json.Marshal(q.Content)
	if err != nil {
		return nil, err
	}
	fields["content"] = content

	return json.Marshal(fields)
}

// File is a question document: a questions array plus any other top-level
// fields, which pass through untouched.
type File struct {
	Questions []*Question

	extra map[string]json.RawMessage
}

// UnmarshalJSON decodes the document. A missing or non-array questions
// field is an input contract violation.
func (f *File) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	raw, ok := fields["questions"]
	if !ok {
		return fmt.Errorf("questions: missing questions array")
	}
	if err := json.Unmarshal(raw, &f.Questions); err != nil {
		return fmt.Errorf("questions: invalid questions array: %w", err)
	}
	delete(fields, "questions")

	f.extra = fields
	return nil
}

// MarshalJSON encodes the document with retained top-level fields.
func (f *File) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(f.extra)+1)
	for k, v := range f.extra {
		fields[k] = v
	}

	qs := f.Questions
	if qs == nil {
		qs = []*Question{}
	}
	questions, err := json.Marshal(qs)
	if err != nil {
		return nil, err
	}
	fields["questions"] = questions

	return json.Marshal(fields)
}

// Load reads and parses a question document from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("questions: read %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("questions: parse %s: %w", path, err)
	}
	return &f, nil
}

// Save writes the document pretty-printed. Saves are whole-file
// overwrites, so repeating a save after an interrupted run is safe.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("questions: marshal: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("questions: write %s: %w", path, err)
	}
	return nil
}

// FindByNumber returns the question with the given number, or nil.
func (f *File) FindByNumber(number int) *Question {
	for _, q := range f.Questions {
		if q.Number == number {
			return q
		}
	}
	return nil
}

// SortByNumber orders the questions by ascending question number.
func (f *File) SortByNumber() {
	sort.SliceStable(f.Questions, func(i, j int) bool {
		return f.Questions[i].Number < f.Questions[j].Number
	})
}
