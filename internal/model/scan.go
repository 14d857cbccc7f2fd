package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParameterSpec is one named dimension of a scan specification. Values are
// kept as JSON literals, numbers in their source spelling, so any scalar or
// structured value survives persistence unchanged.
type ParameterSpec struct {
	Name   string
	Values []json.RawMessage
}

// ScanSpec is a parsed scan specification. Parameter order is the
// enumeration order: the first parameter varies fastest.
type ScanSpec struct {
	Parameters []ParameterSpec
}

// Dimension is a parameter together with its cursor into Values.
type Dimension struct {
	Name       string
	Values     []json.RawMessage
	CurrentIdx int
}

// MaxIdx returns the largest valid cursor position.
func (d Dimension) MaxIdx() int {
	return len(d.Values) - 1
}

// ScanState is the full scheduling state of a scan.
type ScanState struct {
	Dimensions []Dimension
	// Iteration counts successful claims.
	Iteration int
}

// Indices returns the current cursor of every dimension.
func (s ScanState) Indices() []int {
	idx := make([]int, len(s.Dimensions))
	for i, d := range s.Dimensions {
		idx[i] = d.CurrentIdx
	}

	return idx
}

// Limits returns the maximum cursor of every dimension.
func (s ScanState) Limits() []int {
	limits := make([]int, len(s.Dimensions))
	for i, d := range s.Dimensions {
		limits[i] = d.MaxIdx()
	}

	return limits
}

// Total returns the number of combinations in the grid.
func (s ScanState) Total() int {
	if len(s.Dimensions) == 0 {
		return 0
	}

	total := 1
	for _, d := range s.Dimensions {
		total *= len(d.Values)
	}

	return total
}

// Exhausted reports whether every combination has already been claimed.
func (s ScanState) Exhausted() bool {
	return s.Iteration >= s.Total()
}

// Current returns the combination the cursors point at.
func (s ScanState) Current() Assignment {
	assignment := make(Assignment, 0, len(s.Dimensions))
	for _, d := range s.Dimensions {
		assignment = append(assignment, Binding{Name: d.Name, Value: d.Values[d.CurrentIdx]})
	}

	return assignment
}

// WithIndices returns a copy of s whose cursors are set to idx.
func (s ScanState) WithIndices(idx []int) ScanState {
	dims := make([]Dimension, len(s.Dimensions))
	copy(dims, s.Dimensions)

	for i := range dims {
		dims[i].CurrentIdx = idx[i]
	}

	return ScanState{Dimensions: dims, Iteration: s.Iteration}
}

// Validate checks the structural invariants of a loaded state.
func (s ScanState) Validate() error {
	if len(s.Dimensions) == 0 {
		return errors.New("parameter_list is empty")
	}

	if s.Iteration < 0 {
		return fmt.Errorf("current_iteration %d is negative", s.Iteration)
	}

	seen := make(map[string]struct{}, len(s.Dimensions))

	for _, d := range s.Dimensions {
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("parameter %q is listed twice", d.Name)
		}

		seen[d.Name] = struct{}{}

		if len(d.Values) == 0 {
			return fmt.Errorf("parameter %q has no values", d.Name)
		}

		if d.CurrentIdx < 0 || d.CurrentIdx > d.MaxIdx() {
			return fmt.Errorf("parameter %q current_idx %d out of range [0,%d]", d.Name, d.CurrentIdx, d.MaxIdx())
		}
	}

	return nil
}

type statusDimension struct {
	Values     []json.RawMessage `json:"values"`
	CurrentIdx *int              `json:"current_idx"`
}

// MarshalJSON writes the status document layout, keeping dimension order.
func (s ScanState) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`{"parameter_list":{`)

	for i, d := range s.Dimensions {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(d.Name)
		if err != nil {
			return nil, err
		}

		idx := d.CurrentIdx

		entry, err := json.Marshal(statusDimension{Values: d.Values, CurrentIdx: &idx})
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", d.Name, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(entry)
	}

	fmt.Fprintf(&buf, `},"current_iteration":%d}`, s.Iteration)

	return buf.Bytes(), nil
}

// UnmarshalJSON reads the status document layout. Missing keys are errors;
// range checks are left to Validate.
func (s *ScanState) UnmarshalJSON(data []byte) error {
	var doc struct {
		ParameterList    *orderedDimensions `json:"parameter_list"`
		CurrentIteration *int               `json:"current_iteration"`
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	if doc.ParameterList == nil {
		return errors.New("missing parameter_list")
	}

	if doc.CurrentIteration == nil {
		return errors.New("missing current_iteration")
	}

	s.Dimensions = *doc.ParameterList
	s.Iteration = *doc.CurrentIteration

	return nil
}

type orderedDimensions []Dimension

func (o *orderedDimensions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("parameter_list is not an object")
	}

	dims := orderedDimensions{}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		name, _ := tok.(string)

		var entry statusDimension
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}

		if entry.Values == nil {
			return fmt.Errorf("parameter %q: missing values", name)
		}

		if entry.CurrentIdx == nil {
			return fmt.Errorf("parameter %q: missing current_idx", name)
		}

		dims = append(dims, Dimension{Name: name, Values: entry.Values, CurrentIdx: *entry.CurrentIdx})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*o = dims

	return nil
}

// Binding is one parameter set to one value.
type Binding struct {
	Name  string
	Value json.RawMessage
}

// Text returns the value as template and environment input: strings are
// unquoted, everything else is the JSON literal.
func (b Binding) Text() string {
	var s string
	if err := json.Unmarshal(b.Value, &s); err == nil {
		return s
	}

	return string(b.Value)
}

// Assignment is one combination, in dimension order.
type Assignment []Binding

// Map returns the assignment keyed by parameter name.
func (a Assignment) Map() map[string]string {
	out := make(map[string]string, len(a))
	for _, b := range a {
		out[b.Name] = b.Text()
	}

	return out
}

func (a Assignment) String() string {
	parts := make([]string, 0, len(a))
	for _, b := range a {
		parts = append(parts, b.Name+"="+string(b.Value))
	}

	return strings.Join(parts, ", ")
}
