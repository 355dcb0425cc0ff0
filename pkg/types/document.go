package types

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Document is the logical content of a directory's category file
type Document struct {
	Categories      []Category           `json:"categories" yaml:"categories"`
	ImageCategories []ImageCategoryEntry `json:"image_categories" yaml:"image_categories"`
	Hotkeys         []HotkeyConfig       `json:"hotkeys" yaml:"hotkeys"`
}

// ImageCategoryEntry is one [path, assignments] pair. It is written as a
// two-element array in both JSON and YAML.
type ImageCategoryEntry struct {
	Path        string
	Assignments []CategoryAssignment
}

// MarshalJSON writes the entry as [path, [assignment...]]
func (e ImageCategoryEntry) MarshalJSON() ([]byte, error) {
	assignments := e.Assignments
	if assignments == nil {
		assignments = []CategoryAssignment{}
	}
	return json.Marshal([]interface{}{e.Path, assignments})
}

// UnmarshalJSON reads the [path, [assignment...]] form
func (e *ImageCategoryEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("image category entry: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("image category entry: expected [path, assignments], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Path); err != nil {
		return fmt.Errorf("image category entry path: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Assignments); err != nil {
		return fmt.Errorf("image category entry assignments: %w", err)
	}
	return nil
}

// MarshalYAML writes the entry as a two-element sequence
func (e ImageCategoryEntry) MarshalYAML() (interface{}, error) {
	assignments := e.Assignments
	if assignments == nil {
		assignments = []CategoryAssignment{}
	}
	return []interface{}{e.Path, assignments}, nil
}

// UnmarshalYAML reads the two-element sequence form
func (e *ImageCategoryEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return fmt.Errorf("image category entry: expected [path, assignments] at line %d", node.Line)
	}
	if err := node.Content[0].Decode(&e.Path); err != nil {
		return fmt.Errorf("image category entry path: %w", err)
	}
	if err := node.Content[1].Decode(&e.Assignments); err != nil {
		return fmt.Errorf("image category entry assignments: %w", err)
	}
	return nil
}

// EntriesFromMap converts an assignment map to document entries
func EntriesFromMap(m AssignmentMap) []ImageCategoryEntry {
	entries := make([]ImageCategoryEntry, 0, len(m))
	for path, list := range m {
		entries = append(entries, ImageCategoryEntry{Path: path, Assignments: append([]CategoryAssignment(nil), list...)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}
