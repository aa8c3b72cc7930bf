package types

import "fmt"

// PropertyChange records one structural difference between two configurations:
// the dotted path to the property, the value on the old side, and the value on
// the new side. A nil Old means the property (or whole sub-object) was added;
// a nil New means it was removed.
type PropertyChange struct {
	Path string `json:"path"`
	Old  any    `json:"old"`
	New  any    `json:"new"`
}

// String renders the change for logs and operator output.
func (pc PropertyChange) String() string {
	return fmt.Sprintf("%s: %v -> %v", pc.Path, pc.Old, pc.New)
}

// Diff is an ordered list of property changes between two configuration
// snapshots. Order follows the configuration's declared field order.
type Diff struct {
	Changes []PropertyChange `json:"changes"`
}

// NewDiff returns an empty diff.
func NewDiff() *Diff {
	return &Diff{}
}

// Add appends a property change.
func (d *Diff) Add(path string, oldValue, newValue any) {
	d.Changes = append(d.Changes, PropertyChange{Path: path, Old: oldValue, New: newValue})
}

// HasChanges reports whether the diff contains any change.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Changes) > 0
}

// Len returns the number of recorded changes.
func (d *Diff) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Changes)
}
