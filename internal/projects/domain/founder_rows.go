package domain

// FounderRows is the ordered list of founder drafts a submitter edits before
// sending. It always holds at least one row. Rows are validated on submit only.
type FounderRows struct {
	rows []FounderDraft
}

// NewFounderRows starts with a single blank founder.
func NewFounderRows() *FounderRows {
	return &FounderRows{rows: []FounderDraft{{}}}
}

func (r *FounderRows) Len() int { return len(r.rows) }

// Add appends a blank founder and returns its index.
func (r *FounderRows) Add() int {
	r.rows = append(r.rows, FounderDraft{})
	return len(r.rows) - 1
}

// Set replaces the founder at index i.
func (r *FounderRows) Set(i int, f FounderDraft) error {
	if i < 0 || i >= len(r.rows) {
		return ErrFounderIndex
	}
	r.rows[i] = f
	return nil
}

// Remove deletes the founder at index i. Rows after i shift down by one,
// rows before i keep their index. The last remaining row cannot be removed.
func (r *FounderRows) Remove(i int) error {
	if i < 0 || i >= len(r.rows) {
		return ErrFounderIndex
	}
	if len(r.rows) == 1 {
		return ErrLastFounder
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	return nil
}

// Drafts returns a copy of the rows in order.
func (r *FounderRows) Drafts() []FounderDraft {
	return append([]FounderDraft(nil), r.rows...)
}
