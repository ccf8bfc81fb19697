package models

import "fmt"

type AssignmentMeta struct {
	Name  string   `json:"name" validate:"max=200"`
	Links []string `json:"links" validate:"dive,omitempty,url"`
	// Link is the single-link form written by older clients.
	Link string `json:"link,omitempty"`
}

type SubjectMetadata struct {
	Assignments []AssignmentMeta `json:"assignments" validate:"len=6,dive"`
}

// DefaultSubjectMetadata is served when neither the store nor the cache has
// metadata for a subject.
func DefaultSubjectMetadata() SubjectMetadata {
	assignments := make([]AssignmentMeta, AssignmentCount)
	for i := range assignments {
		assignments[i] = AssignmentMeta{
			Name:  fmt.Sprintf("ภารกิจที่ %d", i+1),
			Links: []string{""},
		}
	}
	return SubjectMetadata{Assignments: assignments}
}

// Normalize folds the legacy Link field into Links and guarantees every
// assignment carries at least one (possibly empty) link slot.
func (m SubjectMetadata) Normalize() SubjectMetadata {
	out := SubjectMetadata{Assignments: make([]AssignmentMeta, len(m.Assignments))}
	for i, a := range m.Assignments {
		links := append([]string(nil), a.Links...)
		if len(links) == 0 {
			links = []string{a.Link}
		}
		out.Assignments[i] = AssignmentMeta{Name: a.Name, Links: links}
	}
	return out
}

func (m *SubjectMetadata) IsEmpty() bool {
	return m == nil || len(m.Assignments) == 0
}
