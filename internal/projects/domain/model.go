package domain

import (
	"strings"
	"time"
)

// ProjectID is the identifier the store assigns to a project on insert.
type ProjectID string

// Project is one directory entry together with its founders.
// It is storage-agnostic and shared by the repository, directory and HTTP layers.
type Project struct {
	ID          ProjectID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Industry    string    `json:"industry"`
	Province    string    `json:"province"`
	ProjectLink string    `json:"project_link"`
	Founders    []Founder `json:"founders"`
	CreatedAt   time.Time `json:"created_at"`
}

// Founder is a person linked to exactly one project.
type Founder struct {
	Name     string `json:"name"`
	Contact  string `json:"contact,omitempty"`
	Province string `json:"province"`
}

// ProjectDraft is a project that has not been persisted yet.
type ProjectDraft struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Industry    string `json:"industry"`
	Province    string `json:"province"`
	ProjectLink string `json:"project_link"`
}

// FounderDraft is a founder waiting to be linked to a persisted project.
// ProjectID stays empty until the owning project has been inserted.
type FounderDraft struct {
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Province  string    `json:"province"`
	ProjectID ProjectID `json:"project_id,omitempty"`
}

// Normalize returns a copy with surrounding whitespace removed from every field.
func (d ProjectDraft) Normalize() ProjectDraft {
	return ProjectDraft{
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Industry:    strings.TrimSpace(d.Industry),
		Province:    strings.TrimSpace(d.Province),
		ProjectLink: strings.TrimSpace(d.ProjectLink),
	}
}

func (d FounderDraft) Normalize() FounderDraft {
	return FounderDraft{
		Name:      strings.TrimSpace(d.Name),
		Contact:   strings.TrimSpace(d.Contact),
		Province:  strings.TrimSpace(d.Province),
		ProjectID: d.ProjectID,
	}
}

// OrphanProject is a persisted project that has no founders linked to it.
type OrphanProject struct {
	ID        ProjectID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
