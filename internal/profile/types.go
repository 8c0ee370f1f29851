// Package profile normalizes the backend's semi-structured upload response into the
// canonical profile the portfolio view renders.
package profile

// ContactKind classifies a contact entry.
type ContactKind string

// Contact kinds, in the order object-form contacts are emitted.
const (
	ContactEmail    ContactKind = "email"
	ContactPhone    ContactKind = "phone"
	ContactGitHub   ContactKind = "github"
	ContactLinkedIn ContactKind = "linkedin"
	ContactOther    ContactKind = "other"
)

// DefaultSkillCategory labels a flat skills list.
const DefaultSkillCategory = "Skills"

// ContactItem is one typed contact value.
type ContactItem struct {
	Kind  ContactKind `json:"kind"`
	Value string      `json:"value"`
}

// SkillGroup is a named category with its skills in backend order.
type SkillGroup struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

// Project is a normalized project entry. Description is empty when absent.
type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Bullets     []string `json:"bullets"`
}

// Profile is the canonical, fully defaulted form of a submission.
// Every slice is non-nil; optional strings are empty when absent.
type Profile struct {
	Name              string        `json:"name,omitempty"`
	Role              string        `json:"role,omitempty"`
	GeneratedAbout    string        `json:"generated_about,omitempty"`
	ContactItems      []ContactItem `json:"contact_items"`
	SummaryParagraphs []string      `json:"summary_paragraphs"`
	SkillGroups       []SkillGroup  `json:"skill_groups"`
	ExperienceEntries []string      `json:"experience_entries"`
	EducationEntries  []string      `json:"education_entries"`
	ProjectEntries    []Project     `json:"project_entries"`
	FileID            string        `json:"file_id"`
}

// HasAbout reports whether the about section has anything to show.
func (p *Profile) HasAbout() bool {
	return p.GeneratedAbout != "" || len(p.SummaryParagraphs) > 0
}
