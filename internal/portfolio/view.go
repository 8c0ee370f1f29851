// Package portfolio renders a canonical profile as a single-page portfolio with
// export links.
package portfolio

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/jonathan/resume2portfolio/internal/profile"
)

//go:embed templates/*.html
var templateFS embed.FS

// PlaceholderName is shown in the hero when the profile has no name.
const PlaceholderName = "Your Name"

// DefaultResetPath is where the "Upload New" form posts.
const DefaultResetPath = "/reset"

// URLBuilder builds artifact links for an upload identifier.
type URLBuilder interface {
	DownloadURL(fileID string) (string, error)
	PDFDownloadURL(fileID string) (string, error)
}

// Options configures a View.
type Options struct {
	ResetPath string
}

// View renders profiles. It holds no per-profile state and is safe for concurrent use.
type View struct {
	urls      URLBuilder
	resetPath string
	tmpl      *template.Template
}

// Section is an entry of the in-page navigation.
type Section struct {
	ID    string
	Title string
}

// ContactLink is a contact entry with an optional link target.
type ContactLink struct {
	Kind  profile.ContactKind
	Value string
	Href  template.URL
}

// TemplateData is what the portfolio template sees.
type TemplateData struct {
	Name            string
	Role            string
	AboutParagraphs []string
	Contacts        []ContactLink
	SkillGroups     []profile.SkillGroup
	Experience      []string
	Education       []string
	Projects        []profile.Project
	Sections        []Section
	ZipURL          string
	PDFURL          string
	ResetPath       string
}

// New parses the embedded template.
func New(urls URLBuilder, opts *Options) (*View, error) {
	if opts == nil {
		opts = &Options{}
	}
	resetPath := opts.ResetPath
	if resetPath == "" {
		resetPath = DefaultResetPath
	}

	tmpl, err := template.New("portfolio.html").ParseFS(templateFS, "templates/portfolio.html")
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse template", Cause: err}
	}

	return &View{urls: urls, resetPath: resetPath, tmpl: tmpl}, nil
}

// Render writes the portfolio page for p. It does not modify p.
func (v *View) Render(w io.Writer, p *profile.Profile) error {
	data, err := v.BuildTemplateData(p)
	if err != nil {
		return err
	}
	if err := v.tmpl.Execute(w, data); err != nil {
		return &TemplateError{Message: "failed to execute template", Cause: err}
	}
	return nil
}

// BuildTemplateData derives the view model. Sections with no content are left out
// of the navigation and suppressed by the template.
func (v *View) BuildTemplateData(p *profile.Profile) (*TemplateData, error) {
	if p == nil {
		return nil, &RenderError{Message: "no profile to render"}
	}

	zipURL, err := v.urls.DownloadURL(p.FileID)
	if err != nil {
		return nil, &RenderError{Message: "failed to build ZIP link", Cause: err}
	}
	pdfURL, err := v.urls.PDFDownloadURL(p.FileID)
	if err != nil {
		return nil, &RenderError{Message: "failed to build PDF link", Cause: err}
	}

	name := p.Name
	if name == "" {
		name = PlaceholderName
	}

	data := &TemplateData{
		Name:            name,
		Role:            p.Role,
		AboutParagraphs: aboutParagraphs(p),
		Contacts:        contactLinks(p.ContactItems),
		SkillGroups:     p.SkillGroups,
		Experience:      p.ExperienceEntries,
		Education:       p.EducationEntries,
		Projects:        p.ProjectEntries,
		ZipURL:          zipURL,
		PDFURL:          pdfURL,
		ResetPath:       v.resetPath,
	}
	data.Sections = sections(data)
	return data, nil
}

// aboutParagraphs prefers the generated text over the summary. It is empty
// exactly when the profile has no about content, which suppresses the section.
func aboutParagraphs(p *profile.Profile) []string {
	switch {
	case !p.HasAbout():
		return []string{}
	case p.GeneratedAbout != "":
		return []string{p.GeneratedAbout}
	default:
		return p.SummaryParagraphs
	}
}

func sections(d *TemplateData) []Section {
	candidates := []struct {
		section Section
		present bool
	}{
		{Section{"about", "About"}, len(d.AboutParagraphs) > 0},
		{Section{"skills", "Skills"}, len(d.SkillGroups) > 0},
		{Section{"experience", "Experience"}, len(d.Experience) > 0},
		{Section{"education", "Education"}, len(d.Education) > 0},
		{Section{"projects", "Projects"}, len(d.Projects) > 0},
		{Section{"contact", "Contact"}, len(d.Contacts) > 0},
	}

	out := []Section{}
	for _, c := range candidates {
		if c.present {
			out = append(out, c.section)
		}
	}
	return out
}

func contactLinks(items []profile.ContactItem) []ContactLink {
	links := make([]ContactLink, 0, len(items))
	for _, item := range items {
		links = append(links, ContactLink{Kind: item.Kind, Value: item.Value, Href: contactHref(item)})
	}
	return links
}

// contactHref only ever produces mailto, tel or http(s) targets.
func contactHref(item profile.ContactItem) template.URL {
	switch item.Kind {
	case profile.ContactEmail:
		return template.URL("mailto:" + strings.TrimPrefix(item.Value, "mailto:"))
	case profile.ContactPhone:
		return template.URL("tel:" + dialable(item.Value))
	case profile.ContactGitHub, profile.ContactLinkedIn:
		lower := strings.ToLower(item.Value)
		if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
			return template.URL(item.Value)
		}
		return template.URL("https://" + item.Value)
	default:
		return ""
	}
}

func dialable(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
