package portfolio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume2portfolio/internal/profile"
)

type stubURLs struct {
	base string
}

func (s stubURLs) DownloadURL(fileID string) (string, error) {
	if fileID == "" {
		return "", errors.New("empty id")
	}
	return s.base + "/api/download/" + fileID, nil
}

func (s stubURLs) PDFDownloadURL(fileID string) (string, error) {
	if fileID == "" {
		return "", errors.New("empty id")
	}
	return s.base + "/api/download/pdf/" + fileID, nil
}

func newTestView(t *testing.T) *View {
	t.Helper()
	v, err := New(stubURLs{base: "http://localhost:8080"}, nil)
	require.NoError(t, err)
	return v
}

func render(t *testing.T, v *View, p *profile.Profile) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf, p))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func emptyProfile(fileID string) *profile.Profile {
	p, _ := profile.Normalize([]byte(`{"file_id": "` + fileID + `", "data": {}}`))
	return p
}

func fullProfile(t *testing.T) *profile.Profile {
	t.Helper()
	p, err := profile.Normalize([]byte(`{"file_id": "abc123", "data": {
		"name": "Ada Lovelace",
		"role": "Analyst",
		"contact": ["ada@example.com", "+1 555 010 2030", "github.com/ada", "London"],
		"summary": ["First paragraph.", "Second paragraph."],
		"skills_categorized": {"Languages": ["Python", "Go"], "Tools": ["Git"]},
		"experience": ["Engineer at X", "Intern at Y"],
		"education": ["BSc Mathematics"],
		"projects": ["Built X", {"title": "Shop", "description": "desc", "bullets": ["a", "b"]}]
	}}`))
	require.NoError(t, err)
	return p
}

func TestRender_EmptyProfileSuppressesSections(t *testing.T) {
	doc := render(t, newTestView(t), emptyProfile("abc123"))

	assert.Equal(t, PlaceholderName, strings.TrimSpace(doc.Find("#hero h1").Text()))
	for _, id := range []string{"about", "skills", "experience", "education", "projects", "contact"} {
		assert.Equal(t, 0, doc.Find("#"+id).Length(), "section %s should be suppressed", id)
	}
	assert.Equal(t, 0, doc.Find("h2").Length())
	assert.Equal(t, 0, doc.Find("nav.sections a").Length())

	// Export and reset affordances are always present.
	assert.Equal(t, 1, doc.Find("#export-zip").Length())
	assert.Equal(t, 1, doc.Find("#export-pdf").Length())
	assert.Equal(t, 1, doc.Find("form.reset").Length())
}

func TestRender_ExportLinks(t *testing.T) {
	doc := render(t, newTestView(t), emptyProfile("abc123"))

	zip, _ := doc.Find("#export-zip").Attr("href")
	pdf, _ := doc.Find("#export-pdf").Attr("href")
	assert.Equal(t, "http://localhost:8080/api/download/abc123", zip)
	assert.Equal(t, "http://localhost:8080/api/download/pdf/abc123", pdf)
}

func TestRender_ResetPostsToFrontEnd(t *testing.T) {
	v, err := New(stubURLs{base: "http://backend:9000"}, &Options{ResetPath: "/session/reset"})
	require.NoError(t, err)

	doc := render(t, v, emptyProfile("abc123"))
	action, _ := doc.Find("form.reset").Attr("action")
	method, _ := doc.Find("form.reset").Attr("method")
	assert.Equal(t, "/session/reset", action)
	assert.Equal(t, "post", method)
	assert.NotContains(t, action, "backend")
}

func TestRender_FullProfile(t *testing.T) {
	doc := render(t, newTestView(t), fullProfile(t))

	assert.Equal(t, "Ada Lovelace", strings.TrimSpace(doc.Find("#hero h1").Text()))
	assert.Equal(t, "Analyst", strings.TrimSpace(doc.Find("#hero .role").Text()))

	var about []string
	doc.Find("#about p").Each(func(_ int, s *goquery.Selection) { about = append(about, s.Text()) })
	assert.Equal(t, []string{"First paragraph.", "Second paragraph."}, about)

	var categories []string
	doc.Find("#skills .skill-group h3").Each(func(_ int, s *goquery.Selection) { categories = append(categories, s.Text()) })
	assert.Equal(t, []string{"Languages", "Tools"}, categories)

	var languages []string
	doc.Find("#skills .skill-group").First().Find("li").Each(func(_ int, s *goquery.Selection) { languages = append(languages, s.Text()) })
	assert.Equal(t, []string{"Python", "Go"}, languages)

	assert.Equal(t, 2, doc.Find("#experience .entry").Length())
	assert.Equal(t, 1, doc.Find("#education li").Length())

	var nav []string
	doc.Find("nav.sections a").Each(func(_ int, s *goquery.Selection) { nav = append(nav, s.Text()) })
	assert.Equal(t, []string{"About", "Skills", "Experience", "Education", "Projects", "Contact"}, nav)
}

func TestRender_Projects(t *testing.T) {
	doc := render(t, newTestView(t), fullProfile(t))

	projects := doc.Find("#projects article.project")
	require.Equal(t, 2, projects.Length())

	bare := projects.Eq(0)
	assert.Equal(t, "Built X", bare.Find("h3").Text())
	assert.Equal(t, 0, bare.Find(".description").Length())
	assert.Equal(t, 0, bare.Find("ul.bullets").Length())

	shop := projects.Eq(1)
	assert.Equal(t, "Shop", shop.Find("h3").Text())
	assert.Equal(t, "desc", shop.Find(".description").Text())
	var bullets []string
	shop.Find("ul.bullets li").Each(func(_ int, s *goquery.Selection) { bullets = append(bullets, s.Text()) })
	assert.Equal(t, []string{"a", "b"}, bullets)
}

func TestRender_ContactLinks(t *testing.T) {
	doc := render(t, newTestView(t), fullProfile(t))

	items := doc.Find("#contact li")
	require.Equal(t, 4, items.Length())

	href := func(i int) string {
		h, _ := items.Eq(i).Find("a").Attr("href")
		return h
	}
	assert.Equal(t, "mailto:ada@example.com", href(0))
	assert.Equal(t, "tel:+15550102030", href(1))
	assert.Equal(t, "https://github.com/ada", href(2))
	assert.Equal(t, 0, items.Eq(3).Find("a").Length())
	assert.Equal(t, "London", strings.TrimSpace(items.Eq(3).Text()))
}

func TestRender_GeneratedAboutPreferred(t *testing.T) {
	p := emptyProfile("abc123")
	p.GeneratedAbout = "Generated."
	p.SummaryParagraphs = []string{"Raw summary."}

	doc := render(t, newTestView(t), p)
	assert.Equal(t, "Generated.", doc.Find("#about p").Text())
}

func TestBuildTemplateData_AboutFollowsProfile(t *testing.T) {
	v := newTestView(t)

	tests := []struct {
		name    string
		about   string
		summary []string
		want    []string
	}{
		{name: "none", summary: []string{}, want: []string{}},
		{name: "summary only", summary: []string{"One.", "Two."}, want: []string{"One.", "Two."}},
		{name: "generated wins", about: "Generated.", summary: []string{"One."}, want: []string{"Generated."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := emptyProfile("abc123")
			p.GeneratedAbout = tt.about
			p.SummaryParagraphs = tt.summary

			data, err := v.BuildTemplateData(p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, data.AboutParagraphs)

			hasSection := len(data.Sections) > 0 && data.Sections[0].ID == "about"
			assert.Equal(t, p.HasAbout(), hasSection)
		})
	}
}

func TestRender_EscapesContent(t *testing.T) {
	p := emptyProfile("abc123")
	p.Name = `<script>alert("x")</script>`
	p.ContactItems = []profile.ContactItem{{Kind: profile.ContactOther, Value: "javascript:alert(1)"}}

	var buf bytes.Buffer
	require.NoError(t, newTestView(t).Render(&buf, p))
	assert.NotContains(t, buf.String(), "<script>alert")
	assert.NotContains(t, buf.String(), `href="javascript:`)
}

func TestRender_DoesNotMutateProfile(t *testing.T) {
	p := fullProfile(t)
	before := *p
	beforeSkills := append([]profile.SkillGroup(nil), p.SkillGroups...)

	var buf bytes.Buffer
	require.NoError(t, newTestView(t).Render(&buf, p))

	assert.Equal(t, before.Name, p.Name)
	assert.Equal(t, beforeSkills, p.SkillGroups)
	assert.Equal(t, before.FileID, p.FileID)
}

func TestRender_NilProfile(t *testing.T) {
	var buf bytes.Buffer
	err := newTestView(t).Render(&buf, nil)
	require.Error(t, err)

	var renderErr *RenderError
	assert.ErrorAs(t, err, &renderErr)
}

func TestRender_MissingFileID(t *testing.T) {
	p := emptyProfile("abc123")
	p.FileID = ""

	var buf bytes.Buffer
	err := newTestView(t).Render(&buf, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZIP link")
	assert.Zero(t, buf.Len())
}
