package profile

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// idKeys are tried on the envelope first, then on the data object.
var idKeys = []string{"file_id", "fileId"}

// contactKeys fixes the output order of object-form contacts.
var contactKeys = []struct {
	key  string
	kind ContactKind
}{
	{"email", ContactEmail},
	{"phone", ContactPhone},
	{"github", ContactGitHub},
	{"linkedin", ContactLinkedIn},
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().\-]{5,}[0-9]$`)

// Normalize converts a raw upload response into a Profile.
//
// The response may wrap the profile as {"file_id": ..., "data": {...}} or carry the
// fields inline. Every optional field may be absent or take any of its documented
// shapes; only a missing identifier is an error.
func Normalize(raw []byte) (*Profile, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &MalformedProfileError{Message: "response is not valid JSON"}
	}

	root := gjson.ParseBytes(raw)
	data := root.Get("data")
	if !data.IsObject() {
		data = root
	}

	fileID, ok := lookupFileID(root, data)
	if !ok {
		return nil, &MalformedProfileError{Message: "response has no file identifier"}
	}

	return &Profile{
		Name:              text(data.Get("name")),
		Role:              text(data.Get("role")),
		GeneratedAbout:    text(data.Get("about_generated")),
		ContactItems:      normalizeContact(data.Get("contact")),
		SummaryParagraphs: stringList(data.Get("summary")),
		SkillGroups:       normalizeSkills(data.Get("skills_categorized"), data.Get("skills")),
		ExperienceEntries: stringList(data.Get("experience")),
		EducationEntries:  stringList(data.Get("education")),
		ProjectEntries:    normalizeProjects(data.Get("projects")),
		FileID:            fileID,
	}, nil
}

func lookupFileID(sources ...gjson.Result) (string, bool) {
	for _, src := range sources {
		for _, key := range idKeys {
			v := src.Get(key)
			switch {
			case v.Type == gjson.String && strings.TrimSpace(v.Str) != "":
				return v.Str, true
			case v.Type == gjson.Number:
				return v.Raw, true
			}
		}
	}
	return "", false
}

// scalar returns a string value verbatim or a number's literal text, and "" for anything else.
func scalar(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	default:
		return ""
	}
}

// text is scalar trimmed, for single-line fields where whitespace alone means absent.
func text(v gjson.Result) string {
	return strings.TrimSpace(scalar(v))
}

// stringList accepts a list of scalars or a single scalar. Elements are kept
// verbatim in order, duplicates included; only empty strings and non-scalar
// elements are dropped.
func stringList(v gjson.Result) []string {
	out := []string{}
	if v.IsArray() {
		v.ForEach(func(_, item gjson.Result) bool {
			if s := scalar(item); s != "" {
				out = append(out, s)
			}
			return true
		})
		return out
	}
	if s := scalar(v); s != "" {
		out = append(out, s)
	}
	return out
}

func normalizeContact(v gjson.Result) []ContactItem {
	items := []ContactItem{}

	switch {
	case v.IsObject():
		for _, ck := range contactKeys {
			if s := text(v.Get(ck.key)); s != "" {
				items = append(items, ContactItem{Kind: ck.kind, Value: s})
			}
		}
	default:
		for _, s := range stringList(v) {
			items = append(items, ContactItem{Kind: InferContactKind(s), Value: s})
		}
	}

	return items
}

// InferContactKind guesses the kind of a bare contact string.
func InferContactKind(s string) ContactKind {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "github.com"):
		return ContactGitHub
	case strings.Contains(lower, "linkedin.com"):
		return ContactLinkedIn
	case strings.Contains(lower, "@"):
		return ContactEmail
	case phonePattern.MatchString(s):
		return ContactPhone
	default:
		return ContactOther
	}
}

// normalizeSkills prefers the categorized mapping and walks it in document order.
func normalizeSkills(categorized, flat gjson.Result) []SkillGroup {
	groups := []SkillGroup{}

	if categorized.IsObject() {
		categorized.ForEach(func(key, value gjson.Result) bool {
			if !value.IsArray() {
				return true
			}
			skills := stringList(value)
			if len(skills) == 0 {
				return true
			}
			groups = append(groups, SkillGroup{Category: key.String(), Skills: skills})
			return true
		})
		return groups
	}

	if skills := stringList(flat); len(skills) > 0 {
		groups = append(groups, SkillGroup{Category: DefaultSkillCategory, Skills: skills})
	}
	return groups
}

func normalizeProjects(v gjson.Result) []Project {
	projects := []Project{}

	add := func(item gjson.Result) {
		switch {
		case item.IsObject():
			bullets := []string{}
			if b := item.Get("bullets"); b.IsArray() {
				bullets = stringList(b)
			}
			projects = append(projects, Project{
				Title:       scalar(item.Get("title")),
				Description: scalar(item.Get("description")),
				Bullets:     bullets,
			})
		default:
			if s := scalar(item); s != "" {
				projects = append(projects, Project{Title: s, Bullets: []string{}})
			}
		}
	}

	if v.IsArray() {
		v.ForEach(func(_, item gjson.Result) bool {
			add(item)
			return true
		})
		return projects
	}
	add(v)
	return projects
}
