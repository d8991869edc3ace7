// Package site holds the portfolio's static section content and the helpers
// that lay it out.
package site

import (
	"slices"
	"strings"
)

// FilterAll matches every project.
const FilterAll = "All"

// Content is everything shown on the page, in page order.
type Content struct {
	Owner          Owner           `yaml:"owner" json:"owner"`
	Hero           Hero            `yaml:"hero" json:"hero"`
	About          About           `yaml:"about" json:"about"`
	Experience     []Experience    `yaml:"experience" json:"experience"`
	Projects       []Project       `yaml:"projects" json:"projects"`
	ProjectFilters []string        `yaml:"project_filters" json:"project_filters"`
	Skills         []SkillGroup    `yaml:"skills" json:"skills"`
	Certifications []Certification `yaml:"certifications" json:"certifications"`
	Footer         Footer          `yaml:"footer" json:"footer"`
}

type Owner struct {
	Name      string   `yaml:"name" json:"name"`
	Email     string   `yaml:"email" json:"email"`
	Location  string   `yaml:"location" json:"location"`
	Education string   `yaml:"education" json:"education"`
	Socials   []Social `yaml:"socials" json:"socials"`
}

type Social struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

type Hero struct {
	Title   string `yaml:"title" json:"title"`
	Tagline string `yaml:"tagline" json:"tagline"`
}

type About struct {
	Paragraphs []string `yaml:"paragraphs" json:"paragraphs"`
	Facts      []Fact   `yaml:"facts" json:"facts"`
}

type Fact struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

type Experience struct {
	Company      string   `yaml:"company" json:"company"`
	Role         string   `yaml:"role" json:"role"`
	Achievements []string `yaml:"achievements" json:"achievements"`
	Technologies []string `yaml:"technologies" json:"technologies"`
}

type Project struct {
	Title        string   `yaml:"title" json:"title"`
	Description  string   `yaml:"description" json:"description"`
	Image        string   `yaml:"image,omitempty" json:"image,omitempty"`
	Technologies []string `yaml:"technologies" json:"technologies"`
	Categories   []string `yaml:"categories" json:"categories"`
}

type SkillGroup struct {
	Title  string  `yaml:"title" json:"title"`
	Skills []Skill `yaml:"skills" json:"skills"`
}

// Skill level is a percentage in [0,100].
type Skill struct {
	Name  string `yaml:"name" json:"name"`
	Level int    `yaml:"level" json:"level"`
}

type Certification struct {
	Title        string `yaml:"title" json:"title"`
	Organization string `yaml:"organization" json:"organization"`
}

type Footer struct {
	Blurb     string   `yaml:"blurb" json:"blurb"`
	Quote     string   `yaml:"quote" json:"quote"`
	Links     []string `yaml:"links" json:"links"`
	Copyright string   `yaml:"copyright" json:"copyright"`
}

// FilterProjects returns the projects tagged with filter. An empty filter or
// FilterAll returns every project. Matching is case-insensitive.
func FilterProjects(projects []Project, filter string) []Project {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, FilterAll) {
		return slices.Clone(projects)
	}
	var out []Project
	for _, p := range projects {
		if slices.ContainsFunc(p.Categories, func(c string) bool { return strings.EqualFold(c, filter) }) {
			out = append(out, p)
		}
	}
	return out
}
