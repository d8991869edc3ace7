package site

import (
	"fmt"
	"strings"
)

// Section is one rendered block of the page.
type Section struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Sections renders content as plain-text sections in page order.
func Sections(c Content) []Section {
	return []Section{
		heroSection(c),
		aboutSection(c.About),
		experienceSection(c.Experience),
		projectsSection(c.Projects, c.ProjectFilters),
		skillsSection(c.Skills, c.Certifications),
		contactSection(c.Owner),
		footerSection(c.Footer),
	}
}

func heroSection(c Content) Section {
	return Section{ID: "hero", Title: c.Owner.Name, Lines: []string{
		c.Hero.Title,
		quote(c.Hero.Tagline),
	}}
}

func aboutSection(a About) Section {
	s := Section{ID: "about", Title: "About Me"}
	s.Lines = append(s.Lines, a.Paragraphs...)
	for _, f := range a.Facts {
		s.Lines = append(s.Lines, fmt.Sprintf("%s: %s", f.Label, f.Value))
	}
	return s
}

func experienceSection(items []Experience) Section {
	s := Section{ID: "experience", Title: "Experience"}
	for _, e := range items {
		s.Lines = append(s.Lines, fmt.Sprintf("%s, %s", e.Company, e.Role))
		for _, a := range e.Achievements {
			s.Lines = append(s.Lines, "  - "+a)
		}
		if len(e.Technologies) > 0 {
			s.Lines = append(s.Lines, "  "+strings.Join(e.Technologies, " · "))
		}
	}
	return s
}

func projectsSection(items []Project, filters []string) Section {
	s := Section{ID: "projects", Title: "Featured Projects"}
	if len(filters) > 0 {
		s.Lines = append(s.Lines, "Filters: "+strings.Join(filters, " | "))
	}
	for _, p := range items {
		s.Lines = append(s.Lines, p.Title, "  "+p.Description)
		if len(p.Technologies) > 0 {
			s.Lines = append(s.Lines, "  ["+strings.Join(p.Technologies, "] [")+"]")
		}
	}
	return s
}

func skillsSection(groups []SkillGroup, certs []Certification) Section {
	s := Section{ID: "skills", Title: "Skills & Expertise"}
	for _, g := range groups {
		s.Lines = append(s.Lines, g.Title)
		for _, sk := range g.Skills {
			s.Lines = append(s.Lines, fmt.Sprintf("  %-14s %s %3d%%", sk.Name, Bar(sk.Level, 20), sk.Level))
		}
	}
	for _, c := range certs {
		s.Lines = append(s.Lines, fmt.Sprintf("* %s (%s)", c.Title, c.Organization))
	}
	return s
}

func contactSection(o Owner) Section {
	s := Section{ID: "contact", Title: "Let's Connect"}
	for _, l := range []string{o.Email, o.Location, o.Education} {
		if l != "" {
			s.Lines = append(s.Lines, l)
		}
	}
	for _, so := range o.Socials {
		s.Lines = append(s.Lines, fmt.Sprintf("%s: %s", so.Name, so.URL))
	}
	return s
}

func footerSection(f Footer) Section {
	s := Section{ID: "footer", Title: "Footer"}
	for _, l := range []string{f.Blurb, quote(f.Quote), strings.Join(f.Links, " · "), f.Copyright} {
		if l != "" {
			s.Lines = append(s.Lines, l)
		}
	}
	return s
}

// Bar draws a fixed-width progress bar for a 0-100 level.
func Bar(level, width int) string {
	level = max(0, min(level, 100))
	filled := level * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func quote(s string) string {
	if s == "" {
		return ""
	}
	return `"` + s + `"`
}
