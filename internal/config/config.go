package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"portfolio/internal/contact"
	"portfolio/internal/site"
)

// Config models folio.yml.
type Config struct {
	Site   site.Content `yaml:"site"`
	Server Server       `yaml:"server"`
}

// Server holds knobs for `folio serve`.
type Server struct {
	Addr    string `yaml:"addr"`
	BaseURL string `yaml:"base_url"`
	Contact struct {
		RatePerMinute   float64 `yaml:"rate_per_minute"`
		Burst           int     `yaml:"burst"`
		MaxMessageBytes int     `yaml:"max_message_bytes"`
	} `yaml:"contact"`
	Inbox struct {
		TokenTTLHours int `yaml:"token_ttl_hours"`
	} `yaml:"inbox"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with folio config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	s := c.Site
	if strings.TrimSpace(s.Owner.Name) == "" {
		return fmt.Errorf("config.site.owner.name is required")
	}
	if s.Owner.Email != "" && !contact.ValidEmail(s.Owner.Email) {
		return fmt.Errorf("config.site.owner.email %q is not a valid email", s.Owner.Email)
	}
	for i, so := range s.Owner.Socials {
		if so.Name == "" {
			return fmt.Errorf("config.site.owner.socials[%d].name is required", i)
		}
		if so.URL != "" && so.URL != "#" {
			if _, err := url.ParseRequestURI(so.URL); err != nil {
				return fmt.Errorf("config.site.owner.socials[%d].url: %w", i, err)
			}
		}
	}
	for i, e := range s.Experience {
		if e.Company == "" || e.Role == "" {
			return fmt.Errorf("config.site.experience[%d] needs company and role", i)
		}
	}
	filters := map[string]bool{}
	for i, f := range s.ProjectFilters {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("config.site.project_filters[%d] is empty", i)
		}
		filters[strings.ToLower(f)] = true
	}
	if len(filters) > 0 && !filters[strings.ToLower(site.FilterAll)] {
		return fmt.Errorf("config.site.project_filters must include %s", site.FilterAll)
	}
	for i, p := range s.Projects {
		if p.Title == "" {
			return fmt.Errorf("config.site.projects[%d].title is required", i)
		}
	}
	for _, g := range s.Skills {
		if g.Title == "" {
			return fmt.Errorf("config.site.skills contains a group without title")
		}
		for _, sk := range g.Skills {
			if sk.Level < 0 || sk.Level > 100 {
				return fmt.Errorf("skill %s level %d out of range 0-100", sk.Name, sk.Level)
			}
		}
	}
	if c.Server.Contact.RatePerMinute < 0 {
		return fmt.Errorf("config.server.contact.rate_per_minute must not be negative")
	}
	if c.Server.Contact.Burst < 0 {
		return fmt.Errorf("config.server.contact.burst must not be negative")
	}
	if c.Server.Contact.MaxMessageBytes < 0 {
		return fmt.Errorf("config.server.contact.max_message_bytes must not be negative")
	}
	if c.Server.BaseURL != "" {
		if _, err := url.ParseRequestURI(c.Server.BaseURL); err != nil {
			return fmt.Errorf("config.server.base_url: %w", err)
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "folio.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// LoadOptional returns the default config if the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the built-in config.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `site:
  owner:
    name: Rehaan Ahmad
    email: rehaan.ahmad@email.com
    location: Kanpur, India
    education: Kanpur Institute of Technology
    socials:
      - name: LinkedIn
        url: "#"
      - name: GitHub
        url: "#"
      - name: X
        url: "#"

  hero:
    title: Software Developer | Full Stack Engineer | Java & MERN Specialist
    tagline: Turning complex problems into elegant, functional solutions.

  about:
    paragraphs:
      - >-
        I'm a passionate Software Developer and B.Tech candidate at Kanpur Institute of Technology,
        graduating in 2026. I specialize in Java, Spring Boot, and the MERN stack, with a focus on
        building scalable, efficient web applications.
      - >-
        My journey in software development is driven by curiosity and a commitment to continuous learning.
        I enjoy tackling complex problems and transforming them into elegant, user-friendly solutions.
    facts:
      - {label: Languages, value: "Hindi, English, Urdu, Arabic"}
      - {label: Interests, value: "Competitive Programming, System Design"}
      - {label: Hobbies, value: "Fitness, Open Source Contributing"}
      - {label: GitHub, value: "10+ Active Commits"}

  experience:
    - company: CuboSquare
      role: Software Developer
      achievements: [MERN Stack Development, API Performance Optimization, Authentication Systems]
      technologies: [MERN, REST, Auth]
    - company: Code Alpha
      role: Full Stack Intern
      achievements: [Spring Boot Applications, Microservices Architecture, REST API Development]
      technologies: [Spring Boot, Microservices]
    - company: CODSOFT
      role: Java Intern
      achievements: [Object-Oriented Programming, Data Structures & Algorithms, Advanced Java Projects]
      technologies: [Java, OOP, DSA]

  project_filters: [All, Java, React, Spring Boot, MongoDB]
  projects:
    - title: E-Commerce Platform
      description: Full-stack e-commerce solution with authentication, shopping cart, and payment integration.
      technologies: [MERN, Payment, Auth]
      categories: [React, MongoDB]
    - title: Library Management
      description: Spring Boot application for managing book catalogs, user registrations, and borrowing systems.
      technologies: [Spring Boot, MySQL, REST API]
      categories: [Java, Spring Boot]
    - title: Student Portal
      description: Comprehensive student management system with course registration, grade tracking, and profiles.
      technologies: [JSP, Servlets, MySQL]
      categories: [Java]

  skills:
    - title: Programming
      skills: [{name: Java, level: 90}, {name: JavaScript, level: 85}, {name: C, level: 75}]
    - title: Frontend
      skills: [{name: React.js, level: 88}, {name: HTML/CSS, level: 95}, {name: WordPress, level: 70}]
    - title: Backend
      skills: [{name: Spring Boot, level: 85}, {name: Node.js, level: 80}, {name: REST APIs, level: 90}]
    - title: Database & Tools
      skills: [{name: MongoDB, level: 85}, {name: MySQL, level: 88}, {name: Git/Docker, level: 80}]

  certifications:
    - {title: Java Developer, organization: CodeForSuccess Certified}
    - {title: MERN Stack, organization: Full Stack Certification}
    - {title: Performance Leader, organization: 40% Improvement Achieved}
    - {title: Team Leader, organization: Led 15+ Developers}
    - {title: Quality Assurance, organization: 95%+ Test Coverage}

  footer:
    blurb: Software Developer passionate about creating innovative solutions with modern technologies.
    quote: Code is like humor. When you have to explain it, it's bad.
    links: [Home, Projects, Resume, Contact]
    copyright: © 2024 Rehaan Ahmad. All rights reserved.

server:
  addr: 127.0.0.1:8080
  base_url: http://127.0.0.1:8080
  contact:
    rate_per_minute: 5
    burst: 3
    max_message_bytes: 5000
  inbox:
    token_ttl_hours: 24
`
