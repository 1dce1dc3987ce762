package domain

import (
	"fmt"
	"strings"
)

// MaxSkills bounds the skills list on a profile.
const MaxSkills = 20

// Project is a project entry on a profile.
type Project struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// Experience is a work-experience entry on a profile.
type Experience struct {
	Role        string `json:"role"`
	Company     string `json:"company"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
}

// Profile is the structured document a student maintains about themselves.
// The zero value is a valid, empty profile.
type Profile struct {
	Name       string       `json:"name,omitempty"`
	Phone      string       `json:"phone,omitempty"`
	LinkedIn   string       `json:"linkedin,omitempty"`
	GitHub     string       `json:"github,omitempty"`
	Skills     []string     `json:"skills"`
	Projects   []Project    `json:"projects"`
	Experience []Experience `json:"experience"`
}

// Normalize replaces nil slices with empty ones so the stored and serialized
// document always carries explicit lists.
func (p *Profile) Normalize() {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Projects == nil {
		p.Projects = []Project{}
	}
	for i := range p.Projects {
		if p.Projects[i].Technologies == nil {
			p.Projects[i].Technologies = []string{}
		}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
}

// Validate checks the whole document against the profile constraints and
// returns a ValidationError describing every offending field, or nil.
func (p Profile) Validate() error {
	var verr ValidationError
	if len(p.Skills) > MaxSkills {
		verr.Add("skills", fmt.Sprintf("at most %d entries allowed", MaxSkills))
	}
	for i, project := range p.Projects {
		if strings.TrimSpace(project.Title) == "" {
			verr.Add(fmt.Sprintf("projects[%d].title", i), "must not be empty")
		}
		if strings.TrimSpace(project.Description) == "" {
			verr.Add(fmt.Sprintf("projects[%d].description", i), "must not be empty")
		}
	}
	for i, exp := range p.Experience {
		if strings.TrimSpace(exp.Role) == "" {
			verr.Add(fmt.Sprintf("experience[%d].role", i), "must not be empty")
		}
		if strings.TrimSpace(exp.Company) == "" {
			verr.Add(fmt.Sprintf("experience[%d].company", i), "must not be empty")
		}
		if strings.TrimSpace(exp.Description) == "" {
			verr.Add(fmt.Sprintf("experience[%d].description", i), "must not be empty")
		}
	}
	if len(verr.Fields) > 0 {
		return &verr
	}
	return nil
}
