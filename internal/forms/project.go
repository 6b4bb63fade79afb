package forms

import (
	"strings"

	"github.com/tgienger/taskdeck/internal/models"
)

// ProjectForm creates or edits a project
type ProjectForm struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`

	initial *models.Project
}

func NewProjectForm() *ProjectForm {
	return &ProjectForm{Color: models.DefaultProjectColor}
}

func EditProjectForm(p models.Project) *ProjectForm {
	return &ProjectForm{
		Name:        p.Name,
		Description: p.Description,
		Color:       p.Color,
		initial:     &p,
	}
}

func (f *ProjectForm) Editing() bool { return f.initial != nil }

func (f *ProjectForm) Heading() string {
	if f.Editing() {
		return "Edit Project"
	}
	return "New Project"
}

// Submit returns the project to save. An empty color falls back to the default.
func (f *ProjectForm) Submit() (models.Project, error) {
	trimmed := *f
	trimmed.Name = strings.TrimSpace(f.Name)
	trimmed.Color = strings.TrimSpace(f.Color)
	if err := check(trimmed, map[string]string{"name": "Name", "color": "Color"}, nil); err != nil {
		return models.Project{}, err
	}

	var p models.Project
	if f.initial != nil {
		p = *f.initial
	}
	p.Name = trimmed.Name
	p.Description = strings.TrimSpace(f.Description)
	p.Color = trimmed.Color
	if p.Color == "" {
		p.Color = models.DefaultProjectColor
	}
	return p, nil
}
