package forms

import (
	"strings"

	"github.com/tgienger/taskdeck/internal/models"
)

// ProfileForm edits the current user's name, email and bio
type ProfileForm struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"required,email"`
	Bio       string `json:"bio"`

	original models.User
}

func NewProfileForm(u models.User) *ProfileForm {
	return &ProfileForm{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Bio:       u.Bio,
		original:  u,
	}
}

// Patch returns only the fields that changed
func (f *ProfileForm) Patch() (models.UserPatch, error) {
	trimmed := *f
	trimmed.FirstName = strings.TrimSpace(f.FirstName)
	trimmed.LastName = strings.TrimSpace(f.LastName)
	trimmed.Email = strings.TrimSpace(f.Email)
	trimmed.Bio = strings.TrimSpace(f.Bio)
	if err := check(trimmed, map[string]string{"email": "Email"}, nil); err != nil {
		return models.UserPatch{}, err
	}

	var p models.UserPatch
	if trimmed.FirstName != f.original.FirstName {
		p.FirstName = &trimmed.FirstName
	}
	if trimmed.LastName != f.original.LastName {
		p.LastName = &trimmed.LastName
	}
	if trimmed.Email != f.original.Email {
		p.Email = &trimmed.Email
	}
	if trimmed.Bio != f.original.Bio {
		p.Bio = &trimmed.Bio
	}
	return p, nil
}
