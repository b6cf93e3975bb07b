package forms

import (
	"strings"

	"github.com/tgienger/synergy/internal/models"
)

type LoginForm struct {
	Email    string
	Password string
}

func (f LoginForm) Validate() error {
	if blank(f.Email, f.Password) {
		return invalid(TitleMissing, MsgAllFields)
	}
	return nil
}

type SignUpForm struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	AgreeToTerms bool
}

func (f SignUpForm) Validate() error {
	if blank(f.FirstName, f.LastName, f.Email, f.Password) {
		return invalid(TitleMissing, MsgAllFields)
	}
	if !f.AgreeToTerms {
		return invalid(TitleTerms, MsgAcceptTerms)
	}
	return nil
}

func (f SignUpForm) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
}

// ProfileForm edits a copy of the profile. List fields are typed as comma
// separated text.
type ProfileForm struct {
	base models.Profile

	Name           string
	Title          string
	Department     string
	Email          string
	Phone          string
	Location       string
	Bio            string
	Skills         string
	Languages      string
	Certifications string
}

func NewProfileForm(p models.Profile) *ProfileForm {
	f := &ProfileForm{}
	f.Reset(p)
	return f
}

// Reset loads p into the draft
func (f *ProfileForm) Reset(p models.Profile) {
	*f = ProfileForm{
		base:           p,
		Name:           p.Name,
		Title:          p.Title,
		Department:     p.Department,
		Email:          p.Email,
		Phone:          p.Phone,
		Location:       p.Location,
		Bio:            p.Bio,
		Skills:         strings.Join(p.Skills, ", "),
		Languages:      strings.Join(p.Languages, ", "),
		Certifications: strings.Join(p.Certifications, ", "),
	}
}

// Apply returns the edited profile. Fields not on the form are carried over.
func (f *ProfileForm) Apply() (models.Profile, error) {
	if blank(f.Name, f.Email) {
		return models.Profile{}, invalid(TitleMissing, MsgRequired)
	}
	p := f.base
	p.Name = strings.TrimSpace(f.Name)
	p.Title = strings.TrimSpace(f.Title)
	p.Department = strings.TrimSpace(f.Department)
	p.Email = strings.TrimSpace(f.Email)
	p.Phone = strings.TrimSpace(f.Phone)
	p.Location = strings.TrimSpace(f.Location)
	p.Bio = strings.TrimSpace(f.Bio)
	p.Skills = SplitList(f.Skills)
	p.Languages = SplitList(f.Languages)
	p.Certifications = SplitList(f.Certifications)
	f.base = p
	return p, nil
}

// Cancel restores the draft to the last applied profile
func (f *ProfileForm) Cancel() {
	f.Reset(f.base)
}
