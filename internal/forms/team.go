package forms

import (
	"strings"

	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
)

// MemberDraft is the inline "add member" row of the team dialog
type MemberDraft struct {
	Name  string
	Email string
	Role  string
}

// TeamForm is the draft behind the create team dialog
type TeamForm struct {
	env Env

	Name        string
	Description string
	Department  string
	Lead        string
	Member      MemberDraft
	Members     []models.TeamMember
}

func NewTeamForm(env Env) *TeamForm {
	return &TeamForm{env: env}
}

// AddMember moves the member draft into the member list. Emails must be
// unique within the team (exact match).
func (f *TeamForm) AddMember() error {
	d := f.Member
	if blank(d.Name, d.Email, d.Role) {
		return invalid(TitleMissing, MsgMemberDetails)
	}
	email := strings.TrimSpace(d.Email)
	for _, m := range f.Members {
		if m.Email == email {
			return invalid(TitleDuplicate, MsgDuplicateEmail)
		}
	}
	f.Members = append(f.Members, models.TeamMember{
		ID:    f.env.IDs.NewID(),
		Name:  strings.TrimSpace(d.Name),
		Email: email,
		Role:  strings.TrimSpace(d.Role),
	})
	f.Member = MemberDraft{}
	return nil
}

func (f *TeamForm) RemoveMember(id string) {
	out := f.Members[:0]
	for _, m := range f.Members {
		if m.ID != id {
			out = append(out, m)
		}
	}
	f.Members = out
}

func (f *TeamForm) Validate() error {
	if blank(f.Name, f.Department, f.Lead) {
		return invalid(TitleMissing, MsgRequired)
	}
	if len(f.Members) == 0 {
		return invalid(TitleNoMembers, MsgNoMembers)
	}
	return nil
}

// Submit appends the team to teams and resets the form. Members whose name
// equals the lead are flagged as lead.
func (f *TeamForm) Submit(teams *repo.Collection[models.Team]) (models.Team, error) {
	if err := f.Validate(); err != nil {
		return models.Team{}, err
	}
	lead := strings.TrimSpace(f.Lead)
	members := make([]models.TeamMember, len(f.Members))
	for i, m := range f.Members {
		m.IsLead = m.Name == lead
		members[i] = m
	}
	t := models.Team{
		ID:          f.env.IDs.NewID(),
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Department:  strings.TrimSpace(f.Department),
		Lead:        lead,
		Members:     members,
		Status:      models.TeamActive,
		CreatedAt:   f.env.Now(),
	}
	if err := teams.Append(t); err != nil {
		return models.Team{}, err
	}
	f.Cancel()
	return t, nil
}

func (f *TeamForm) Cancel() {
	*f = TeamForm{env: f.env}
}
