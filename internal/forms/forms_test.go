package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/synergy/internal/board"
	"github.com/tgienger/synergy/internal/ids"
	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
)

var now = time.Date(2024, 1, 20, 9, 30, 0, 0, time.UTC)

func testEnv() Env {
	return Env{IDs: ids.NewSequence("id-"), Now: func() time.Time { return now }}
}

func requireValidation(t *testing.T, err error, title, msg string) {
	t.Helper()
	ve, ok := AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, title, ve.Title)
	assert.Equal(t, msg, ve.Message)
}

func TestSplitListAndSlug(t *testing.T) {
	assert.Equal(t, []string{"Go", "Kubernetes", "Agile"}, SplitList(" Go, Kubernetes ,, Agile ,"))
	assert.Nil(t, SplitList(" , "))
	assert.Equal(t, "website-redesign", Slug("  Website Redesign "))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("01/02/2024")
	requireValidation(t, err, TitleInvalid, MsgInvalidDate)
}

func TestProjectFormSubmit(t *testing.T) {
	projects := repo.MustNew("project", []models.Project{{ID: "p1", Title: "Website Redesign"}})
	f := NewProjectForm(testEnv())
	assert.Equal(t, models.PriorityMedium, f.Priority)
	assert.Equal(t, models.VisibilityTeam, f.Visibility)

	f.SetName("Mobile App Launch")
	assert.Equal(t, "mobile-app-launch", f.Key)
	f.Duration = "2"
	assert.True(t, f.AddMember(models.Member{ID: "1", Name: "Sarah Chen"}))
	assert.False(t, f.AddMember(models.Member{ID: "1", Name: "Sarah Chen"}))

	p, err := f.Submit(projects)
	require.NoError(t, err)
	assert.Equal(t, "id-1", p.ID)
	assert.Equal(t, models.ProjectPlanning, p.Status)
	assert.Equal(t, 2, p.DurationWeeks)
	assert.Equal(t, now.Add(14*24*time.Hour), p.DueDate)
	assert.Len(t, p.Members, 1)
	assert.Equal(t, 2, projects.Len())

	// draft cleared
	assert.Empty(t, f.Name)
	assert.Empty(t, f.Members)
	assert.Equal(t, models.PriorityMedium, f.Priority)
}

func TestProjectFormKeyEditedStaysPut(t *testing.T) {
	f := NewProjectForm(testEnv())
	f.SetName("Alpha")
	f.SetKey("ALP")
	f.SetName("Alpha Two")
	assert.Equal(t, "ALP", f.Key)

	f.Cancel()
	f.SetName("Beta")
	assert.Equal(t, "beta", f.Key)
}

func TestProjectFormRejects(t *testing.T) {
	projects := repo.MustNew[models.Project]("project", nil)
	f := NewProjectForm(testEnv())

	_, err := f.Submit(projects)
	requireValidation(t, err, TitleMissing, MsgRequired)

	f.SetName("X")
	f.Duration = "soon"
	_, err = f.Submit(projects)
	requireValidation(t, err, TitleInvalid, MsgInvalidDuration)
	assert.Equal(t, 0, projects.Len())
	assert.Equal(t, "X", f.Name)
}

func TestDirectorySearch(t *testing.T) {
	dir := Directory{
		{ID: "1", Name: "Sarah Chen", Email: "sarah@company.com"},
		{ID: "2", Name: "Alex Johnson", Email: "alex@company.com"},
		{ID: "12", Name: "Emma Davis", Email: "emma@company.com"},
	}
	assert.Len(t, dir.Search(""), 3)
	assert.Len(t, dir.Search("SARAH"), 1)
	assert.Len(t, dir.Search("company.com"), 3)
	assert.Len(t, dir.Search("2"), 2)
}

func TestTaskFormWriteSpecScenario(t *testing.T) {
	project := models.Project{ID: "p1", Title: "Website Redesign"}
	tasks := repo.MustNew("task", []models.Task{
		{ID: "t1", Title: "Design new landing page", Status: models.StatusTodo},
		{ID: "t2", Title: "Implement user authentication", Status: models.StatusInProgress},
	})
	f := NewTaskForm(testEnv(), project)
	f.Open(models.StatusTodo)
	f.Title = "Write spec"

	task, err := f.Submit(tasks)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, models.Progress{}, task.Checklist)
	assert.Empty(t, task.Description)
	assert.Equal(t, "p1", task.ProjectID)
	assert.Equal(t, models.PriorityMedium, task.Priority)

	todo := board.Columns(tasks.List())[0]
	require.Len(t, todo, 2)
	assert.Equal(t, task.ID, todo[len(todo)-1].ID)
	assert.Equal(t, 3, tasks.Len())
}

func TestTaskFormChecklistAndLabels(t *testing.T) {
	tasks := repo.MustNew[models.Task]("task", nil)
	f := NewTaskForm(testEnv(), models.Project{ID: "p1"})
	f.Open(models.StatusInProgress)
	f.Title = "Ship it"
	f.Due = "2024-02-01"
	assert.True(t, f.AddChecklistItem(" write tests "))
	assert.False(t, f.AddChecklistItem("   "))
	assert.True(t, f.AddChecklistItem("deploy"))
	f.RemoveChecklistItem(f.Items[1].ID)
	f.ToggleLabel("backend")
	f.ToggleLabel("bug")
	f.ToggleLabel("bug")
	assert.True(t, f.HasLabel("backend"))
	assert.False(t, f.HasLabel("bug"))

	task, err := f.Submit(tasks)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, task.Status)
	assert.Equal(t, models.Progress{Completed: 0, Total: 1}, task.Checklist)
	assert.Equal(t, "write tests", task.Items[0].Text)
	assert.Equal(t, []string{"backend"}, task.Labels)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), task.DueDate)

	// column survives reset, fields do not
	assert.Equal(t, models.StatusInProgress, f.Column)
	assert.Empty(t, f.Title)
	assert.Empty(t, f.Items)
}

func TestTaskFormRejectsEmptyTitle(t *testing.T) {
	tasks := repo.MustNew[models.Task]("task", nil)
	f := NewTaskForm(testEnv(), models.Project{})
	f.Title = "   "
	_, err := f.Submit(tasks)
	requireValidation(t, err, TitleMissing, MsgRequired)
	assert.Equal(t, 0, tasks.Len())
}

func TestCreateIncreasesSizeByOneWithUniqueIDs(t *testing.T) {
	env := testEnv()
	tasks := repo.MustNew[models.Task]("task", nil)
	f := NewTaskForm(env, models.Project{})
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		f.Title = "task"
		before := tasks.Len()
		task, err := f.Submit(tasks)
		require.NoError(t, err)
		assert.Equal(t, before+1, tasks.Len())
		assert.False(t, seen[task.ID])
		seen[task.ID] = true
	}
}

func TestTeamFormMemberWithEmptyRole(t *testing.T) {
	f := NewTeamForm(testEnv())
	f.Member = MemberDraft{Name: "Sarah Chen", Email: "sarah@company.com", Role: ""}

	err := f.AddMember()
	requireValidation(t, err, TitleMissing, MsgMemberDetails)
	assert.Empty(t, f.Members)
	assert.Equal(t, "Sarah Chen", f.Member.Name)
}

func TestTeamFormDuplicateEmail(t *testing.T) {
	f := NewTeamForm(testEnv())
	f.Member = MemberDraft{Name: "Sarah Chen", Email: "sarah@company.com", Role: "Team Lead"}
	require.NoError(t, f.AddMember())
	assert.Equal(t, MemberDraft{}, f.Member)

	f.Member = MemberDraft{Name: "Sarah C", Email: "sarah@company.com", Role: "Designer"}
	err := f.AddMember()
	requireValidation(t, err, TitleDuplicate, MsgDuplicateEmail)
	assert.Len(t, f.Members, 1)

	// case differs, so it is a different email
	f.Member = MemberDraft{Name: "Sarah C", Email: "Sarah@company.com", Role: "Designer"}
	require.NoError(t, f.AddMember())
	assert.Len(t, f.Members, 2)
}

func TestTeamFormSubmit(t *testing.T) {
	teams := repo.MustNew[models.Team]("team", nil)
	f := NewTeamForm(testEnv())

	_, err := f.Submit(teams)
	requireValidation(t, err, TitleMissing, MsgRequired)

	f.Name = "Platform"
	f.Department = "Engineering"
	f.Lead = "Sarah Chen"
	_, err = f.Submit(teams)
	requireValidation(t, err, TitleNoMembers, MsgNoMembers)

	f.Member = MemberDraft{Name: "Sarah Chen", Email: "sarah@company.com", Role: "Team Lead"}
	require.NoError(t, f.AddMember())
	f.Member = MemberDraft{Name: "Alex Johnson", Email: "alex@company.com", Role: "Developer"}
	require.NoError(t, f.AddMember())
	f.RemoveMember("nobody")

	team, err := f.Submit(teams)
	require.NoError(t, err)
	assert.Equal(t, 1, teams.Len())
	assert.Equal(t, models.TeamActive, team.Status)
	assert.True(t, team.Members[0].IsLead)
	assert.False(t, team.Members[1].IsLead)
	assert.Equal(t, now, team.CreatedAt)
	assert.Empty(t, f.Members)
}

func TestThreadForm(t *testing.T) {
	discussions := repo.MustNew[models.Discussion]("discussion", nil)
	f := NewThreadForm(testEnv(), "p1")
	f.Title = "Release plan"

	_, err := f.Submit(discussions, "You")
	requireValidation(t, err, TitleMissing, MsgRequired)

	f.Content = "Kickoff on Monday"
	d, err := f.Submit(discussions, "You")
	require.NoError(t, err)
	assert.Equal(t, "p1", d.ProjectID)
	require.Len(t, d.Messages, 1)
	assert.Equal(t, "You", d.Messages[0].Author)
	assert.NotEqual(t, d.ID, d.Messages[0].ID)
	assert.Empty(t, f.Title)
}

func TestReplyForm(t *testing.T) {
	discussions := repo.MustNew("discussion", []models.Discussion{{
		ID: "d1", Messages: []models.Message{{ID: "m1", Content: "hi"}},
	}})
	f := NewReplyForm(testEnv())

	f.Content = "  "
	_, err := f.Submit(discussions, "d1", "You")
	requireValidation(t, err, TitleMissing, MsgEmptyMessage)

	f.Content = "hello back"
	f.ReplyTo = "m1"
	msg, err := f.Submit(discussions, "d1", "You")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ReplyTo)
	assert.Empty(t, f.ReplyTo)

	d, _ := discussions.Get("d1")
	assert.Len(t, d.Messages, 2)
}

func TestAccountForms(t *testing.T) {
	requireValidation(t, LoginForm{Email: "a@b.c"}.Validate(), TitleMissing, MsgAllFields)
	require.NoError(t, LoginForm{Email: "a@b.c", Password: "pw"}.Validate())

	s := SignUpForm{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.io", Password: "pw"}
	requireValidation(t, s.Validate(), TitleTerms, MsgAcceptTerms)
	s.AgreeToTerms = true
	require.NoError(t, s.Validate())
	assert.Equal(t, "Ada Lovelace", s.FullName())

	s.LastName = ""
	requireValidation(t, s.Validate(), TitleMissing, MsgAllFields)
}

func TestProfileForm(t *testing.T) {
	p := models.Profile{Name: "Alex Thompson", Email: "alex@x.io", Skills: []string{"Go"}, Stats: models.ProfileStats{TasksCompleted: 9}}
	f := NewProfileForm(p)
	assert.Equal(t, "Go", f.Skills)

	f.Skills = "Go, Rust , , SQL"
	f.Languages = "English"
	got, err := f.Apply()
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust", "SQL"}, got.Skills)
	assert.Equal(t, []string{"English"}, got.Languages)
	assert.Equal(t, 9, got.Stats.TasksCompleted)

	f.Name = "changed"
	f.Cancel()
	assert.Equal(t, "Alex Thompson", f.Name)
	assert.Equal(t, "Go, Rust, SQL", f.Skills)

	f.Email = ""
	_, err = f.Apply()
	requireValidation(t, err, TitleMissing, MsgRequired)
}
