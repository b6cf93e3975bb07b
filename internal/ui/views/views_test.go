package views

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tgienger/synergy/internal/appstate"
	"github.com/tgienger/synergy/internal/auth"
	"github.com/tgienger/synergy/internal/content"
	"github.com/tgienger/synergy/internal/fixtures"
	"github.com/tgienger/synergy/internal/forms"
	"github.com/tgienger/synergy/internal/ids"
	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
	"github.com/tgienger/synergy/internal/threads"
	"github.com/tgienger/synergy/internal/tracker"
	"github.com/tgienger/synergy/internal/ui/styles"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func testDeps(t *testing.T) (Deps, *clock) {
	t.Helper()
	seed, err := fixtures.Builtin()
	require.NoError(t, err)
	c := &clock{t: time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)}
	return Deps{
		Env:   forms.Env{IDs: ids.NewSequence("new"), Now: c.now},
		Seed:  seed,
		Feed:  repo.NewFeed(),
		State: appstate.New(appstate.NewMemoryStore(), "test", appstate.ThemeDark),
		Log:   zap.NewNop(),
	}, c
}

func press(k string) tea.KeyMsg {
	special := map[string]tea.KeyType{
		"enter":       tea.KeyEnter,
		"esc":         tea.KeyEscape,
		"tab":         tea.KeyTab,
		"up":          tea.KeyUp,
		"down":        tea.KeyDown,
		"left":        tea.KeyLeft,
		"right":       tea.KeyRight,
		"shift+right": tea.KeyShiftRight,
		"ctrl+s":      tea.KeyCtrlS,
		"ctrl+a":      tea.KeyCtrlA,
		"ctrl+x":      tea.KeyCtrlX,
		"ctrl+r":      tea.KeyCtrlR,
	}
	if kt, ok := special[k]; ok {
		return tea.KeyMsg{Type: kt}
	}
	if k == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// send delivers keys in order and returns the messages the last one
// produced promptly
func send(m tea.Model, keys ...string) []tea.Msg {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(press(k))
	}
	return drain(cmd)
}

func typeText(m tea.Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// drain runs cmd and whatever it batches. Commands that wait on a timer,
// like cursor blinks, are dropped.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(200 * time.Millisecond):
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func toasts(msgs []tea.Msg) []ToastMsg {
	var out []ToastMsg
	for _, m := range msgs {
		if t, ok := m.(ToastMsg); ok {
			out = append(out, t)
		}
	}
	return out
}

func requireToast(t *testing.T, msgs []tea.Msg, title string) ToastMsg {
	t.Helper()
	for _, tm := range toasts(msgs) {
		if tm.Title == title {
			return tm
		}
	}
	require.Failf(t, "toast not found", "want %q in %+v", title, toasts(msgs))
	return ToastMsg{}
}

func TestStaticPageActions(t *testing.T) {
	v := NewStaticView(content.Solutions, styles.NewStyles())
	msgs := send(v, "d")
	tm := requireToast(t, msgs, "Demo Requested!")
	assert.Equal(t, ToastSuccess, tm.Kind)

	home := NewStaticView(content.Home, styles.NewStyles())
	msgs = send(home, "enter")
	assert.Contains(t, msgs, NavigateMsg{To: RouteDashboard})
}

func TestLoginWithEmail(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewLoginView(deps, LoginConfig{Service: auth.NewService(deps.State, nil)}, styles.NewStyles())
	v.Init()

	typeText(v, "jane.doe@company.com")
	v.Update(press("tab"))
	typeText(v, "secret")
	msgs := send(v, "enter")

	var result []tea.Msg
	for _, m := range msgs {
		if r, ok := m.(signInResult); ok {
			_, cmd := v.Update(r)
			result = drain(cmd)
		}
	}
	requireToast(t, result, "Welcome back!")
	assert.Contains(t, result, NavigateMsg{To: RouteDashboard})

	u, ok := deps.State.User()
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", u.Name)
}

func TestLoginRejectsEmptyForm(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewLoginView(deps, LoginConfig{Service: auth.NewService(deps.State, nil)}, styles.NewStyles())
	v.Init()

	msgs := send(v, "tab", "enter")
	tm := requireToast(t, msgs, forms.TitleMissing)
	assert.Equal(t, ToastError, tm.Kind)
	assert.False(t, deps.State.Authenticated())
}

func TestBoardCreateTaskInFocusedColumn(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewBoardView(deps, styles.NewStyles())
	require.Equal(t, "p1", v.Project().ID)

	before := len(v.columns()[1])
	v.Update(press("l"))
	v.Update(press("n"))
	require.True(t, v.Capturing())
	typeText(v, "Write release notes")
	msgs := send(v, "ctrl+s")

	requireToast(t, msgs, "Task Created")
	assert.False(t, v.dialog.Open())
	col := v.columns()[1]
	require.Len(t, col, before+1)
	assert.Equal(t, "Write release notes", col[len(col)-1].Title)
	assert.Equal(t, models.StatusInProgress, col[len(col)-1].Status)
}

func TestBoardCreateRequiresTitle(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewBoardView(deps, styles.NewStyles())
	v.Update(press("n"))
	msgs := send(v, "ctrl+s")
	requireToast(t, msgs, forms.TitleMissing)
	assert.True(t, v.dialog.Open())
}

func TestBoardMoveFollowsCard(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewBoardView(deps, styles.NewStyles())

	card, ok := v.selected()
	require.True(t, ok)
	require.Equal(t, models.StatusTodo, card.Status)

	v.Update(press("L"))
	moved, err := v.tasks.Get(card.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, moved.Status)
	assert.Equal(t, 1, v.col)

	sel, ok := v.selected()
	require.True(t, ok)
	assert.Equal(t, card.ID, sel.ID)
}

func TestBoardDetailSetsStatus(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewBoardView(deps, styles.NewStyles())
	card, _ := v.selected()

	v.Update(press("enter"))
	require.Equal(t, Viewing, v.dialog.Kind)
	v.Update(press("3"))

	done, err := v.tasks.Get(card.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, done.Status)
}

func TestNewWithoutProjects(t *testing.T) {
	deps, _ := testDeps(t)
	seed, err := fixtures.Parse([]byte("projects: []\n"))
	require.NoError(t, err)
	deps.Seed = seed

	b := NewBoardView(deps, styles.NewStyles())
	requireToast(t, send(b, "n"), "No Project")
	assert.False(t, b.Capturing())
	assert.NotEmpty(t, b.View())

	d := NewDiscussionsView(deps, styles.NewStyles())
	requireToast(t, send(d, "n"), "No Project")
	assert.False(t, d.Capturing())
	assert.Contains(t, d.View(), "No discussions yet")
}

func TestDiscussionReply(t *testing.T) {
	deps, _ := testDeps(t)
	require.NoError(t, deps.State.SignIn(models.User{Name: "Riley Park", Email: "riley@company.com"}))
	v := NewDiscussionsView(deps, styles.NewStyles())

	v.Update(press("enter"))
	require.Equal(t, Viewing, v.dialog.Kind)
	d, nodes, err := v.nodes()
	require.NoError(t, err)
	before := len(d.Messages)

	v.Update(press("r"))
	require.True(t, v.Capturing())
	typeText(v, "Thanks, looks good")
	msgs := send(v, "ctrl+s")

	tm := requireToast(t, msgs, "Message sent")
	assert.Equal(t, "Your message has been posted to the discussion.", tm.Message)
	assert.False(t, v.composing)

	d, err = v.discussions.Get(d.ID)
	require.NoError(t, err)
	require.Len(t, d.Messages, before+1)
	last := d.Messages[len(d.Messages)-1]
	assert.Equal(t, "Riley Park", last.Author)
	assert.Equal(t, nodes[0].Message.ID, last.ReplyTo)
}

func TestDiscussionEmptyMessageRejected(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewDiscussionsView(deps, styles.NewStyles())
	v.Update(press("enter"))
	v.Update(press("m"))
	msgs := send(v, "ctrl+s")
	requireToast(t, msgs, forms.TitleMissing)
	assert.True(t, v.composing)
}

func TestDiscussionLikeToggle(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewDiscussionsView(deps, styles.NewStyles())
	v.Update(press("enter"))

	_, nodes, err := v.nodes()
	require.NoError(t, err)
	first := nodes[0].Message

	v.Update(press("l"))
	d, err := v.discussions.Get(v.dialog.ID)
	require.NoError(t, err)
	m, ok := threads.Find(d, first.ID)
	require.True(t, ok)
	assert.Equal(t, !first.IsLiked, m.IsLiked)
	assert.NotEqual(t, first.Likes, m.Likes)
}

func TestDiscussionNewThread(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewDiscussionsView(deps, styles.NewStyles())
	before := len(v.list())

	v.Update(press("n"))
	typeText(v, "Launch checklist")
	v.Update(press("tab"))
	typeText(v, "What is left before launch?")
	msgs := send(v, "ctrl+s")

	requireToast(t, msgs, "Discussion Created")
	all := v.list()
	require.Len(t, all, before+1)
	assert.Equal(t, "Launch checklist", all[len(all)-1].Title)
	assert.Equal(t, "You", all[len(all)-1].Author)
}

func TestDocumentsFolderFilter(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewDocumentsView(deps, styles.NewStyles())
	all := len(v.shown)
	require.NotZero(t, all)

	v.Update(press("f"))
	assert.Equal(t, "Projects", v.folder)
	require.NotEmpty(t, v.shown)
	for _, d := range v.shown {
		assert.Equal(t, "Projects", d.Folder)
	}

	v.Update(press("x"))
	assert.Len(t, v.shown, all)
}

func TestDocumentsSearch(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewDocumentsView(deps, styles.NewStyles())

	v.Update(press("/"))
	require.True(t, v.Capturing())
	typeText(v, "requirements")
	v.Update(press("enter"))

	require.Len(t, v.shown, 1)
	assert.Equal(t, "Project Requirements.pdf", v.shown[0].Name)
}

func TestTimeTrackingSession(t *testing.T) {
	deps, c := testDeps(t)
	v := NewTimeView(deps, styles.NewStyles())
	before := v.entries.Len()

	msgs := send(v, "s")
	requireToast(t, msgs, "Missing Information")

	v.Update(press("e"))
	v.Update(press("right")) // first project
	v.Update(press("tab"))
	typeText(v, "Homepage polish")
	v.Update(press("ctrl+s"))
	require.Equal(t, tracker.Running, v.timer.State())
	assert.False(t, v.Capturing())

	c.t = c.t.Add(45 * time.Minute)
	v.Update(press("p"))
	c.t = c.t.Add(time.Hour)
	v.Update(press("s"))
	c.t = c.t.Add(15 * time.Minute)
	msgs = send(v, "x")

	tm := requireToast(t, msgs, "Time Logged")
	assert.Equal(t, "1h 0m on "+deps.Seed.TimeProjects[0], tm.Message)
	require.Equal(t, before+1, v.entries.Len())
	e := v.entries.List()[before]
	assert.Equal(t, 60, e.Minutes)
	assert.Equal(t, "Homepage polish", e.Task)
	assert.True(t, e.Billable)
	assert.NotEmpty(t, e.ID)
}

func TestTimeTrackingDiscardsShortSessions(t *testing.T) {
	deps, c := testDeps(t)
	v := NewTimeView(deps, styles.NewStyles())
	before := v.entries.Len()

	v.Update(press("e"))
	v.Update(press("right"))
	v.Update(press("ctrl+s"))
	c.t = c.t.Add(30 * time.Second)
	msgs := send(v, "x")

	requireToast(t, msgs, "Session Discarded")
	assert.Equal(t, before, v.entries.Len())
	assert.Equal(t, tracker.Idle, v.timer.State())
}

func TestProfileEdit(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewProfileView(deps, ProfileConfig{}, styles.NewStyles())

	v.Update(press("e"))
	require.True(t, v.Capturing())
	f := v.fields.Focused()
	require.NotNil(t, f)
	f.SetValue("")
	typeText(v, "Alex Morgan")
	msgs := send(v, "ctrl+s")

	requireToast(t, msgs, "Profile updated successfully!")
	assert.Equal(t, "Alex Morgan", v.Profile().Name)
	assert.Equal(t, deps.Seed.Profile.Skills, v.Profile().Skills)
}

func TestProfileCameraUnavailable(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewProfileView(deps, ProfileConfig{}, styles.NewStyles())

	var result []tea.Msg
	for _, m := range send(v, "c") {
		if r, ok := m.(photoResultMsg); ok {
			_, cmd := v.Update(r)
			result = drain(cmd)
		}
	}
	requireToast(t, result, "Camera unavailable")
	assert.Empty(t, v.Profile().Photo)
}

func TestProfileLibraryCancelled(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewProfileView(deps, ProfileConfig{}, styles.NewStyles())

	v.Update(press("u"))
	require.True(t, v.prompting)

	var results int
	for _, m := range send(v, "enter") {
		if r, ok := m.(photoResultMsg); ok {
			results++
			assert.Empty(t, r.uri)
			assert.Empty(t, r.notes)
		}
	}
	assert.Equal(t, 1, results)
}

func TestProfileThemeAndSignOut(t *testing.T) {
	deps, _ := testDeps(t)
	require.NoError(t, deps.State.SignIn(models.User{Name: "Riley", Email: "riley@company.com"}))
	v := NewProfileView(deps, ProfileConfig{Auth: auth.NewService(deps.State, nil)}, styles.NewStyles())

	msgs := send(v, "t")
	assert.Contains(t, msgs, ThemeChangedMsg{Theme: appstate.ThemeLight})
	assert.Equal(t, appstate.ThemeLight, deps.State.Theme())

	msgs = send(v, "o")
	assert.Contains(t, msgs, SignedOutMsg{})
	assert.False(t, deps.State.Authenticated())
}

func TestDashboardCreateProject(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewDashboardView(deps, styles.NewStyles())
	before := v.projects.Len()

	v.Update(press("n"))
	require.True(t, v.Capturing())
	typeText(v, "Apollo Launch")
	msgs := send(v, "ctrl+s")

	requireToast(t, msgs, "Project Created")
	require.Equal(t, before+1, v.projects.Len())
	p := v.projects.List()[before]
	assert.Equal(t, "Apollo Launch", p.Title)
	assert.NotEmpty(t, p.Key)
	assert.Len(t, v.list.Items(), before+1)
}

func TestDashboardDiscardDraft(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewDashboardView(deps, styles.NewStyles())
	before := v.projects.Len()

	v.Update(press("n"))
	typeText(v, "Half an idea")
	v.Update(press("esc"))
	require.Equal(t, Confirming, v.dialog.Kind)

	v.Update(press("n"))
	require.Equal(t, Creating, v.dialog.Kind)

	v.Update(press("esc"))
	v.Update(press("y"))
	assert.False(t, v.dialog.Open())
	assert.Equal(t, before, v.projects.Len())
}

func TestDashboardSearchAndOpen(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewDashboardView(deps, styles.NewStyles())

	v.Update(press("/"))
	typeText(v, "mobile")
	v.Update(press("enter"))
	require.Len(t, v.list.Items(), 1)

	msgs := send(v, "enter")
	require.Len(t, msgs, 1)
	open, ok := msgs[0].(OpenProjectMsg)
	require.True(t, ok)
	assert.Equal(t, RouteBoard, open.To)
	assert.Equal(t, "Mobile App Development", v.list.SelectedItem().(projectItem).project.Title)
}

func TestWorkspaceStatusFilterAndDetail(t *testing.T) {
	deps, _ := testDeps(t)
	v := NewWorkspaceView(deps, styles.NewStyles())
	all := len(v.shown)

	// task list -> search -> project -> status
	v.Update(press("tab"))
	v.Update(press("tab"))
	v.Update(press("tab"))
	require.Equal(t, FocusStatusFilter, v.focus)
	v.Update(press("right"))

	require.NotEmpty(t, v.shown)
	assert.Less(t, len(v.shown), all)
	for _, task := range v.shown {
		assert.Equal(t, models.StatusTodo, task.Status)
	}

	v.Update(press("tab"))
	v.Update(press("tab"))
	require.Equal(t, FocusTaskList, v.focus)
	first := v.shown[0]
	v.Update(press("enter"))
	require.Equal(t, Viewing, v.dialog.Kind)

	msgs := send(v, "3")
	requireToast(t, msgs, "Task Updated")
	done, err := v.tasks.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, done.Status)

	v.Update(press("esc"))
	v.Update(press("x"))
	assert.Len(t, v.shown, all)
}

func TestAnalyticsSummary(t *testing.T) {
	deps, c := testDeps(t)
	v := NewAnalyticsView(deps, styles.NewStyles())
	v.Update(tea.WindowSizeMsg{Width: 160, Height: 60})

	out := v.View()
	assert.Contains(t, out, "Analytics Dashboard")
	assert.Contains(t, out, "Last 30 days")
	assert.Contains(t, out, "1/6")
	assert.Contains(t, out, "8h 15m")

	send(v, "tab", "tab")
	out = v.View()
	assert.Contains(t, out, "Michael Brown")
	assert.Contains(t, out, "Excellent")

	send(v, "tab")
	assert.Contains(t, v.View(), "Marketing Campaign Q1")

	// the seeded entries fall outside a window ending a year later
	c.t = c.t.AddDate(1, 0, 0)
	assert.Contains(t, v.View(), "0h 0m")
	send(v, "p", "p")
	assert.Equal(t, "Last year", v.Period())
	send(v, "p")
	assert.Equal(t, "Last 7 days", v.Period())

	assert.Contains(t, send(v, "esc"), NavigateMsg{To: RouteDashboard})
}

func TestHelpLine(t *testing.T) {
	out := HelpLine(styles.NewStyles(), "n", "new", "esc", "back", "dangling")
	assert.Contains(t, out, "new")
	assert.Contains(t, out, "esc")
	assert.Contains(t, out, " • ")
	assert.NotContains(t, out, "dangling")
}
