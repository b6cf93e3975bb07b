package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tgienger/synergy/internal/filter"
	"github.com/tgienger/synergy/internal/forms"
	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
	"github.com/tgienger/synergy/internal/threads"
	"github.com/tgienger/synergy/internal/ui/keys"
	"github.com/tgienger/synergy/internal/ui/styles"
)

const (
	fieldThreadTitle = "Title"
	fieldThreadBody  = "First message"
)

// DiscussionsView lists the threads of a project and shows one thread
type DiscussionsView struct {
	deps        Deps
	discussions *threads.Discussions
	projects    []models.Project
	projectID   string
	styles      *styles.Styles
	keys        keys.KeyMap

	width  int
	height int

	cursor int
	dialog Dialog

	threadForm   *forms.ThreadForm
	threadFields *FieldSet

	// thread detail
	msgCursor int
	reply     *forms.ReplyForm
	composer  textarea.Model
	composing bool
}

func NewDiscussionsView(deps Deps, s *styles.Styles) *DiscussionsView {
	composer := textarea.New()
	composer.Placeholder = "Write your message..."
	composer.CharLimit = 2000
	composer.SetWidth(50)
	composer.SetHeight(3)
	composer.ShowLineNumbers = false

	v := &DiscussionsView{
		deps:        deps,
		discussions: repo.MustNew("discussion", deps.Seed.Discussions, repo.WithFeed[models.Discussion](deps.Feed)),
		projects:    deps.Seed.Projects,
		styles:      s,
		keys:        keys.DefaultKeyMap(),
		reply:       forms.NewReplyForm(deps.Env),
		composer:    composer,
		threadFields: NewFieldSet("Start Discussion",
			NewField(fieldThreadTitle, "Discussion title", 200),
			NewField(fieldThreadBody, "Start the discussion...", 2000),
		),
	}
	if len(v.projects) > 0 {
		v.SetProject(v.projects[0].ID)
	}
	return v
}

// SetProject shows the threads of projectID
func (v *DiscussionsView) SetProject(projectID string) {
	v.projectID = projectID
	v.threadForm = forms.NewThreadForm(v.deps.Env, projectID)
	v.cursor = 0
	v.dialog = closed()
	v.composing = false
}

func (v *DiscussionsView) Init() tea.Cmd { return nil }

func (v *DiscussionsView) Capturing() bool { return v.dialog.Kind == Creating || v.composing }

func (v *DiscussionsView) SetStyles(s *styles.Styles) { v.styles = s }

func (v *DiscussionsView) list() []models.Discussion {
	id := v.projectID
	return filter.Where(v.discussions.List(), func(d models.Discussion) bool { return d.ProjectID == id })
}

func (v *DiscussionsView) projectTitle() string {
	for _, p := range v.projects {
		if p.ID == v.projectID {
			return p.Title
		}
	}
	return "Discussions"
}

func (v *DiscussionsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.composer.SetWidth(clamp(styles.ContentWidth(v.width)-10, 20, 70))
		return v, nil

	case tea.KeyMsg:
		switch v.dialog.Kind {
		case Creating:
			return v.updateCreating(msg)
		case Viewing:
			if v.composing {
				return v.updateComposer(msg)
			}
			return v.updateThread(msg)
		}
		return v.updateList(msg)
	}

	if v.composing {
		var cmd tea.Cmd
		v.composer, cmd = v.composer.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *DiscussionsView) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	all := v.list()
	switch {
	case key.Matches(msg, v.keys.Up), key.Matches(msg, v.keys.Down):
		v.cursor, _ = moveCursor(msg, v.keys, v.cursor, len(all))
	case key.Matches(msg, v.keys.New):
		if v.threadForm == nil {
			return v, toast(ToastError, "No Project", "Create a project on the dashboard first.")
		}
		v.dialog = creating()
		v.threadForm.Cancel()
		return v, v.threadFields.Start()
	case key.Matches(msg, v.keys.Enter):
		if v.cursor < len(all) {
			v.dialog = viewing(all[v.cursor].ID)
			v.msgCursor = 0
			v.reply.Cancel()
		}
	case msg.String() == "b":
		id := v.projectID
		return v, func() tea.Msg { return OpenProjectMsg{ProjectID: id, To: RouteBoard} }
	}
	return v, nil
}

func (v *DiscussionsView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, v.keys.Back) {
		v.threadForm.Cancel()
		v.dialog = closed()
		return v, nil
	}
	submit, cmd := v.threadFields.Update(msg)
	if !submit {
		return v, cmd
	}
	v.threadForm.Title = v.threadFields.Get(fieldThreadTitle)
	v.threadForm.Content = v.threadFields.Get(fieldThreadBody)
	d, err := v.threadForm.Submit(v.discussions, v.deps.author())
	if err != nil {
		return v, failed(err)
	}
	v.deps.log().Info("discussion started", zap.String("id", d.ID), zap.String("project", d.ProjectID))
	v.dialog = closed()
	v.cursor = len(v.list()) - 1
	return v, toast(ToastSuccess, "Discussion Created", fmt.Sprintf("%q is open for replies.", d.Title))
}

func (v *DiscussionsView) nodes() (models.Discussion, []*threads.Node, error) {
	d, err := v.discussions.Get(v.dialog.ID)
	if err != nil {
		return d, nil, err
	}
	return d, threads.Flatten(threads.Forest(d)), nil
}

func (v *DiscussionsView) updateThread(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	_, nodes, err := v.nodes()
	if err != nil {
		v.dialog = closed()
		return v, failed(err)
	}
	switch {
	case key.Matches(msg, v.keys.Back):
		v.dialog = closed()
	case key.Matches(msg, v.keys.Up), key.Matches(msg, v.keys.Down):
		v.msgCursor, _ = moveCursor(msg, v.keys, v.msgCursor, len(nodes))
	case msg.String() == "l", key.Matches(msg, v.keys.Toggle):
		if v.msgCursor < len(nodes) {
			if _, err := threads.ToggleLike(v.discussions, v.dialog.ID, nodes[v.msgCursor].Message.ID); err != nil {
				return v, failed(err)
			}
		}
	case msg.String() == "r":
		if v.msgCursor < len(nodes) {
			v.reply.ReplyTo = nodes[v.msgCursor].Message.ID
			v.composer.Placeholder = "Write your reply..."
			return v, v.openComposer()
		}
	case msg.String() == "m":
		v.reply.ReplyTo = ""
		v.composer.Placeholder = "Write your message..."
		return v, v.openComposer()
	}
	return v, nil
}

func (v *DiscussionsView) openComposer() tea.Cmd {
	v.composing = true
	v.composer.Reset()
	return v.composer.Focus()
}

func (v *DiscussionsView) updateComposer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.composing = false
		v.composer.Blur()
		v.reply.Cancel()
		return v, nil
	case key.Matches(msg, v.keys.Save):
		v.reply.Content = v.composer.Value()
		m, err := v.reply.Submit(v.discussions, v.dialog.ID, v.deps.author())
		if err != nil {
			return v, failed(err)
		}
		v.composing = false
		v.composer.Blur()
		v.composer.Reset()
		_, nodes, _ := v.nodes()
		for i, n := range nodes {
			if n.Message.ID == m.ID {
				v.msgCursor = i
			}
		}
		return v, toast(ToastSuccess, "Message sent", "Your message has been posted to the discussion.")
	}
	var cmd tea.Cmd
	v.composer, cmd = v.composer.Update(msg)
	return v, cmd
}

func (v *DiscussionsView) View() string {
	switch v.dialog.Kind {
	case Creating:
		inputWidth := clamp(styles.ContentWidth(v.width)-12, 20, 60)
		body := lipgloss.JoinVertical(lipgloss.Left,
			v.threadFields.View(v.styles, inputWidth),
			"",
			v.styles.TitleMuted.Render("Tab: next • Ctrl+S: post • Esc: cancel"),
		)
		return renderDialog(v.styles, v.width, v.height, "Start New Discussion", body)
	case Viewing:
		return v.renderThread()
	}
	return v.renderList()
}

func (v *DiscussionsView) renderList() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	now := v.deps.Env.Now()
	all := v.list()

	rows := []string{
		s.Title.Render(v.projectTitle()) + s.TitleMuted.Render(fmt.Sprintf("  %d discussions", len(all))),
		"",
	}
	if len(all) == 0 {
		rows = append(rows, s.TitleMuted.Render("No discussions yet. Press n to start one."))
	}
	for i, d := range all {
		card := s.Card
		if i == v.cursor {
			card = s.CardFocused
		}
		preview := ""
		if len(d.Messages) > 0 {
			preview = d.Messages[0].Content
		}
		rows = append(rows, card.Width(contentWidth-4).Render(lipgloss.JoinVertical(lipgloss.Left,
			s.TaskTitle.Bold(true).Render(d.Title),
			s.TitleMuted.Render(truncate(preview, contentWidth-10)),
			s.StatusBar.Render(fmt.Sprintf("%s • %d messages • last activity %s", d.Author, len(d.Messages), ago(now, d.LastActivity()))),
		)))
	}
	rows = append(rows, HelpLine(s, "↵", "open", "n", "new discussion", "b", "board"))
	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, rows...), v.width, v.height)
}

func (v *DiscussionsView) renderThread() string {
	s := v.styles
	d, nodes, err := v.nodes()
	if err != nil {
		return s.Error.Render(err.Error())
	}
	contentWidth := styles.ContentWidth(v.width)
	now := v.deps.Env.Now()

	rows := []string{
		s.Title.Render(d.Title),
		s.TitleMuted.Render(fmt.Sprintf("Started by %s • %d messages", d.Author, len(d.Messages))),
		"",
	}
	for i, n := range nodes {
		m := n.Message
		indent := strings.Repeat("  ", min(n.Depth, 6))
		width := max(contentWidth-6-len(indent), 20)

		var lines []string
		if m.ReplyTo != "" {
			if parent, ok := threads.Find(d, m.ReplyTo); ok {
				lines = append(lines, s.TitleMuted.Render("↳ Replying to "+parent.Author+": "+truncate(parent.Content, width-20)))
			}
		}
		heart := "♡"
		if m.IsLiked {
			heart = "♥"
		}
		lines = append(lines,
			s.HelpKey.Render(m.Author)+s.TitleMuted.Render(" • "+ago(now, m.Timestamp)),
			lipgloss.NewStyle().Width(width).Render(m.Content),
			s.TitleMuted.Render(fmt.Sprintf("%s %d", heart, m.Likes)),
		)
		card := s.Card
		if i == v.msgCursor {
			card = s.CardFocused
		}
		rows = append(rows, indent+strings.ReplaceAll(card.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...)), "\n", "\n"+indent))
	}

	if v.composing {
		label := "New message"
		if v.reply.ReplyTo != "" {
			if parent, ok := threads.Find(d, v.reply.ReplyTo); ok {
				label = "Replying to " + parent.Author + ": " + truncate(parent.Content, 40)
			}
		}
		rows = append(rows, "", s.Label.Render(label), s.InputFocused.Render(v.composer.View()),
			s.TitleMuted.Render("Ctrl+S: send • Esc: cancel"))
	} else {
		rows = append(rows, HelpLine(s, "↑/↓", "select", "r", "reply", "m", "message", "l", "like", "esc", "back"))
	}
	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, rows...), v.width, v.height)
}
