package views

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/synergy/internal/content"
	"github.com/tgienger/synergy/internal/ui/keys"
	"github.com/tgienger/synergy/internal/ui/styles"
)

// StaticView shows one of the public markdown pages
type StaticView struct {
	page     content.Page
	viewport viewport.Model
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	rendered bool
	err      error
}

func NewStaticView(page content.Page, s *styles.Styles) *StaticView {
	return &StaticView{
		page:     page,
		viewport: viewport.New(0, 0),
		styles:   s,
		keys:     keys.DefaultKeyMap(),
	}
}

func (v *StaticView) Init() tea.Cmd { return nil }

func (v *StaticView) Capturing() bool { return false }

func (v *StaticView) SetStyles(s *styles.Styles) {
	v.styles = s
	v.render()
}

func (v *StaticView) render() {
	if v.width == 0 {
		return
	}
	out, err := content.Render(v.page, styles.ContentWidth(v.width)-4, v.styles.Theme.Markdown)
	v.err = err
	if err == nil {
		v.viewport.SetContent(out)
		v.rendered = true
	}
}

func (v *StaticView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.viewport.Width = styles.ContentWidth(msg.Width)
		v.viewport.Height = max(msg.Height-2, 1)
		v.render()
		return v, nil

	case tea.KeyMsg:
		if key.Matches(msg, v.keys.Enter) && v.page == content.Home {
			return v, func() tea.Msg { return NavigateMsg{To: RouteDashboard} }
		}
		if a, ok := v.page.Action(msg.String()); ok {
			return v, toast(ToastSuccess, a.Title, a.Message)
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

func (v *StaticView) View() string {
	if v.err != nil {
		return v.styles.Error.Render(v.err.Error())
	}
	if !v.rendered {
		return v.styles.TitleMuted.Render("Loading...")
	}
	pairs := []string{"↑/↓", "scroll"}
	if v.page == content.Home {
		pairs = append(pairs, "↵", "get started")
	}
	for _, a := range v.page.Actions() {
		pairs = append(pairs, a.Key, a.Label)
	}
	return styles.CenterView(v.viewport.View()+"\n"+HelpLine(v.styles, pairs...), v.width, v.height)
}
