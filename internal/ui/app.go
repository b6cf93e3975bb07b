package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tgienger/synergy/internal/appstate"
	"github.com/tgienger/synergy/internal/content"
	"github.com/tgienger/synergy/internal/fixtures"
	"github.com/tgienger/synergy/internal/install"
	"github.com/tgienger/synergy/internal/repo"
	"github.com/tgienger/synergy/internal/ui/keys"
	"github.com/tgienger/synergy/internal/ui/styles"
	"github.com/tgienger/synergy/internal/ui/views"
)

// View is a screen hosted by the app
type View interface {
	tea.Model
	// Capturing is true while the view wants every key, e.g. when typing
	Capturing() bool
	SetStyles(*styles.Styles)
}

// Config is everything the app needs besides the seed data
type Config struct {
	Deps    views.Deps
	Login   views.LoginConfig
	Profile views.ProfileConfig
	// Install may be nil when the host can't install the binary
	Install *install.Controller
}

// FixturesReloadedMsg carries a new seed, or the error that prevented one
type FixturesReloadedMsg struct {
	Seed *fixtures.Seed
	Err  error
}

type installResultMsg struct {
	outcome install.Outcome
	err     error
}

type tab struct {
	route views.Route
	title string
}

var (
	publicTabs = []tab{
		{views.RouteHome, "Home"},
		{views.RouteAbout, "About"},
		{views.RouteSolutions, "Solutions"},
		{views.RouteWork, "Our Work"},
		{views.RouteLogin, "Sign In"},
	}
	workspaceTabs = []tab{
		{views.RouteDashboard, "Dashboard"},
		{views.RouteMyTasks, "My Tasks"},
		{views.RouteBoard, "Board"},
		{views.RouteDiscussions, "Discussions"},
		{views.RouteDocuments, "Documents"},
		{views.RouteTime, "Time"},
		{views.RouteAnalytics, "Analytics"},
		{views.RouteProfile, "Profile"},
	}
)

func protected(r views.Route) bool {
	for _, t := range workspaceTabs {
		if t.route == r {
			return true
		}
	}
	return false
}

type App struct {
	cfg    Config
	deps   views.Deps
	state  *appstate.Context
	styles *styles.Styles
	keys   keys.KeyMap
	help   help.Model

	route       views.Route
	views       map[views.Route]View
	board       *views.BoardView
	discussions *views.DiscussionsView

	toast         toastState
	inbox         *inbox
	changes       chan repo.Change
	stopChanges   func()
	installPrompt bool

	width  int
	height int
}

// NewApp builds every view from cfg.Deps.Seed. The app subscribes to
// cfg.Deps.Feed; call Close when the program exits.
func NewApp(cfg Config) *App {
	if cfg.Deps.Feed == nil {
		cfg.Deps.Feed = repo.NewFeed()
	}
	if cfg.Deps.Ctx == nil {
		cfg.Deps.Ctx = context.Background()
	}
	if cfg.Deps.Log == nil {
		cfg.Deps.Log = zap.NewNop()
	}

	if cfg.Deps.State != nil {
		styles.Use(string(cfg.Deps.State.Theme()))
	}

	a := &App{
		cfg:    cfg,
		deps:   cfg.Deps,
		state:  cfg.Deps.State,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		help:   help.New(),
		route:  views.RouteHome,
	}
	a.changes, a.stopChanges = cfg.Deps.Feed.Subscribe()
	a.build()
	return a
}

// build creates the views from the current seed
func (a *App) build() {
	s := a.styles
	d := a.deps
	a.board = views.NewBoardView(d, s)
	a.discussions = views.NewDiscussionsView(d, s)
	a.views = map[views.Route]View{
		views.RouteHome:        views.NewStaticView(content.Home, s),
		views.RouteAbout:       views.NewStaticView(content.About, s),
		views.RouteSolutions:   views.NewStaticView(content.Solutions, s),
		views.RouteWork:        views.NewStaticView(content.Work, s),
		views.RouteLogin:       views.NewLoginView(d, a.cfg.Login, s),
		views.RouteDashboard:   views.NewDashboardView(d, s),
		views.RouteMyTasks:     views.NewWorkspaceView(d, s),
		views.RouteBoard:       a.board,
		views.RouteDiscussions: a.discussions,
		views.RouteDocuments:   views.NewDocumentsView(d, s),
		views.RouteTime:        views.NewTimeView(d, s),
		views.RouteAnalytics:   views.NewAnalyticsView(d, s),
		views.RouteProfile:     views.NewProfileView(d, a.cfg.Profile, s),
	}
	a.inbox = newInbox(d.Seed.Notifications)

	if a.state != nil {
		if id := a.state.LastProject(); id != "" && a.board.SetProject(id) {
			a.discussions.SetProject(id)
		}
	}
}

// Close stops listening to the change feed
func (a *App) Close() {
	if a.stopChanges != nil {
		a.stopChanges()
	}
}

// Route is the screen on display
func (a *App) Route() views.Route { return a.route }

func (a *App) authenticated() bool {
	return a.state != nil && a.state.Authenticated()
}

func (a *App) tabs() []tab {
	if a.authenticated() {
		return workspaceTabs
	}
	return publicTabs
}

func (a *App) current() View { return a.views[a.route] }

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{listen(a.changes)}
	if a.cfg.Install != nil && a.cfg.Install.Check() {
		a.installPrompt = true
	}
	for _, v := range a.views {
		cmds = append(cmds, v.Init())
	}
	return tea.Batch(cmds...)
}

// navigate switches screens, sending protected routes to the login page
// while signed out
func (a *App) navigate(to views.Route) tea.Cmd {
	if protected(to) && !a.authenticated() {
		to = views.RouteLogin
	}
	if _, ok := a.views[to]; !ok {
		return nil
	}
	a.route = to
	return a.resize(to)
}

func (a *App) viewSize() tea.WindowSizeMsg {
	// tab bar above, toast and help below
	return tea.WindowSizeMsg{Width: a.width, Height: max(a.height-6, 0)}
}

func (a *App) resize(r views.Route) tea.Cmd {
	if a.width == 0 {
		return nil
	}
	_, cmd := a.views[r].Update(a.viewSize())
	return cmd
}

func (a *App) restyle() {
	a.styles = styles.NewStyles()
	for _, v := range a.views {
		v.SetStyles(a.styles)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, a.resizeAll()

	case views.ToastMsg:
		return a, a.toast.show(msg)

	case toastExpiredMsg:
		a.toast.expire(msg)
		return a, nil

	case changeMsg:
		if n, ok := notificationFor(repo.Change(msg)); ok {
			a.inbox.add(n)
		}
		return a, listen(a.changes)

	case views.NavigateMsg:
		return a, a.navigate(msg.To)

	case views.OpenProjectMsg:
		if !a.board.SetProject(msg.ProjectID) {
			return a, nil
		}
		a.discussions.SetProject(msg.ProjectID)
		if a.state != nil {
			if err := a.state.SetLastProject(msg.ProjectID); err != nil {
				a.deps.Log.Warn("saving last project failed", zap.Error(err))
			}
		}
		return a, a.navigate(msg.To)

	case views.SignedInMsg:
		return a, nil

	case views.SignedOutMsg:
		return a, a.navigate(views.RouteHome)

	case views.ThemeChangedMsg:
		styles.Use(string(msg.Theme))
		a.restyle()
		return a, nil

	case FixturesReloadedMsg:
		if msg.Err != nil {
			a.deps.Log.Warn("fixtures reload failed", zap.Error(msg.Err))
			return a, a.toast.show(views.ToastMsg{Kind: views.ToastError, Title: "Fixtures Error", Message: msg.Err.Error()})
		}
		a.deps.Seed = msg.Seed
		a.build()
		a.deps.Log.Info("fixtures reloaded")
		return a, tea.Batch(
			a.resizeAll(),
			a.toast.show(views.ToastMsg{Kind: views.ToastInfo, Title: "Data Reloaded", Message: "Demo data was reloaded from disk."}),
		)

	case installResultMsg:
		if msg.err != nil {
			return a, a.toast.show(views.ToastMsg{Kind: views.ToastError, Title: "Install Failed", Message: msg.err.Error()})
		}
		if msg.outcome == install.Accepted {
			return a, a.toast.show(views.ToastMsg{Kind: views.ToastSuccess, Title: "App Installed", Message: "SynergySphere is now on your PATH."})
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.Close()
			return a, tea.Quit
		}
		if a.installPrompt {
			return a, a.updateInstallPrompt(msg)
		}
		if a.inbox.open {
			return a, a.updateInbox(msg)
		}
		if !a.current().Capturing() {
			if cmd, ok := a.globalKey(msg); ok {
				return a, cmd
			}
		}
	}

	_, cmd := a.current().Update(msg)
	return a, cmd
}

func (a *App) resizeAll() tea.Cmd {
	var cmds []tea.Cmd
	for r := range a.views {
		cmds = append(cmds, a.resize(r))
	}
	return tea.Batch(cmds...)
}

// globalKey handles app-wide shortcuts. ok is false when the key belongs
// to the current view.
func (a *App) globalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.Close()
		return tea.Quit, true
	case key.Matches(msg, a.keys.Notifications):
		a.inbox.open = true
		return nil, true
	case key.Matches(msg, a.keys.Theme):
		if a.state == nil {
			return nil, true
		}
		theme, err := a.state.ToggleTheme()
		if err != nil {
			return a.toast.show(views.ToastMsg{Kind: views.ToastError, Title: "Theme", Message: err.Error()}), true
		}
		styles.Use(string(theme))
		a.restyle()
		return nil, true
	case key.Matches(msg, a.keys.NextView), key.Matches(msg, a.keys.PrevView):
		dir := 1
		if key.Matches(msg, a.keys.PrevView) {
			dir = -1
		}
		tabs := a.tabs()
		i := 0
		for j, t := range tabs {
			if t.route == a.route {
				i = j
			}
		}
		return a.navigate(tabs[(i+dir+len(tabs))%len(tabs)].route), true
	}

	if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 {
		if tabs := a.tabs(); n <= len(tabs) {
			return a.navigate(tabs[n-1].route), true
		}
	}
	return nil, false
}

func (a *App) globalBindings() []key.Binding {
	return []key.Binding{a.keys.PrevView, a.keys.NextView, a.keys.Notifications, a.keys.Theme, a.keys.Quit}
}

func (a *App) updateInbox(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Notifications):
		a.inbox.open = false
	case msg.String() == "a":
		a.inbox.markAllRead()
	}
	return nil
}

func (a *App) updateInstallPrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "i", "enter":
		a.installPrompt = false
		ctrl, ctx := a.cfg.Install, a.deps.Ctx
		return func() tea.Msg {
			out, err := ctrl.Accept(ctx)
			return installResultMsg{outcome: out, err: err}
		}
	case "esc", "n":
		a.installPrompt = false
		if err := a.cfg.Install.Dismiss(); err != nil {
			a.deps.Log.Warn("dismissing install prompt failed", zap.Error(err))
		}
	}
	return nil
}

func (a *App) tabBar() string {
	s := a.styles
	var parts []string
	for i, t := range a.tabs() {
		label := fmt.Sprintf("%d %s", i+1, t.title)
		if t.route == a.route {
			parts = append(parts, s.TabActive.Render(label))
		} else {
			parts = append(parts, s.Tab.Render(label))
		}
	}
	bell := "🔔"
	if n := a.inbox.unread(); n > 0 {
		bell += " " + s.HelpKey.Render(strconv.Itoa(n))
	}
	brand := s.Title.Render("SynergySphere")
	bar := lipgloss.JoinHorizontal(lipgloss.Center, parts...)
	if a.authenticated() {
		bar = lipgloss.JoinHorizontal(lipgloss.Center, bar, "  ", bell)
	}
	return lipgloss.JoinVertical(lipgloss.Left, brand, bar)
}

func (a *App) installView() string {
	s := a.styles
	body := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Install SynergySphere"),
		"",
		"Install the app for quick access from any terminal.",
		"",
		views.HelpLine(s, "i", "install", "n", "not now"),
	)
	return s.Dialog.Render(body)
}

func (a *App) View() string {
	body := a.current().View()
	switch {
	case a.installPrompt:
		body = lipgloss.Place(a.width, max(a.height-6, 0), lipgloss.Center, lipgloss.Center, a.installView())
	case a.inbox.open:
		body = lipgloss.Place(a.width, max(a.height-6, 0), lipgloss.Right, lipgloss.Top, a.inbox.view(a.styles, a.width))
	}

	footer := lipgloss.JoinVertical(lipgloss.Left,
		a.toast.view(a.styles, styles.ContentWidth(a.width)),
		a.help.ShortHelpView(a.globalBindings()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, a.tabBar(), body, footer)
}
