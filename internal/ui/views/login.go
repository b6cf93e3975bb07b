package views

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tgienger/synergy/internal/auth"
	"github.com/tgienger/synergy/internal/forms"
	"github.com/tgienger/synergy/internal/ui/keys"
	"github.com/tgienger/synergy/internal/ui/styles"
)

// LoginConfig wires the providers offered on the sign-in screen
type LoginConfig struct {
	Service *auth.Service
	// OAuth may be nil when no client is configured
	OAuth auth.Provider
	// Delay simulates the email provider's round trip
	Delay   time.Duration
	Timeout time.Duration
}

type signInResult struct {
	provider auth.Provider
	signUp   bool
	name     string
	err      error
}

// LoginView handles both sign-in and sign-up
type LoginView struct {
	deps   Deps
	cfg    LoginConfig
	styles *styles.Styles
	keys   keys.KeyMap

	signUp  bool
	signIn  *FieldSet
	create  *FieldSet
	spinner spinner.Model
	busy    bool

	width  int
	height int
}

func NewLoginView(deps Deps, cfg LoginConfig, s *styles.Styles) *LoginView {
	password := func() *Field {
		f := NewField("Password", "••••••••", 128)
		f.Input.EchoMode = textinput.EchoPassword
		return f
	}
	v := &LoginView{
		deps:   deps,
		cfg:    cfg,
		styles: s,
		keys:   keys.DefaultKeyMap(),
		signIn: NewFieldSet("Sign In",
			NewField("Email", "you@company.com", 254),
			password(),
		),
		create: NewFieldSet("Create Account",
			NewField("First name", "Jane", 64),
			NewField("Last name", "Doe", 64),
			NewField("Email", "you@company.com", 254),
			password(),
			NewChoice("I agree to the Terms of Use and Privacy Policy", []string{"No", "Yes"}),
		),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	return v
}

func (v *LoginView) form() *FieldSet {
	if v.signUp {
		return v.create
	}
	return v.signIn
}

func (v *LoginView) Init() tea.Cmd {
	return v.form().Start()
}

// Capturing is true while the form has focus, which is always
func (v *LoginView) Capturing() bool { return true }

func (v *LoginView) SetStyles(s *styles.Styles) { v.styles = s }

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case signInResult:
		v.busy = false
		return v, v.finish(msg)

	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}
		switch {
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return NavigateMsg{To: RouteHome} }
		case msg.String() == "ctrl+r":
			v.signUp = !v.signUp
			return v, v.form().Start()
		case msg.String() == "ctrl+g":
			return v, v.start(v.cfg.OAuth, false)
		}
		submit, cmd := v.form().Update(msg)
		if submit {
			return v, v.submit()
		}
		return v, cmd
	}
	return v, nil
}

func (v *LoginView) submit() tea.Cmd {
	f := v.form()
	if v.signUp {
		draft := forms.SignUpForm{
			FirstName:    f.Get("First name"),
			LastName:     f.Get("Last name"),
			Email:        f.Get("Email"),
			Password:     f.Get("Password"),
			AgreeToTerms: f.Fields[4].Value() == "Yes",
		}
		if err := draft.Validate(); err != nil {
			return failed(err)
		}
		return v.start(auth.PasswordProvider{
			Email:    draft.Email,
			Password: draft.Password,
			FullName: draft.FullName(),
			Delay:    v.cfg.Delay,
		}, true)
	}
	draft := forms.LoginForm{Email: f.Get("Email"), Password: f.Get("Password")}
	if err := draft.Validate(); err != nil {
		return failed(err)
	}
	return v.start(auth.PasswordProvider{
		Email:    draft.Email,
		Password: draft.Password,
		Delay:    v.cfg.Delay,
	}, false)
}

// start runs p in the background; the result comes back as signInResult
func (v *LoginView) start(p auth.Provider, signUp bool) tea.Cmd {
	if p == nil || v.cfg.Service == nil {
		return toast(ToastError, "Sign-In Unavailable", auth.ErrNotConfigured.Error())
	}
	v.busy = true
	timeout := v.cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	parent := v.deps.ctx()
	svc := v.cfg.Service
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		u, err := svc.SignIn(ctx, p)
		return signInResult{provider: p, signUp: signUp, name: u.Name, err: err}
	}
	return tea.Batch(v.spinner.Tick, run)
}

func (v *LoginView) finish(r signInResult) tea.Cmd {
	if r.err != nil {
		title := auth.FailureTitle(r.provider)
		if r.signUp {
			title = r.provider.Name() + " Sign-Up Failed"
		}
		return toast(ToastError, title, r.err.Error())
	}
	v.deps.log().Info("session started", zap.String("provider", r.provider.Name()))
	v.signIn.Start()
	v.create.Start()

	var t tea.Cmd
	switch {
	case r.provider.Name() != (auth.PasswordProvider{}).Name():
		t = toast(ToastSuccess, r.provider.Name()+" Sign-In Successful", "Welcome, "+r.name+"!")
	case r.signUp:
		t = toast(ToastSuccess, "Account Created!", "Welcome to SynergySphere. Your account has been created successfully.")
	default:
		t = toast(ToastSuccess, "Welcome back!", "You've been successfully logged in.")
	}
	return tea.Batch(t,
		func() tea.Msg { return SignedInMsg{} },
		func() tea.Msg { return NavigateMsg{To: RouteDashboard} },
	)
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-10, 20, 50)

	title, switchHint := "Welcome Back", "ctrl+r create an account"
	if v.signUp {
		title, switchHint = "Create Your Account", "ctrl+r sign in instead"
	}

	var footer string
	if v.busy {
		footer = v.spinner.View() + " Signing in..."
	} else {
		footer = HelpLine(s, "tab", "next", "ctrl+s", "submit", "ctrl+g", "continue with Google", "esc", "home")
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(title),
		s.TitleMuted.Render(switchHint),
		"",
		v.form().View(s, inputWidth),
		footer,
	)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
