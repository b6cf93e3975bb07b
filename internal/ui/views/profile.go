package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tgienger/synergy/internal/auth"
	"github.com/tgienger/synergy/internal/forms"
	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/photo"
	"github.com/tgienger/synergy/internal/ui/keys"
	"github.com/tgienger/synergy/internal/ui/styles"
)

// ProfileConfig wires the profile page to the session and the device
type ProfileConfig struct {
	Auth    *auth.Service
	Native  photo.NativeService // nil off-device
	Options photo.Options
}

// pathPicker hands the path typed into the prompt to the photo adapter
type pathPicker chan string

func (p pathPicker) PickFile(ctx context.Context) (string, error) {
	select {
	case path := <-p:
		if strings.TrimSpace(path) == "" {
			return "", photo.ErrCancelled
		}
		return path, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type photoNote struct{ title, message string }

// photoResultMsg carries the adapter result and anything it reported
type photoResultMsg struct {
	uri   string
	notes []photoNote
}

var profileFields = []string{
	"Name", "Title", "Department", "Email", "Phone", "Location", "Bio",
	"Skills", "Languages", "Certifications",
}

// ProfileView shows and edits the user profile
type ProfileView struct {
	deps    Deps
	cfg     ProfileConfig
	profile models.Profile
	form    *forms.ProfileForm
	fields  *FieldSet
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	editing bool

	photos    *photo.Adapter
	picks     pathPicker
	notes     chan photoNote
	prompt    textinput.Model
	prompting bool
	source    photo.Source
	loading   bool
	spinner   spinner.Model
}

func NewProfileView(deps Deps, cfg ProfileConfig, s *styles.Styles) *ProfileView {
	var fields []*Field
	for _, label := range profileFields {
		fields = append(fields, NewField(label, "", 300))
	}

	prompt := textinput.New()
	prompt.Placeholder = "Path to an image file (empty to cancel)"
	prompt.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	v := &ProfileView{
		deps:    deps,
		cfg:     cfg,
		profile: deps.Seed.Profile,
		form:    forms.NewProfileForm(deps.Seed.Profile),
		fields:  NewFieldSet("Save Changes", fields...),
		styles:  s,
		keys:    keys.DefaultKeyMap(),
		picks:   make(pathPicker, 1),
		notes:   make(chan photoNote, 8),
		prompt:  prompt,
		spinner: sp,
	}
	if cfg.Options == (photo.Options{}) {
		cfg.Options = photo.DefaultOptions()
	}
	opts := []photo.Option{photo.WithOptions(cfg.Options), photo.WithLogger(deps.log())}
	if cfg.Native != nil {
		opts = append(opts, photo.WithNative(cfg.Native))
	}
	v.photos = photo.New(v.picks, photo.NotifierFunc(func(title, message string) {
		select {
		case v.notes <- photoNote{title, message}:
		default:
		}
	}), opts...)
	return v
}

func (v *ProfileView) Init() tea.Cmd { return nil }

func (v *ProfileView) Capturing() bool { return v.editing || v.prompting }

func (v *ProfileView) SetStyles(s *styles.Styles) { v.styles = s }

// Profile returns the current saved profile
func (v *ProfileView) Profile() models.Profile { return v.profile }

func (v *ProfileView) fieldValues() map[string]*string {
	f := v.form
	return map[string]*string{
		"Name": &f.Name, "Title": &f.Title, "Department": &f.Department,
		"Email": &f.Email, "Phone": &f.Phone, "Location": &f.Location,
		"Bio": &f.Bio, "Skills": &f.Skills, "Languages": &f.Languages,
		"Certifications": &f.Certifications,
	}
}

func (v *ProfileView) startEditing() tea.Cmd {
	v.form.Reset(v.profile)
	vals := v.fieldValues()
	for _, f := range v.fields.Fields {
		f.SetValue(*vals[f.Label])
	}
	v.editing = true
	return v.fields.FocusAt(0)
}

func (v *ProfileView) save() tea.Cmd {
	vals := v.fieldValues()
	for _, f := range v.fields.Fields {
		*vals[f.Label] = v.fields.Get(f.Label)
	}
	p, err := v.form.Apply()
	if err != nil {
		return failed(err)
	}
	v.profile = p
	v.editing = false
	v.updateUser(func(u *models.User) { u.Name = p.Name })
	return toast(ToastSuccess, "Profile updated successfully!", "")
}

// updateUser mirrors profile changes into the stored session user
func (v *ProfileView) updateUser(fn func(*models.User)) {
	if v.deps.State == nil {
		return
	}
	u, ok := v.deps.State.User()
	if !ok {
		return
	}
	fn(&u)
	if err := v.deps.State.UpdateUser(u); err != nil {
		v.deps.log().Warn("updating stored user failed", zap.Error(err))
	}
}

// acquire runs the adapter for src off the UI goroutine
func (v *ProfileView) acquire(src photo.Source) tea.Cmd {
	if v.photos.Busy() {
		return toast(ToastInfo, "Please wait", "A photo request is already running.")
	}
	v.loading = true
	ctx := v.deps.ctx()
	photos, notes := v.photos, v.notes
	run := func() tea.Msg {
		var uri string
		switch src {
		case photo.SourceCamera:
			uri = photos.FromCamera(ctx)
		case photo.SourceLibrary:
			uri = photos.FromLibrary(ctx)
		default:
			uri = photos.FromEitherViaPrompt(ctx)
		}
		msg := photoResultMsg{uri: uri}
		for {
			select {
			case n := <-notes:
				msg.notes = append(msg.notes, n)
			default:
				return msg
			}
		}
	}
	return tea.Batch(v.spinner.Tick, run)
}

// pickPhoto asks for a path first unless a native service will do it
func (v *ProfileView) pickPhoto(src photo.Source) tea.Cmd {
	if src == photo.SourceCamera || v.photos.Native() {
		return v.acquire(src)
	}
	v.source = src
	v.prompting = true
	v.prompt.Reset()
	return v.prompt.Focus()
}

func (v *ProfileView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.prompt.Width = clamp(styles.ContentWidth(v.width)-16, 20, 70)
		return v, nil

	case spinner.TickMsg:
		if !v.loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case photoResultMsg:
		v.loading = false
		var cmds []tea.Cmd
		for _, n := range msg.notes {
			cmds = append(cmds, toast(ToastError, n.title, n.message))
		}
		if msg.uri != "" {
			v.profile.Photo = msg.uri
			v.updateUser(func(u *models.User) { u.PhotoURL = msg.uri })
			cmds = append(cmds, toast(ToastSuccess, "Photo Updated", "Your profile picture has been changed."))
		}
		return v, tea.Batch(cmds...)

	case tea.KeyMsg:
		if v.prompting {
			return v.updatePrompt(msg)
		}
		if v.editing {
			if key.Matches(msg, v.keys.Back) {
				v.form.Cancel()
				v.editing = false
				return v, nil
			}
			submit, cmd := v.fields.Update(msg)
			if submit {
				return v, v.save()
			}
			return v, cmd
		}
		return v.updateKeys(msg)
	}
	return v, nil
}

func (v *ProfileView) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.prompting = false
		v.prompt.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		v.prompting = false
		v.prompt.Blur()
		select {
		case v.picks <- v.prompt.Value():
		default:
		}
		return v, v.acquire(v.source)
	}
	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

func (v *ProfileView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Edit):
		return v, v.startEditing()
	case msg.String() == "u":
		return v, v.pickPhoto(photo.SourceLibrary)
	case msg.String() == "c":
		return v, v.pickPhoto(photo.SourceCamera)
	case msg.String() == "p":
		return v, v.pickPhoto(photo.SourcePrompt)
	case msg.String() == "t":
		if v.deps.State == nil {
			return v, nil
		}
		theme, err := v.deps.State.ToggleTheme()
		if err != nil {
			return v, failed(err)
		}
		return v, func() tea.Msg { return ThemeChangedMsg{Theme: theme} }
	case msg.String() == "o":
		if v.cfg.Auth == nil {
			return v, nil
		}
		if err := v.cfg.Auth.SignOut(); err != nil {
			return v, failed(err)
		}
		return v, tea.Batch(
			toast(ToastInfo, "Signed Out", "See you next time."),
			func() tea.Msg { return SignedOutMsg{} },
		)
	}
	return v, nil
}

func (v *ProfileView) photoLine() string {
	if v.profile.Photo == "" {
		return "No photo"
	}
	mime, data, err := photo.DecodeDataURI(v.profile.Photo)
	if err != nil {
		return "Photo unreadable"
	}
	return fmt.Sprintf("%s, %.1f KB", mime, float64(len(data))/1024)
}

func (v *ProfileView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	p := v.profile

	if v.editing {
		body := lipgloss.JoinVertical(lipgloss.Left,
			v.fields.View(s, clamp(contentWidth-12, 20, 60)),
			"",
			s.TitleMuted.Render("Lists are comma separated • Ctrl+S: save • Esc: cancel"),
		)
		return renderDialog(s, v.width, v.height, "Edit Profile", body)
	}

	photoLine := v.photoLine()
	if v.loading {
		photoLine = v.spinner.View() + " Loading photo..."
	}

	row := func(label, value string) string {
		return s.Label.Width(16).Render(label) + value
	}
	list := func(items []string) string {
		if len(items) == 0 {
			return s.TitleMuted.Render("none")
		}
		var tags []string
		for _, it := range items {
			tags = append(tags, s.Tag.Render(it))
		}
		return strings.Join(tags, " ")
	}

	header := s.Card.Width(contentWidth - 4).Render(lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(p.Name),
		s.TitleMuted.Render(p.Title+" • "+p.Department),
		row("Photo", photoLine),
	))

	details := lipgloss.JoinVertical(lipgloss.Left,
		row("Email", p.Email),
		row("Phone", p.Phone),
		row("Location", p.Location),
		row("Joined", formatDate(p.JoinDate)),
		"",
		lipgloss.NewStyle().Width(contentWidth-4).Render(p.Bio),
		"",
		row("Skills", list(p.Skills)),
		row("Languages", list(p.Languages)),
		row("Certifications", list(p.Certifications)),
	)

	stats := s.StatusBar.Render(fmt.Sprintf("%d projects completed • %d tasks completed • %d team members • %dh logged",
		p.Stats.ProjectsCompleted, p.Stats.TasksCompleted, p.Stats.TeamMembers, p.Stats.HoursLogged))

	theme := "dark"
	if v.deps.State != nil {
		theme = string(v.deps.State.Theme())
	}

	rows := []string{header, "", details, "", stats, ""}
	if v.prompting {
		rows = append(rows, s.Label.Render("Choose a photo"), s.InputFocused.Render(v.prompt.View()),
			s.TitleMuted.Render("Enter: use file • Esc: cancel"))
	} else {
		rows = append(rows, HelpLine(s, "e", "edit", "u", "upload photo", "c", "camera", "p", "photo prompt",
			"t", "theme ("+theme+")", "o", "sign out"))
	}
	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, rows...), v.width, v.height)
}
