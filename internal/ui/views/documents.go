package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/synergy/internal/filter"
	"github.com/tgienger/synergy/internal/models"
	"github.com/tgienger/synergy/internal/repo"
	"github.com/tgienger/synergy/internal/ui/keys"
	"github.com/tgienger/synergy/internal/ui/styles"
)

// DocumentsView is the shared file library
type DocumentsView struct {
	deps      Deps
	documents *repo.Collection[models.Document]
	styles    *styles.Styles
	keys      keys.KeyMap

	width  int
	height int

	search    textinput.Model
	searching bool
	query     filter.DocumentQuery
	folder    string
	grid      bool
	shown     []models.Document
	table     table.Model
	dialog    Dialog
}

func NewDocumentsView(deps Deps, s *styles.Styles) *DocumentsView {
	search := textinput.New()
	search.Placeholder = "Search documents..."
	search.CharLimit = 100

	t := table.New(
		table.WithColumns(documentColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	v := &DocumentsView{
		deps:      deps,
		documents: repo.MustNew("document", deps.Seed.Documents, repo.WithFeed[models.Document](deps.Feed)),
		styles:    s,
		keys:      keys.DefaultKeyMap(),
		search:    search,
		folder:    models.Folders[0],
		table:     t,
	}
	v.SetStyles(s)
	v.reload()
	return v
}

func documentColumns(width int) []table.Column {
	name := max(width-58, 16)
	return []table.Column{
		{Title: "Type", Width: 5},
		{Title: "Name", Width: name},
		{Title: "Folder", Width: 10},
		{Title: "Size", Width: 8},
		{Title: "Author", Width: 14},
		{Title: "Modified", Width: 13},
	}
}

func (v *DocumentsView) Init() tea.Cmd { return nil }

func (v *DocumentsView) Capturing() bool { return v.searching || v.dialog.Open() }

func (v *DocumentsView) SetStyles(s *styles.Styles) {
	v.styles = s
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(s.Theme.Border).
		BorderBottom(true).
		Bold(true).
		Foreground(s.Theme.Primary)
	ts.Selected = ts.Selected.
		Foreground(s.Theme.Background).
		Background(s.Theme.Primary).
		Bold(false)
	v.table.SetStyles(ts)
}

func (v *DocumentsView) reload() {
	v.query.Text = v.search.Value()
	v.query.Folder = v.folder
	if v.folder == models.Folders[0] {
		v.query.Folder = ""
	}
	v.shown = filter.Documents(v.documents.List(), v.query)

	rows := make([]table.Row, 0, len(v.shown))
	for _, d := range v.shown {
		name := d.Name
		if d.Shared {
			name += " (shared)"
		}
		rows = append(rows, table.Row{
			d.Type.Icon(), name, d.Folder, d.Size, d.Author, formatDate(d.LastModified),
		})
	}
	v.table.SetRows(rows)
	if v.table.Cursor() >= len(rows) {
		v.table.SetCursor(max(len(rows)-1, 0))
	}
}

// folderCount is the number of documents in folder, ignoring the search
func (v *DocumentsView) folderCount(folder string) int {
	if folder == models.Folders[0] {
		return v.documents.Len()
	}
	return len(filter.Documents(v.documents.List(), filter.DocumentQuery{Folder: folder}))
}

func (v *DocumentsView) selected() (models.Document, bool) {
	i := v.table.Cursor()
	if i >= 0 && i < len(v.shown) {
		return v.shown[i], true
	}
	return models.Document{}, false
}

func (v *DocumentsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetColumns(documentColumns(styles.ContentWidth(v.width) - 18))
		v.table.SetHeight(clamp(v.height-14, 5, 30))
		return v, nil

	case tea.KeyMsg:
		if v.dialog.Kind == Viewing {
			if key.Matches(msg, v.keys.Back) || key.Matches(msg, v.keys.Enter) {
				v.dialog = closed()
			}
			return v, nil
		}

		if v.searching {
			switch {
			case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
				v.searching = false
				v.search.Blur()
				return v, nil
			}
			var cmd tea.Cmd
			v.search, cmd = v.search.Update(msg)
			v.reload()
			return v, cmd
		}

		switch {
		case key.Matches(msg, v.keys.Search):
			v.searching = true
			return v, v.search.Focus()
		case key.Matches(msg, v.keys.Filter), key.Matches(msg, v.keys.Right):
			v.folder = cycle(models.Folders, v.folder, 1)
			v.reload()
			return v, nil
		case key.Matches(msg, v.keys.Left):
			v.folder = cycle(models.Folders, v.folder, -1)
			v.reload()
			return v, nil
		case msg.String() == "v":
			v.grid = !v.grid
			return v, nil
		case msg.String() == "x":
			v.search.SetValue("")
			v.folder = models.Folders[0]
			v.reload()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if d, ok := v.selected(); ok {
				v.dialog = viewing(d.ID)
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *DocumentsView) View() string {
	if v.dialog.Kind == Viewing {
		return v.renderDetail()
	}
	s := v.styles

	var folders []string
	folders = append(folders, s.Label.Render("Folders"))
	for _, f := range models.Folders {
		line := fmt.Sprintf("%-9s %2d", f, v.folderCount(f))
		if f == v.folder {
			folders = append(folders, s.TabActive.Render(line))
		} else {
			folders = append(folders, s.Tab.Render(line))
		}
	}
	sidebar := lipgloss.NewStyle().MarginRight(2).Render(lipgloss.JoinVertical(lipgloss.Left, folders...))

	searchStyle := s.FilterInput
	if v.searching {
		searchStyle = s.InputFocused
	}

	var body string
	switch {
	case len(v.shown) == 0:
		body = s.TitleMuted.Render("No documents match the current search.")
	case v.grid:
		body = v.renderGrid()
	default:
		body = v.table.View()
	}

	header := s.Title.Render("Documents") +
		s.TitleMuted.Render(fmt.Sprintf("  %d of %d files", len(v.shown), v.documents.Len()))

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		searchStyle.Render(v.search.View()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, body),
		"",
		HelpLine(s, "/", "search", "←/→", "folder", "v", "grid/list", "↵", "details", "x", "clear"),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *DocumentsView) renderGrid() string {
	s := v.styles
	cardWidth := 24
	perRow := max((styles.ContentWidth(v.width)-18)/(cardWidth+2), 1)

	var rows, row []string
	for i, d := range v.shown {
		card := s.Card
		if i == v.table.Cursor() {
			card = s.CardFocused
		}
		row = append(row, card.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
			s.Tag.Render(d.Type.Icon()),
			s.TaskTitle.Render(truncate(d.Name, cardWidth-2)),
			s.TitleMuted.Render(d.Size+" • "+d.Folder),
		)))
		if len(row) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *DocumentsView) renderDetail() string {
	s := v.styles
	d, err := v.documents.Get(v.dialog.ID)
	if err != nil {
		return s.Error.Render(err.Error())
	}
	shared := "No"
	if d.Shared {
		shared = "Yes"
	}
	tags := "none"
	if len(d.Tags) > 0 {
		tags = strings.Join(d.Tags, ", ")
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		s.Label.Render("Type")+" "+d.Type.Icon(),
		s.Label.Render("Folder")+" "+d.Folder,
		s.Label.Render("Size")+" "+d.Size,
		s.Label.Render("Author")+" "+d.Author,
		s.Label.Render("Modified")+" "+formatDate(d.LastModified),
		s.Label.Render("Shared")+" "+shared,
		s.Label.Render("Tags")+" "+tags,
		"",
		s.TitleMuted.Render("Esc: close"),
	)
	return renderDialog(s, v.width, v.height, d.Name, body)
}
