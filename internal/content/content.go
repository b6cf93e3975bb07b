// Package content holds the public marketing pages and renders them for
// the terminal.
package content

import (
	"embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

//go:embed pages/*.md
var pages embed.FS

// Page names a public page
type Page string

const (
	Home      Page = "home"
	About     Page = "about"
	Solutions Page = "solutions"
	Work      Page = "work"
)

// Pages in navigation order
var Pages = []Page{Home, About, Solutions, Work}

// Title is the tab label of the page
func (p Page) Title() string {
	switch p {
	case Home:
		return "Home"
	case About:
		return "About"
	case Solutions:
		return "Solutions"
	case Work:
		return "Our Work"
	}
	return string(p)
}

// Action is a page shortcut that only acknowledges the request
type Action struct {
	Key     string
	Label   string
	Title   string
	Message string
}

var actions = map[Page][]Action{
	About: {
		{Key: "c", Label: "careers", Title: "Careers Interest", Message: "Redirecting to our careers page with open positions."},
		{Key: "m", Label: "meet us", Title: "Meeting Scheduled", Message: "Our team will send you a calendar invite shortly."},
	},
	Solutions: {
		{Key: "d", Label: "request demo", Title: "Demo Requested!", Message: "We'll schedule a personalized demo for you soon."},
		{Key: "g", Label: "guide", Title: "Guide Downloaded!", Message: "Implementation guide has been sent to your email."},
		{Key: "s", Label: "contact sales", Title: "Sales Contact!", Message: "Our sales team will reach out within 24 hours."},
	},
	Work: {
		{Key: "p", Label: "request project", Title: "Project Request Sent", Message: "Our team will contact you to discuss your project needs."},
	},
}

// Actions returns the shortcuts available on p
func (p Page) Actions() []Action {
	return actions[p]
}

// Action looks up the shortcut bound to key
func (p Page) Action(key string) (Action, bool) {
	for _, a := range actions[p] {
		if a.Key == key {
			return a, true
		}
	}
	return Action{}, false
}

// Markdown returns the raw page source
func (p Page) Markdown() (string, error) {
	data, err := pages.ReadFile("pages/" + string(p) + ".md")
	if err != nil {
		return "", fmt.Errorf("page %q: %w", p, err)
	}
	return string(data), nil
}

// Render renders p as styled terminal text wrapped at width. style is a
// glamour standard style such as "dark" or "light".
func Render(p Page, width int, style string) (string, error) {
	src, err := p.Markdown()
	if err != nil {
		return "", err
	}
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(src)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}
