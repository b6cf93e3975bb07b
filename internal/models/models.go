package models

import "time"

// Member is a person attached to a project
type Member struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Email  string `yaml:"email"`
	Role   string `yaml:"role"`
	Avatar string `yaml:"avatar,omitempty"`
}

// Progress counts completed work against the total
type Progress struct {
	Completed int `yaml:"completed"`
	Total     int `yaml:"total"`
}

// Percent returns completion as a whole percentage
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return p.Completed * 100 / p.Total
}

// Project represents a collaboration project
type Project struct {
	ID            string        `yaml:"id"`
	Title         string        `yaml:"title"`
	Key           string        `yaml:"key"`
	Description   string        `yaml:"description"`
	Manager       string        `yaml:"manager"`
	Priority      Priority      `yaml:"priority"`
	Status        ProjectStatus `yaml:"status"`
	Visibility    Visibility    `yaml:"visibility"`
	DurationWeeks int           `yaml:"durationWeeks,omitempty"`
	Progress      Progress      `yaml:"progress"`
	Members       []Member      `yaml:"members"`
	DueDate       time.Time     `yaml:"dueDate"`
	CreatedAt     time.Time     `yaml:"createdAt"`
}

func (p Project) EntityID() string { return p.ID }

// ChecklistItem is a single sub-step of a task
type ChecklistItem struct {
	ID        string `yaml:"id"`
	Text      string `yaml:"text"`
	Completed bool   `yaml:"completed"`
}

// Task represents a single unit of work on a board
type Task struct {
	ID          string          `yaml:"id"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Assignee    string          `yaml:"assignee"`
	ProjectID   string          `yaml:"projectId"`
	ProjectName string          `yaml:"projectName"`
	DueDate     time.Time       `yaml:"dueDate"` // zero when unset
	Priority    Priority        `yaml:"priority"`
	Status      TaskStatus      `yaml:"status"`
	Checklist   Progress        `yaml:"checklist"`
	Items       []ChecklistItem `yaml:"items,omitempty"`
	Labels      []string        `yaml:"labels"`
}

func (t Task) EntityID() string { return t.ID }

// TeamMember belongs to exactly one team
type TeamMember struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Email  string `yaml:"email"`
	Role   string `yaml:"role"`
	IsLead bool   `yaml:"isLead"`
}

// Team groups members under a department and lead
type Team struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Department  string       `yaml:"department"`
	Lead        string       `yaml:"lead"`
	Members     []TeamMember `yaml:"members"`
	Status      TeamStatus   `yaml:"status"`
	CreatedAt   time.Time    `yaml:"createdAt"`
}

func (t Team) EntityID() string { return t.ID }

// Message is a single post in a discussion. ReplyTo points at another
// message of the same discussion.
type Message struct {
	ID        string    `yaml:"id"`
	Author    string    `yaml:"author"`
	Content   string    `yaml:"content"`
	Timestamp time.Time `yaml:"timestamp"`
	ReplyTo   string    `yaml:"replyTo,omitempty"`
	Likes     int       `yaml:"likes"`
	IsLiked   bool      `yaml:"isLiked"`
}

// Discussion is a titled thread of messages
type Discussion struct {
	ID        string    `yaml:"id"`
	ProjectID string    `yaml:"projectId"`
	Title     string    `yaml:"title"`
	Author    string    `yaml:"author"`
	CreatedAt time.Time `yaml:"createdAt"`
	Messages  []Message `yaml:"messages"`
}

func (d Discussion) EntityID() string { return d.ID }

// LastActivity returns the newest message time, or the creation time for
// an empty thread.
func (d Discussion) LastActivity() time.Time {
	last := d.CreatedAt
	for _, m := range d.Messages {
		if m.Timestamp.After(last) {
			last = m.Timestamp
		}
	}
	return last
}

// Document is a file in the shared library
type Document struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Type         DocumentType `yaml:"type"`
	Size         string       `yaml:"size"`
	Author       string       `yaml:"author"`
	Folder       string       `yaml:"folder"`
	Tags         []string     `yaml:"tags"`
	Shared       bool         `yaml:"shared"`
	LastModified time.Time    `yaml:"lastModified"`
}

func (d Document) EntityID() string { return d.ID }

// TimeEntry is a logged block of work
type TimeEntry struct {
	ID          string    `yaml:"id"`
	Project     string    `yaml:"project"`
	Task        string    `yaml:"task"`
	Description string    `yaml:"description"`
	Start       time.Time `yaml:"start"`
	End         time.Time `yaml:"end"`
	Minutes     int       `yaml:"minutes"`
	Billable    bool      `yaml:"billable"`
}

func (e TimeEntry) EntityID() string { return e.ID }

// User is the signed-in session profile
type User struct {
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	PhotoURL string `json:"photoURL,omitempty" yaml:"photoURL,omitempty"`
}

// ProfileStats are the counters shown on the profile page
type ProfileStats struct {
	ProjectsCompleted int `yaml:"projectsCompleted"`
	TasksCompleted    int `yaml:"tasksCompleted"`
	TeamMembers       int `yaml:"teamMembers"`
	HoursLogged       int `yaml:"hoursLogged"`
}

// Profile is the editable user profile page
type Profile struct {
	Name           string       `yaml:"name"`
	Title          string       `yaml:"title"`
	Department     string       `yaml:"department"`
	Email          string       `yaml:"email"`
	Phone          string       `yaml:"phone"`
	Location       string       `yaml:"location"`
	Bio            string       `yaml:"bio"`
	JoinDate       time.Time    `yaml:"joinDate"`
	Photo          string       `yaml:"photo,omitempty"`
	Skills         []string     `yaml:"skills"`
	Languages      []string     `yaml:"languages"`
	Certifications []string     `yaml:"certifications"`
	Stats          ProfileStats `yaml:"stats"`
}

// Notification is an entry in the notifications dropdown
type Notification struct {
	ID        string           `yaml:"id"`
	Kind      NotificationKind `yaml:"kind"`
	Title     string           `yaml:"title"`
	Message   string           `yaml:"message"`
	Timestamp time.Time        `yaml:"timestamp"`
	Read      bool             `yaml:"read"`
}
