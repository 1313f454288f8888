package portal

// Role is a member's permission level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// AdminID is the built-in administrator account. It can never be deleted.
const AdminID = "admin"

// User is a club member. Passwords are kept and compared in plaintext.
type User struct {
	ID       string `json:"id" yaml:"id"`
	Password string `json:"password" yaml:"password"`
	Name     string `json:"name" yaml:"name"`
	Progress int    `json:"progress" yaml:"progress"`
	Role     Role   `json:"role" yaml:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// WorkItem is a project submitted on behalf of a member.
type WorkItem struct {
	ID          int    `json:"id" yaml:"id"`
	UserID      string `json:"userId" yaml:"userId"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Date        string `json:"date" yaml:"date"`
	ImageURL    string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
}

// Event is an upcoming club event.
type Event struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Date        string `json:"date" yaml:"date"`
	Description string `json:"description" yaml:"description"`
}

// Achievement is an award won by the club.
type Achievement struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Year        int    `json:"year" yaml:"year"`
	Description string `json:"description" yaml:"description"`
}

// Article is a tech article. Author is free text, not a User reference.
type Article struct {
	ID      int    `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Author  string `json:"author" yaml:"author"`
	Date    string `json:"date" yaml:"date"`
}

// Photo is an uploaded image stored inline as a data URI.
// Timestamp is the upload instant in Unix milliseconds.
type Photo struct {
	ID        int    `json:"id" yaml:"id"`
	UserID    string `json:"userId" yaml:"userId"`
	Title     string `json:"title" yaml:"title"`
	URL       string `json:"url" yaml:"url"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
}

func userKey(u User) string { return u.ID }
func workKey(w WorkItem) int { return w.ID }
func eventKey(e Event) int { return e.ID }
func achievementKey(a Achievement) int { return a.ID }
func articleKey(a Article) int { return a.ID }
func photoKey(p Photo) int { return p.ID }
