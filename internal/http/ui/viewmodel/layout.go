package viewmodel

// User represents the signed-in user exposed to templates.
type User struct {
	Name  string
	Email string
	Role  string
}

// NavItem is one entry of the side navigation.
type NavItem struct {
	Page  string
	Label string
	Href  string
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	// CanManage enables write actions (publish, delete, import).
	CanManage bool
	Nav       []NavItem
	User      *User
}
