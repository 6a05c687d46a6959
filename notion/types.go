package notion

// Ref is a lightweight id/name pair used for areas and projects context.
type Ref struct {
	ID   string
	Name string
}

// Task is a flattened Notion task page.
type Task struct {
	ID            string
	Name          string
	DueDate       string
	Priority      string
	GoogleEventID string
	Urgent        bool
	Important     bool
}

// Contact is a flattened Notion contact page. PageContent is filled in by
// enrichment for contacts relevant to the current query.
type Contact struct {
	ID          string
	Name        string
	Groups      string
	Company     string
	Email       string
	Birthday    string
	Notes       string
	Favorite    bool
	PageContent string
}
