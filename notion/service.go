package notion

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jomei/notionapi"

	"github.com/jpcolombo/mayordomo/logging"
)

// enrichmentWorkers bounds the parallel page-content fetches during contact
// enrichment.
const enrichmentWorkers = 5

// Options configure a Service.
type Options struct {
	// Database ids. Tasks is required; the others degrade to empty context.
	TasksDatabaseID    string
	AreasDatabaseID    string
	ProjectsDatabaseID string
	ContactsDatabaseID string
	// Logger receives request diagnostics.
	Logger logging.Logger
}

// Service talks to the Notion API. Safe for concurrent use.
type Service struct {
	client     *notionapi.Client
	tasksDB    notionapi.DatabaseID
	areasDB    notionapi.DatabaseID
	projectsDB notionapi.DatabaseID
	contactsDB notionapi.DatabaseID
	logger     logging.Logger
}

// NewService constructs a Service for the given integration token.
func NewService(apiKey string, optFns ...func(o *Options)) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("notion api key is not set")
	}
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Service{
		client:     notionapi.NewClient(notionapi.Token(apiKey)),
		tasksDB:    notionapi.DatabaseID(opts.TasksDatabaseID),
		areasDB:    notionapi.DatabaseID(opts.AreasDatabaseID),
		projectsDB: notionapi.DatabaseID(opts.ProjectsDatabaseID),
		contactsDB: notionapi.DatabaseID(opts.ContactsDatabaseID),
		logger:     opts.Logger,
	}, nil
}

// Areas fetches all areas to build prompt context.
func (s *Service) Areas(ctx context.Context) ([]Ref, error) {
	return s.queryRefs(ctx, s.areasDB)
}

// Projects fetches all projects to build prompt context.
func (s *Service) Projects(ctx context.Context) ([]Ref, error) {
	return s.queryRefs(ctx, s.projectsDB)
}

// queryRefs pages through a database collecting id/name pairs.
func (s *Service) queryRefs(ctx context.Context, db notionapi.DatabaseID) ([]Ref, error) {
	if db == "" {
		return nil, nil
	}
	var refs []Ref
	var cursor notionapi.Cursor
	for {
		resp, err := s.client.Database.Query(ctx, db, &notionapi.DatabaseQueryRequest{StartCursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("query database %s: %w", db, err)
		}
		for _, page := range resp.Results {
			refs = append(refs, Ref{ID: page.ID.String(), Name: titleOf(page)})
		}
		if !resp.HasMore {
			return refs, nil
		}
		cursor = resp.NextCursor
	}
}

// ActiveTasks fetches tasks whose status is not done.
func (s *Service) ActiveTasks(ctx context.Context) ([]Task, error) {
	if s.tasksDB == "" {
		return nil, fmt.Errorf("notion tasks database id is not set")
	}
	var tasks []Task
	var cursor notionapi.Cursor
	for {
		resp, err := s.client.Database.Query(ctx, s.tasksDB, &notionapi.DatabaseQueryRequest{
			Filter: notionapi.PropertyFilter{
				Property: "Status",
				Status:   &notionapi.StatusFilterCondition{DoesNotEqual: "Done"},
			},
			StartCursor: cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("query tasks: %w", err)
		}
		for _, page := range resp.Results {
			tasks = append(tasks, Task{
				ID:            page.ID.String(),
				Name:          titleOf(page),
				DueDate:       dateOf(page, "Due"),
				Priority:      selectOf(page, "Priority"),
				GoogleEventID: richTextOf(page, "Google Event ID"),
				Urgent:        checkboxOf(page, "Urgent"),
				Important:     checkboxOf(page, "Important"),
			})
		}
		if !resp.HasMore {
			return tasks, nil
		}
		cursor = resp.NextCursor
	}
}

// Contacts fetches all contacts.
func (s *Service) Contacts(ctx context.Context) ([]Contact, error) {
	if s.contactsDB == "" {
		return nil, nil
	}
	var contacts []Contact
	var cursor notionapi.Cursor
	for {
		resp, err := s.client.Database.Query(ctx, s.contactsDB, &notionapi.DatabaseQueryRequest{StartCursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("query contacts: %w", err)
		}
		for _, page := range resp.Results {
			contacts = append(contacts, Contact{
				ID:       page.ID.String(),
				Name:     titleOf(page),
				Groups:   selectOf(page, "Groups"),
				Company:  richTextOf(page, "Company"),
				Email:    emailOf(page, "Email"),
				Birthday: dateOf(page, "Birthday"),
				Notes:    richTextOf(page, "Notes"),
				Favorite: checkboxOf(page, "Favorite"),
			})
		}
		if !resp.HasMore {
			return contacts, nil
		}
		cursor = resp.NextCursor
	}
}

// PageContent returns the plain-text body of a page (text-bearing blocks
// concatenated line by line).
func (s *Service) PageContent(ctx context.Context, pageID string) (string, error) {
	resp, err := s.client.Block.GetChildren(ctx, notionapi.BlockID(pageID), &notionapi.Pagination{PageSize: 100})
	if err != nil {
		return "", fmt.Errorf("get page content: %w", err)
	}
	var sb strings.Builder
	for _, block := range resp.Results {
		text := blockText(block)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// EnrichContacts fetches page content for contacts relevant to the query, in
// parallel with a bounded worker count. Enrichment failures leave the
// contact unenriched rather than failing the batch.
func (s *Service) EnrichContacts(ctx context.Context, contacts []Contact, queryWords []string) []Contact {
	sem := make(chan struct{}, enrichmentWorkers)
	var wg sync.WaitGroup
	for i := range contacts {
		if !contactRelevant(contacts[i], queryWords) {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(c *Contact) {
			defer wg.Done()
			defer func() { <-sem }()
			content, err := s.PageContent(ctx, c.ID)
			if err != nil {
				s.logger.Warn("failed to fetch page content", "contact", c.Name, "error", err)
				return
			}
			c.PageContent = content
		}(&contacts[i])
	}
	wg.Wait()
	return contacts
}

// contactRelevant mirrors the matching used before enrichment: favorites and
// family always qualify, otherwise any query word longer than three
// characters appearing in the name or notes does.
func contactRelevant(c Contact, queryWords []string) bool {
	if c.Favorite || c.Groups == "Family" {
		return true
	}
	name := strings.ToLower(c.Name)
	notes := strings.ToLower(c.Notes)
	for _, w := range queryWords {
		if len(w) <= 3 {
			continue
		}
		if strings.Contains(name, w) || strings.Contains(notes, w) {
			return true
		}
	}
	return false
}

// AddTask creates a task page and returns the new page id.
func (s *Service) AddTask(ctx context.Context, fields map[string]any) (string, error) {
	props := taskProperties(fields)
	page, err := s.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: s.tasksDB},
		Properties: props,
	})
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return page.ID.String(), nil
}

// UpdateTask applies the given field updates to a task page.
func (s *Service) UpdateTask(ctx context.Context, pageID string, fields map[string]any) error {
	props := taskProperties(fields)
	if len(props) == 0 {
		return nil
	}
	_, err := s.client.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Properties: props})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// ArchiveTask archives a task page.
func (s *Service) ArchiveTask(ctx context.Context, pageID string) error {
	return s.archive(ctx, pageID, "archive task")
}

// AddContact creates a contact page.
func (s *Service) AddContact(ctx context.Context, fields map[string]any) (string, error) {
	props := contactProperties(fields)
	page, err := s.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: s.contactsDB},
		Properties: props,
	})
	if err != nil {
		return "", fmt.Errorf("create contact: %w", err)
	}
	return page.ID.String(), nil
}

// UpdateContact applies the given field updates to a contact page.
func (s *Service) UpdateContact(ctx context.Context, pageID string, fields map[string]any) error {
	props := contactProperties(fields)
	if len(props) == 0 {
		return nil
	}
	_, err := s.client.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Properties: props})
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

// ArchiveContact archives a contact page.
func (s *Service) ArchiveContact(ctx context.Context, pageID string) error {
	return s.archive(ctx, pageID, "archive contact")
}

func (s *Service) archive(ctx context.Context, pageID, op string) error {
	_, err := s.client.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{},
		Archived:   true,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
