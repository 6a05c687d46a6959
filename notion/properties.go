package notion

import (
	"time"

	"github.com/jomei/notionapi"
)

// Property names used by the task and contact databases.
const (
	propName          = "Name"
	propDue           = "Due"
	propPriority      = "Priority"
	propUrgent        = "Urgent"
	propImportant     = "Important"
	propStatus        = "Status"
	propArea          = "Area"
	propProject       = "Project"
	propGoogleEventID = "Google Event ID"
	propGroups        = "Groups"
	propCompany       = "Company"
	propEmail         = "Email"
	propBirthday      = "Birthday"
	propNotes         = "Notes"
	propFavorite      = "Favorite"
)

// taskProperties converts agent-produced task fields into Notion page
// properties. Unknown keys are ignored so prompt drift never breaks writes.
func taskProperties(fields map[string]any) notionapi.Properties {
	props := notionapi.Properties{}
	if v, ok := str(fields, "name"); ok {
		props[propName] = titleProp(v)
	}
	if v, ok := str(fields, "dueDateTime"); ok {
		if p := dateProp(v); p != nil {
			props[propDue] = p
		}
	} else if v, ok := str(fields, "dueDate"); ok {
		if p := dateProp(v); p != nil {
			props[propDue] = p
		}
	}
	if v, ok := str(fields, "priority"); ok {
		props[propPriority] = &notionapi.SelectProperty{Select: notionapi.Option{Name: v}}
	}
	if v, ok := boolean(fields, "urgent"); ok {
		props[propUrgent] = &notionapi.CheckboxProperty{Checkbox: v}
	}
	if v, ok := boolean(fields, "important"); ok {
		props[propImportant] = &notionapi.CheckboxProperty{Checkbox: v}
	}
	if v, ok := boolean(fields, "done"); ok && v {
		props[propStatus] = &notionapi.StatusProperty{Status: notionapi.Option{Name: "Done"}}
	}
	if v, ok := str(fields, "areaId"); ok {
		props[propArea] = relationProp(v)
	}
	if v, ok := str(fields, "projectId"); ok {
		props[propProject] = relationProp(v)
	}
	if v, exists := fields["googleEventId"]; exists {
		// Empty string clears the sync marker after a calendar event is removed.
		s, _ := v.(string)
		props[propGoogleEventID] = richTextProp(s)
	}
	return props
}

// contactProperties converts agent-produced contact fields into Notion page
// properties.
func contactProperties(fields map[string]any) notionapi.Properties {
	props := notionapi.Properties{}
	if v, ok := str(fields, "name"); ok {
		props[propName] = titleProp(v)
	}
	if v, ok := str(fields, "groups"); ok {
		props[propGroups] = &notionapi.SelectProperty{Select: notionapi.Option{Name: v}}
	}
	if v, ok := str(fields, "company"); ok {
		props[propCompany] = richTextProp(v)
	}
	if v, ok := str(fields, "email"); ok {
		props[propEmail] = &notionapi.EmailProperty{Email: v}
	}
	if v, ok := str(fields, "birthday"); ok {
		if p := dateProp(v); p != nil {
			props[propBirthday] = p
		}
	}
	if v, ok := str(fields, "notes"); ok {
		props[propNotes] = richTextProp(v)
	}
	if v, ok := boolean(fields, "favorite"); ok {
		props[propFavorite] = &notionapi.CheckboxProperty{Checkbox: v}
	}
	return props
}

func titleProp(name string) *notionapi.TitleProperty {
	return &notionapi.TitleProperty{Title: []notionapi.RichText{
		{Text: &notionapi.Text{Content: name}},
	}}
}

func richTextProp(text string) *notionapi.RichTextProperty {
	if text == "" {
		return &notionapi.RichTextProperty{RichText: []notionapi.RichText{}}
	}
	return &notionapi.RichTextProperty{RichText: []notionapi.RichText{
		{Text: &notionapi.Text{Content: text}},
	}}
}

func relationProp(pageID string) *notionapi.RelationProperty {
	return &notionapi.RelationProperty{Relation: []notionapi.Relation{
		{ID: notionapi.PageID(pageID)},
	}}
}

// dateProp parses an ISO date or datetime string into a date property.
// Unparseable input yields nil so a malformed model answer degrades to a
// missing date instead of a failed write.
func dateProp(value string) *notionapi.DateProperty {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t, err = time.Parse("2006-01-02", value)
		if err != nil {
			return nil
		}
	}
	d := notionapi.Date(t)
	return &notionapi.DateProperty{Date: &notionapi.DateObject{Start: &d}}
}

func str(fields map[string]any, key string) (string, bool) {
	v, ok := fields[key].(string)
	return v, ok && v != ""
}

func boolean(fields map[string]any, key string) (bool, bool) {
	v, ok := fields[key].(bool)
	return v, ok
}

// titleOf extracts the page title from its Name property.
func titleOf(page notionapi.Page) string {
	prop, ok := page.Properties[propName].(*notionapi.TitleProperty)
	if !ok || len(prop.Title) == 0 {
		return "Untitled"
	}
	return richTextString(prop.Title)
}

func richTextOf(page notionapi.Page, name string) string {
	prop, ok := page.Properties[name].(*notionapi.RichTextProperty)
	if !ok {
		return ""
	}
	return richTextString(prop.RichText)
}

func selectOf(page notionapi.Page, name string) string {
	prop, ok := page.Properties[name].(*notionapi.SelectProperty)
	if !ok {
		return ""
	}
	return prop.Select.Name
}

func checkboxOf(page notionapi.Page, name string) bool {
	prop, ok := page.Properties[name].(*notionapi.CheckboxProperty)
	return ok && prop.Checkbox
}

func emailOf(page notionapi.Page, name string) string {
	prop, ok := page.Properties[name].(*notionapi.EmailProperty)
	if !ok {
		return ""
	}
	return prop.Email
}

func dateOf(page notionapi.Page, name string) string {
	prop, ok := page.Properties[name].(*notionapi.DateProperty)
	if !ok || prop.Date == nil || prop.Date.Start == nil {
		return ""
	}
	return time.Time(*prop.Date.Start).Format(time.RFC3339)
}

func richTextString(parts []notionapi.RichText) string {
	var out string
	for _, rt := range parts {
		out += rt.PlainText
		if rt.PlainText == "" && rt.Text != nil {
			out += rt.Text.Content
		}
	}
	return out
}

// blockText flattens the rich text of common text-bearing blocks.
func blockText(block notionapi.Block) string {
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		return richTextString(b.Paragraph.RichText)
	case *notionapi.Heading1Block:
		return richTextString(b.Heading1.RichText)
	case *notionapi.Heading2Block:
		return richTextString(b.Heading2.RichText)
	case *notionapi.Heading3Block:
		return richTextString(b.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		return richTextString(b.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		return richTextString(b.NumberedListItem.RichText)
	case *notionapi.ToDoBlock:
		return richTextString(b.ToDo.RichText)
	default:
		return ""
	}
}
