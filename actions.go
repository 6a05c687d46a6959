package mayordomo

import (
	"context"
	"fmt"

	"github.com/jpcolombo/mayordomo/agent"
	"github.com/jpcolombo/mayordomo/calendar"
	"github.com/jpcolombo/mayordomo/notion"
)

// Spoken suffixes appended when a side effect partially fails. The user
// still gets the agent's answer plus an honest note about what went wrong.
const (
	msgActionError        = "Entendido, pero hubo un error ejecutando la acción: %s"
	msgCalendarCreateFail = " La tarea se creó pero no pude sincronizarla con el calendario."
	msgCalendarUpdateFail = " La tarea se actualizó pero no pude sincronizar el cambio con el calendario."
	msgCalendarDeleteFail = " La tarea se marcó como completada pero no pude eliminar el evento del calendario."
)

// executeTaskActions applies a tasks-domain outcome to Notion and, when a
// due date is involved, to the calendar. The spoken response survives action
// failures: Notion errors replace it with an apology, calendar errors only
// append a warning because the task change itself already landed.
func (a *Assistant) executeTaskActions(ctx context.Context, out agent.Outcome, active []notion.Task) string {
	response := out.Response

	switch out.Intent {
	case agent.IntentCreate:
		if out.Task == nil {
			break
		}

		pageID, err := a.notion.AddTask(ctx, out.Task)
		if err != nil {
			a.logger.Error("task create failed", "error", err)
			return fmt.Sprintf(msgActionError, err)
		}

		a.logger.Info("task created", "page_id", pageID)

		if wantsCalendarEvent(out.Task) && a.calendar != nil {
			response += a.createCalendarEvent(ctx, pageID, out.Task)
		}
	case agent.IntentEdit:
		if out.ID == "" || len(out.Updates) == 0 {
			break
		}

		if err := a.notion.UpdateTask(ctx, out.ID, out.Updates); err != nil {
			a.logger.Error("task update failed", "page_id", out.ID, "error", err)
			return fmt.Sprintf(msgActionError, err)
		}

		a.logger.Info("task updated", "page_id", out.ID)

		if a.calendar != nil {
			response += a.syncCalendarEdit(ctx, out.ID, out.Updates, active)
		}
	case agent.IntentDelete:
		if out.ID == "" {
			break
		}

		if err := a.notion.ArchiveTask(ctx, out.ID); err != nil {
			a.logger.Error("task archive failed", "page_id", out.ID, "error", err)
			return fmt.Sprintf(msgActionError, err)
		}

		a.logger.Info("task archived", "page_id", out.ID)
	}

	return response
}

// executeContactActions applies a contacts-domain outcome to Notion.
func (a *Assistant) executeContactActions(ctx context.Context, out agent.Outcome) string {
	switch out.Intent {
	case agent.IntentCreate:
		if out.Contact == nil {
			break
		}

		pageID, err := a.notion.AddContact(ctx, out.Contact)
		if err != nil {
			a.logger.Error("contact create failed", "error", err)
			return fmt.Sprintf(msgActionError, err)
		}

		a.logger.Info("contact created", "page_id", pageID)
	case agent.IntentEdit:
		if out.ID == "" || len(out.Updates) == 0 {
			break
		}

		if err := a.notion.UpdateContact(ctx, out.ID, out.Updates); err != nil {
			a.logger.Error("contact update failed", "page_id", out.ID, "error", err)
			return fmt.Sprintf(msgActionError, err)
		}

		a.logger.Info("contact updated", "page_id", out.ID)
	case agent.IntentDelete:
		if out.ID == "" {
			break
		}

		if err := a.notion.ArchiveContact(ctx, out.ID); err != nil {
			a.logger.Error("contact archive failed", "page_id", out.ID, "error", err)
			return fmt.Sprintf(msgActionError, err)
		}

		a.logger.Info("contact archived", "page_id", out.ID)
	}

	return out.Response
}

// createCalendarEvent mirrors a newly created dated task into the calendar
// and writes the event id back onto the Notion page. Returns a warning
// suffix on failure, empty string on success.
func (a *Assistant) createCalendarEvent(ctx context.Context, pageID string, fields map[string]any) string {
	name, _ := fields["name"].(string)
	start, _ := fields["dueDateTime"].(string)

	eventID, err := a.calendar.CreateEvent(ctx, name, start, "")
	if err != nil {
		a.logger.Warn("calendar event creation failed", "page_id", pageID, "error", err)
		return msgCalendarCreateFail
	}

	if err := a.notion.UpdateTask(ctx, pageID, map[string]any{"googleEventId": eventID}); err != nil {
		a.logger.Warn("event id write-back failed", "page_id", pageID, "event_id", eventID, "error", err)
		return msgCalendarCreateFail
	}

	a.logger.Info("calendar event created", "page_id", pageID, "event_id", eventID)

	return ""
}

// syncCalendarEdit propagates a task edit to its linked calendar event.
// Date or name changes update the event; marking the task done deletes it
// and clears the stored event id. Returns a warning suffix on failure.
func (a *Assistant) syncCalendarEdit(ctx context.Context, pageID string, updates map[string]any, active []notion.Task) string {
	edited, ok := findTask(active, pageID)
	if !ok || edited.GoogleEventID == "" {
		return ""
	}

	update := calendar.EventUpdate{}
	if v, ok := updates["dueDateTime"].(string); ok {
		update.DueDate = v
	} else if v, ok := updates["dueDate"].(string); ok {
		update.DueDate = v
	}
	if v, ok := updates["name"].(string); ok {
		update.Name = v
	}

	if update.DueDate != "" || update.Name != "" {
		if err := a.calendar.UpdateEvent(ctx, edited.GoogleEventID, update); err != nil {
			a.logger.Warn("calendar event update failed", "event_id", edited.GoogleEventID, "error", err)
			return msgCalendarUpdateFail
		}

		return ""
	}

	if done, _ := updates["done"].(bool); done {
		if err := a.calendar.DeleteEvent(ctx, edited.GoogleEventID); err != nil {
			a.logger.Warn("calendar event deletion failed", "event_id", edited.GoogleEventID, "error", err)
			return msgCalendarDeleteFail
		}

		// Clearing the link keeps a later un-done edit from touching a
		// deleted event.
		if err := a.notion.UpdateTask(ctx, pageID, map[string]any{"googleEventId": ""}); err != nil {
			a.logger.Warn("event id clear failed", "page_id", pageID, "error", err)
		}
	}

	return ""
}

func wantsCalendarEvent(fields map[string]any) bool {
	want, _ := fields["createCalendarEvent"].(bool)
	due, _ := fields["dueDateTime"].(string)

	return want && due != ""
}

func findTask(tasks []notion.Task, id string) (notion.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}

	return notion.Task{}, false
}
