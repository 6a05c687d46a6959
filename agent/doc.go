// Package agent implements the domain agents behind the assistant: tasks,
// contacts, general conversation and background-task status. Each agent
// assembles a prompt from an embedded instruction template plus dynamic
// context (current time, conversation history, Notion data), asks the model
// for a JSON outcome and parses it defensively.
package agent
