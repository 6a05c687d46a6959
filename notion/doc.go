// Package notion integrates the assistant with Notion databases: tasks,
// areas, projects and contacts. It wraps the Notion REST API and normalizes
// pages into the flat structs the agents inject into their prompts.
package notion
