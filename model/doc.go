// Package model defines the normalized completion interface the agents use
// and the prompt plumbing shared by its provider adapters. Concrete clients
// live in the openai and anthropic subpackages.
package model
