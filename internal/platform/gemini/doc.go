// Package gemini implements generation.Generator on top of Google's Gemini
// API. It renders a prompt for a headword, asks the model for a JSON object
// and converts the reply into generation.Content.
package gemini
