// Package events provides item change events and a synchronous in-memory
// emitter.
//
// The repository emits an ItemEvent after each persisted mutation. Consumers
// such as the quiz session register a handler and rebuild their derived views
// when an event arrives, without the repository knowing about them.
package events
