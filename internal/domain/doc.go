// Package domain contains the core vocabulary entities, value objects, and
// their invariants. It is independent of storage, transport, and the external
// content generator.
package domain
