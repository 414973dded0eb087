// Package definition loads machine definitions from YAML, TOML, or JSON documents
// and hydrates them into fsmx machines.
//
// A document names its states, the actions each state runs, and the guarded links
// between them. Action and condition text is resolved through a Resolver, usually
// an extensibility.Catalog.
//
// Invariants enforced by Validate:
//   - state names are unique and well formed
//   - explicit state ids are unique
//   - every link target and the initial state are declared
//   - fixed-capacity documents fit their capacity
package definition
