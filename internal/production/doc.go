// Package production provides integrations around running machines: snapshot
// persistence (JSON and YAML files, SQLite), transition publishing over channels,
// and Graphviz export.
package production
