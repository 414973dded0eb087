// Package extensibility resolves the action and condition names used by machine
// definition documents into fsmx callbacks.
//
// A Catalog holds named callbacks registered from Go code and understands a small
// set of built-in forms that read and write a shared fsmx.Blackboard:
//
//	set <key> <value>     store a value (bool, number, or string)
//	add <key> <delta>     increment a numeric counter
//	log <message...>      write an info line through the catalog logger
//
// Conditions are either registered names or expressions of the form
// "<key> <op> <value>" with op one of == != < <= > >=.
package extensibility
