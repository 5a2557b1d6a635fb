// Package form holds the framework-free pieces of form handling: validation
// results keyed by field name, change listeners with explicit unregistration,
// and a Scope that releases every registration when a form is disposed.
package form
