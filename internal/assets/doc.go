// Package assets provides the HTML templates used by the Chrome engine.
//
// Templates are embedded at compile time and looked up by name:
//
//	templates/
//	└── {name}.html
//
// Names are validated before lookup so a caller-supplied name can never
// escape the templates directory.
package assets
