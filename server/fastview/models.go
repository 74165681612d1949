// fastview implements simple server-side views: given an input data format, apply a
// transformation to a view-model, multiplex that data to one or more views, and publish
// the resulting element updates to web clients.
package fastview

import (
	"html/template"
)

// Reserved op keys. Any other key is an attribute name.
const (
	// TextContent sets ele.textContent.
	TextContent = "textContent"
	// InnerHTML replaces the element's children.
	InnerHTML = "innerHTML"
	// AppendHTML appends the value's markup as the element's last child.
	AppendHTML = "appendHTML"
	// Remove removes the element from the document; the value is ignored.
	Remove = "remove"
	// Script runs the value as a function body with the element bound to `el`.
	Script = "script"
)

// EleUpdate is an element identifier and a set of operations to apply to its attributes/content.
type EleUpdate struct {
	// The id by which to find the element
	EleId string
	// Op keys are attrib keys or one of the reserved keys above, values are the strings to which
	// these are set. Example: ('x','123') means 'set attribute 'x' to 123'.
	Ops []Op
}

// Op is a key and value. For example an html attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// Idempotent reports whether applying the update twice is the same as applying it once,
// in which case an older pending update for the same element can be overwritten by it.
// Structural ops and scripts are never idempotent.
func (up EleUpdate) Idempotent() bool {
	for _, op := range up.Ops {
		switch op.Key {
		case InnerHTML, AppendHTML, Remove, Script:
			return false
		}
	}
	return true
}

// ClientMessage is a value sent by the page, e.g. the current content of an input.
type ClientMessage struct {
	EleId string
	Value string
}

// ViewComponent implements server side views: Parse to allow writing their initial form
// to an output stream and Updates to obtain the chan by which ele-updates are notified.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	// Parse parses the view-component and adds it to the passed parent template, thus inheriting
	// or possibly extending its definition (func-map, etc). This allows recursively defining
	// view-components.
	Parse(*template.Template) (string, error)
}
