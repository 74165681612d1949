// hooks attaches declarative behavior to elements of a server-rendered page.
// An element that names a hook gets its own hook instance, which receives the
// mounted, updated and destroyed signals as the host patches the page.
package hooks

import (
	"html/template"
	"sort"
	"strings"

	"balancechart/server/fastview"
)

// HookAttr is the attribute naming the hook bound to an element.
const HookAttr = "phx-hook"

// Element is a single node of a page, as seen by the hook bound to it.
// Attributes are re-read by hooks on every signal rather than passed along with it.
type Element struct {
	id    string
	hook  string
	attrs map[string]string
	push  func(...fastview.EleUpdate)
}

// NewElement returns an element whose pushed updates are handed to push, which may be nil.
func NewElement(
	id string,
	hook string,
	attrs map[string]string,
	push func(...fastview.EleUpdate),
) *Element {
	return &Element{
		id:    id,
		hook:  hook,
		attrs: copyAttrs(attrs),
		push:  push,
	}
}

func (el *Element) ID() string {
	return el.id
}

func (el *Element) Hook() string {
	return el.hook
}

// Attr returns the value of the named attribute.
func (el *Element) Attr(name string) (string, bool) {
	v, ok := el.attrs[name]
	return v, ok
}

// Dataset returns the value of the data-<name> attribute, or "" if absent.
func (el *Element) Dataset(name string) string {
	return el.attrs["data-"+name]
}

// Push sends element updates to the page this element lives on.
func (el *Element) Push(updates ...fastview.EleUpdate) {
	if el.push != nil && len(updates) > 0 {
		el.push(updates...)
	}
}

// setAttrs replaces the attributes and returns the ops needed to bring the page in line,
// or nil if nothing changed.
func (el *Element) setAttrs(attrs map[string]string) (ops []fastview.Op) {
	for _, k := range sortedKeys(attrs) {
		if old, ok := el.attrs[k]; !ok || old != attrs[k] {
			ops = append(ops, fastview.Op{Key: k, Value: attrs[k]})
		}
	}
	for _, k := range sortedKeys(el.attrs) {
		if _, ok := attrs[k]; !ok {
			// Removed attributes are blanked; the bootstrap has no removeAttribute op.
			ops = append(ops, fastview.Op{Key: k, Value: ""})
		}
	}
	el.attrs = copyAttrs(attrs)
	return
}

// markup renders the element's opening and closing tags, for appending it to its container.
func (el *Element) markup() string {
	var b strings.Builder
	b.WriteString(`<div id="` + template.HTMLEscapeString(el.id) + `"`)
	if el.hook != "" {
		b.WriteString(` ` + HookAttr + `="` + template.HTMLEscapeString(el.hook) + `"`)
	}
	for _, k := range sortedKeys(el.attrs) {
		b.WriteString(` ` + template.HTMLEscapeString(k) + `="` + template.HTMLEscapeString(el.attrs[k]) + `"`)
	}
	b.WriteString(`></div>`)
	return b.String()
}

func copyAttrs(attrs map[string]string) map[string]string {
	cp := make(map[string]string, len(attrs))
	for k, v := range attrs {
		cp[k] = v
	}
	return cp
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
