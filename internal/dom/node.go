// Package dom is a small document model for the player: an element tree, CSS-like selectors, a delegated event
// dispatcher and simulated media elements.
//
// # Elements
//
// A [Node] carries a tag, an id, a class list, attributes, its own text and a hidden flag standing in for
// `style.display`. Trees are either built in code ([NewElement], [Node.AppendChild]) or parsed from HTML markup
// with [Parse].
//
// # Selectors
//
// [Node.Query], [Node.QueryAll], [Node.Closest] and [Node.Matches] accept tag, `#id`, `.class` and compound
// selectors joined by descendant combinators (whitespace) and comma groups.
//
// # Events
//
// [Document.On] registers a handler for an [EventType] against a selector. [Document.Dispatch] bubbles the
// event from its target to the root, invoking handlers whose selector matches each node on the way, then the
// document-level handlers (empty selector).
//
// # Media
//
// Every `audio` element owns a [Media] clock. [Document.Tick] advances playing media and dispatches
// [TimeUpdate] and [Ended] events, so playback can be simulated without an audio device.
package dom

import (
	"slices"
	"strings"
)

// Rect is the horizontal extent of an element, used to map pointer positions onto controls.
type Rect struct {
	Left  float64
	Width float64
}

// Node is an element in a [Document].
type Node struct {
	Tag      string
	ID       string
	Text     string
	Hidden   bool
	Bounds   Rect
	Parent   *Node
	Children []*Node

	classes []string
	attrs   map[string]string
	media   *Media
}

// NewElement creates a detached element with the given classes.
func NewElement(tag string, classes ...string) *Node {
	n := &Node{Tag: strings.ToLower(tag), attrs: make(map[string]string)}
	n.AddClass(classes...)
	return n
}

// Classes returns a copy of the element's class list.
func (n *Node) Classes() []string {
	return slices.Clone(n.classes)
}

func (n *Node) HasClass(c string) bool {
	return slices.Contains(n.classes, c)
}

func (n *Node) AddClass(cs ...string) {
	for _, c := range cs {
		if c != "" && !n.HasClass(c) {
			n.classes = append(n.classes, c)
		}
	}
}

func (n *Node) RemoveClass(cs ...string) {
	n.classes = slices.DeleteFunc(n.classes, func(c string) bool { return slices.Contains(cs, c) })
}

// ToggleClass flips c and reports whether it is now present.
func (n *Node) ToggleClass(c string) bool {
	if n.HasClass(c) {
		n.RemoveClass(c)
		return false
	}
	n.AddClass(c)
	return true
}

// SetClass adds c when on is true and removes it otherwise.
func (n *Node) SetClass(c string, on bool) {
	if on {
		n.AddClass(c)
	} else {
		n.RemoveClass(c)
	}
}

// Attr returns an attribute value, or "" when absent. "id" and "class" are reflected from the element fields.
func (n *Node) Attr(name string) string {
	switch name {
	case "id":
		return n.ID
	case "class":
		return strings.Join(n.classes, " ")
	}
	return n.attrs[name]
}

// SetAttr sets an attribute. Setting "src" on an audio element also retargets its media.
func (n *Node) SetAttr(name, value string) {
	switch name {
	case "id":
		n.ID = value
		return
	case "class":
		n.classes = nil
		n.AddClass(strings.Fields(value)...)
		return
	}
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
	if name == "src" && n.media != nil {
		n.media.Src = value
	}
}

// Data returns the data-* attribute for key.
func (n *Node) Data(key string) string {
	return n.Attr("data-" + key)
}

// SetData sets the data-* attribute for key.
func (n *Node) SetData(key, value string) {
	n.SetAttr("data-"+key, value)
}

// AppendChild attaches c as the last child of n, detaching it from any previous parent, and returns c.
func (n *Node) AppendChild(c *Node) *Node {
	if c.Parent != nil {
		c.Parent.removeChild(c)
	}
	c.Parent = n
	n.Children = append(n.Children, c)
	return c
}

func (n *Node) removeChild(c *Node) {
	n.Children = slices.DeleteFunc(n.Children, func(x *Node) bool { return x == c })
	c.Parent = nil
}

// Clear removes all children and the element's own text.
func (n *Node) Clear() {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = nil
	n.Text = ""
}

// SetText replaces the element's content with text.
func (n *Node) SetText(text string) {
	n.Clear()
	n.Text = text
}

// TextContent returns the element's text followed by its descendants' text, space separated.
func (n *Node) TextContent() string {
	parts := make([]string, 0, len(n.Children)+1)
	if n.Text != "" {
		parts = append(parts, n.Text)
	}
	for _, c := range n.Children {
		if t := c.TextContent(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func (n *Node) Show() { n.Hidden = false }
func (n *Node) Hide() { n.Hidden = true }

// Visible reports whether neither the element nor any ancestor is hidden.
func (n *Node) Visible() bool {
	for p := n; p != nil; p = p.Parent {
		if p.Hidden || p.HasClass("hidden") {
			return false
		}
	}
	return true
}

// Contains reports whether o is n or one of its descendants.
func (n *Node) Contains(o *Node) bool {
	for p := o; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// Matches reports whether the element matches sel.
func (n *Node) Matches(sel string) bool {
	return compile(sel).match(n)
}

// Closest returns the nearest element, starting with n itself, that matches sel.
func (n *Node) Closest(sel string) *Node {
	s := compile(sel)
	for p := n; p != nil; p = p.Parent {
		if s.match(p) {
			return p
		}
	}
	return nil
}

// Query returns the first descendant matching sel in document order.
func (n *Node) Query(sel string) *Node {
	s := compile(sel)
	var found *Node
	n.walk(func(x *Node) bool {
		if s.match(x) {
			found = x
			return false
		}
		return true
	})
	return found
}

// QueryAll returns every descendant matching sel in document order.
func (n *Node) QueryAll(sel string) []*Node {
	s := compile(sel)
	var found []*Node
	n.walk(func(x *Node) bool {
		if s.match(x) {
			found = append(found, x)
		}
		return true
	})
	return found
}

// walk visits descendants depth-first, stopping when fn returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	for _, c := range n.Children {
		if !fn(c) || !c.walk(fn) {
			return false
		}
	}
	return true
}

// Media returns the media clock of an audio element, creating it on first use, or nil for other elements.
//
// The clock's duration comes from data-duration (seconds) and defaults to a 30 second preview.
func (n *Node) Media() *Media {
	if n.Tag != "audio" {
		return nil
	}
	if n.media == nil {
		n.media = newMedia(n.Attr("src"), parseSeconds(n.Data("duration"), DefaultPreviewLength))
	}
	return n.media
}
