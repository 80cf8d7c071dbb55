package dom

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// EventType names an event dispatched through a [Document].
type EventType string

const (
	Click      EventType = "click"
	MouseDown  EventType = "mousedown"
	MouseMove  EventType = "mousemove"
	MouseUp    EventType = "mouseup"
	Input      EventType = "input"
	TimeUpdate EventType = "timeupdate"
	Ended      EventType = "ended"
)

// Event is a dispatched event. ClientX is the pointer position for mouse events and Value the control value for
// [Input] events.
type Event struct {
	Type          EventType
	Target        *Node
	CurrentTarget *Node
	ClientX       float64
	Value         string

	stopped bool
}

// StopPropagation prevents handlers on further ancestors (and document-level handlers) from running.
func (e *Event) StopPropagation() { e.stopped = true }

// Handler handles an [Event].
type Handler func(*Event)

type listener struct {
	typ EventType
	sel selector
	h   Handler
}

// Document owns an element tree and its event listeners.
type Document struct {
	Root      *Node
	listeners []listener
}

// NewDocument creates an empty document with html, head and body elements.
func NewDocument() *Document {
	root := &Node{Tag: "#document"}
	htmlEl := root.AppendChild(NewElement("html"))
	htmlEl.AppendChild(NewElement("head"))
	htmlEl.AppendChild(NewElement("body"))
	return &Document{Root: root}
}

// Parse builds a [Document] from HTML markup. Comments and doctype are dropped and whitespace in text is collapsed.
func Parse(r io.Reader) (*Document, error) {
	parsed, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	root := &Node{Tag: "#document"}
	convertChildren(parsed, root)
	return &Document{Root: root}, nil
}

func convertChildren(src *html.Node, dst *Node) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			el := NewElement(c.Data)
			for _, a := range c.Attr {
				if a.Key == "hidden" {
					el.Hidden = true
					continue
				}
				el.SetAttr(a.Key, a.Val)
			}
			dst.AppendChild(el)
			convertChildren(c, el)
		case html.TextNode:
			text := strings.Join(strings.Fields(c.Data), " ")
			if text == "" {
				continue
			}
			if dst.Text != "" {
				dst.Text += " "
			}
			dst.Text += text
		}
	}
}

// Body returns the body element.
func (d *Document) Body() *Node {
	return d.Root.Query("body")
}

func (d *Document) Query(sel string) *Node      { return d.Root.Query(sel) }
func (d *Document) QueryAll(sel string) []*Node { return d.Root.QueryAll(sel) }

// On registers h for events of type typ on elements matching sel. An empty selector registers a
// document-level handler that runs after bubbling completes.
func (d *Document) On(typ EventType, sel string, h Handler) {
	var s selector
	if sel != "" {
		s = compile(sel)
	}
	d.listeners = append(d.listeners, listener{typ: typ, sel: s, h: h})
}

// Dispatch delivers ev, bubbling from its target (the root when unset) to the root.
//
// Listeners registered while dispatching are not invoked for the current event.
func (d *Document) Dispatch(ev *Event) {
	if ev.Target == nil {
		ev.Target = d.Root
	}
	snapshot := append([]listener(nil), d.listeners...)

	for n := ev.Target; n != nil; n = n.Parent {
		for _, l := range snapshot {
			if l.typ != ev.Type || l.sel == nil || !l.sel.match(n) {
				continue
			}
			ev.CurrentTarget = n
			l.h(ev)
			if ev.stopped {
				return
			}
		}
	}

	for _, l := range snapshot {
		if l.typ == ev.Type && l.sel == nil {
			ev.CurrentTarget = d.Root
			l.h(ev)
			if ev.stopped {
				return
			}
		}
	}
}

// Fire dispatches a bare event of type typ at target.
func (d *Document) Fire(typ EventType, target *Node) {
	d.Dispatch(&Event{Type: typ, Target: target})
}

// Tick advances every playing media clock by dt, dispatching [TimeUpdate] and, at the end of a clip, [Ended].
func (d *Document) Tick(dt time.Duration) {
	for _, n := range d.QueryAll("audio") {
		if n.media == nil {
			continue
		}
		changed, ended := n.media.advance(dt)
		if changed {
			d.Fire(TimeUpdate, n)
		}
		if ended {
			d.Fire(Ended, n)
		}
	}
}
