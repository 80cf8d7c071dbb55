package dom

import (
	"strings"
	"sync"
)

// compound is a single selector step such as "li.track.playlist-item" or "#volume".
type compound struct {
	tag     string
	id      string
	classes []string
}

func (c compound) match(n *Node) bool {
	if c.tag != "" && c.tag != "*" && c.tag != n.Tag {
		return false
	}
	if c.id != "" && c.id != n.ID {
		return false
	}
	for _, cls := range c.classes {
		if !n.HasClass(cls) {
			return false
		}
	}
	return true
}

// chain is a descendant chain, outermost step first.
type chain []compound

func (ch chain) match(n *Node) bool {
	if len(ch) == 0 || !ch[len(ch)-1].match(n) {
		return false
	}
	i := len(ch) - 2
	for p := n.Parent; p != nil && i >= 0; p = p.Parent {
		if ch[i].match(p) {
			i--
		}
	}
	return i < 0
}

// selector is a comma separated group of chains. An invalid selector is empty and matches nothing.
type selector []chain

func (s selector) match(n *Node) bool {
	if n == nil {
		return false
	}
	for _, ch := range s {
		if ch.match(n) {
			return true
		}
	}
	return false
}

var selectorCache sync.Map

func compile(raw string) selector {
	if cached, ok := selectorCache.Load(raw); ok {
		return cached.(selector)
	}
	s := parseSelector(raw)
	selectorCache.Store(raw, s)
	return s
}

func parseSelector(raw string) selector {
	var s selector
	for _, group := range strings.Split(raw, ",") {
		var ch chain
		for _, step := range strings.Fields(group) {
			c, ok := parseCompound(step)
			if !ok {
				return nil
			}
			ch = append(ch, c)
		}
		if len(ch) == 0 {
			return nil
		}
		s = append(s, ch)
	}
	return s
}

func parseCompound(step string) (compound, bool) {
	var c compound
	i := 0
	read := func() string {
		start := i
		for i < len(step) && isIdentByte(step[i]) {
			i++
		}
		return step[start:i]
	}

	if step[0] == '*' {
		c.tag = "*"
		i = 1
	} else if isIdentByte(step[0]) {
		c.tag = strings.ToLower(read())
	}

	for i < len(step) {
		marker := step[i]
		i++
		name := read()
		if name == "" {
			return compound{}, false
		}
		switch marker {
		case '#':
			c.id = name
		case '.':
			c.classes = append(c.classes, name)
		default:
			return compound{}, false
		}
	}
	return c, true
}

func isIdentByte(b byte) bool {
	return b == '-' || b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
