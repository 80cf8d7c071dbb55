package player

import "github.com/desertthunder/soundcheck/internal/dom"

// NavGroup is a container whose items are stepped through by previous and next.
type NavGroup struct {
	Container string
	Item      string
}

// DefaultGroups are checked from the current audio outwards; the nearest enclosing container wins.
var DefaultGroups = []NavGroup{
	{Container: ".playlist-dialog", Item: ".playlist-item"},
	{Container: ".playlist", Item: ".playlist-item"},
	{Container: ".album-list", Item: ".album"},
}

// enclosing returns the nearest ancestor of n that is a group container, with its group.
func enclosing(n *dom.Node, groups []NavGroup) (*dom.Node, NavGroup, bool) {
	for p := n.Parent; p != nil; p = p.Parent {
		for _, g := range groups {
			if p.Matches(g.Container) {
				return p, g, true
			}
		}
	}
	return nil, NavGroup{}, false
}

// Neighbor returns the audio element step items away from current within its group, wrapping at both ends.
func Neighbor(current *dom.Node, step int, groups []NavGroup) *dom.Node {
	if current == nil {
		return nil
	}
	container, group, ok := enclosing(current, groups)
	if !ok {
		return nil
	}

	var audios []*dom.Node
	index := -1
	for _, item := range container.QueryAll(group.Item) {
		audio := item.Query("audio")
		if audio == nil {
			continue
		}
		if audio == current {
			index = len(audios)
		}
		audios = append(audios, audio)
	}
	if index < 0 || len(audios) == 0 {
		return nil
	}

	n := len(audios)
	return audios[((index+step)%n+n)%n]
}

// Step plays the track step items away from the current one. It does nothing when nothing is playing or the
// current track is not inside a navigation group.
func (c *Controller) Step(step int) {
	next := Neighbor(c.current, step, c.groups)
	if next == nil {
		c.logger.Debug("no track to step to", "step", step)
		return
	}
	c.PlayAudio(next)
}
