package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/soundcheck/internal/dom"
)

var (
	_ list.Item = trackItem{}
)

// trackItem wraps an audio element of the page to implement [list.Item].
type trackItem struct {
	audio *dom.Node
	group string
}

func (i trackItem) FilterValue() string { return i.audio.Data("title") }
func (i trackItem) Title() string       { return i.audio.Data("title") }
func (i trackItem) Description() string {
	desc := i.audio.Data("artist")
	if i.group != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.group)
	}
	return strings.TrimPrefix(desc, " • ")
}

// collectItems lists every playable audio element of doc in page order.
func collectItems(doc *dom.Document) []list.Item {
	audios := doc.QueryAll("audio")
	items := make([]list.Item, 0, len(audios))
	for _, a := range audios {
		items = append(items, trackItem{audio: a, group: groupLabel(a)})
	}
	return items
}

// groupLabel names the section an audio element belongs to.
func groupLabel(audio *dom.Node) string {
	if dialog := audio.Closest(".playlist-dialog"); dialog != nil {
		return "Soundtrack: " + strings.TrimSuffix(dialog.ID, "-dialog")
	}
	if playlist := audio.Closest(".playlist"); playlist != nil {
		if h := playlist.Query("h2"); h != nil {
			return "Playlist: " + h.TextContent()
		}
	}
	if audio.Closest(".album") != nil {
		return "Album"
	}
	return ""
}
