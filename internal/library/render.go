package library

import "github.com/desertthunder/soundcheck/internal/dom"

func renderEmpty(container *dom.Node) {
	container.AppendChild(dom.NewElement("p")).SetText(EmptyMessage)
}

// render rebuilds container with one .playlist per playlist. Tracks with a preview become playable items.
func (l *Loader) render(container *dom.Node, playlists []Playlist) {
	if container == nil {
		return
	}
	container.Clear()

	if len(playlists) == 0 {
		renderEmpty(container)
		return
	}

	for _, p := range playlists {
		el := container.AppendChild(dom.NewElement("div", "playlist"))
		el.AppendChild(dom.NewElement("h2")).SetText(p.Name)
		list := el.AppendChild(dom.NewElement("ul", "tracks-list"))

		for _, t := range p.Tracks {
			li := list.AppendChild(dom.NewElement("li", "track"))
			li.SetText(t.Label())
			if t.Preview == "" {
				continue
			}

			li.AddClass("playlist-item")
			audio := li.AppendChild(dom.NewElement("audio"))
			audio.SetAttr("src", t.Preview)
			audio.SetData("title", t.Name)
			audio.SetData("artist", t.Artist)
			audio.SetData("cover", t.Cover)
		}
	}
}
