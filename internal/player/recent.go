package player

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/soundcheck/internal/dom"
	"github.com/desertthunder/soundcheck/internal/shared"
	"github.com/desertthunder/soundcheck/internal/storage"
)

// RecentLimit is the number of entries kept in the recently played list.
const RecentLimit = 10

// RecentEntry is one recently played track. Timestamp is in Unix milliseconds.
type RecentEntry struct {
	Cover     string `json:"cover"`
	Title     string `json:"title"`
	Timestamp int64  `json:"timestamp"`
}

// Time returns the entry's timestamp as a [time.Time].
func (e RecentEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// PushRecent returns list with entry in front, earlier entries with the same title removed, capped at [RecentLimit].
func PushRecent(list []RecentEntry, entry RecentEntry) []RecentEntry {
	out := make([]RecentEntry, 0, min(len(list)+1, RecentLimit))
	out = append(out, entry)
	for _, e := range list {
		if len(out) == RecentLimit {
			break
		}
		if e.Title == entry.Title {
			continue
		}
		out = append(out, e)
	}
	return out
}

// LoadRecent reads the recently played list. A missing or unreadable value yields an empty list.
func LoadRecent(store storage.Store) []RecentEntry {
	raw, ok := store.GetItem(storage.KeyRecentlyPlayed)
	if !ok || raw == "" {
		return nil
	}
	var list []RecentEntry
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}

// SaveRecent writes the recently played list.
func SaveRecent(store storage.Store, list []RecentEntry) error {
	if list == nil {
		list = []RecentEntry{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("%w: failed to encode recently played: %v", shared.ErrStorage, err)
	}
	return store.SetItem(storage.KeyRecentlyPlayed, string(data))
}

// renderRecent rebuilds .recent-tracks from storage.
func (c *Controller) renderRecent() {
	container := c.doc.Query(".recent-tracks")
	if container == nil {
		return
	}
	container.Clear()

	for _, e := range LoadRecent(c.store) {
		track := container.AppendChild(dom.NewElement("div", "recent-track"))

		img := track.AppendChild(dom.NewElement("div", "track-image")).AppendChild(dom.NewElement("img"))
		img.SetAttr("src", e.Cover)
		img.SetAttr("alt", e.Title)

		info := track.AppendChild(dom.NewElement("div", "track-info"))
		info.AppendChild(dom.NewElement("h3")).SetText(e.Title)
		info.AppendChild(dom.NewElement("p")).SetText(e.Time().Format("1/2/2006"))
	}
}

// record pushes the track behind audio onto the recently played list.
func (c *Controller) record(audio *dom.Node) {
	entry := RecentEntry{
		Cover:     audio.Data("cover"),
		Title:     audio.Data("title"),
		Timestamp: c.now().UnixMilli(),
	}
	if err := SaveRecent(c.store, PushRecent(LoadRecent(c.store), entry)); err != nil {
		c.logger.Error("failed to save recently played", "error", err)
		return
	}
	c.renderRecent()
}
