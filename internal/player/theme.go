package player

import (
	"github.com/desertthunder/soundcheck/internal/dom"
	"github.com/desertthunder/soundcheck/internal/storage"
)

// Theme is a stored color scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// DarkModeClass is toggled on the body when the dark scheme is active.
const DarkModeClass = "dark-mode"

// ParseTheme maps a stored value to a [Theme]. Unknown values report false.
func ParseTheme(s string) (Theme, bool) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, true
	}
	return "", false
}

// Dark reports whether t renders dark given the OS preference.
func (t Theme) Dark(systemDark bool) bool {
	switch t {
	case ThemeDark:
		return true
	case ThemeSystem:
		return systemDark
	}
	return false
}

// Theme returns the stored theme, falling back to the OS preference when none is stored.
func (c *Controller) Theme() Theme {
	if raw, ok := c.store.GetItem(storage.KeyTheme); ok {
		if t, ok := ParseTheme(raw); ok {
			return t
		}
	}
	if c.systemDark {
		return ThemeDark
	}
	return ThemeLight
}

// DarkMode reports whether the body currently carries the dark mode class.
func (c *Controller) DarkMode() bool {
	body := c.doc.Body()
	return body != nil && body.HasClass(DarkModeClass)
}

// SetTheme stores t and applies it.
func (c *Controller) SetTheme(t Theme) {
	if err := c.store.SetItem(storage.KeyTheme, string(t)); err != nil {
		c.logger.Error("failed to save theme", "error", err)
	}
	c.applyTheme()
}

// SystemThemeChanged records a new OS preference. The page follows it only when the stored theme is system.
func (c *Controller) SystemThemeChanged(dark bool) {
	c.systemDark = dark
	if raw, _ := c.store.GetItem(storage.KeyTheme); Theme(raw) == ThemeSystem {
		c.applyTheme()
	}
}

func (c *Controller) applyTheme() {
	if body := c.doc.Body(); body != nil {
		body.SetClass(DarkModeClass, c.Theme().Dark(c.systemDark))
	}
}

func (c *Controller) toggleThemeMenu(*dom.Event) {
	if menu := c.doc.Query(".dynamicToggleMenu"); menu != nil {
		menu.ToggleClass("hidden")
		menu.ToggleClass("show")
	}
}

func (c *Controller) chooseTheme(ev *dom.Event) {
	t, ok := ParseTheme(ev.CurrentTarget.Data("theme"))
	if !ok {
		c.logger.Warn("unknown theme", "theme", ev.CurrentTarget.Data("theme"))
		return
	}
	c.SetTheme(t)

	if menu := c.doc.Query(".dynamicToggleMenu"); menu != nil {
		menu.AddClass("hidden")
		menu.RemoveClass("show")
	}
}
