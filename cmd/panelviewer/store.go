package main

import (
	"path/filepath"
)

// boolPrefs is the part of fyne.Preferences the visibility store needs.
type boolPrefs interface {
	BoolWithFallback(key string, fallback bool) bool
	SetBool(key string, value bool)
}

// prefsStore persists hidden series in the application preferences, so a
// hidden series stays hidden across restarts.
type prefsStore struct {
	prefs boolPrefs
}

func prefKey(widgetID, series string) string {
	return "hidden." + widgetID + "." + series
}

func (s prefsStore) Hidden(widgetID, series string) bool {
	return s.prefs.BoolWithFallback(prefKey(widgetID, series), false)
}

func (s prefsStore) SetHidden(widgetID, series string, hidden bool) {
	s.prefs.SetBool(prefKey(widgetID, series), hidden)
}

// truncatePath shortens p to about n characters, keeping the file name.
func truncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	base := filepath.Base(p)
	if len(base)+4 >= n {
		return "..." + base
	}
	dir := filepath.Dir(p)
	left := n - len(base) - 4
	if len(dir) > left {
		dir = dir[:left]
	}
	return dir + ".../" + base
}
