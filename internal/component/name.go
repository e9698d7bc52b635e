package component

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Name is the display label of an entity. Used by scene lookup and tree dumps.
type Name struct {
	Value string
}

// NewName trims and NFC-normalises s so names typed in scene files and Lua
// scripts compare equal regardless of how the source encoded accents.
func NewName(s string) Name {
	return Name{Value: norm.NFC.String(strings.TrimSpace(s))}
}
