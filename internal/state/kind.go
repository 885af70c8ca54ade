package state

import (
	"fmt"
	"strings"
)

// Kind identifies one of the frame's apps.
type Kind int

const (
	Gallery Kind = iota
	Apod
	Xkcd
	Clock
)

// Kinds lists every app in declaration order.
var Kinds = []Kind{Gallery, Apod, Xkcd, Clock}

var kindNames = [...]string{
	Gallery: "gallery",
	Apod:    "apod",
	Xkcd:    "xkcd",
	Clock:   "clock",
}

// Older firmware stored module names instead of app names.
var legacyKindNames = map[string]Kind{
	"image_gallery": Gallery,
	"nasa_apod":     Apod,
	"xkcd_daily":    Xkcd,
	"rtc_clock":     Clock,
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is one of the declared apps.
func (k Kind) Valid() bool {
	return k >= Gallery && k <= Clock
}

// ParseKind resolves an app name, accepting legacy module names.
func ParseKind(name string) (Kind, error) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	for i, n := range kindNames {
		if n == trimmed {
			return Kind(i), nil
		}
	}
	if k, ok := legacyKindNames[trimmed]; ok {
		return k, nil
	}
	return Gallery, fmt.Errorf("unknown app %q", name)
}
