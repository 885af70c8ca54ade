package apps

// Command tells an app what the wake that triggered the cycle asked for.
type Command int

const (
	// Hold keeps the current item. Used on the cycle that switches apps.
	Hold Command = iota
	// Forward steps to the next item.
	Forward
	// Backward steps to the previous item.
	Backward
	// Resync forces the clock to sync with the network.
	Resync
	// Tick is a timer wake with no button. The gallery treats it as
	// Forward; the other apps treat it as Hold.
	Tick
)

var commandNames = [...]string{
	Hold:     "hold",
	Forward:  "forward",
	Backward: "backward",
	Resync:   "resync",
	Tick:     "tick",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}

// Advances reports whether c moves the cursor.
func (c Command) Advances() bool { return c == Forward || c == Backward }

// Step moves cursor c through a list of n items. Forward and Backward wrap
// and are inverses of each other; every other command leaves c in range.
func Step(c, n int, cmd Command) int {
	if n <= 0 {
		return 0
	}
	c %= n
	if c < 0 {
		c += n
	}
	switch cmd {
	case Forward:
		return (c + 1) % n
	case Backward:
		return (c - 1 + n) % n
	default:
		return c
	}
}
