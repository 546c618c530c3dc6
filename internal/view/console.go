package view

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Terminal control sequences for the alternate screen buffer, used as "fullscreen".
const (
	enterAltScreen = "\x1b[?1049h"
	clearScreen    = "\x1b[2J\x1b[H"
)

// Console renders the kiosk pages as text. It implements service.KioskView and
// domain.Display. All writes are serialised.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	controls map[string]map[string]bool

	page          string
	active        map[string]bool
	navigating    bool
	transitioning bool
	fullscreen    bool

	changes chan struct{}
}

// NewConsole creates a console view. controls maps a page path to the directions
// it offers; pages without an entry offer both left and right.
func NewConsole(out io.Writer, controls map[string][]string) *Console {
	c := &Console{
		out:      out,
		controls: make(map[string]map[string]bool, len(controls)),
		active:   make(map[string]bool),
		changes:  make(chan struct{}, 1),
	}
	for page, directions := range controls {
		set := make(map[string]bool, len(directions))
		for _, d := range directions {
			set[d] = true
		}
		c.controls[page] = set
	}
	return c
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// ShowPage implements service.KioskView
func (c *Console) ShowPage(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = path
	c.active = make(map[string]bool)
	c.navigating = false
	c.transitioning = false
	if c.fullscreen {
		c.printf(clearScreen)
	}
	c.printf("== %s ==\n", path)
	if directions := c.directionsLocked(); len(directions) > 0 {
		c.printf("controls: %s\n", strings.Join(directions, ", "))
	}
}

func (c *Console) directionsLocked() []string {
	set, ok := c.controls[c.page]
	if !ok {
		return []string{"left", "right"}
	}
	directions := make([]string, 0, len(set))
	for d := range set {
		directions = append(directions, d)
	}
	sort.Strings(directions)
	return directions
}

// ShowSetSelection implements domain.QuizView
func (c *Console) ShowSetSelection(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if visible {
		c.printf("Select a question set (enter its number)\n")
	}
}

// ClearQuestion implements domain.QuizView
func (c *Console) ClearQuestion() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("\n")
}

// ShowQuestion implements domain.QuizView
func (c *Console) ShowQuestion(prompt, left, right string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s\n  [l] %s    [r] %s\n", prompt, left, right)
}

// HasControl implements domain.ControlSurface
func (c *Console) HasControl(direction string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.controls[c.page]
	if !ok {
		return direction == "left" || direction == "right"
	}
	return set[direction]
}

// SetActive implements domain.ControlSurface
func (c *Console) SetActive(direction string, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active[direction] == active {
		return
	}
	c.active[direction] = active
	if active {
		c.printf("> %s\n", direction)
	}
}

// SetNavigating implements domain.ControlSurface
func (c *Console) SetNavigating(navigating bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.navigating = navigating
}

// SetTransitioning implements domain.ControlSurface
func (c *Console) SetTransitioning(transitioning bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if transitioning && !c.transitioning {
		c.printf("...\n")
	}
	c.transitioning = transitioning
}

// State returns the page and its visual states
func (c *Console) State() (page string, active []string, navigating, transitioning bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for d, on := range c.active {
		if on {
			active = append(active, d)
		}
	}
	sort.Strings(active)
	return c.page, active, c.navigating, c.transitioning
}

// RequestFullscreen implements domain.Display by switching to the alternate screen
func (c *Console) RequestFullscreen(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fullscreen {
		return nil
	}
	c.fullscreen = true
	c.printf(enterAltScreen + clearScreen)
	c.notifyLocked()
	return nil
}

// ExitFullscreen leaves the alternate screen, e.g. when the terminal was reset
func (c *Console) ExitFullscreen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fullscreen {
		return
	}
	c.fullscreen = false
	c.printf("\x1b[?1049l")
	c.notifyLocked()
}

// IsFullscreen implements domain.Display
func (c *Console) IsFullscreen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fullscreen
}

// Changes implements domain.Display
func (c *Console) Changes() <-chan struct{} {
	return c.changes
}

func (c *Console) notifyLocked() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
