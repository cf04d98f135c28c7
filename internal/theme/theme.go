// Package theme holds the process-wide light/dark preference.
package theme

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

var ErrUnknownTheme = errors.New("unknown theme")

func Parse(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case Light, Dark:
		return t, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownTheme, s)
	}
}

func (t Theme) String() string {
	return string(t)
}

// Preference is safe for concurrent use.
type Preference struct {
	mu      sync.RWMutex
	current Theme
}

// NewPreference starts at initial, or at Dark if initial is not a theme.
func NewPreference(initial Theme) *Preference {
	if initial != Light && initial != Dark {
		initial = Dark
	}
	return &Preference{current: initial}
}

func (p *Preference) Current() Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *Preference) Set(t Theme) error {
	if t != Light && t != Dark {
		return fmt.Errorf("%w %q", ErrUnknownTheme, string(t))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = t
	return nil
}

// Toggle flips the preference and returns the new value.
func (p *Preference) Toggle() Theme {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == Dark {
		p.current = Light
	} else {
		p.current = Dark
	}
	return p.current
}
