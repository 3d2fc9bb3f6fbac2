// Package featureflags evaluates rollout switches read from configuration.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Flags known to the application.
const (
	// CaptionSuggestions exposes canned caption ideas on the create screen.
	CaptionSuggestions = "caption_suggestions"
	// RealtimeEvents streams post events over the WebSocket.
	RealtimeEvents = "realtime_events"
)

// flag is a parsed flag value: fully on, fully off, or a percentage rollout.
type flag struct {
	raw     string
	percent int
}

func parseFlag(value string) (flag, bool) {
	switch value {
	case "on", "true", "1":
		return flag{raw: value, percent: 100}, true
	case "off", "false", "0":
		return flag{raw: value, percent: 0}, true
	}
	if pctRaw, ok := strings.CutSuffix(value, "%"); ok {
		pct, err := strconv.Atoi(pctRaw)
		if err != nil {
			return flag{}, false
		}
		return flag{raw: value, percent: max(0, min(pct, 100))}, true
	}
	return flag{}, false
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "caption_suggestions=on,realtime_events=25%"
type Manager struct {
	flags map[string]flag
}

// NewManager creates a feature-flag manager from a comma-separated config string.
// Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	out := make(map[string]flag)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		if f, ok := parseFlag(value); ok {
			out[key] = f
		}
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given user. Percentage
// rollouts bucket users deterministically and never include anonymous
// callers (userID 0).
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	f, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}
	switch {
	case f.percent >= 100:
		return true
	case f.percent <= 0, userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < f.percent
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, f := range m.flags {
		out[k] = f.raw
	}
	return out
}

// Names returns the configured flag names in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.flags))
	for k := range m.flags {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
