// Package featureflags evaluates runtime feature toggles from config.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// flagState is a parsed flag value: a hard on/off or a rollout percentage.
type flagState struct {
	on      bool
	rollout int // 0-100, only meaningful when percentage is true
	percent bool
	raw     string
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "schedule_filter=on,rescore_candidates=25%,legacy_ranker=off"
type Manager struct {
	flags map[string]flagState
}

// NewManager creates a feature-flag manager from a comma-separated config string.
// Malformed or empty pairs are skipped.
func NewManager(raw string) *Manager {
	flags := make(map[string]flagState)

	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name = normalize(name)
		value = normalize(value)
		if name == "" || value == "" {
			continue
		}
		if state, ok := parseValue(value); ok {
			flags[name] = state
		}
	}

	return &Manager{flags: flags}
}

func parseValue(value string) (flagState, bool) {
	switch value {
	case "on", "true", "1":
		return flagState{on: true, raw: value}, true
	case "off", "false", "0":
		return flagState{raw: value}, true
	}

	if pctRaw, ok := strings.CutSuffix(value, "%"); ok {
		pct, err := strconv.Atoi(pctRaw)
		if err != nil || pct < 0 || pct > 100 {
			return flagState{}, false
		}
		return flagState{rollout: pct, percent: true, raw: value}, true
	}

	return flagState{}, false
}

// Enabled returns whether a flag is enabled for a given user.
// Supported values: on/true/1, off/false/0, and N% for a deterministic
// per-user rollout. Unknown flags are off.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	state, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}
	if !state.percent {
		return state.on
	}

	switch {
	case state.rollout <= 0:
		return false
	case state.rollout >= 100:
		return true
	case userID == 0:
		// anonymous callers never join a partial rollout
		return false
	}
	return rolloutBucket(name, userID) < state.rollout
}

// Raw returns a copy of configured flag values as written in config.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for name, state := range m.flags {
		out[name] = state.raw
	}
	return out
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

// rolloutBucket assigns a user a stable bucket in [0,100) per flag, so a
// rollout percentage bump only ever adds users, never flips existing ones off.
func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name)))
	_, _ = h.Write([]byte(":"))
	_, _ = h.Write([]byte(strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
