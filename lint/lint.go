// Package lint reports level problems that do not stop the runtime from
// loading a level but usually point at an authoring mistake. Findings never
// change the result of (*levels.Level).Validate.
package lint

import (
	"fmt"
	"log/slog"

	"github.com/ephdisc/grimpossiblemission/levels"
)

const (
	RuleDanglingFloorRef    = "dangling-floor-ref"
	RuleUnknownTile         = "unknown-tile"
	RuleThemeColor          = "theme-color"
	RuleConnectionAdjacency = "connection-adjacency"
	RuleConnectionEmptyCell = "connection-empty-cell"
	RuleUnreachableRoom     = "unreachable-room"
	RuleExitNone            = "exit-none"
)

type Finding struct {
	Rule    string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Rule, f.Message)
}

type Options struct {
	// Scripts are paths to tengo rule files run after the built-in rules.
	Scripts []string
	// Disable lists built-in rule names to skip.
	Disable []string
	Logger  *slog.Logger
}

type rule struct {
	name  string
	check func(lvl *levels.Level) []string
}

var builtin = []rule{
	{RuleDanglingFloorRef, danglingFloorRefs},
	{RuleUnknownTile, unknownTiles},
	{RuleThemeColor, themeColors},
	{RuleConnectionAdjacency, connectionAdjacency},
	{RuleConnectionEmptyCell, connectionEmptyCells},
	{RuleUnreachableRoom, unreachableRooms},
	{RuleExitNone, roomsWithoutExits},
}

// Rules returns the names of the built-in rules in the order they run.
func Rules() []string {
	names := make([]string, len(builtin))
	for i, r := range builtin {
		names[i] = r.name
	}
	return names
}

// Run applies the built-in rules and then every script. A script that fails
// to compile or run aborts the run with an error.
func Run(lvl *levels.Level, opts Options) ([]Finding, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	disabled := make(map[string]bool, len(opts.Disable))
	for _, name := range opts.Disable {
		disabled[name] = true
	}

	var findings []Finding
	for _, r := range builtin {
		if disabled[r.name] {
			continue
		}
		for _, msg := range r.check(lvl) {
			findings = append(findings, Finding{Rule: r.name, Message: msg})
		}
	}

	for _, path := range opts.Scripts {
		msgs, err := runScript(path, lvl)
		if err != nil {
			return findings, err
		}
		logger.Debug("lint script finished", slog.String("script", path), slog.Int("warnings", len(msgs)))
		for _, msg := range msgs {
			findings = append(findings, Finding{Rule: scriptRuleName(path), Message: msg})
		}
	}
	return findings, nil
}
