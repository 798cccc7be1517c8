package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/kds-visual/internal/layout"
)

// detectTreeDocuments looks for JSON tree documents in the usual places and
// returns a glob for the first directory that has some.
func detectTreeDocuments() (pattern string, count int) {
	for _, candidate := range []string{"data/*.json", "trees/*.json", "**/phylogenetic*.json"} {
		matches, _ := doublestar.FilepathGlob(candidate)
		if len(matches) > 0 {
			return candidate, len(matches)
		}
	}
	return "data/*.json", 0
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to kdsvisual! Let's configure your tree viewer.")
	fmt.Println()

	cfg := DefaultConfig()

	// Detect tree documents.
	pattern, found := detectTreeDocuments()
	if found > 0 {
		fmt.Printf("Found %d tree document(s) matching %s\n\n", found, pattern)
	}

	// 1. Tree documents.
	treePrompt := promptui.Prompt{
		Label:   "Tree documents (glob)",
		Default: pattern,
		Validate: func(s string) error {
			if !doublestar.ValidatePattern(s) {
				return fmt.Errorf("invalid glob %q", s)
			}
			return nil
		},
	}
	treePath, err := treePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("tree path: %w", err)
	}
	cfg.Data.TreePath = treePath

	// 2. Depth mode.
	modePrompt := promptui.Select{
		Label: "Select depth placement",
		Items: []string{
			"depth         - equal spacing per level",
			"cluster       - leaves aligned at the far edge",
			"branch_length - proportional to branch lengths",
		},
	}
	modeIdx, _, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("depth mode selection: %w", err)
	}
	modes := []layout.DepthMode{layout.DepthTopological, layout.DepthCluster, layout.DepthBranchLength}
	cfg.Layout.DepthMode = modes[modeIdx]

	// 3. Zoom range.
	zoomPrompt := promptui.Select{
		Label: "Select zoom range",
		Items: []string{"free", "simplified"},
	}
	_, zoom, err := zoomPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("zoom selection: %w", err)
	}
	cfg.View.Zoom = zoomPresets[zoom]

	// 4. Species database.
	dbPrompt := promptui.Prompt{
		Label:   "Species database path",
		Default: cfg.Data.DBPath,
	}
	if cfg.Data.DBPath, err = dbPrompt.Run(); err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}

	// 5. Server port.
	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			_, err := parsePort(s)
			return err
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	cfg.Server.Port, _ = parsePort(portStr)

	// 6. CORS origins.
	corsPrompt := promptui.Prompt{
		Label:   "Allowed CORS origins (comma-separated)",
		Default: strings.Join(cfg.Server.CORSOrigins, ","),
	}
	corsStr, err := corsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("cors origins: %w", err)
	}
	cfg.Server.CORSOrigins = splitAndTrim(corsStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	if found == 0 {
		fmt.Println("Note: no tree documents found yet. Place a JSON tree under", cfg.Data.TreePath)
	}
	return cfg, nil
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p <= 0 || p > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return p, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
