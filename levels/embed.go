package levels

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed templates/*.json
var TemplatesFS embed.FS

// TemplateNames lists the bundled starter levels without the .json suffix.
func TemplateNames() []string {
	entries, err := fs.ReadDir(TemplatesFS, "templates")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(names)
	return names
}

func LoadTemplate(name string) (*Level, error) {
	data, err := fs.ReadFile(TemplatesFS, path.Join("templates", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal template: %w", err)
	}
	return &lvl, nil
}
