package assistant

import (
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"
	"sort"
	"strings"
)

type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// reserved prompts loaded individually, not part of the system prompt
var reservedPrompts = map[string]bool{
	"extractor.md": true,
	"narrator.md":  true,
}

// GetSystemPrompt assembles the assistant's system prompt from the
// prompt directory in a deterministic order.
func (pm *PromptManager) GetSystemPrompt() (string, error) {
	files, err := ioutil.ReadDir(pm.Directory)
	if err != nil {
		return "", fmt.Errorf("failed to read prompts directory: %v", err)
	}

	var contents []string

	// Sort files to ensure deterministic prompt order:
	// identity, capabilities, then anything user-supplied.
	order := map[string]int{
		"identity.md":     1,
		"capabilities.md": 2,
		"market.md":       3,
		"user.md":         4,
	}

	sort.Slice(files, func(i, j int) bool {
		oi, okI := order[files[i].Name()]
		oj, okJ := order[files[j].Name()]
		if okI && okJ {
			return oi < oj
		}
		if okI {
			return true
		}
		if okJ {
			return false
		}
		return files[i].Name() < files[j].Name()
	})

	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".md") && !reservedPrompts[f.Name()] {
			path := filepath.Join(pm.Directory, f.Name())
			data, err := ioutil.ReadFile(path)
			if err != nil {
				log.Printf("Warning: Failed to read prompt file %s: %v", path, err)
				continue
			}
			contents = append(contents, string(data))
		}
	}

	if len(contents) == 0 {
		return "", fmt.Errorf("no prompt files found in %s", pm.Directory)
	}

	return strings.Join(contents, "\n\n---\n\n"), nil
}

func (pm *PromptManager) GetExtractorPrompt() (string, error) {
	path := filepath.Join(pm.Directory, "extractor.md")
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read extractor prompt: %v", err)
	}
	return string(data), nil
}

func (pm *PromptManager) GetNarratorPrompt() (string, error) {
	path := filepath.Join(pm.Directory, "narrator.md")
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read narrator prompt: %v", err)
	}
	return string(data), nil
}
