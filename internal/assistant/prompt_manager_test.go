package assistant

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPromptManager_GetSystemPrompt(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "prompts_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	files := map[string]string{
		"identity.md":     "Identity Content",
		"capabilities.md": "Capabilities Content",
		"market.md":       "Market Content",
		"user.md":         "User Content",
		"extra.md":        "Extra Content",
		"extractor.md":    "Extractor Content",
		"narrator.md":     "Narrator Content",
	}

	for name, content := range files {
		err := ioutil.WriteFile(filepath.Join(tempDir, name), []byte(content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}

	pm := NewPromptManager(tempDir)
	prompt, err := pm.GetSystemPrompt()
	if err != nil {
		t.Fatal(err)
	}

	expectedParts := []string{
		"Identity Content",
		"Capabilities Content",
		"Market Content",
		"User Content",
		"Extra Content",
	}

	for _, part := range expectedParts {
		if !strings.Contains(prompt, part) {
			t.Errorf("Prompt missing expected part: %s", part)
		}
	}

	// Reserved prompts are loaded individually, never into the system prompt.
	if strings.Contains(prompt, "Extractor Content") || strings.Contains(prompt, "Narrator Content") {
		t.Error("Reserved prompts must not leak into the system prompt")
	}

	// Verify order
	if strings.Index(prompt, "Identity Content") >= strings.Index(prompt, "Capabilities Content") {
		t.Error("Identity should be before Capabilities")
	}
	if strings.Index(prompt, "Capabilities Content") >= strings.Index(prompt, "Market Content") {
		t.Error("Capabilities should be before Market")
	}
	if strings.Index(prompt, "Market Content") >= strings.Index(prompt, "User Content") {
		t.Error("Market should be before User")
	}
}

func TestPromptManager_ReservedPrompts(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "prompts_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	err = ioutil.WriteFile(filepath.Join(tempDir, "extractor.md"), []byte("Extractor Content"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	err = ioutil.WriteFile(filepath.Join(tempDir, "narrator.md"), []byte("Narrator Content"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	pm := NewPromptManager(tempDir)

	extractor, err := pm.GetExtractorPrompt()
	if err != nil {
		t.Fatal(err)
	}
	if extractor != "Extractor Content" {
		t.Errorf("Unexpected extractor prompt: %s", extractor)
	}

	narrator, err := pm.GetNarratorPrompt()
	if err != nil {
		t.Fatal(err)
	}
	if narrator != "Narrator Content" {
		t.Errorf("Unexpected narrator prompt: %s", narrator)
	}
}
