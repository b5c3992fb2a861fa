// ABOUTME: Tests for the install-skill command.
// ABOUTME: Validates skill installation, confirmation, and file content.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSkillFSReadEmbeddedContent(t *testing.T) {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill/SKILL.md: %v", err)
	}

	contentStr := string(content)
	if !strings.HasPrefix(contentStr, "---") {
		t.Error("Expected SKILL.md to start with YAML frontmatter (---)")
	}
	for _, marker := range []string{"name: big3", "description:", "big3 session done", "big3 meal add"} {
		if !strings.Contains(contentStr, marker) {
			t.Errorf("Expected SKILL.md to contain %q", marker)
		}
	}
}

func TestInstallSkill(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		skipConfirm bool
		stale       bool
		wantFile    bool
	}{
		{name: "skip confirmation", skipConfirm: true, wantFile: true},
		{name: "confirmed", input: "y\n", wantFile: true},
		{name: "confirmed without newline", input: "yes", wantFile: true},
		{name: "declined", input: "n\n", wantFile: false},
		{name: "no answer", input: "", wantFile: false},
		{name: "overwrites stale file", skipConfirm: true, stale: true, wantFile: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			skillPath := filepath.Join(home, ".claude", "skills", "big3", "SKILL.md")

			if tt.stale {
				if err := os.MkdirAll(filepath.Dir(skillPath), 0755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(skillPath, []byte("stale content"), 0644); err != nil {
					t.Fatal(err)
				}
			}

			var out bytes.Buffer
			if err := installSkill(strings.NewReader(tt.input), &out, home, tt.skipConfirm); err != nil {
				t.Fatalf("installSkill failed: %v", err)
			}

			data, err := os.ReadFile(skillPath)
			if !tt.wantFile {
				if err == nil {
					t.Error("skill installed without confirmation")
				}
				if !strings.Contains(out.String(), "canceled") {
					t.Errorf("output = %q", out.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("skill file not written: %v", err)
			}
			if strings.Contains(string(data), "stale content") || !strings.Contains(string(data), "name: big3") {
				t.Errorf("unexpected skill content: %q", data)
			}
			if tt.stale && !strings.Contains(out.String(), "already exists") {
				t.Error("expected overwrite notice")
			}
		})
	}
}
