package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to get home dir: %v", err)
	}

	t.Setenv("DIGEST_TEST_DIR", "/srv/digest")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty path",
			input: "",
			want:  "",
		},
		{
			name:  "tilde only",
			input: "~",
			want:  homeDir,
		},
		{
			name:  "tilde with path",
			input: "~/flavors",
			want:  filepath.Join(homeDir, "flavors"),
		},
		{
			name:  "tilde with nested path",
			input: "~/.digest/flavors",
			want:  filepath.Join(homeDir, ".digest", "flavors"),
		},
		{
			name:  "absolute path unchanged",
			input: "/absolute/path",
			want:  "/absolute/path",
		},
		{
			name:  "relative path cleaned",
			input: "relative/./path",
			want:  "relative/path",
		},
		{
			name:  "env var",
			input: "$DIGEST_TEST_DIR/flavors",
			want:  "/srv/digest/flavors",
		},
		{
			name:  "braced env var",
			input: "${DIGEST_TEST_DIR}/flavors",
			want:  "/srv/digest/flavors",
		},
		{
			name:  "home env var",
			input: "$HOME/flavors",
			want:  filepath.Join(homeDir, "flavors"),
		},
		{
			name:  "dot-dot collapsed",
			input: "/a/b/../c",
			want:  "/a/c",
		},
		{
			name:  "duplicate slashes cleaned",
			input: "/path//to///file",
			want:  "/path/to/file",
		},
		{
			name:  "trailing slash cleaned",
			input: "/path/to/dir/",
			want:  "/path/to/dir",
		},
		{
			name:  "undefined env var expands empty",
			input: "$DIGEST_UNDEFINED_VAR/path",
			want:  "/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			if err != nil {
				t.Fatalf("ExpandPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExpandPath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandPathTildeNotAtStart(t *testing.T) {
	// A tilde inside the path is a literal file name character.
	result, err := ExpandPath("/path/to/~")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, "~") {
		t.Errorf("expected tilde to remain in path when not at start, got: %s", result)
	}
}
