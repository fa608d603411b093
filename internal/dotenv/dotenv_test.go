package dotenv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		key     string
		val     string
		skipped bool
	}{
		{in: "CALLS_API_KEY=secret", key: "CALLS_API_KEY", val: "secret"},
		{in: "  SPACED = padded value ", key: "SPACED", val: "padded value"},
		{in: `DQ="hello world"`, key: "DQ", val: "hello world"},
		{in: "SQ='single'", key: "SQ", val: "single"},
		{in: "export SHELLISH=ok", key: "SHELLISH", val: "ok"},
		{in: "EMPTY=", key: "EMPTY", val: ""},
		{in: "", skipped: true},
		{in: "# a comment", skipped: true},
		{in: "no_equals_sign", skipped: true},
		{in: "=value_without_key", skipped: true},
	}
	for _, tc := range cases {
		key, val, ok := parseLine(tc.in)
		if ok == tc.skipped {
			t.Fatalf("parseLine(%q) ok=%v", tc.in, ok)
		}
		if key != tc.key || val != tc.val {
			t.Fatalf("parseLine(%q) = (%q, %q), want (%q, %q)", tc.in, key, val, tc.key, tc.val)
		}
	}
}

func TestLoadFile_MissingFileIsNoop(t *testing.T) {
	t.Parallel()
	if err := LoadFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("LoadFile missing file error: %v", err)
	}
}

func TestLoadFile_EnvironmentWinsOverFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	content := "DOTENV_TEST_FRESH=:9999\nDOTENV_TEST_TAKEN=from_file\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("DOTENV_TEST_FRESH", "placeholder")
	os.Unsetenv("DOTENV_TEST_FRESH")
	t.Setenv("DOTENV_TEST_TAKEN", "from_env")

	if err := LoadFile(envPath); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if got := os.Getenv("DOTENV_TEST_FRESH"); got != ":9999" {
		t.Fatalf("DOTENV_TEST_FRESH=%q, want %q", got, ":9999")
	}
	if got := os.Getenv("DOTENV_TEST_TAKEN"); got != "from_env" {
		t.Fatalf("DOTENV_TEST_TAKEN=%q, want existing value preserved", got)
	}
}
