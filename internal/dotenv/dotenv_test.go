package dotenv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `
# comment
VOXHIRE_TEST_A=plain
VOXHIRE_TEST_B="quoted value"
VOXHIRE_TEST_C='single'
export VOXHIRE_TEST_D=exported
VOXHIRE_TEST_E=
not-a-pair
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"VOXHIRE_TEST_A", "VOXHIRE_TEST_B", "VOXHIRE_TEST_C", "VOXHIRE_TEST_D", "VOXHIRE_TEST_E"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("VOXHIRE_TEST_EXISTING", "keep-me")

	if err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	cases := map[string]string{
		"VOXHIRE_TEST_A": "plain",
		"VOXHIRE_TEST_B": "quoted value",
		"VOXHIRE_TEST_C": "single",
		"VOXHIRE_TEST_D": "exported",
		"VOXHIRE_TEST_E": "",
	}
	for key, want := range cases {
		if got := os.Getenv(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if os.Getenv("VOXHIRE_TEST_EXISTING") != "keep-me" {
		t.Error("existing env var was overwritten")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if err := LoadFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing file should not error: %v", err)
	}
}
