package schedule

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScheduleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndCommand(t *testing.T) {
	path := writeScheduleFile(t, `
auto: true
pause: false
days:
  Mon:
    trimming: true
    slice:
      - start: 480
        end: 720
  Sat:
    slice:
      - start: "540"
        end: "600"
`)

	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !file.Auto || file.Pause {
		t.Errorf("header = %+v", file)
	}
	if len(file.Days) != 2 {
		t.Fatalf("got %d days, want 2", len(file.Days))
	}

	cmd, err := file.Command()
	if err != nil {
		t.Fatalf("Command() error = %v", err)
	}
	if cmd["cmd"] != 103 {
		t.Errorf("cmd = %v", cmd["cmd"])
	}
	// Days absent from the file are present as empty objects.
	tue, ok := cmd["Tue"].(map[string]any)
	if !ok || len(tue) != 0 {
		t.Errorf("Tue = %v, want empty object", cmd["Tue"])
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() accepted a missing file")
	}
}

func TestCommandRejectsMalformedSlot(t *testing.T) {
	path := writeScheduleFile(t, `
auto: false
days:
  Wed:
    slice:
      - start: "morning"
        end: 720
`)

	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := file.Command(); err == nil {
		t.Fatal("Command() accepted a non-integer start")
	}
}
