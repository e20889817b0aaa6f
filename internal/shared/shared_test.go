package shared

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNormalizeLength(t *testing.T) {
	tc := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "pads minutes and seconds", input: "5:3", want: "00:05:03"},
		{name: "pads leading hour", input: "1:02:03", want: "01:02:03"},
		{name: "already normalized", input: "00:04:20", want: "00:04:20"},
		{name: "typical discogs duration", input: "4:20", want: "00:04:20"},
		{name: "surrounding whitespace", input: " 3:45 ", want: "00:03:45"},
		{name: "empty stays empty", input: "", want: ""},
		{name: "seconds only", input: "45", wantErr: true},
		{name: "too many components", input: "1:2:3:4", wantErr: true},
		{name: "non numeric", input: "a:b", wantErr: true},
		{name: "empty component", input: "3:", wantErr: true},
		{name: "negative", input: "-1:30", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeLength(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeLength(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("NormalizeLength(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseLength(t *testing.T) {
	tc := []struct {
		input string
		want  time.Duration
	}{
		{"01:02:03", time.Hour + 2*time.Minute + 3*time.Second},
		{"4:20", 4*time.Minute + 20*time.Second},
		{"", 0},
		{"45", 0},
		{"x:10", 0},
	}

	for _, tt := range tc {
		if got := ParseLength(tt.input); got != tt.want {
			t.Errorf("ParseLength(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatLength(t *testing.T) {
	tc := []struct {
		input time.Duration
		want  string
	}{
		{0, "00:00:00"},
		{9*time.Minute + 5*time.Second, "00:09:05"},
		{time.Hour + time.Second, "01:00:01"},
		{25 * time.Hour, "25:00:00"},
		{-time.Second, "00:00:00"},
	}

	for _, tt := range tc {
		if got := FormatLength(tt.input); got != tt.want {
			t.Errorf("FormatLength(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLogger(t *testing.T) {
	t.Run("SetLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		if err := SetLogLevel(logger, "warn"); err != nil {
			t.Fatalf("SetLogLevel failed: %v", err)
		}
		if logger.GetLevel() != log.WarnLevel {
			t.Errorf("expected warn level, got %v", logger.GetLevel())
		}

		logger.Info("hidden")
		if strings.Contains(buf.String(), "hidden") {
			t.Error("info message should be filtered at warn level")
		}

		if err := SetLogLevel(logger, "loud"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for unknown level, got %v", err)
		}
		if err := SetLogLevel(logger, ""); err != nil {
			t.Errorf("empty level should be ignored, got %v", err)
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "mixtape.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Info("written to file")
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string length 36, got %d", len(a))
	}
}

func TestBrowserCommand(t *testing.T) {
	original := getRuntime
	defer func() { getRuntime = original }()

	tc := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{"darwin", "open", false},
		{"linux", "xdg-open", false},
		{"windows", "cmd", false},
		{"plan9", "", true},
	}

	for _, tt := range tc {
		getRuntime = func() string { return tt.goos }
		cmd, err := browserCommand(ReleaseWebURL(42))
		if (err != nil) != tt.wantErr {
			t.Fatalf("browserCommand on %s error = %v, wantErr %v", tt.goos, err, tt.wantErr)
		}
		if err == nil && filepath.Base(cmd.Path) != tt.want && cmd.Args[0] != tt.want {
			t.Errorf("browserCommand on %s = %s, want %s", tt.goos, cmd.Args[0], tt.want)
		}
	}

	if got := ReleaseWebURL(42); got != "https://www.discogs.com/release/42" {
		t.Errorf("unexpected release URL %s", got)
	}
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]int{"a": 1}

	compact, err := MarshalJSON(v, false)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(compact) != `{"a":1}` {
		t.Errorf("unexpected compact output %s", compact)
	}

	pretty, err := MarshalJSON(v, true)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(pretty) != "{\n  \"a\": 1\n}\n" {
		t.Errorf("unexpected pretty output %q", pretty)
	}
}
