package formatter

import (
	"encoding/csv"
	"strings"
	"testing"

	"drpanel/internal/models"
)

var sampleFiles = []models.AudioFile{
	{Name: "output-2.wav", Size: 2048, Mtime: 1700000200},
	{Name: "output-1.wav", Size: 1024, Mtime: 1700000100},
}

func TestFilesToCSV(t *testing.T) {
	data, err := FilesToCSV(sampleFiles)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "Name" || records[1][0] != "output-2.wav" {
		t.Errorf("unexpected rows: %v", records)
	}
	if records[1][1] != "2048" {
		t.Errorf("expected size column, got %q", records[1][1])
	}
}

func TestFilesToMarkdown(t *testing.T) {
	latest := map[string]models.HistoryEntry{
		"output-2.wav": {RepoID: "ASLP-lab/DiffRhythm-1_2", AudioLength: 95, Steps: 56, CfgStrength: 3.8},
	}

	out := string(FilesToMarkdown("Album", sampleFiles, latest))
	if !strings.HasPrefix(out, "# Album\n") {
		t.Errorf("expected project heading, got %q", out)
	}
	if !strings.Contains(out, "ASLP-lab/DiffRhythm-1_2") {
		t.Error("expected generation parameters for the annotated file")
	}
	if !strings.Contains(out, "2. output-1.wav") {
		t.Error("expected numbered listing")
	}
}

func TestFilesToText(t *testing.T) {
	out := string(FilesToText("Album", sampleFiles))
	if !strings.Contains(out, "Album (2 files)") {
		t.Errorf("expected summary line, got %q", out)
	}
	if !strings.Contains(out, "output-1.wav") {
		t.Error("expected file names in output")
	}
}

func TestHistoryToCSV(t *testing.T) {
	entries := []models.HistoryEntry{
		{
			Ts:          1700000100,
			File:        "output-1.wav",
			Mode:        models.ModeAdvanced,
			RefMode:     models.RefPrompt,
			Prompt:      "jazz, with \"quotes\", and commas",
			RepoID:      "ASLP-lab/DiffRhythm-1_2",
			AudioLength: 95,
			Steps:       56,
			CfgStrength: 3.8,
		},
	}

	data, err := HistoryToCSV(entries)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(records))
	}
	if records[1][4] != "jazz, with \"quotes\", and commas" {
		t.Errorf("prompt not preserved through CSV quoting: %q", records[1][4])
	}
}

func TestFavoritesToMarkdown(t *testing.T) {
	favorites := []models.Favorite{
		{ID: "f1", Title: "Trailer", Prompt: "Epic orchestral trailer"},
		{Prompt: "untitled prompt"},
	}

	out := string(FavoritesToMarkdown(favorites))
	if !strings.Contains(out, "**Trailer**") {
		t.Error("expected favorite title")
	}
	if !strings.Contains(out, "> Epic orchestral trailer") {
		t.Error("expected prompt block quote")
	}
	if !strings.Contains(out, models.DefaultFavoriteTitle) {
		t.Error("expected placeholder title for untitled favorite")
	}
}

func TestProjectsToText(t *testing.T) {
	projects := []models.Project{
		{Name: "Default", Count: 3},
		{Name: "Album", Count: 1},
	}

	out := string(ProjectsToText(projects, "Album"))
	if !strings.Contains(out, "* Album (1 files)") {
		t.Errorf("expected active marker on Album, got %q", out)
	}
	if !strings.Contains(out, "  Default (3 files)") {
		t.Errorf("expected inactive Default, got %q", out)
	}
}

func TestRenderFiles(t *testing.T) {
	cases := []struct {
		format string
		want   string
	}{
		{FormatCSV, "Name,Size,Modified"},
		{FormatMarkdown, "# Album"},
		{FormatText, "Album (2 files)"},
		{FormatJSON, "\"output-2.wav\""},
		{"", "\"output-2.wav\""},
	}

	for _, tc := range cases {
		out, err := RenderFiles(tc.format, "Album", sampleFiles, nil)
		if err != nil {
			t.Fatalf("format %q: expected no error, got %v", tc.format, err)
		}
		if !strings.Contains(string(out), tc.want) {
			t.Errorf("format %q: expected %q in output, got %q", tc.format, tc.want, out)
		}
	}
}
