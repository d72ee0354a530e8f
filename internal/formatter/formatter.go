// package formatter renders panel collections to various output formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"drpanel/internal/models"
	"drpanel/internal/shared"
)

// Supported output format names, as accepted by the CLI --format flag.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// FilesToCSV converts a file listing to CSV with columns: Name, Size, Modified
func FilesToCSV(files []models.AudioFile) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Name", "Size", "Modified"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, file := range files {
		record := []string{
			file.Name,
			strconv.FormatInt(file.Size, 10),
			time.Unix(file.Mtime, 0).UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// FilesToMarkdown converts a file listing to Markdown. When latest holds a
// history entry for a file, its generation parameters are shown inline.
func FilesToMarkdown(project string, files []models.AudioFile, latest map[string]models.HistoryEntry) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", project))
	buf.WriteString(fmt.Sprintf("**Files**: %d\n\n", len(files)))

	for i, file := range files {
		line := fmt.Sprintf("%d. %s [%s]", i+1, file.Name, shared.FormatSize(file.Size))
		if entry, ok := latest[file.Name]; ok {
			line += fmt.Sprintf(" (%s, %ds, steps %d, cfg %.1f)",
				entry.RepoID, entry.AudioLength, entry.Steps, entry.CfgStrength)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes()
}

// FilesToText converts a file listing to plain text, one file per line.
func FilesToText(project string, files []models.AudioFile) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s (%d files)\n", project, len(files)))
	for _, file := range files {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\n",
			file.Name,
			shared.FormatSize(file.Size),
			time.Unix(file.Mtime, 0).UTC().Format("2006-01-02 15:04"),
		))
	}

	return buf.Bytes()
}

// HistoryToCSV converts generation history to CSV, one row per entry.
func HistoryToCSV(entries []models.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Timestamp", "File", "Mode", "RefMode", "Prompt", "RepoID", "Length", "Steps", "CfgStrength", "Chunked", "Batch"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range entries {
		record := []string{
			time.Unix(entry.Ts, 0).UTC().Format(time.RFC3339),
			entry.File,
			string(entry.Mode),
			string(entry.RefMode),
			entry.Prompt,
			entry.RepoID,
			strconv.Itoa(entry.AudioLength),
			strconv.Itoa(entry.Steps),
			strconv.FormatFloat(entry.CfgStrength, 'f', -1, 64),
			strconv.FormatBool(entry.Chunked),
			strconv.Itoa(entry.BatchInferNum),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// FavoritesToCSV converts favorites to CSV with columns: ID, Title, Prompt
func FavoritesToCSV(favorites []models.Favorite) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Title", "Prompt"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, fav := range favorites {
		if err := writer.Write([]string{fav.ID, fav.Title, fav.Prompt}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// FavoritesToMarkdown converts favorites to a Markdown list with prompts as
// block quotes.
func FavoritesToMarkdown(favorites []models.Favorite) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Favorites\n\n")
	for i, fav := range favorites {
		title := fav.Title
		if title == "" {
			title = models.DefaultFavoriteTitle
		}
		buf.WriteString(fmt.Sprintf("%d. **%s**\n", i+1, title))
		buf.WriteString(fmt.Sprintf("   > %s\n", fav.Prompt))
	}

	return buf.Bytes()
}

// ProjectsToText converts the project list to plain text, marking the active
// project with an asterisk.
func ProjectsToText(projects []models.Project, active string) []byte {
	var buf bytes.Buffer

	for _, project := range projects {
		marker := " "
		if project.Name == active {
			marker = "*"
		}
		buf.WriteString(fmt.Sprintf("%s %s (%d files)\n", marker, project.Name, project.Count))
	}

	return buf.Bytes()
}

// MarshalJSON renders v as JSON, indented when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// WriteManifest writes v as pretty JSON to path.
func WriteManifest(v any, path string) error {
	data, err := MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// RenderFiles renders a file listing in the named format, defaulting to JSON.
func RenderFiles(format, project string, files []models.AudioFile, latest map[string]models.HistoryEntry) ([]byte, error) {
	switch format {
	case FormatCSV:
		return FilesToCSV(files)
	case FormatMarkdown:
		return FilesToMarkdown(project, files, latest), nil
	case FormatText:
		return FilesToText(project, files), nil
	default:
		return MarshalJSON(files, true)
	}
}

// RenderFavorites renders favorites in the named format, defaulting to JSON.
func RenderFavorites(format string, favorites []models.Favorite) ([]byte, error) {
	switch format {
	case FormatCSV:
		return FavoritesToCSV(favorites)
	case FormatMarkdown:
		return FavoritesToMarkdown(favorites), nil
	default:
		return MarshalJSON(favorites, true)
	}
}
