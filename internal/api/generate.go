package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"drpanel/internal/models"
)

// GenerateRequest carries everything the multipart /api/generate endpoint
// accepts. Zero-valued optional fields are omitted from the form.
type GenerateRequest struct {
	Project string
	Mode    models.UIMode
	RefMode models.RefMode

	// RefPrompt conditions the generation when RefMode is prompt.
	RefPrompt string
	// RefAudioExisting names a file already in the project to condition on.
	RefAudioExisting string
	// RefAudioPath is a local audio file to upload as the reference.
	RefAudioPath string
	// LrcPath is a local lyrics file to upload. Advanced mode only.
	LrcPath string

	RepoID             string
	AudioLength        int
	Steps              int
	CfgStrength        float64
	BatchInferNum      int
	UseChunked         bool
	CudaVisibleDevices string
}

// Generate submits a generation request as a multipart form and returns the
// server's result. A result with OK=false and populated logs is not an
// error; errors are reserved for transport and HTTP-level failures.
func (c *Client) Generate(ctx context.Context, genReq GenerateRequest) (*models.GenerateResult, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := map[string]string{
		"mode":            string(genReq.Mode),
		"project":         genReq.Project,
		"ref_mode":        string(genReq.RefMode),
		"repo_id":         genReq.RepoID,
		"audio_length":    strconv.Itoa(genReq.AudioLength),
		"steps":           strconv.Itoa(genReq.Steps),
		"cfg_strength":    strconv.FormatFloat(genReq.CfgStrength, 'f', -1, 64),
		"batch_infer_num": strconv.Itoa(genReq.BatchInferNum),
	}
	if genReq.RefPrompt != "" {
		fields["ref_prompt"] = genReq.RefPrompt
	}
	if genReq.RefAudioExisting != "" {
		fields["ref_audio_existing"] = genReq.RefAudioExisting
	}
	if genReq.UseChunked {
		// HTML checkbox semantics: present means checked.
		fields["use_chunked"] = "on"
	}
	if genReq.CudaVisibleDevices != "" {
		fields["cuda_visible_devices"] = genReq.CudaVisibleDevices
	}

	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}

	if genReq.RefAudioPath != "" {
		if err := attachFile(form, "ref_audio", genReq.RefAudioPath); err != nil {
			return nil, err
		}
	}
	if genReq.LrcPath != "" && genReq.Mode == models.ModeAdvanced {
		if err := attachFile(form, "lrc_file", genReq.LrcPath); err != nil {
			return nil, err
		}
	}

	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/generate", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	return c.doGenerate(req)
}

// attachFile streams a local file into a multipart form part.
func attachFile(form *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	part, err := form.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create form file %s: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to copy %s into form: %w", path, err)
	}
	return nil
}

// JSONGenerateRequest is the body of POST /api/generate/json, the scripted
// alternative to the multipart endpoint. Attachments travel as base64 or
// URLs instead of uploads.
type JSONGenerateRequest struct {
	Project string         `json:"project,omitempty"`
	Mode    models.UIMode  `json:"mode,omitempty"`
	RefMode models.RefMode `json:"ref_mode,omitempty"`

	RefPrompt        string `json:"ref_prompt,omitempty"`
	RefAudioExisting string `json:"ref_audio_existing,omitempty"`
	RefAudioB64      string `json:"ref_audio_b64,omitempty"`
	RefAudioURL      string `json:"ref_audio_url,omitempty"`
	RefAudioFilename string `json:"ref_audio_filename,omitempty"`
	LrcB64           string `json:"lrc_b64,omitempty"`
	LrcURL           string `json:"lrc_url,omitempty"`
	LrcFilename      string `json:"lrc_filename,omitempty"`

	RepoID             string  `json:"repo_id,omitempty"`
	AudioLength        int     `json:"audio_length,omitempty"`
	Steps              int     `json:"steps,omitempty"`
	CfgStrength        float64 `json:"cfg_strength,omitempty"`
	BatchInferNum      int     `json:"batch_infer_num,omitempty"`
	UseChunked         bool    `json:"use_chunked,omitempty"`
	CudaVisibleDevices string  `json:"cuda_visible_devices,omitempty"`
}

// GenerateJSON submits a generation request over the JSON endpoint.
func (c *Client) GenerateJSON(ctx context.Context, genReq JSONGenerateRequest) (*models.GenerateResult, error) {
	data, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/generate/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doGenerate(req)
}

// doGenerate runs a generation request on the long-lived client and decodes
// the result envelope.
func (c *Client) doGenerate(req *http.Request) (*models.GenerateResult, error) {
	resp, err := c.longClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, body)
	}

	var result models.GenerateResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
