package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"drpanel/internal/api"
	"drpanel/internal/models"
	"drpanel/internal/shared"
)

// formField identifies one input slot of the generate form.
type formField int

const (
	fieldPrompt formField = iota
	fieldAudio
	fieldLrc
	fieldRepo
	fieldLength
	fieldPreset
	fieldSteps
	fieldCfg
	fieldBatch
	fieldChunked
	fieldCuda
)

// GenerateForm holds the generation inputs. All values persist across mode
// switches; toggling modes only changes which fields are visible and which
// parameters the built request carries.
type GenerateForm struct {
	uiMode models.UIMode

	// Each UI mode owns its reference mode, so toggling the reference in
	// one form never changes the other.
	simpleRef   models.RefMode
	advancedRef models.RefMode

	prompt textinput.Model
	audio  textinput.Model
	lrc    textinput.Model
	length textinput.Model
	steps  textinput.Model
	cfg    textinput.Model
	batch  textinput.Model
	cuda   textinput.Model

	// refAudioExisting names a project file chosen as the reference from the
	// files view. A typed local path in the audio field takes precedence.
	refAudioExisting string

	repoIndex   int
	presetIndex int
	chunked     bool

	focus int
}

var presetOrder = []string{"fast", "balanced", "high"}

// NewGenerateForm builds a form seeded from the server configuration.
func NewGenerateForm(cfg models.Config) GenerateForm {
	f := GenerateForm{
		uiMode:      models.ModeSimple,
		simpleRef:   models.RefPrompt,
		advancedRef: models.RefPrompt,
		prompt:      newField("Style prompt, e.g. dreamy synthwave with heavy reverb"),
		audio:   newField("Path to a reference audio file"),
		lrc:     newField("Path to a lyrics (.lrc) file"),
		length:  newField("95"),
		steps:   newField("56"),
		cfg:     newField("3.8"),
		batch:   newField("1"),
		cuda:    newField("0"),
	}
	f.SetDefaults(cfg)
	f.prompt.Focus()
	return f
}

func newField(placeholder string) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	return input
}

// SetDefaults fills empty numeric fields from the server configuration
// without clobbering anything the user already typed.
func (f *GenerateForm) SetDefaults(cfg models.Config) {
	setIfEmpty(&f.length, strconv.Itoa(cfg.AudioLength))
	setIfEmpty(&f.steps, strconv.Itoa(cfg.Steps))
	setIfEmpty(&f.cfg, strconv.FormatFloat(cfg.CfgStrength, 'f', 1, 64))
	setIfEmpty(&f.batch, strconv.Itoa(cfg.BatchInferNum))
	setIfEmpty(&f.cuda, cfg.CudaVisibleDevices)
	f.chunked = f.chunked || cfg.UseChunked

	for i, name := range presetOrder {
		preset := models.PresetByName(name)
		if preset.Steps == cfg.Steps && preset.CfgStrength == cfg.CfgStrength {
			f.presetIndex = i
		}
	}
}

func setIfEmpty(input *textinput.Model, value string) {
	if strings.TrimSpace(input.Value()) == "" && value != "" && value != "0" {
		input.SetValue(value)
	}
}

// Mode returns the current simple/advanced mode.
func (f *GenerateForm) Mode() models.UIMode { return f.uiMode }

// RefMode returns the reference mode of the current UI mode.
func (f *GenerateForm) RefMode() models.RefMode {
	if f.uiMode == models.ModeSimple {
		return f.simpleRef
	}
	return f.advancedRef
}

func (f *GenerateForm) setRefMode(mode models.RefMode) {
	if f.uiMode == models.ModeSimple {
		f.simpleRef = mode
	} else {
		f.advancedRef = mode
	}
}

// ToggleMode flips between simple and advanced. Values are kept.
func (f *GenerateForm) ToggleMode() {
	if f.uiMode == models.ModeSimple {
		f.uiMode = models.ModeAdvanced
	} else {
		f.uiMode = models.ModeSimple
	}
	f.clampFocus()
}

// ToggleRefMode flips the current mode's conditioning between prompt and
// audio. Values are kept, and the other mode's reference is untouched.
func (f *GenerateForm) ToggleRefMode() {
	if f.RefMode() == models.RefPrompt {
		f.setRefMode(models.RefAudio)
	} else {
		f.setRefMode(models.RefPrompt)
	}
	f.clampFocus()
}

// visible lists the fields the current mode exposes, in focus order.
func (f *GenerateForm) visible() []formField {
	var fields []formField
	if f.RefMode() == models.RefPrompt {
		fields = append(fields, fieldPrompt)
	} else {
		fields = append(fields, fieldAudio)
	}

	fields = append(fields, fieldLength)

	if f.uiMode == models.ModeSimple {
		return append(fields, fieldPreset)
	}

	return append(fields,
		fieldRepo, fieldSteps, fieldCfg, fieldBatch, fieldChunked, fieldCuda, fieldLrc)
}

func (f *GenerateForm) clampFocus() {
	if f.focus >= len(f.visible()) {
		f.focus = 0
	}
	f.syncFocus()
}

func (f *GenerateForm) syncFocus() {
	for _, input := range f.inputs() {
		input.Blur()
	}
	if input := f.focusedInput(); input != nil {
		input.Focus()
	}
}

func (f *GenerateForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.prompt, &f.audio, &f.lrc, &f.length, &f.steps, &f.cfg, &f.batch, &f.cuda}
}

func (f *GenerateForm) focusedField() formField {
	return f.visible()[f.focus]
}

func (f *GenerateForm) focusedInput() *textinput.Model {
	switch f.focusedField() {
	case fieldPrompt:
		return &f.prompt
	case fieldAudio:
		return &f.audio
	case fieldLrc:
		return &f.lrc
	case fieldLength:
		return &f.length
	case fieldSteps:
		return &f.steps
	case fieldCfg:
		return &f.cfg
	case fieldBatch:
		return &f.batch
	case fieldCuda:
		return &f.cuda
	}
	return nil
}

// UsePrompt seeds the style prompt, e.g. from a favorite.
func (f *GenerateForm) UsePrompt(prompt string) {
	f.prompt.SetValue(prompt)
	f.setRefMode(models.RefPrompt)
}

// UseAudioReference conditions the next generation on a file already in the
// project, e.g. picked from the files view.
func (f *GenerateForm) UseAudioReference(name string) {
	f.refAudioExisting = name
	f.setRefMode(models.RefAudio)
	f.clampFocus()
}

// Prompt returns the current style prompt text.
func (f *GenerateForm) Prompt() string { return f.prompt.Value() }

// Update routes a key press to the form.
func (f *GenerateForm) Update(msg tea.KeyMsg, modelCount int) tea.Cmd {
	switch msg.String() {
	case "up", "shift+tab":
		if f.focus > 0 {
			f.focus--
		}
		f.syncFocus()
		return nil
	case "down", "tab":
		if f.focus < len(f.visible())-1 {
			f.focus++
		}
		f.syncFocus()
		return nil
	}

	switch f.focusedField() {
	case fieldChunked:
		if msg.String() == " " || msg.String() == "enter" {
			f.chunked = !f.chunked
		}
		return nil
	case fieldPreset:
		switch msg.String() {
		case "left", "h":
			if f.presetIndex > 0 {
				f.presetIndex--
			}
		case "right", "l", " ", "enter":
			if f.presetIndex < len(presetOrder)-1 {
				f.presetIndex++
			} else if msg.String() == " " || msg.String() == "enter" {
				f.presetIndex = 0
			}
		}
		return nil
	case fieldRepo:
		switch msg.String() {
		case "left", "h":
			if f.repoIndex > 0 {
				f.repoIndex--
			}
		case "right", "l":
			if f.repoIndex < modelCount-1 {
				f.repoIndex++
			}
		}
		return nil
	}

	input := f.focusedInput()
	if input == nil {
		return nil
	}
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return cmd
}

// BuildRequest assembles a generation request from the form. Simple mode
// applies the selected quality preset; advanced mode takes every value as
// typed. Numeric fields that fail to parse abort with ErrInvalidInput.
func (f *GenerateForm) BuildRequest(project string, available []models.ModelInfo) (api.GenerateRequest, error) {
	req := api.GenerateRequest{
		Project:      project,
		Mode:         f.uiMode,
		RefMode:      f.RefMode(),
		RefPrompt:    strings.TrimSpace(f.prompt.Value()),
		RefAudioPath: strings.TrimSpace(f.audio.Value()),
	}
	if req.RefAudioPath == "" {
		req.RefAudioExisting = f.refAudioExisting
	}

	length, err := parseIntField("length", f.length.Value())
	if err != nil {
		return req, err
	}
	req.AudioLength = length

	if len(available) > 0 {
		idx := f.repoIndex
		if idx >= len(available) {
			idx = 0
		}
		req.RepoID = available[idx].RepoID
	}

	if f.uiMode == models.ModeSimple {
		preset := models.PresetByName(presetOrder[f.presetIndex])
		req.Steps = preset.Steps
		req.CfgStrength = preset.CfgStrength
		req.BatchInferNum = 1
		return req, nil
	}

	if req.Steps, err = parseIntField("steps", f.steps.Value()); err != nil {
		return req, err
	}
	if req.CfgStrength, err = parseFloatField("cfg strength", f.cfg.Value()); err != nil {
		return req, err
	}
	if req.BatchInferNum, err = parseIntField("batch", f.batch.Value()); err != nil {
		return req, err
	}
	req.UseChunked = f.chunked
	req.CudaVisibleDevices = strings.TrimSpace(f.cuda.Value())
	req.LrcPath = strings.TrimSpace(f.lrc.Value())
	return req, nil
}

func parseIntField(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number", shared.ErrInvalidInput, name)
	}
	return n, nil
}

func parseFloatField(name, value string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", shared.ErrInvalidInput, name)
	}
	return n, nil
}

// View renders the form fields for the current mode.
func (f *GenerateForm) View(available []models.ModelInfo) string {
	var b strings.Builder

	mode := fmt.Sprintf("mode: %s   reference: %s", f.uiMode, f.RefMode())
	b.WriteString(styles.help.Render(mode) + "\n\n")

	for i, field := range f.visible() {
		label := f.fieldLabel(field, available)
		if i == f.focus {
			b.WriteString(styles.fieldOn.Render("> "+label) + "\n")
		} else {
			b.WriteString(styles.field.Render("  "+label) + "\n")
		}
	}
	return b.String()
}

func (f *GenerateForm) fieldLabel(field formField, available []models.ModelInfo) string {
	switch field {
	case fieldPrompt:
		return "Prompt   " + f.prompt.View()
	case fieldAudio:
		if strings.TrimSpace(f.audio.Value()) == "" && f.refAudioExisting != "" {
			return "Audio    existing: " + f.refAudioExisting
		}
		return "Audio    " + f.audio.View()
	case fieldLrc:
		return "Lyrics   " + f.lrc.View()
	case fieldLength:
		return "Length   " + f.length.View()
	case fieldPreset:
		return "Quality  ◂ " + presetOrder[f.presetIndex] + " ▸"
	case fieldRepo:
		label := "(none)"
		if len(available) > 0 {
			idx := f.repoIndex
			if idx >= len(available) {
				idx = 0
			}
			label = available[idx].Label
		}
		return "Model    ◂ " + label + " ▸"
	case fieldSteps:
		return "Steps    " + f.steps.View()
	case fieldCfg:
		return "CFG      " + f.cfg.View()
	case fieldBatch:
		return "Batch    " + f.batch.View()
	case fieldChunked:
		mark := "[ ]"
		if f.chunked {
			mark = "[x]"
		}
		return "Chunked  " + mark
	case fieldCuda:
		return "CUDA     " + f.cuda.View()
	}
	return ""
}
