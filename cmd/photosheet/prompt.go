package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	photosheet "github.com/alnah/go-photosheet"
	"github.com/alnah/go-photosheet/internal/config"
)

// ErrPromptAborted is returned when stdin closes before a prompt is answered
// or an answer stays invalid.
var ErrPromptAborted = errors.New("prompt aborted")

// maxAttempts bounds re-prompts after invalid answers.
const maxAttempts = 3

// customChoice is the menu entry for explicit dimensions.
const customChoice = "custom"

// prompter asks for values on a line-oriented reader.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints label with its default and returns the trimmed answer, or def
// for an empty one.
func (p *prompter) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		fmt.Fprintln(p.out)
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: %s", ErrPromptAborted, strings.ToLower(label))
		}
		return "", err
	}

	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

// askValid re-asks until check accepts the answer.
func (p *prompter) askValid(label, def string, check func(string) error) (string, error) {
	var lastErr error
	for range maxAttempts {
		v, err := p.ask(label, def)
		if err != nil {
			return "", err
		}
		if lastErr = check(v); lastErr == nil {
			return v, nil
		}
		fmt.Fprintf(p.out, "  %v\n", lastErr)
	}
	return "", fmt.Errorf("%w: %w", ErrPromptAborted, lastErr)
}

// choosePreset shows a numbered preset table plus a custom entry and returns
// a value accepted by photosheet.ParseSizeSpec.
func (p *prompter) choosePreset(title string, presets []photosheet.Preset, def string) (string, error) {
	fmt.Fprintf(p.out, "%s:\n", title)
	for i, preset := range presets {
		fmt.Fprintf(p.out, "  %d) %-8s %g x %g pt\n", i+1, preset.Name, preset.Size.Width, preset.Size.Height)
	}
	fmt.Fprintf(p.out, "  %d) %s\n", len(presets)+1, customChoice)

	choice, err := p.askValid("Choice", def, func(v string) error {
		_, err := pickPreset(v, presets)
		return err
	})
	if err != nil {
		return "", err
	}

	name, _ := pickPreset(choice, presets)
	if name != customChoice {
		return name, nil
	}
	return p.askValid("Width,height in points", "", checkCustomSize)
}

// pickPreset maps a menu answer (number, preset name or "custom") to a
// preset name or customChoice.
func pickPreset(answer string, presets []photosheet.Preset) (string, error) {
	if n, err := strconv.Atoi(answer); err == nil {
		switch {
		case n >= 1 && n <= len(presets):
			return presets[n-1].Name, nil
		case n == len(presets)+1:
			return customChoice, nil
		}
		return "", fmt.Errorf("choose 1-%d", len(presets)+1)
	}
	if strings.EqualFold(answer, customChoice) {
		return customChoice, nil
	}
	for _, preset := range presets {
		if strings.EqualFold(preset.Name, answer) {
			return preset.Name, nil
		}
	}
	return "", fmt.Errorf("unknown choice %q", answer)
}

func checkCustomSize(v string) error {
	spec, err := photosheet.ParseSizeSpec(v)
	if err != nil {
		return err
	}
	if spec.Preset != "" {
		return fmt.Errorf("%w: %q (want WIDTH,HEIGHT)", photosheet.ErrInvalidDimensions, v)
	}
	return nil
}

func checkMargins(v string) error {
	m, err := strconv.ParseFloat(v, 64)
	if err != nil || !(m >= 0) || math.IsInf(m, 1) {
		return fmt.Errorf("%w: %q (want a finite number >= 0)", photosheet.ErrInvalidMargin, v)
	}
	return nil
}

// promptMissing asks for every required setting the config left empty.
func promptMissing(p *prompter, cfg *config.Config) error {
	var err error

	if cfg.Output == "" {
		if cfg.Output, err = p.ask("Output file", "./"+defaultOutput); err != nil {
			return err
		}
	}
	if cfg.Input.Dir == "" {
		if cfg.Input.Dir, err = p.ask("Image directory", defaultTarget); err != nil {
			return err
		}
	}
	if cfg.Page.Paper == "" {
		if cfg.Page.Paper, err = p.choosePreset("Paper size", photosheet.PaperPresets(), "A4"); err != nil {
			return err
		}
	}
	if cfg.Cell.Dimensions == "" {
		if cfg.Cell.Dimensions, err = p.choosePreset("Cell size", photosheet.CellPresets(), ""); err != nil {
			return err
		}
	}
	if cfg.Page.Margins == nil {
		v, err := p.askValid("Margins in points", strconv.FormatFloat(photosheet.DefaultMargin, 'f', -1, 64), checkMargins)
		if err != nil {
			return err
		}
		m, _ := strconv.ParseFloat(v, 64)
		cfg.Page.Margins = &m
	}
	return nil
}
