package main

// Notes:
// - runConvert: end-to-end through runMain with generated JPEG fixtures and
//   the fpdf engine; the chrome engine is covered by the root package's
//   integration tests.
// - Every failure case asserts that no output file was left behind.
// - mergeFlags/applyDefaults: we test precedence and that explicit zero
//   values (--margins 0, --sharpen 0) survive the merge.
// - outputFile: lazy creation, idempotent Close and Remove.
// These are acceptable gaps: SIGINT handling is not exercised here.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	photosheet "github.com/alnah/go-photosheet"
	"github.com/alnah/go-photosheet/internal/config"
)

// ---------------------------------------------------------------------------
// TestRunConvert_EndToEnd - Sheets written from a directory
// ---------------------------------------------------------------------------

func TestRunConvert_EndToEnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		images    int
		extra     []string
		wantPages int
		wantOut   string
	}{
		{"one page", 7, []string{"-d", "3x4"}, 1, "(7 images, 1 page)"},
		{"page break after a full grid", 43, []string{"-d", "3x4"}, 2, "(43 images, 2 pages)"},
		{"single image", 1, []string{"-d", "3x4"}, 1, "(1 image, 1 page)"},
		{"A5 with 4x6 cells", 10, []string{"-p", "A5", "-d", "4x6"}, 2, "(10 images, 2 pages)"},
		{"custom sizes and zero margins", 4, []string{"-p", "310,310", "-d", "150,150", "-m", "0"}, 1, "(4 images, 1 page)"},
		{"tuned transcode", 3, []string{"-d", "2x3", "--quality", "70", "--sharpen", "0", "--filter", "box", "--scale", "2"}, 1, "(3 images, 1 page)"},
		{"single worker small batches", 5, []string{"-d", "3x4", "-w", "1", "--batch-size", "2"}, 1, "(5 images, 1 page)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := imageDir(t, tt.images)
			out := filepath.Join(t.TempDir(), "sheet.pdf")
			env := newTestEnv("")

			args := append([]string{"photosheet", "convert", dir, "-o", out, "--no-input"}, tt.extra...)
			code := runMain(args, env.Environment)
			if code != ExitSuccess {
				t.Fatalf("exit code = %d, want %d\nstderr: %s", code, ExitSuccess, env.stderr)
			}

			if got := pageCount(t, out); got != tt.wantPages {
				t.Errorf("pages = %d, want %d", got, tt.wantPages)
			}
			if !strings.Contains(env.stdout.String(), tt.wantOut) {
				t.Errorf("stdout %q does not contain %q", env.stdout, tt.wantOut)
			}
		})
	}
}

func TestRunConvert_OutputInNewDirectory(t *testing.T) {
	t.Parallel()

	dir := imageDir(t, 2)
	out := filepath.Join(t.TempDir(), "nested", "deeper", "sheet.pdf")
	env := newTestEnv("")

	code := runMain([]string{"photosheet", "-t", dir, "-o", out, "-d", "3x4", "--no-input"}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d\nstderr: %s", code, env.stderr)
	}
	if pageCount(t, out) != 1 {
		t.Error("expected a one-page sheet")
	}
}

func TestRunConvert_QuietAndVerbose(t *testing.T) {
	t.Parallel()

	dir := imageDir(t, 3)

	quiet := newTestEnv("")
	code := runMain([]string{"photosheet", dir, "-o", filepath.Join(t.TempDir(), "q.pdf"), "-d", "3x4", "--no-input", "-q"}, quiet.Environment)
	if code != ExitSuccess {
		t.Fatalf("quiet exit code = %d\nstderr: %s", code, quiet.stderr)
	}
	if quiet.stdout.Len() != 0 {
		t.Errorf("quiet run printed %q", quiet.stdout)
	}

	verbose := newTestEnv("")
	code = runMain([]string{"photosheet", dir, "-o", filepath.Join(t.TempDir(), "v.pdf"), "-d", "3x4", "--no-input", "-v"}, verbose.Environment)
	if code != ExitSuccess {
		t.Fatalf("verbose exit code = %d\nstderr: %s", code, verbose.stderr)
	}
	if !strings.Contains(verbose.stdout.String(), "grid: 6 x 7 cells") {
		t.Errorf("verbose stdout %q lacks grid line", verbose.stdout)
	}
	if !strings.Contains(verbose.stderr.String(), "page 1: from image 1 (img01.jpg)") {
		t.Errorf("verbose stderr %q lacks page progress", verbose.stderr)
	}
}

// ---------------------------------------------------------------------------
// TestRunConvert_Failures - Exit codes, hints, no partial output
// ---------------------------------------------------------------------------

func TestRunConvert_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		images     int
		extra      []string
		wantCode   int
		wantStderr string
	}{
		{"missing cell size", 3, nil, ExitUsage, "-d/--dimensions"},
		{"unknown cell preset", 3, []string{"-d", "9x9"}, ExitUsage, "available: 2x3, 3x4, 4x6"},
		{"unknown paper preset", 3, []string{"-d", "3x4", "-p", "A9"}, ExitUsage, "available: A3, A4"},
		{"malformed dimensions", 3, []string{"-d", "10,x"}, ExitUsage, "invalid"},
		{"cell larger than page", 3, []string{"-d", "600,900"}, ExitUsage, "pick a smaller cell"},
		{"negative margins", 3, []string{"-d", "3x4", "-m", "-1"}, ExitUsage, "error:"},
		{"NaN margins", 3, []string{"-d", "3x4", "-m", "NaN"}, ExitUsage, "page.margins"},
		{"infinite margins", 3, []string{"-d", "3x4", "--margins", "Inf"}, ExitUsage, "page.margins"},
		{"NaN dimensions", 3, []string{"-d", "NaN,100"}, ExitUsage, "finite"},
		{"infinite paper", 3, []string{"-d", "3x4", "-p", "Inf,Inf"}, ExitUsage, "finite"},
		{"NaN sharpen", 3, []string{"-d", "3x4", "--sharpen", "NaN"}, ExitUsage, "image.sharpen"},
		{"bad timeout", 3, []string{"-d", "3x4", "--timeout", "soon"}, ExitUsage, "error:"},
		{"unknown engine", 3, []string{"-d", "3x4", "-e", "latex"}, ExitUsage, "available: chrome, fpdf"},
		{"unknown filter", 3, []string{"-d", "3x4", "--filter", "bicubic"}, ExitUsage, "lanczos"},
		{"empty directory", 0, []string{"-d", "3x4"}, ExitIO, "--extensions"},
		{"everything excluded", 3, []string{"-d", "3x4", "--extensions", "jpg", "--exclude-mode"}, ExitIO, "--exclude-mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := imageDir(t, tt.images)
			out := filepath.Join(t.TempDir(), "sheet.pdf")
			env := newTestEnv("")

			args := append([]string{"photosheet", "convert", dir, "-o", out, "--no-input"}, tt.extra...)
			code := runMain(args, env.Environment)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstderr: %s", code, tt.wantCode, env.stderr)
			}
			if !strings.Contains(env.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr %q does not contain %q", env.stderr, tt.wantStderr)
			}
			assertNoFile(t, out)
		})
	}
}

func TestRunConvert_TooManyArgs(t *testing.T) {
	t.Parallel()

	env := newTestEnv("")
	err := runConvert(t.Context(), []string{"a", "b"}, &convertFlags{changed: func(string) bool { return false }}, env.Environment)
	if !errors.Is(err, ErrTooManyArgs) {
		t.Errorf("runConvert() error = %v, want ErrTooManyArgs", err)
	}
}

func TestRunConvert_ConfigFile(t *testing.T) {
	t.Parallel()

	dir := imageDir(t, 8)
	out := filepath.Join(t.TempDir(), "from-config.pdf")
	cfgPath := filepath.Join(t.TempDir(), "prints.yaml")
	yaml := "output: " + out + "\n" +
		"input:\n  dir: " + dir + "\n" +
		"page:\n  paper: A5\n  margins: 0\n" +
		"cell:\n  dimensions: 4x6\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	env := newTestEnv("")
	code := runMain([]string{"photosheet", "--no-input", "-c", cfgPath}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d\nstderr: %s", code, env.stderr)
	}

	// A5 with no margins holds 3 x 3 cells of 4x6.
	if got := pageCount(t, out); got != 1 {
		t.Errorf("pages = %d, want 1", got)
	}
}

func TestRunConvert_ConfigNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv("")
	code := runMain([]string{"photosheet", "--no-input", "-c", "/nonexistent/prints.yaml"}, env.Environment)
	if code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(env.stderr.String(), "hint:") {
		t.Errorf("stderr %q lacks hint", env.stderr)
	}
}

// ---------------------------------------------------------------------------
// TestRunConvert_Interactive - Prompts fill missing values
// ---------------------------------------------------------------------------

func TestRunConvert_Interactive(t *testing.T) {
	t.Parallel()

	dir := imageDir(t, 4)
	out := filepath.Join(t.TempDir(), "prompted.pdf")

	// output, directory, paper (default A4), cell (2 = 3x4), margins (default)
	env := newTestEnv(out + "\n" + dir + "\n\n2\n\n")
	env.Interactive = true

	code := runMain([]string{"photosheet", "convert"}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d\nstderr: %s\nstdout: %s", code, env.stderr, env.stdout)
	}
	for _, want := range []string{"Output file [./file.pdf]:", "Paper size:", "Cell size:", "Margins in points [10]:"} {
		if !strings.Contains(env.stdout.String(), want) {
			t.Errorf("prompts %q lack %q", env.stdout, want)
		}
	}
	if pageCount(t, out) != 1 {
		t.Error("expected a one-page sheet")
	}
}

func TestRunConvert_InteractiveAborted(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "never.pdf")
	env := newTestEnv(out + "\n")
	env.Interactive = true

	code := runMain([]string{"photosheet", "convert"}, env.Environment)
	if code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(env.stderr.String(), "prompt aborted") {
		t.Errorf("stderr %q lacks abort message", env.stderr)
	}
	assertNoFile(t, out)
}

func TestRunConvert_NoInputSkipsPrompts(t *testing.T) {
	t.Parallel()

	env := newTestEnv("should never be read\n")
	env.Interactive = true

	code := runMain([]string{"photosheet", "convert", "--no-input", "-t", t.TempDir(), "-o", filepath.Join(t.TempDir(), "x.pdf")}, env.Environment)
	if code != ExitUsage {
		t.Errorf("exit code = %d, want %d (missing cell)", code, ExitUsage)
	}
	if strings.Contains(env.stdout.String(), "Output file") {
		t.Errorf("--no-input still prompted: %q", env.stdout)
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - Flags override config, explicit zeros survive
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	five := 5.0
	cfg := &config.Config{
		Output: "from-config.pdf",
		Input:  config.InputConfig{Dir: "config-dir"},
		Page:   config.PageConfig{Paper: "A3", Margins: &five},
		Cell:   config.CellConfig{Dimensions: "4x6"},
		Image:  config.ImageConfig{Sharpen: &five},
		Run:    config.RunConfig{Engine: "chrome", Workers: 3},
	}

	flags, args, err := parseConvertFlags([]string{"-m", "0", "--sharpen", "0", "-d", "3x4", "flag-dir", "--exclude-mode"}, os.Stderr)
	if err != nil {
		t.Fatalf("parseConvertFlags() error = %v", err)
	}
	mergeFlags(flags, args, cfg)

	if *cfg.Page.Margins != 0 {
		t.Errorf("margins = %v, want 0", *cfg.Page.Margins)
	}
	if *cfg.Image.Sharpen != 0 {
		t.Errorf("sharpen = %v, want 0", *cfg.Image.Sharpen)
	}
	if cfg.Cell.Dimensions != "3x4" {
		t.Errorf("dimensions = %q, want 3x4", cfg.Cell.Dimensions)
	}
	if cfg.Input.Dir != "flag-dir" {
		t.Errorf("dir = %q, want flag-dir", cfg.Input.Dir)
	}
	if cfg.Input.Filter != string(photosheet.FilterExclude) {
		t.Errorf("filter = %q, want exclude", cfg.Input.Filter)
	}

	// Untouched by flags.
	if cfg.Output != "from-config.pdf" || cfg.Page.Paper != "A3" || cfg.Run.Engine != "chrome" || cfg.Run.Workers != 3 {
		t.Errorf("config values overwritten: %+v", cfg)
	}
}

func TestMergeFlags_TargetBeatsPositional(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	flags, args, err := parseConvertFlags([]string{"-t", "target-dir", "positional-dir"}, os.Stderr)
	if err != nil {
		t.Fatal(err)
	}
	mergeFlags(flags, args, cfg)

	if cfg.Input.Dir != "target-dir" {
		t.Errorf("dir = %q, want target-dir", cfg.Input.Dir)
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	applyDefaults(cfg)

	if cfg.Output != defaultOutput {
		t.Errorf("output = %q, want %q", cfg.Output, defaultOutput)
	}
	if cfg.Input.Dir != defaultTarget {
		t.Errorf("dir = %q, want %q", cfg.Input.Dir, defaultTarget)
	}
	if cfg.Page.Paper != "A4" {
		t.Errorf("paper = %q, want A4", cfg.Page.Paper)
	}
	if cfg.Page.Margins == nil || *cfg.Page.Margins != photosheet.DefaultMargin {
		t.Errorf("margins = %v, want %v", cfg.Page.Margins, photosheet.DefaultMargin)
	}
	if cfg.Cell.Dimensions != "" {
		t.Errorf("dimensions = %q, want no default", cfg.Cell.Dimensions)
	}
}

// ---------------------------------------------------------------------------
// TestOutputFile - Lazy creation
// ---------------------------------------------------------------------------

func TestOutputFile_NotCreatedWithoutWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.pdf")
	o := &outputFile{path: path}

	if err := o.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	assertNoFile(t, path)
}

func TestOutputFile_WriteCloseRemove(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "out.pdf")
	o := &outputFile{path: path}

	if _, err := o.Write([]byte("%PDF-1.4")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := o.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "%PDF-1.4" {
		t.Fatalf("file content = %q, %v", data, err)
	}

	if _, err := o.Write([]byte("more")); !errors.Is(err, ErrCreateOutput) {
		t.Errorf("Write() after Close error = %v, want ErrCreateOutput", err)
	}

	o.Remove()
	assertNoFile(t, path)
}

func TestOutputFile_CreateFails(t *testing.T) {
	t.Parallel()

	// A regular file where a parent directory is expected.
	parent := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(parent, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	o := &outputFile{path: filepath.Join(parent, "out.pdf")}

	_, err := o.Write([]byte("x"))
	if !errors.Is(err, ErrCreateOutput) {
		t.Errorf("Write() error = %v, want ErrCreateOutput", err)
	}
	if exitCodeFor(err) != ExitIO {
		t.Errorf("exitCodeFor() = %d, want %d", exitCodeFor(err), ExitIO)
	}
}

func TestOutputFile_ConcurrentClose(t *testing.T) {
	t.Parallel()

	o := &outputFile{path: filepath.Join(t.TempDir(), "out.pdf")}
	if _, err := o.Write([]byte("x")); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 4 {
		wg.Go(func() { _ = o.Close() })
	}
	wg.Wait()
}

// ---------------------------------------------------------------------------
// TestWithHint - Hints chosen by error
// ---------------------------------------------------------------------------

func TestWithHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		cfg      *config.Config
		contains string
	}{
		{"timeout", photosheet.ErrTimeout, config.DefaultConfig(), "--timeout"},
		{"browser", photosheet.ErrBrowserConnect, config.DefaultConfig(), "--engine fpdf"},
		{"cell too large", photosheet.ErrCellTooLarge, config.DefaultConfig(), "smaller cell"},
		{"no images default extensions", photosheet.ErrNoImages, config.DefaultConfig(), "jpg, jpeg, png"},
		{"unknown paper", photosheet.ErrUnknownPreset, &config.Config{Page: config.PageConfig{Paper: "A9"}}, "LETTER"},
		{"unknown cell", photosheet.ErrUnknownPreset, &config.Config{Page: config.PageConfig{Paper: "A4"}}, "4x6"},
		{"write failure", photosheet.ErrWriteDocument, config.DefaultConfig(), "writable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := withHint(tt.err, tt.cfg)
			if !errors.Is(got, tt.err) {
				t.Errorf("withHint() lost the error chain: %v", got)
			}
			if !strings.Contains(got.Error(), tt.contains) {
				t.Errorf("withHint() = %q, want it to contain %q", got, tt.contains)
			}
		})
	}
}

func TestWithHint_NoHint(t *testing.T) {
	t.Parallel()

	err := errors.New("plain")
	if got := withHint(err, config.DefaultConfig()); got != err {
		t.Errorf("withHint() = %v, want the error unchanged", got)
	}
}
