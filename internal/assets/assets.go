package assets

import (
	"fmt"
	"html/template"
	"io"
)

// SheetTemplate is the name of the page layout template.
const SheetTemplate = "sheet"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// SheetData is the input of the sheet template. Lengths are in points.
type SheetData struct {
	Title      string
	PageWidth  float64
	PageHeight float64
	Pages      []SheetPage
}

// SheetPage is one page of absolutely positioned images.
type SheetPage struct {
	Images []SheetImage
}

// SheetImage is one placed image. Src is usually a data URI.
type SheetImage struct {
	X, Y          float64
	Width, Height float64
	Src           template.URL
	Alt           string
}

// Sheet renders SheetData with a parsed template.
type Sheet struct {
	tmpl *template.Template
}

// NewSheet loads and parses the sheet template from loader.
// A nil loader uses the embedded templates.
func NewSheet(loader AssetLoader) (*Sheet, error) {
	if loader == nil {
		loader = defaultLoader
	}
	src, err := loader.LoadTemplate(SheetTemplate)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(SheetTemplate).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, SheetTemplate, err)
	}
	return &Sheet{tmpl: tmpl}, nil
}

// Render writes the HTML document for data to w.
func (s *Sheet) Render(w io.Writer, data SheetData) error {
	if err := s.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("%w: %v", ErrTemplateExecute, err)
	}
	return nil
}
