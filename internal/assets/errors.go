package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrTemplateNotFound indicates the requested template does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidAssetName indicates the asset name contains invalid characters
	// such as path separators or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrTemplateParse indicates a template failed to parse.
	ErrTemplateParse = errors.New("failed to parse template")

	// ErrTemplateExecute indicates a template failed to render.
	ErrTemplateExecute = errors.New("failed to render template")
)
