package assets

import (
	"errors"
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "simple name", input: "sheet"},
		{name: "hyphen and digits", input: "sheet-2up"},
		{name: "underscore", input: "contact_sheet"},

		{name: "empty name", input: "", wantErr: ErrInvalidAssetName},
		{name: "forward slash", input: "a/sheet", wantErr: ErrInvalidAssetName},
		{name: "backslash", input: "a\\sheet", wantErr: ErrInvalidAssetName},
		{name: "parent traversal", input: "../secret", wantErr: ErrInvalidAssetName},
		{name: "extension smuggled in", input: "sheet.html", wantErr: ErrInvalidAssetName},
		{name: "hidden file", input: ".hidden", wantErr: ErrInvalidAssetName},
		{name: "null byte", input: "sheet\x00", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAssetName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
