package assets

import (
	"errors"
	"testing"
)

func TestLoadPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pageName string
		wantErr  error
	}{
		{
			name:     "index page returns content",
			pageName: IndexPage,
			wantErr:  nil,
		},
		{
			name:     "nonexistent page returns ErrPageNotFound",
			pageName: "nonexistent",
			wantErr:  ErrPageNotFound,
		},
		{
			name:     "empty name returns ErrInvalidAssetName",
			pageName: "",
			wantErr:  ErrInvalidAssetName,
		},
		{
			name:     "path traversal returns ErrInvalidAssetName",
			pageName: "../secret",
			wantErr:  ErrInvalidAssetName,
		},
		{
			name:     "extension returns ErrInvalidAssetName",
			pageName: "index.html",
			wantErr:  ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := LoadPage(tt.pageName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadPage(%q) error = %v, want %v", tt.pageName, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadPage(%q) unexpected error: %v", tt.pageName, err)
			}
			if got == "" {
				t.Errorf("LoadPage(%q) returned empty content", tt.pageName)
			}
		})
	}
}
