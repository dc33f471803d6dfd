package importer

import (
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int64
		want        Format
		wantErr     error
	}{
		{
			name:     "legacy workbook",
			filename: "drills.xls",
			size:     2048,
			want:     FormatLegacyXLS,
		},
		{
			name:     "zipped workbook",
			filename: "Drills Export.XLSX",
			size:     2048,
			want:     FormatXLSX,
		},
		{
			name:     "csv",
			filename: "drills.csv",
			size:     10,
			want:     FormatDelimited,
		},
		{
			name:     "tsv",
			filename: "drills.tsv",
			want:     FormatDelimited,
		},
		{
			name:        "extension beats content type",
			filename:    "drills.csv",
			contentType: "application/vnd.ms-excel",
			want:        FormatDelimited,
		},
		{
			name:        "content type without extension",
			filename:    "export",
			contentType: "text/csv; charset=utf-8",
			want:        FormatDelimited,
		},
		{
			name:        "xlsx content type without extension",
			filename:    "export",
			contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			want:        FormatXLSX,
		},
		{
			name:        "unknown extension ignores content type",
			filename:    "drills.pdf",
			contentType: "text/csv",
			wantErr:     ErrUnsupportedFormat,
		},
		{
			name:     "no extension no content type",
			filename: "drills",
			wantErr:  ErrUnsupportedFormat,
		},
		{
			name:     "exactly at limit",
			filename: "drills.csv",
			size:     MaxFileSize,
			want:     FormatDelimited,
		},
		{
			name:     "over limit",
			filename: "drills.csv",
			size:     MaxFileSize + 1,
			wantErr:  ErrFileTooLarge,
		},
		{
			name:     "size checked before format",
			filename: "drills.pdf",
			size:     MaxFileSize + 1,
			wantErr:  ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.filename, tt.contentType, tt.size)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DetectFormat() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}
