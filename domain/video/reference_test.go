package video

import "testing"

func TestParseReference(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "watch URL",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "watch URL with extra params",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s&list=PL123",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "short URL",
			input: "https://youtu.be/dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "shorts URL",
			input: "https://www.youtube.com/shorts/dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "embed URL",
			input: "https://www.youtube.com/embed/dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:  "mobile host",
			input: "https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "not a url",
			input:   "not-a-url",
			wantErr: true,
		},
		{
			name:    "wrong host",
			input:   "https://vimeo.com/123456789",
			wantErr: true,
		},
		{
			name:    "watch URL without id",
			input:   "https://www.youtube.com/watch",
			wantErr: true,
		},
		{
			name:    "id too short",
			input:   "https://youtu.be/short",
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			input:   "ftp://youtube.com/watch?v=dQw4w9WgXcQ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReference(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for input %q, got reference %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got reference %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReferenceWatchURL(t *testing.T) {
	ref := Reference("dQw4w9WgXcQ")
	want := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	if got := ref.WatchURL(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
