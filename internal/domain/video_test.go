package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchroom/server/internal/domain"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		want    domain.Source
		wantErr error
	}{
		{
			name: "youtube watch link",
			link: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: domain.Source{
				Type:    domain.SourceTypeEmbedded,
				Src:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				VideoId: "dQw4w9WgXcQ",
			},
		},
		{
			name: "short youtu.be link",
			link: "https://youtu.be/dQw4w9WgXcQ",
			want: domain.Source{
				Type:    domain.SourceTypeEmbedded,
				Src:     "https://youtu.be/dQw4w9WgXcQ",
				VideoId: "dQw4w9WgXcQ",
			},
		},
		{
			name: "shorts link",
			link: "youtube.com/shorts/dQw4w9WgXcQ",
			want: domain.Source{
				Type:    domain.SourceTypeEmbedded,
				Src:     "youtube.com/shorts/dQw4w9WgXcQ",
				VideoId: "dQw4w9WgXcQ",
			},
		},
		{
			name: "watch link with extra params",
			link: "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ",
			want: domain.Source{
				Type:    domain.SourceTypeEmbedded,
				Src:     "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ",
				VideoId: "dQw4w9WgXcQ",
			},
		},
		{
			name:    "youtube link without video id",
			link:    "https://www.youtube.com/feed/subscriptions",
			wantErr: domain.ErrInvalidEmbeddedLink,
		},
		{
			name: "mp4 file",
			link: "https://cdn.example.com/movies/My%20Clip.mp4",
			want: domain.Source{
				Type:  domain.SourceTypeFile,
				Src:   "https://cdn.example.com/movies/My%20Clip.mp4",
				Title: "My Clip.mp4",
			},
		},
		{
			name: "mp4 file with query string",
			link: "https://cdn.example.com/clip.mp4?token=abc",
			want: domain.Source{
				Type:  domain.SourceTypeFile,
				Src:   "https://cdn.example.com/clip.mp4?token=abc",
				Title: "clip.mp4",
			},
		},
		{
			name:    "empty link",
			link:    "   ",
			wantErr: domain.ErrInvalidLink,
		},
		{
			name:    "unsupported link",
			link:    "https://example.com/page.html",
			wantErr: domain.ErrUnsupportedLink,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseSource(tt.link)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileTitle(t *testing.T) {
	assert.Equal(t, "clip.mp4", domain.FileTitle("https://cdn.example.com/a/b/clip.mp4"))
	assert.Equal(t, "My Clip.mp4", domain.FileTitle("/static/My%20Clip.mp4?x=1"))
	assert.Equal(t, "Untitled video", domain.FileTitle("https://cdn.example.com/dir/"))

	long := strings.Repeat("a", 36) + ".mp4"
	got := domain.FileTitle("/videos/" + long)
	assert.Len(t, []rune(got), 30)
	assert.True(t, strings.HasSuffix(got, "..."))
}
