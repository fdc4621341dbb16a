package domain

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrInvalidLink         = errors.New("invalid link")
	ErrInvalidEmbeddedLink = errors.New("invalid embedded link")
	ErrUnsupportedLink     = errors.New("unsupported link")
)

type SourceType string

const (
	SourceTypeFile     SourceType = "file"
	SourceTypeEmbedded SourceType = "embedded"
)

// Source is a classified video link. VideoId is set only for embedded
// sources; Title is derived only for file sources (embedded titles are
// resolved separately, best-effort).
type Source struct {
	Type    SourceType
	Src     string
	VideoId string
	Title   string
}

const (
	titleMaxLen      = 30
	titleTruncateLen = 27
	fallbackTitle    = "Untitled video"
)

var embeddedHostRe = regexp.MustCompile(`(?i)^(https?://)?(www\.)?(youtube\.com|youtu\.be)/`)

// Ordered: the first pattern that matches wins.
var embeddedIdRes = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/|v/|shorts/)|youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`),
}

var fileRe = regexp.MustCompile(`(?i)\.(mp4)(\?.*)?$`)

// ParseSource classifies a raw link into an embedded or file source.
func ParseSource(rawLink string) (Source, error) {
	link := strings.TrimSpace(rawLink)
	if link == "" {
		return Source{}, ErrInvalidLink
	}

	if embeddedHostRe.MatchString(link) {
		videoId := extractEmbeddedId(link)
		if videoId == "" {
			return Source{}, ErrInvalidEmbeddedLink
		}

		return Source{
			Type:    SourceTypeEmbedded,
			Src:     link,
			VideoId: videoId,
		}, nil
	}

	if fileRe.MatchString(link) {
		return Source{
			Type:  SourceTypeFile,
			Src:   link,
			Title: FileTitle(link),
		}, nil
	}

	return Source{}, ErrUnsupportedLink
}

func extractEmbeddedId(link string) string {
	for _, re := range embeddedIdRes {
		if m := re.FindStringSubmatch(link); m != nil {
			return m[1]
		}
	}

	return ""
}

// FileTitle derives a human title from the last path segment of a file url:
// query string stripped, percent-decoded, truncated to 27 runes plus an
// ellipsis when longer than 30.
func FileTitle(link string) string {
	segment := link
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if i := strings.Index(segment, "?"); i >= 0 {
		segment = segment[:i]
	}

	name, err := url.PathUnescape(segment)
	if err != nil || name == "" {
		return fallbackTitle
	}

	runes := []rune(name)
	if len(runes) > titleMaxLen {
		return string(runes[:titleTruncateLen]) + "..."
	}

	return name
}
