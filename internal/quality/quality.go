// Package quality maps the fixed set of user-facing quality tags to the
// retrieval policy handed to the media fetcher. Validation happens here,
// before any network activity.
package quality

import (
	"errors"
	"fmt"
)

// ErrInvalidQuality marks a tag outside the fixed enumerated set.
var ErrInvalidQuality = errors.New("invalid quality tag")

// Tag is one of the enumerated quality choices offered to users.
type Tag string

const (
	Tag240   Tag = "240"
	Tag360   Tag = "360"
	Tag480   Tag = "480"
	Tag720   Tag = "720"
	Tag1080  Tag = "1080"
	TagAudio Tag = "audio"
)

// Tags returns the enumerated tags in display order.
func Tags() []Tag {
	return []Tag{Tag240, Tag360, Tag480, Tag720, Tag1080, TagAudio}
}

// Parse validates a raw tag value.
func Parse(value string) (Tag, error) {
	switch Tag(value) {
	case Tag240, Tag360, Tag480, Tag720, Tag1080, TagAudio:
		return Tag(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidQuality, value)
	}
}

// Label returns the human-readable button text for the tag.
func (t Tag) Label() string {
	if t == TagAudio {
		return "Audio (mp3)"
	}
	return string(t) + "p"
}

// Policy is the format-retrieval instruction handed to the media fetcher.
// It is only ever constructed by Policy(); nothing else in the system
// derives format selectors.
type Policy struct {
	// Format is the yt-dlp format selector.
	Format string
	// ExtractAudio requests an audio-only download transcoded to
	// AudioCodec at AudioBitrate.
	ExtractAudio bool
	AudioCodec   string
	AudioBitrate string
}

const (
	audioCodec   = "mp3"
	audioBitrate = "192"
)

// Policy derives the retrieval policy for the tag. Numeric tags request the
// best video stream at or below that height combined with the best audio,
// falling back to the best stream of any height. The audio tag requests the
// best audio-only stream transcoded to a fixed lossy target.
func (t Tag) Policy() Policy {
	if t == TagAudio {
		return Policy{
			Format:       "bestaudio/best",
			ExtractAudio: true,
			AudioCodec:   audioCodec,
			AudioBitrate: audioBitrate,
		}
	}
	h := string(t)
	return Policy{
		Format: fmt.Sprintf("bestvideo[height<=%s]+bestaudio/best[height<=%s]/best", h, h),
	}
}
