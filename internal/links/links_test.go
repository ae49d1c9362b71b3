package links

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single link",
			text: "https://www.youtube.com/watch?v=abc123",
			want: []string{"https://www.youtube.com/watch?v=abc123"},
		},
		{
			name: "one per line",
			text: "https://youtu.be/a\nhttps://youtu.be/b\nhttps://youtu.be/c",
			want: []string{"https://youtu.be/a", "https://youtu.be/b", "https://youtu.be/c"},
		},
		{
			name: "surrounding prose",
			text: "please fetch https://youtu.be/x for me",
			want: []string{"https://youtu.be/x"},
		},
		{
			name: "trailing punctuation stripped",
			text: "look at https://youtu.be/x!",
			want: []string{"https://youtu.be/x"},
		},
		{
			name: "plain http accepted",
			text: "http://example.com/video",
			want: []string{"http://example.com/video"},
		},
		{
			name: "no links",
			text: "hello there",
			want: nil,
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "other schemes rejected",
			text: "ftp://example.com/file rtmp://stream.example.com/live",
			want: nil,
		},
		{
			name: "order preserved",
			text: "https://b.example/2 then https://a.example/1",
			want: []string{"https://b.example/2", "https://a.example/1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
