package chunker

import (
	"strings"
	"testing"

	"github.com/rikas05/chat-with-pdf/internal/models"
)

func TestNew_RejectsBadParameters(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -10, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.size, tc.overlap)
			if err == nil {
				t.Fatalf("expected error for size=%d overlap=%d", tc.size, tc.overlap)
			}
			if models.KindOf(err) != models.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	c, err := New(100, 20)
	if err != nil {
		t.Fatal(err)
	}
	if chunks := c.Split(""); len(chunks) != 0 {
		t.Fatalf("expected 0 chunks for empty input, got %d", len(chunks))
	}
}

func TestSplit_ShortInputSingleChunk(t *testing.T) {
	c, err := New(100, 20)
	if err != nil {
		t.Fatal(err)
	}
	chunks := c.Split("short text")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "short text" {
		t.Fatalf("expected chunk to equal input, got %q", chunks[0])
	}
}

func TestSplit_ConsecutiveChunksShareOverlap(t *testing.T) {
	c, err := New(20, 5)
	if err != nil {
		t.Fatal(err)
	}
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-5:])
		if !strings.HasPrefix(chunks[i], tail) {
			t.Fatalf("chunk %d does not start with the previous chunk's last 5 chars", i)
		}
	}
}

func TestSplit_ReassembleReconstructsInput(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
		text    string
	}{
		{"no overlap", 10, 0, strings.Repeat("x y z ", 20)},
		{"small overlap", 25, 7, "The quick brown fox jumps over the lazy dog, again and again and again."},
		{"large overlap", 50, 49, strings.Repeat("abc", 40)},
		{"multibyte", 8, 3, strings.Repeat("héllo wörld ", 10)},
		{"boundary exact", 30, 10, strings.Repeat("0123456789", 5)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := New(tc.size, tc.overlap)
			if err != nil {
				t.Fatal(err)
			}
			chunks := c.Split(tc.text)
			if got := Reassemble(chunks, tc.overlap); got != tc.text {
				t.Fatalf("reassembled text differs from input:\ngot  %q\nwant %q", got, tc.text)
			}
			for _, chunk := range chunks {
				if n := len([]rune(chunk)); n > tc.size {
					t.Fatalf("chunk longer than size: %d > %d", n, tc.size)
				}
			}
		})
	}
}

// A 600-char document with 200-char windows and 50-char overlap yields
// four chunks: [0,200), [150,350), [300,500), [450,600).
func TestSplit_WindowBoundaries(t *testing.T) {
	var sb strings.Builder
	for sb.Len() < 600 {
		sb.WriteString("word ")
	}
	text := sb.String()[:600]

	c, err := New(200, 50)
	if err != nil {
		t.Fatal(err)
	}
	chunks := c.Split(text)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}

	starts := []int{0, 150, 300, 450}
	ends := []int{200, 350, 500, 600}
	for i, chunk := range chunks {
		want := text[starts[i]:ends[i]]
		if chunk != want {
			t.Fatalf("chunk %d boundary mismatch:\ngot  %q\nwant %q", i, chunk, want)
		}
	}
}
