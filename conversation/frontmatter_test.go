package conversation

import "testing"

func TestParseLyrics(t *testing.T) {
	content := "---\n" +
		"title: Rain on Tin Roofs\n" +
		"style: folk ballad\n" +
		"commentary: kept the chorus simple\n" +
		"duration: 180\n" +
		"---\n" +
		"Verse one starts low\nand the rain comes slow\n"

	lyrics, ok := ParseLyrics(content)
	if !ok {
		t.Fatal("expected frontmatter to parse")
	}
	if lyrics.Title != "Rain on Tin Roofs" {
		t.Fatalf("unexpected title %q", lyrics.Title)
	}
	if lyrics.Style != "folk ballad" {
		t.Fatalf("unexpected style %q", lyrics.Style)
	}
	if lyrics.Commentary != "kept the chorus simple" {
		t.Fatalf("unexpected commentary %q", lyrics.Commentary)
	}
	if lyrics.Duration != 180 {
		t.Fatalf("unexpected duration %v", lyrics.Duration)
	}
	if lyrics.Body != "Verse one starts low\nand the rain comes slow" {
		t.Fatalf("unexpected body %q", lyrics.Body)
	}
}

func TestParseLyricsWindowsLineEndings(t *testing.T) {
	content := "---\r\ntitle: Rain\r\n---\r\nbody line\r\n"

	lyrics, ok := ParseLyrics(content)
	if !ok {
		t.Fatal("expected CRLF frontmatter to parse")
	}
	if lyrics.Title != "Rain" || lyrics.Body != "body line" {
		t.Fatalf("unexpected parse %+v", lyrics)
	}
}

func TestParseLyricsPartialHeader(t *testing.T) {
	lyrics, ok := ParseLyrics("---\ntitle: Sparse\n---\n")
	if !ok {
		t.Fatal("header-only content with a title is still valid")
	}
	if lyrics.Title != "Sparse" || lyrics.Body != "" {
		t.Fatalf("unexpected parse %+v", lyrics)
	}
}

func TestParseLyricsRejectsNonFrontmatter(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"plain prose", "Sorry, I can't write lyrics about that."},
		{"no closing delimiter", "---\ntitle: Rain\nbody without close"},
		{"missing title", "---\nstyle: folk\n---\nbody"},
		{"header is not a map", "---\njust a line of text\n---\nbody"},
		{"empty", ""},
		{"delimiter only", "---"},
	}

	for _, tc := range cases {
		if _, ok := ParseLyrics(tc.content); ok {
			t.Fatalf("%s: expected parse failure", tc.name)
		}
	}
}
