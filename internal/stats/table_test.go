package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Word", "Session", "Lifetime"}
	rows := [][]string{
		{"like", "3", "120"},
		{"basically", "12", "7"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := FormatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Word      Session Lifetime" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "like            3      120" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "basically      12        7" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := FormatTable([]string{"Word", "N"}, [][]string{{"日本", "1"}, {"ab", "2"}}, nil)
	if lines[1] != "日本 1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "ab   2" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := FormatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}
