package report

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Letter", "Text", "English"}
	rows := [][]string{
		{"E", "12.50%", "12.70%"},
		{"Z", "0.00%", "0.07%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Letter   Text English" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "E      12.50%  12.70%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Z       0.00%   0.07%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"K", "V"}, [][]string{{"日", "1"}, {"a", "2"}}, nil)
	if lines[1] != "日 1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "a  2" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}
