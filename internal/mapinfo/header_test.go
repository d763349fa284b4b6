package mapinfo

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"starbank/internal/testsupport"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name       string
		script     string
		want       Header
		wantKind   MalformedKind
		wantFatal  bool
		wantErrNil bool
	}{
		{
			name:       "generated header",
			script:     testsupport.MapScript("Desert Strike", "Blizzard", "void InitMap() {}"),
			want:       Header{Name: "Desert Strike", Author: "Blizzard"},
			wantErrNil: true,
		},
		{
			name:       "trims surrounding whitespace",
			script:     "a\nb\nc\nd\n// Name:     Spaced Out   \n// Author:   Someone\t",
			want:       Header{Name: "Spaced Out", Author: "Someone"},
			wantErrNil: true,
		},
		{
			name:       "five lines uses unknown author",
			script:     "a\nb\nc\nd\n// Name:   Solo",
			want:       Header{Name: "Solo", Author: UnknownAuthor},
			wantErrNil: true,
		},
		{
			name:       "name exactly at label length is empty",
			script:     "a\nb\nc\nd\n0123456789\n// Author: X",
			want:       Header{Name: "", Author: "X"},
			wantErrNil: true,
		},
		{
			name:      "four lines",
			script:    "a\nb\nc\nd",
			wantKind:  KindHeaderTooShort,
			wantFatal: true,
		},
		{
			name:      "empty script",
			script:    "",
			wantKind:  KindHeaderTooShort,
			wantFatal: true,
		},
		{
			name:      "short name line",
			script:    "\n\n\n\nshort",
			wantKind:  KindNameFieldTooShort,
			wantFatal: true,
		},
		{
			name:      "non-ascii name line shorter than label",
			script:    "\n\n\n\nééééé",
			wantKind:  KindNameFieldTooShort,
			wantFatal: true,
		},
		{
			name:       "label offset counts characters",
			script:     "\n\n\n\n// Name: Éclair\n// Author:Zoë",
			want:       Header{Name: "clair", Author: "Zoë"},
			wantErrNil: true,
		},
		{
			name:     "non-ascii author line shorter than label",
			script:   "a\nb\nc\nd\n// Name:   Crème\nüüüüüüüüü",
			want:     Header{Name: "Crème", AuthorMissing: true},
			wantKind: KindAuthorFieldTooShort,
		},
		{
			name:     "short author line keeps name",
			script:   "a\nb\nc\nd\n// Name:   Broken Author\n//",
			want:     Header{Name: "Broken Author", AuthorMissing: true},
			wantKind: KindAuthorFieldTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHeader(tt.script)
			if got != tt.want {
				t.Fatalf("header = %+v, want %+v", got, tt.want)
			}
			if !utf8.ValidString(got.Name) || !utf8.ValidString(got.Author) {
				t.Fatalf("header holds invalid UTF-8: %q / %q", got.Name, got.Author)
			}
			if tt.wantErrNil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var headerErr *HeaderError
			if !errors.As(err, &headerErr) {
				t.Fatalf("expected *HeaderError, got %v", err)
			}
			if headerErr.Kind != tt.wantKind {
				t.Fatalf("kind = %s, want %s", headerErr.Kind, tt.wantKind)
			}
			if headerErr.Fatal() != tt.wantFatal {
				t.Fatalf("fatal = %v, want %v", headerErr.Fatal(), tt.wantFatal)
			}
			if !errors.Is(err, tt.wantKind.Err()) {
				t.Fatalf("expected errors.Is(%v, %v)", err, tt.wantKind.Err())
			}
		})
	}
}

func TestParseHeaderLinesIgnoresLinesPastAuthor(t *testing.T) {
	lines := strings.Split(testsupport.MapScript("Name", "Author", "// Name:   Other"), "\n")
	got, err := ParseHeaderLines(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Name" || got.Author != "Author" {
		t.Fatalf("unexpected header %+v", got)
	}
}

func TestHeaderErrorMessage(t *testing.T) {
	_, err := ParseHeader("a\nb")
	if err == nil || !strings.Contains(err.Error(), "2 lines") {
		t.Fatalf("expected line count in error, got %v", err)
	}
	_, err = ParseHeader("\n\n\n\nshort")
	if err == nil || !strings.Contains(err.Error(), "line 5") {
		t.Fatalf("expected line number in error, got %v", err)
	}
	_, err = ParseHeader("\n\n\n\nééééé")
	if err == nil || !strings.Contains(err.Error(), "has 5 characters") {
		t.Fatalf("expected character count in error, got %v", err)
	}
}

func TestMalformedIdentifierPrefersName(t *testing.T) {
	report := MalformedReport{
		{Kind: KindArchiveUnreadable, Path: "/cache/a.s2ma"},
		{Kind: KindAuthorFieldTooShort, Path: "/cache/b.s2ma", Name: "Bravo"},
	}
	got := report.Identifiers()
	if len(got) != 2 || got[0] != "/cache/a.s2ma" || got[1] != "Bravo" {
		t.Fatalf("unexpected identifiers %v", got)
	}
	if report.Count(KindAuthorFieldTooShort) != 1 || report.Count(KindHeaderTooShort) != 0 {
		t.Fatalf("unexpected counts for %v", report)
	}
	if KindAuthorFieldTooShort.Fatal() || !KindArchiveUnreadable.Fatal() {
		t.Fatal("unexpected fatal classification")
	}
}
