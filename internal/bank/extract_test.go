package bank

import "testing"

func TestExtractFindsDistinctBanksInOrder(t *testing.T) {
	script := `//==================================================
//
// Generated Map Script
//
// Name:   Bank Test
// Author: Someone
//
//==================================================
void InitBanks () {
    BankLoad("HeroSave", 1);
    BankLoad("Stats", lp_player);
    if (BankExists( "HeroSave" , 2)) {
    }
}
`
	got := NewExtractor().Extract(script)
	want := []Record{
		{Name: "HeroSave", Player: "1", Native: "BankLoad", Line: 10},
		{Name: "Stats", Player: "lp_player", Native: "BankLoad", Line: 11},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractIgnoresCommentsAndDynamicNames(t *testing.T) {
	script := "// BankLoad(\"Commented\", 1);\n" +
		"BankLoad(lv_name, 1);\n" +
		"BankExists(\"Real\", 3); // BankLoad(\"Trailing\", 1)\n" +
		"Print(\"// not a comment\"); BankLoad(\"After\", 4);\n"

	got := NewExtractor().Extract(script)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %+v", got)
	}
	if got[0].Name != "Real" || got[0].Native != "BankExists" || got[0].Player != "3" {
		t.Fatalf("unexpected first record %+v", got[0])
	}
	if got[1].Name != "After" || got[1].Line != 4 {
		t.Fatalf("unexpected second record %+v", got[1])
	}
}

func TestExtractUnescapesNames(t *testing.T) {
	got := NewExtractor().Extract(`BankLoad("Quote\"d", 1);`)
	if len(got) != 1 || got[0].Name != `Quote"d` {
		t.Fatalf("unexpected records %+v", got)
	}
}

func TestExtractEmptyScript(t *testing.T) {
	got := NewExtractor().Extract("")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
