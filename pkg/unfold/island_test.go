package unfold

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIsUpsideDownWrong(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"6", true},
		{"9", true},
		{"69", true},
		{"8", false},
		{"80", false},
		{"16", false},
		{"N", true},
		{"dp", true},
		{"", false},
	}
	for _, test := range tests {
		if got := isUpsideDownWrong(test.text); got != test.want {
			t.Errorf("isUpsideDownWrong(%q) = %t, want %t", test.text, got, test.want)
		}
	}
}

func TestGenerateLabel(t *testing.T) {
	tests := []struct {
		island Island
		want   [2]string
	}{
		{Island{Number: 3}, [2]string{"Island 3", "3"}},
		{Island{Number: 9}, [2]string{"Island 9", "9."}},
		{Island{Number: 86}, [2]string{"Island 86", "86."}},
		{Island{Number: 2, Label: "Roof", Abbreviation: "R"}, [2]string{"Roof", "R"}},
	}
	for _, test := range tests {
		island := test.island
		island.generateLabel()
		if diff := cmp.Diff(test.want, [2]string{island.Label, island.Abbreviation}); diff != "" {
			t.Errorf("island %d: label incorrect: %s", test.island.Number, diff)
		}
	}
}

func TestIndexText(t *testing.T) {
	for n, want := range map[int]string{1: "1", 6: "6.", 10: "10", 66: "66.", 68: "68."} {
		if got := indexText(n); got != want {
			t.Errorf("indexText(%d) = %q, want %q", n, got, want)
		}
	}
}
