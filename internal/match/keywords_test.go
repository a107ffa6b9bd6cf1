package match

import (
	"strings"
	"testing"
)

func TestSynonymTableIsSymmetric(t *testing.T) {
	// Every synonym edge between two table keys must exist in both
	// directions, so "blockchain" expands to "web3" and vice versa.
	for key, synonyms := range interestSynonyms {
		for _, syn := range synonyms {
			peers, isKey := interestSynonyms[syn]
			if !isKey {
				continue
			}
			found := false
			for _, p := range peers {
				if p == key {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("%q lists %q but %q does not list %q back", key, syn, syn, key)
			}
		}
	}
}

func TestSynonymTableNormalized(t *testing.T) {
	for key, synonyms := range interestSynonyms {
		if key != strings.ToLower(strings.TrimSpace(key)) {
			t.Errorf("key %q not normalized", key)
		}
		seen := map[string]bool{}
		for _, syn := range synonyms {
			if syn != strings.ToLower(strings.TrimSpace(syn)) {
				t.Errorf("%q: synonym %q not normalized", key, syn)
			}
			if syn == key {
				t.Errorf("%q lists itself as a synonym", key)
			}
			if seen[syn] {
				t.Errorf("%q lists %q twice", key, syn)
			}
			seen[syn] = true
		}
	}
}

func TestExpandInterests(t *testing.T) {
	set := ExpandInterests([]string{"Web3", " blockchain "})
	for _, want := range []string{"web3", "blockchain", "crypto", "ethereum", "dorahacks"} {
		if _, ok := set[want]; !ok {
			t.Fatalf("expanded set missing %q", want)
		}
	}

	// Unknown interests still contribute themselves as a keyword.
	set = ExpandInterests([]string{"Astrophysics"})
	if _, ok := set["astrophysics"]; !ok {
		t.Fatalf("unknown interest not included verbatim")
	}
	if len(set) != 1 {
		t.Fatalf("unknown interest expanded to %d keywords, want 1", len(set))
	}

	if got := ExpandInterests(nil); len(got) != 0 {
		t.Fatalf("nil interests expanded to %d keywords", len(got))
	}
}
