package arxiv

import (
	"testing"
)

func TestValidCategory(t *testing.T) {
	t.Parallel()

	cases := []struct {
		cat   string
		valid bool
	}{
		{"cs.AI", true},
		{"stat.ML", true},
		{"econ.EM", true},
		{"", false},
		{"csAI", false},
		{"cs. AI", false},
		{"cs.AI\tand more", false},
		{"cs.AIxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx", false},
	}

	for _, tc := range cases {
		if got := ValidCategory(tc.cat); got != tc.valid {
			t.Fatalf("ValidCategory(%q) = %v, want %v", tc.cat, got, tc.valid)
		}
	}
}

func TestBuildQueryBareKeyword(t *testing.T) {
	t.Parallel()

	got := BuildQuery("transformers", nil)
	if got != "transformers" {
		t.Fatalf("unexpected query: %s", got)
	}
}

func TestBuildQueryQuotesPhrases(t *testing.T) {
	t.Parallel()

	got := BuildQuery("large language models", nil)
	if got != `"large language models"` {
		t.Fatalf("phrase keyword not quoted: %s", got)
	}
}

func TestBuildQueryWithCategories(t *testing.T) {
	t.Parallel()

	got := BuildQuery("diffusion", []string{"cs.CV", "cs.LG"})
	want := "(diffusion) AND (cat:cs.CV OR cat:cs.LG)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBuildQueryDropsInvalidCategories(t *testing.T) {
	t.Parallel()

	got := BuildQuery("diffusion", []string{"nonsense", "cs.CV"})
	want := "(diffusion) AND (cat:cs.CV)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBuildQueryAllCategoriesInvalid(t *testing.T) {
	t.Parallel()

	got := BuildQuery("diffusion", []string{"nonsense", "also bad"})
	if got != "diffusion" {
		t.Fatalf("expected bare keyword when every category is dropped, got %q", got)
	}
}

func TestBuildQueryDeterministic(t *testing.T) {
	t.Parallel()

	a := BuildQuery("graph neural networks", []string{"cs.LG", "stat.ML"})
	b := BuildQuery("graph neural networks", []string{"cs.LG", "stat.ML"})
	if a != b {
		t.Fatalf("equal inputs produced different queries: %q vs %q", a, b)
	}
}
