package styles

import (
	"strings"
	"testing"
)

func TestResolveUnknownFallsBackToBaseline(t *testing.T) {
	reg := Default()
	for _, id := range []string{"", "   ", "does-not-exist", "TRADITIONAL"} {
		got, ok := reg.Resolve(id)
		if !ok {
			t.Fatalf("Resolve(%q) reported missing baseline", id)
		}
		if got.ID != BaselineStyle {
			t.Fatalf("Resolve(%q) = %q, want %q", id, got.ID, BaselineStyle)
		}
	}
}

func TestResolveKnownStyles(t *testing.T) {
	reg := Default()
	tests := map[string]string{
		"shadow":         ProviderFlux,
		"modern":         ProviderTurbo,
		"fantasy":        ProviderNanoBanana,
		"street":         ProviderFlux,
		"ultimate_kirie": ProviderNanoBanana,
	}
	for id, provider := range tests {
		got, _ := reg.Resolve(id)
		if got.ID != id || got.Provider != provider {
			t.Fatalf("Resolve(%q) = %+v", id, got)
		}
	}
}

func TestRegistryWithoutBaseline(t *testing.T) {
	reg := NewRegistry("missing", StyleConfig{ID: "zen", Provider: ProviderTurbo, Template: "{subject}"})
	if _, ok := reg.Resolve("nope"); ok {
		t.Fatalf("expected Resolve to report a missing baseline")
	}
	if got, ok := reg.Resolve("zen"); !ok || got.ID != "zen" {
		t.Fatalf("known style should still resolve")
	}
}

func TestListOrderAndProviders(t *testing.T) {
	reg := Default()
	list := reg.List()
	if len(list) != 9 {
		t.Fatalf("expected 9 styles, got %d", len(list))
	}
	if list[0].ID != "traditional" || list[len(list)-1].ID != "ultimate_kirie" {
		t.Fatalf("unexpected order: first %q last %q", list[0].ID, list[len(list)-1].ID)
	}
	providers := reg.Providers()
	if len(providers) != 3 {
		t.Fatalf("expected nanobanana, flux and turbo, got %v", providers)
	}
}

func TestNewRegistryKeepsFirstDuplicate(t *testing.T) {
	reg := NewRegistry("a",
		StyleConfig{ID: "a", DisplayName: "first"},
		StyleConfig{ID: " A ", DisplayName: "second"},
		StyleConfig{ID: ""},
	)
	if got := reg.List(); len(got) != 1 || got[0].DisplayName != "first" {
		t.Fatalf("unexpected registry contents %+v", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	style, _ := Default().Resolve("traditional")
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "a red apple", want: "a red apple"},
		{name: "trimmed and collapsed", in: "  red \n apple ", want: "red apple"},
		{name: "empty uses filler", in: "", want: FillerSubject},
		{name: "whitespace uses filler", in: " \t ", want: FillerSubject},
		{name: "single char", in: "a", want: "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPrompt(tt.in, style)
			if !strings.Contains(got, tt.want) {
				t.Fatalf("prompt %q does not contain subject %q", got, tt.want)
			}
			if !strings.Contains(got, "kirigami") {
				t.Fatalf("prompt %q lost the style keywords", got)
			}
			if strings.Contains(got, SubjectPlaceholder) {
				t.Fatalf("placeholder left in prompt %q", got)
			}
		})
	}
}

func TestShortPromptsKeepStyleKeywordsForEveryStyle(t *testing.T) {
	for _, style := range Default().List() {
		got := BuildPrompt("x", style)
		if len(got) <= len("x")+10 {
			t.Fatalf("style %s produced a bare prompt %q", style.ID, got)
		}
		if !strings.Contains(strings.ToLower(got), "paper") {
			t.Fatalf("style %s prompt lacks paper keywords: %q", style.ID, got)
		}
	}
}

func TestPromptWithoutPlaceholderAppendsTemplate(t *testing.T) {
	s := StyleConfig{Template: "paper cut"}
	if got := s.Prompt("owl"); got != "owl, paper cut" {
		t.Fatalf("unexpected prompt %q", got)
	}
}
