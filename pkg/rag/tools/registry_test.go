package tools

import "testing"

func testRegistry() *Registry {
	return NewRegistry(
		Definition{Name: "kb_search", Profiles: []Profile{ProfileBasicChat, ProfileWebGuide}},
		Definition{Name: "page_navigator", Profiles: []Profile{ProfileWebGuide}},
	)
}

func TestResolveProfile(t *testing.T) {
	tests := []struct {
		input string
		want  Profile
	}{
		{"web_guide", ProfileWebGuide},
		{"  Web_Guide ", ProfileWebGuide},
		{"basic_chat", ProfileBasicChat},
		{"", ProfileBasicChat},
		{"nonsense", ProfileBasicChat},
	}

	for _, tt := range tests {
		if got := ResolveProfile(tt.input); got != tt.want {
			t.Errorf("ResolveProfile(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToolNamesForProfile(t *testing.T) {
	r := testRegistry()

	basic := r.ToolNamesForProfile(ProfileBasicChat)
	if len(basic) != 1 || basic[0] != "kb_search" {
		t.Errorf("basic_chat tools = %v", basic)
	}

	web := r.ToolNamesForProfile(ProfileWebGuide)
	if len(web) != 2 {
		t.Errorf("web_guide tools = %v", web)
	}
}

func TestFindByName(t *testing.T) {
	r := testRegistry()

	if _, ok := r.FindByName("kb_search"); !ok {
		t.Error("kb_search not found")
	}
	if _, ok := r.FindByName("missing"); ok {
		t.Error("unexpected hit for missing tool")
	}
}
