// FILE: pkg/rag/tools/registry.go
// PURPOSE: Registry of callable tools grouped by profile. Profiles are
//          resolved per request; wiring tool invocation into the generation
//          call is a future extension point.

package tools

import (
	"strings"
)

// Profile names a capability set a request may select.
type Profile string

const (
	ProfileBasicChat Profile = "basic_chat"
	ProfileWebGuide  Profile = "web_guide"
)

// Definition describes one callable tool and the profiles it belongs to.
type Definition struct {
	Name        string
	Description string
	Profiles    []Profile
}

// Registry indexes tool definitions by name and by profile.
type Registry struct {
	byName    map[string]Definition
	byProfile map[Profile][]Definition
}

func NewRegistry(definitions ...Definition) *Registry {
	r := &Registry{
		byName:    make(map[string]Definition),
		byProfile: make(map[Profile][]Definition),
	}
	for _, def := range definitions {
		r.byName[def.Name] = def
		for _, profile := range def.Profiles {
			r.byProfile[profile] = append(r.byProfile[profile], def)
		}
	}
	return r
}

// ResolveProfile maps a client-supplied profile name onto a known profile,
// falling back to basic_chat for unknown or empty values.
func ResolveProfile(name string) Profile {
	switch Profile(strings.ToLower(strings.TrimSpace(name))) {
	case ProfileWebGuide:
		return ProfileWebGuide
	default:
		return ProfileBasicChat
	}
}

// ToolsForProfile returns the definitions registered under a profile.
func (r *Registry) ToolsForProfile(profile Profile) []Definition {
	return r.byProfile[profile]
}

// ToolNamesForProfile returns just the tool names for a profile.
func (r *Registry) ToolNamesForProfile(profile Profile) []string {
	defs := r.byProfile[profile]
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}

// FindByName looks up a tool definition by its name.
func (r *Registry) FindByName(name string) (Definition, bool) {
	def, ok := r.byName[name]
	return def, ok
}
