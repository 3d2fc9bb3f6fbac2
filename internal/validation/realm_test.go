package validation

import "testing"

func TestValidateRealmSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		slug string
		ok   bool
	}{
		{name: "valid with number", slug: "travel-2", ok: true},
		{name: "valid plain", slug: "photography", ok: true},
		{name: "too short", slug: "ab", ok: false},
		{name: "minimum length", slug: "abc", ok: true},
		{name: "maximum length", slug: "abcdefghijklmnopqrstuvwx", ok: true},
		{name: "too long", slug: "abcdefghijklmnopqrstuvwxy", ok: false},
		{name: "uppercase", slug: "Travel", ok: false},
		{name: "underscore", slug: "digital_art", ok: false},
		{name: "space", slug: "digital art", ok: false},
		{name: "leading hyphen", slug: "-travel", ok: false},
		{name: "trailing hyphen", slug: "travel-", ok: false},
		{name: "reserved api", slug: "api", ok: false},
		{name: "reserved feed", slug: "feed", ok: false},
		{name: "reserved realms", slug: "realms", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRealmSlug(tc.slug)
			if tc.ok && err != nil {
				t.Fatalf("expected valid slug, got error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected invalid slug, got nil error")
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Urban Photography":                       "urban-photography",
		"Digital Art Masters":                     "digital-art-masters",
		"  Travel & Adventures!! ":                "travel-adventures",
		"A very long realm name that keeps going": "a-very-long-realm-name-t",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
