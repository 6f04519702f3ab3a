package browserui

import "testing"

func TestSearchQuery(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Amélie", "Amelie"},
		{"Léon: The Professional", "Leon: The Professional"},
		{"  Heat  ", "Heat"},
		{"The\tConversation", "The Conversation"},
		{"Põhjamaa", "Pohjamaa"},
		{"Plain Title", "Plain Title"},
	}
	for _, tc := range cases {
		if got := SearchQuery(tc.in); got != tc.want {
			t.Errorf("SearchQuery(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
