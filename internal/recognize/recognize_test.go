package recognize

import "testing"

func TestEventTranscript(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want string
		ok   bool
	}{
		{name: "empty", ev: Event{}},
		{name: "interim", ev: Event{Results: []Result{{Alternatives: []string{"hel"}}}}},
		{name: "final", ev: Event{Results: []Result{{Alternatives: []string{"hello", "yellow"}, IsFinal: true}}}, want: "hello", ok: true},
		{
			name: "latest wins",
			ev: Event{Results: []Result{
				{Alternatives: []string{"earlier"}, IsFinal: true},
				{Alternatives: []string{"later"}},
			}},
		},
		{name: "final without alternatives", ev: Event{Results: []Result{{IsFinal: true}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.ev.Transcript()
			if ok != tc.ok || got != tc.want {
				t.Fatalf("Transcript() = %q, %v; want %q, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("")
	if !cfg.Continuous || !cfg.InterimResults || cfg.Locale != DefaultLocale {
		t.Fatalf("unexpected default config: %+v", cfg)
	}
	if DefaultConfig("de-DE").Locale != "de-DE" {
		t.Fatalf("expected locale override")
	}
}
