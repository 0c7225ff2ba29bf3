package shell

import (
	"reflect"
	"testing"
)

func TestResultMarkers(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		marker string
	}{
		{"clear", ClearScreen(), "__CLEAR__"},
		{"logout", Logout(), "__LOGOUT__"},
		{"editor", EnterEditor("/home/alice/notes.txt"), `__NOTE_EDIT__{"filename":"/home/alice/notes.txt"}`},
		{"browser", EnterBrowser("http://example.com"), "__BROWSE_INITIATE__http://example.com"},
		{"output", Output("one", "two"), "one\ntwo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Marker(); got != tt.marker {
				t.Errorf("Marker() = %q, want %q", got, tt.marker)
			}
			if got := ParseMarker(tt.marker); !reflect.DeepEqual(got, tt.result) {
				t.Errorf("ParseMarker(%q) = %+v, want %+v", tt.marker, got, tt.result)
			}
		})
	}
}

func TestParseMarkerFallsBackToOutput(t *testing.T) {
	for _, s := range []string{"__NOTE_EDIT__not json", "__BROWSE_INITIATE__", "hello"} {
		if got := ParseMarker(s); got.Kind != KindOutput {
			t.Errorf("ParseMarker(%q) kind = %s, want output", s, got.Kind)
		}
	}
	if got := ParseMarker(""); !got.IsEmpty() {
		t.Errorf("Empty marker should be empty output, got %+v", got)
	}
}
