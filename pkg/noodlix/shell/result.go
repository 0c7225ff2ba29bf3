package shell

import (
	"strings"

	"github.com/bytedance/sonic"
)

// Kind tags the variant held by a Result
type Kind int

const (
	// KindOutput carries lines of text, possibly none
	KindOutput Kind = iota
	// KindClearScreen asks the front end to clear the screen
	KindClearScreen
	// KindLogout ends the session
	KindLogout
	// KindEnterEditor opens the editor on Path
	KindEnterEditor
	// KindEnterBrowser opens the browser on URL
	KindEnterBrowser
)

// String returns the variant name
func (k Kind) String() string {
	switch k {
	case KindOutput:
		return "output"
	case KindClearScreen:
		return "clear"
	case KindLogout:
		return "logout"
	case KindEnterEditor:
		return "editor"
	case KindEnterBrowser:
		return "browser"
	default:
		return "unknown"
	}
}

// Legacy string markers understood by older front ends
const (
	MarkerClear   = "__CLEAR__"
	MarkerLogout  = "__LOGOUT__"
	MarkerEditor  = "__NOTE_EDIT__"
	MarkerBrowser = "__BROWSE_INITIATE__"
)

// Result is what a command hands back to the front end
type Result struct {
	Kind  Kind
	Lines []string // KindOutput
	Path  string   // KindEnterEditor, canonical absolute path
	URL   string   // KindEnterBrowser, absolute URL
}

// Output creates a text result; no lines means no output at all
func Output(lines ...string) Result {
	return Result{Kind: KindOutput, Lines: lines}
}

// Outputf splits text on newlines into an output result
func Outputf(text string) Result {
	if text == "" {
		return Output()
	}
	return Output(strings.Split(text, "\n")...)
}

// ClearScreen creates a clear-screen signal
func ClearScreen() Result { return Result{Kind: KindClearScreen} }

// Logout creates a logout signal
func Logout() Result { return Result{Kind: KindLogout} }

// EnterEditor creates an editor signal for path
func EnterEditor(path string) Result { return Result{Kind: KindEnterEditor, Path: path} }

// EnterBrowser creates a browser signal for url
func EnterBrowser(url string) Result { return Result{Kind: KindEnterBrowser, URL: url} }

// Text joins the output lines with newlines
func (r Result) Text() string {
	return strings.Join(r.Lines, "\n")
}

// IsEmpty reports an output result without lines
func (r Result) IsEmpty() bool {
	return r.Kind == KindOutput && len(r.Lines) == 0
}

type editorPayload struct {
	Filename string `json:"filename"`
}

// Marker renders the result in the legacy string protocol
func (r Result) Marker() string {
	switch r.Kind {
	case KindClearScreen:
		return MarkerClear
	case KindLogout:
		return MarkerLogout
	case KindEnterEditor:
		payload, err := sonic.Marshal(editorPayload{Filename: r.Path})
		if err != nil {
			return MarkerEditor
		}
		return MarkerEditor + string(payload)
	case KindEnterBrowser:
		return MarkerBrowser + r.URL
	default:
		return r.Text()
	}
}

// ParseMarker decodes a legacy string into a Result. Anything that is not
// a recognised marker is plain output.
func ParseMarker(s string) Result {
	switch {
	case s == MarkerClear:
		return ClearScreen()
	case s == MarkerLogout:
		return Logout()
	case strings.HasPrefix(s, MarkerEditor):
		var payload editorPayload
		if err := sonic.UnmarshalString(strings.TrimPrefix(s, MarkerEditor), &payload); err == nil && payload.Filename != "" {
			return EnterEditor(payload.Filename)
		}
	case strings.HasPrefix(s, MarkerBrowser):
		if url := strings.TrimPrefix(s, MarkerBrowser); url != "" {
			return EnterBrowser(url)
		}
	}
	return Outputf(s)
}
