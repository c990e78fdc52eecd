package hypr

// WorkspaceRef is the workspace reference embedded in client and monitor
// payloads.
type WorkspaceRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Monitor describes one output as reported by "j/monitors".
type Monitor struct {
	ID              int          `json:"id"`
	Name            string       `json:"name"`
	X               int          `json:"x"`
	Y               int          `json:"y"`
	Width           int          `json:"width"`
	Height          int          `json:"height"`
	Focused         bool         `json:"focused"`
	ActiveWorkspace WorkspaceRef `json:"activeWorkspace"`
}

// Window describes one client as reported by "j/clients".
type Window struct {
	Address   string       `json:"address"`
	At        [2]int       `json:"at"`
	Size      [2]int       `json:"size"`
	Workspace WorkspaceRef `json:"workspace"`
	Floating  bool         `json:"floating"`
	Class     string       `json:"class"`
	Title     string       `json:"title"`
	PID       int          `json:"pid"`
	Monitor   int          `json:"monitor"`
}

// X returns the window's left edge.
func (w Window) X() int { return w.At[0] }

// Y returns the window's top edge.
func (w Window) Y() int { return w.At[1] }

// Width returns the window's width.
func (w Window) Width() int { return w.Size[0] }

// Height returns the window's height.
func (w Window) Height() int { return w.Size[1] }
