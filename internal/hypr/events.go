package hypr

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
)

// EventKind tags the socket2 event variants the daemon reacts to.
type EventKind int

const (
	// EventUnknown covers every line the daemon does not act on.
	EventUnknown EventKind = iota
	// EventWorkspaceChanged fires when the active workspace changes.
	EventWorkspaceChanged
	// EventWindowOpened fires when a window is mapped.
	EventWindowOpened
	// EventWindowClosed fires when a window is unmapped.
	EventWindowClosed
	// EventWindowResized fires when a window is interactively resized.
	EventWindowResized
)

func (k EventKind) String() string {
	switch k {
	case EventWorkspaceChanged:
		return "workspace-changed"
	case EventWindowOpened:
		return "window-opened"
	case EventWindowClosed:
		return "window-closed"
	case EventWindowResized:
		return "window-resized"
	default:
		return "unknown"
	}
}

// Event is one parsed socket2 line. Which fields are set depends on Kind:
// Workspace for workspace changes, Address (plus Class/Title when the
// compositor supplies them) for window events.
type Event struct {
	Kind      EventKind
	Workspace int
	Address   string
	Class     string
	Title     string
	Raw       string
}

// ParseEvent turns one socket2 line into a tagged event. Lines use the
// "name>>payload" grammar with comma-separated payload fields. Anything
// unrecognized (including workspace events with non-numeric names, such as
// special workspaces) comes back as EventUnknown.
func ParseEvent(line string) Event {
	ev := Event{Kind: EventUnknown, Raw: line}

	name, payload, ok := strings.Cut(line, ">>")
	if !ok {
		return ev
	}

	switch name {
	case "workspacev2":
		// workspacev2>>ID,NAME
		idStr, _, _ := strings.Cut(payload, ",")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return ev
		}
		ev.Kind = EventWorkspaceChanged
		ev.Workspace = id

	case "workspace":
		// workspace>>NAME — the name equals the id for numbered workspaces.
		id, err := strconv.Atoi(payload)
		if err != nil {
			return ev
		}
		ev.Kind = EventWorkspaceChanged
		ev.Workspace = id

	case "openwindow":
		// openwindow>>ADDRESS,WORKSPACENAME,CLASS,TITLE
		fields := strings.SplitN(payload, ",", 4)
		if len(fields) < 1 || fields[0] == "" {
			return ev
		}
		ev.Kind = EventWindowOpened
		ev.Address = normalizeAddress(fields[0])
		if len(fields) >= 2 {
			if id, err := strconv.Atoi(fields[1]); err == nil {
				ev.Workspace = id
			}
		}
		if len(fields) >= 3 {
			ev.Class = fields[2]
		}
		if len(fields) >= 4 {
			ev.Title = fields[3]
		}

	case "closewindow":
		// closewindow>>ADDRESS
		if payload == "" {
			return ev
		}
		ev.Kind = EventWindowClosed
		ev.Address = normalizeAddress(payload)

	case "resizewindow":
		// resizewindow>>ADDRESS[,...]
		addr, _, _ := strings.Cut(payload, ",")
		if addr == "" {
			return ev
		}
		ev.Kind = EventWindowResized
		ev.Address = normalizeAddress(addr)
	}

	return ev
}

// normalizeAddress gives event addresses the same 0x form the clients query
// reports, so they can be compared and used in dispatch address: selectors.
func normalizeAddress(addr string) string {
	if strings.HasPrefix(addr, "0x") {
		return addr
	}
	return "0x" + addr
}

// Subscribe connects to the event socket and streams parsed events until the
// context is cancelled or the compositor closes the stream. The channel is
// closed on exit.
func (c *Client) Subscribe(ctx context.Context) (<-chan Event, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.eventSocket)
	if err != nil {
		return nil, err
	}

	events := make(chan Event)
	done := make(chan struct{})
	go func() {
		// Also exits when the compositor drops the stream, so a dead
		// connection does not pin this goroutine until cancellation.
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()
	go func() {
		defer close(events)
		defer close(done)
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			select {
			case events <- ParseEvent(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
