package daemon

// State tracks where the daemon is in its lifecycle. Transitions only ever
// move forward; a reload does not revisit the startup states.
type State int

const (
	StateInit State = iota
	StateMigratingWindows
	StateLaunchingPlayers
	StateRestoringWindows
	StateInitialTiling
	StateListening
	StateShuttingDown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateMigratingWindows:
		return "migrating-windows"
	case StateLaunchingPlayers:
		return "launching-players"
	case StateRestoringWindows:
		return "restoring-windows"
	case StateInitialTiling:
		return "initial-tiling"
	case StateListening:
		return "listening"
	case StateShuttingDown:
		return "shutting-down"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
