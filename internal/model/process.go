package model

// State is the normalized scheduler state of a process.
type State string

const (
	StateRunning  State = "running"
	StateSleeping State = "sleeping"
	StateWaiting  State = "waiting" // uninterruptible wait
	StateStopped  State = "stopped"
	StateZombie   State = "zombie"
	StateDead     State = "dead"
	StateIdle     State = "idle"
	StateUnknown  State = "unknown"
)

// StateFromCode maps a Linux /proc state letter (the third field of
// /proc/<pid>/stat) to a State.
func StateFromCode(code string) State {
	if code == "" {
		return StateUnknown
	}
	switch code[0] {
	case 'R':
		return StateRunning
	case 'S':
		return StateSleeping
	case 'D', 'W', 'K':
		return StateWaiting
	case 'T', 't':
		return StateStopped
	case 'Z':
		return StateZombie
	case 'X', 'x':
		return StateDead
	case 'I', 'P':
		return StateIdle
	}
	return StateUnknown
}

// StateFromStatus maps a gopsutil status word to a State.
func StateFromStatus(status string) State {
	switch status {
	case "running":
		return StateRunning
	case "sleep":
		return StateSleeping
	case "wait", "blocked", "lock":
		return StateWaiting
	case "stop":
		return StateStopped
	case "zombie":
		return StateZombie
	case "dead":
		return StateDead
	case "idle":
		return StateIdle
	}
	return StateUnknown
}

// ProcessRecord is one live process as seen by a single enumeration.
// Memory sizes are in bytes, CPUTime in whole seconds of user+system time.
type ProcessRecord struct {
	PID      int32
	PPID     int32
	Name     string
	State    State
	VMSize   uint64
	RSS      uint64
	Nice     int32
	CPUTime  uint64
	Username string
}
