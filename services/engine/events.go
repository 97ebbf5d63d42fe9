package engine

type EventType int

const (
	EventRunStart EventType = iota
	EventEntry
	EventExit
	EventEntryRejected
	EventCooldownHold
	EventWarmupSkip
	EventRunEnd
)

func (t EventType) String() string {
	switch t {
	case EventRunStart:
		return "run_start"
	case EventEntry:
		return "entry"
	case EventExit:
		return "exit"
	case EventEntryRejected:
		return "entry_rejected"
	case EventCooldownHold:
		return "cooldown_hold"
	case EventWarmupSkip:
		return "warmup_skip"
	case EventRunEnd:
		return "run_end"
	default:
		return "unknown"
	}
}

type Event struct {
	Ts      int64
	Type    EventType
	Symbol  string
	Details map[string]string
}

// EventLog is an append-only record of run decisions, mirrored to the CLI
// in verbose mode.
type EventLog struct {
	Events []Event
}

func (l *EventLog) Append(e Event) { l.Events = append(l.Events, e) }

func (l *EventLog) Count(t EventType) int {
	n := 0
	for _, e := range l.Events {
		if e.Type == t {
			n++
		}
	}
	return n
}
