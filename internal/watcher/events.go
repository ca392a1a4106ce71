package watcher

import "time"

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// FileEvent is one coalesced file-system change. Batches of these trigger
// spec rebuilds.
type FileEvent struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}
