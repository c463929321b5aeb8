package events

// Event types published on the reload channel. These follow the format
// domain.action; the bare "reload" predates the format and is kept so
// hand-written publishers keep working.
const (
	EventTypeReload      = "reload"
	EventTypeFileChanged = "file.changed"
)
