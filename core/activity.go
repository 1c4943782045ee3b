package core

// ActivityLogger records business events for audit trails kept outside this
// core. Record is fire-and-forget: implementations must never fail the caller.
type ActivityLogger interface {
	Record(eventType, actorID string, meta map[string]interface{})
}
