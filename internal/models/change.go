package models

// EventType is the kind of a storage change notification.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Table names used in change notifications.
const (
	TableCheeseTypes = "cheese_types"
	TableProductions = "productions"
	TableActivities  = "activities"
)

// ChangeEvent describes one stored record being inserted, updated or
// deleted. Exactly one of the record pointers is set for INSERT and UPDATE;
// DELETE carries only Table and ID.
type ChangeEvent struct {
	Type       EventType
	Table      string
	ID         string
	CheeseType *CheeseType
	Production *Production
	Activity   *Activity
}

// Record returns the record carried by the event, or nil.
func (e ChangeEvent) Record() any {
	switch {
	case e.CheeseType != nil:
		return e.CheeseType
	case e.Production != nil:
		return e.Production
	case e.Activity != nil:
		return e.Activity
	}
	return nil
}

// CheeseTypeChanged builds an event for a cheese type.
func CheeseTypeChanged(t EventType, c CheeseType) ChangeEvent {
	return ChangeEvent{Type: t, Table: TableCheeseTypes, ID: c.ID, CheeseType: &c}
}

// ProductionChanged builds an event for a production.
func ProductionChanged(t EventType, p Production) ChangeEvent {
	return ChangeEvent{Type: t, Table: TableProductions, ID: p.ID, Production: &p}
}

// ActivityChanged builds an event for an activity.
func ActivityChanged(t EventType, a Activity) ChangeEvent {
	return ChangeEvent{Type: t, Table: TableActivities, ID: a.ID, Activity: &a}
}

// Deleted builds a DELETE event.
func Deleted(table, id string) ChangeEvent {
	return ChangeEvent{Type: EventDelete, Table: table, ID: id}
}
