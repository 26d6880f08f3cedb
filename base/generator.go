package base

// Generator builds one structured output document per serialization call, e.g. XML or msgpack
//
// Calls must follow the order Begin, fields, nested maps, exception, End; a
// generator neither validates the full ordering nor tolerates reuse after End.
// Generators are not safe for concurrent use; each Format call owns its own.
type Generator interface {
	// Begin opens the document's root element; must be called exactly once, first
	Begin() error

	// AddField writes a single named scalar; an absent value becomes an empty element
	AddField(name string, value Value) error

	// AddNestedMap writes a named map of scalars in the map's insertion order;
	// a nil map becomes an empty element
	AddNestedMap(name string, fields *FieldMap) error

	// AddException writes the exception chain of a record; nil is a no-op
	AddException(exception *ExceptionInfo) error

	// End closes the root element and releases the underlying writer
	//
	// Flush and close failures of the writer are swallowed: a broken destination
	// must never fail the call site, and one failure must not prevent the other
	// teardown step from being attempted
	End() error
}
