package exchange

import (
	"fmt"

	"github.com/google/uuid"
)

// Pattern describes whether an exchange expects a reply message.
type Pattern string

const (
	// InOnly is a one-way exchange: the In message is the whole conversation.
	InOnly Pattern = "InOnly"
	// InOut is a request-reply exchange: an Out message is expected.
	InOut Pattern = "InOut"
)

// IsOutCapable returns true if the pattern allows an Out message.
func (p Pattern) IsOutCapable() bool {
	return p == InOut
}

// Well-known property keys.
const (
	// PropertyRouteStop halts routing when set to a true-convertible value.
	// Stages set it during their own processing; the pipeline re-reads it at
	// every step boundary.
	PropertyRouteStop = "RouteStop"
)

// Exchange is the mutable envelope routed through a pipeline. It is owned by
// exactly one stage at a time and is not safe for concurrent mutation.
type Exchange struct {
	id           string
	pattern      Pattern
	in           *Message
	out          *Message
	properties   map[string]interface{}
	err          error
	rollbackOnly bool
	transacted   bool
}

// New creates an exchange with a generated ID and an empty In message.
func New(pattern Pattern) *Exchange {
	return &Exchange{
		id:      uuid.New().String(),
		pattern: pattern,
		in:      NewMessage(),
	}
}

// ID returns the exchange ID.
func (e *Exchange) ID() string {
	return e.id
}

// Pattern returns the exchange pattern.
func (e *Exchange) Pattern() Pattern {
	return e.pattern
}

// In returns the current input message, never nil.
func (e *Exchange) In() *Message {
	if e.in == nil {
		e.in = NewMessage()
	}
	return e.in
}

// SetIn replaces the input message.
func (e *Exchange) SetIn(msg *Message) {
	e.in = msg
}

// Out returns the output message, allocating it on first use.
func (e *Exchange) Out() *Message {
	if e.out == nil {
		e.out = NewMessage()
	}
	return e.out
}

// SetOut replaces the output message. Passing nil clears it.
func (e *Exchange) SetOut(msg *Message) {
	e.out = msg
}

// HasOut reports whether an output message has been produced.
func (e *Exchange) HasOut() bool {
	return e.out != nil
}

// Property returns the property value for key and whether it was present.
func (e *Exchange) Property(key string) (interface{}, bool) {
	v, ok := e.properties[key]
	return v, ok
}

// SetProperty sets a property, allocating the property map lazily.
func (e *Exchange) SetProperty(key string, value interface{}) {
	if e.properties == nil {
		e.properties = make(map[string]interface{})
	}
	e.properties[key] = value
}

// RemoveProperty removes a property if present.
func (e *Exchange) RemoveProperty(key string) {
	delete(e.properties, key)
}

// Properties returns a copy of the property map.
func (e *Exchange) Properties() map[string]interface{} {
	if e.properties == nil {
		return nil
	}
	props := make(map[string]interface{}, len(e.properties))
	for k, v := range e.properties {
		props[k] = v
	}
	return props
}

// Err returns the error recorded on the exchange, if any.
func (e *Exchange) Err() error {
	return e.err
}

// SetErr records a processing error on the exchange. Failures travel on the
// exchange, not as return values out of the routing machinery.
func (e *Exchange) SetErr(err error) {
	e.err = err
}

// IsFailed reports whether an error has been recorded.
func (e *Exchange) IsFailed() bool {
	return e.err != nil
}

// IsRollbackOnly reports whether the exchange is marked rollback-only.
func (e *Exchange) IsRollbackOnly() bool {
	return e.rollbackOnly
}

// SetRollbackOnly marks the exchange rollback-only, which stops further
// routing at the next step boundary.
func (e *Exchange) SetRollbackOnly(rollback bool) {
	e.rollbackOnly = rollback
}

// IsTransacted reports whether the exchange participates in a transaction.
func (e *Exchange) IsTransacted() bool {
	return e.transacted
}

// SetTransacted selects the transacted scheduling discipline for this
// exchange: the first routing step prefers the originating goroutine.
func (e *Exchange) SetTransacted(transacted bool) {
	e.transacted = transacted
}

// String returns a short diagnostic form.
func (e *Exchange) String() string {
	return fmt.Sprintf("Exchange[%s]", e.id)
}
