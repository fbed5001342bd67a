package exchange

// Message is one direction of an Exchange: a payload plus named headers.
type Message struct {
	Body    interface{}
	headers map[string]interface{}
}

// NewMessage creates an empty message.
func NewMessage() *Message {
	return &Message{}
}

// Header returns the header value for key and whether it was present.
func (m *Message) Header(key string) (interface{}, bool) {
	v, ok := m.headers[key]
	return v, ok
}

// SetHeader sets a header value, allocating the header map lazily.
func (m *Message) SetHeader(key string, value interface{}) {
	if m.headers == nil {
		m.headers = make(map[string]interface{})
	}
	m.headers[key] = value
}

// RemoveHeader removes a header if present.
func (m *Message) RemoveHeader(key string) {
	delete(m.headers, key)
}

// Headers returns a copy of the header map.
func (m *Message) Headers() map[string]interface{} {
	if m.headers == nil {
		return nil
	}
	headers := make(map[string]interface{}, len(m.headers))
	for k, v := range m.headers {
		headers[k] = v
	}
	return headers
}

// Copy returns a shallow copy of the message. The body is shared; the header
// map is copied so the two messages can diverge.
func (m *Message) Copy() *Message {
	if m == nil {
		return nil
	}
	c := &Message{Body: m.Body}
	if m.headers != nil {
		c.headers = make(map[string]interface{}, len(m.headers))
		for k, v := range m.headers {
			c.headers[k] = v
		}
	}
	return c
}
