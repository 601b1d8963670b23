package enrich

import "fmt"

// Context carries the mutable state of one parse. It is created per document
// and must not be shared between concurrent parses.
type Context struct {
	counters map[string]int
}

func NewContext() *Context {
	return &Context{counters: make(map[string]int)}
}

// NextID returns the next cross-reference identifier for a date role:
// "date-commence-1", "date-commence-2", and so on.
func (c *Context) NextID(role string) string {
	c.counters[role]++
	return fmt.Sprintf("date-%s-%d", role, c.counters[role])
}

// Count returns how many identifiers have been issued for role.
func (c *Context) Count(role string) int { return c.counters[role] }
