package engine

import (
	"fmt"
	"sync/atomic"
)

// NameGen produces constant names that are never produced twice.
type NameGen interface {
	Fresh(base string) string
}

// Counter is a NameGen backed by an atomic counter. The zero value is
// ready to use and safe for concurrent use.
type Counter struct {
	n atomic.Uint64
}

// Fresh returns base followed by "!" and the next counter value. "!" is
// not an identifier character, so the name cannot clash with source
// symbols.
func (c *Counter) Fresh(base string) string {
	return fmt.Sprintf("%s!%d", base, c.n.Add(1))
}

// DefaultNames is shared by every program in the process, so goals
// compiled independently never receive the same skolem constant.
var DefaultNames NameGen = &Counter{}
