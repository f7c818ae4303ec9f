package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/k1LoW/duration"
)

// Detail keys holding trash container settings.
const (
	DetailTrashEnabled  = "TrashEnabled"
	DetailPurgeInterval = "PurgeInterval"
)

// TrashName is the reserved name and title of the trash container.
const TrashName = "Trash"

// PurgeInterval is the retention window of thrown items, in days. Never
// disables purging.
type PurgeInterval int

// Named purge intervals.
const (
	PurgeNever     PurgeInterval = 0
	PurgeDaily     PurgeInterval = 1
	PurgeWeekly    PurgeInterval = 7
	PurgeMonthly   PurgeInterval = 31
	PurgeQuarterly PurgeInterval = 91
	PurgeYearly    PurgeInterval = 365
)

var namedIntervals = map[string]PurgeInterval{
	"never":     PurgeNever,
	"daily":     PurgeDaily,
	"weekly":    PurgeWeekly,
	"monthly":   PurgeMonthly,
	"quarterly": PurgeQuarterly,
	"yearly":    PurgeYearly,
}

// Days returns the retention window in days.
func (p PurgeInterval) Days() int {
	return int(p)
}

// IsNever reports whether purging is disabled.
func (p PurgeInterval) IsNever() bool {
	return p <= PurgeNever
}

func (p PurgeInterval) String() string {
	for name, v := range namedIntervals {
		if v == p {
			return name
		}
	}
	return fmt.Sprintf("%d days", int(p))
}

// ParsePurgeInterval accepts a named interval ("never", "daily", "weekly",
// "monthly", "quarterly", "yearly"), a plain number of days, or a human
// duration such as "30 days". Durations must be whole days.
func ParsePurgeInterval(s string) (PurgeInterval, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return PurgeNever, fmt.Errorf("%w: empty", ErrInvalidPurgeInterval)
	}
	if p, ok := namedIntervals[s]; ok {
		return p, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return PurgeNever, fmt.Errorf("%w: %q is negative", ErrInvalidPurgeInterval, s)
		}
		return PurgeInterval(n), nil
	}
	d, err := duration.Parse(s)
	if err != nil {
		return PurgeNever, fmt.Errorf("%w: %q: %v", ErrInvalidPurgeInterval, s, err)
	}
	const day = 24 * time.Hour
	if d < 0 || d%day != 0 {
		return PurgeNever, fmt.Errorf("%w: %q is not a whole number of days", ErrInvalidPurgeInterval, s)
	}
	return PurgeInterval(d / day), nil
}

// TrashContainer is the node under which thrown items are parked.
type TrashContainer struct {
	*Node
}

// AsTrashContainer wraps n when it is a trash container.
func AsTrashContainer(n *Node) (*TrashContainer, bool) {
	if n == nil || n.TypeName != TrashContainerType {
		return nil, false
	}
	return &TrashContainer{Node: n}, true
}

// Enabled reports whether items may be thrown into the container. A container
// without the setting is enabled.
func (c *TrashContainer) Enabled() bool {
	b, err := c.Details.Bool(DetailTrashEnabled)
	if err != nil {
		return true
	}
	return b
}

// SetEnabled stores the enabled flag.
func (c *TrashContainer) SetEnabled(enabled bool) {
	c.Details.put(DetailTrashEnabled, enabled)
}

// PurgeInterval returns the retention window. A container without the
// setting purges monthly.
func (c *TrashContainer) PurgeInterval() PurgeInterval {
	n, err := c.Details.Int(DetailPurgeInterval)
	if err != nil {
		return PurgeMonthly
	}
	return PurgeInterval(n)
}

// SetPurgeInterval stores the retention window.
func (c *TrashContainer) SetPurgeInterval(p PurgeInterval) {
	c.Details.put(DetailPurgeInterval, int64(p))
}
