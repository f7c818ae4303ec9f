package types

import "time"

// Detail keys written on a node when it is thrown. They are present together
// or not at all.
const (
	DetailFormerName    = "FormerName"
	DetailFormerParent  = "FormerParent"
	DetailFormerExpires = "FormerExpires"
	DetailDeletedDate   = "DeletedDate"
)

// ThrownDetailKeys lists the trash metadata keys in the order they are written.
var ThrownDetailKeys = []string{
	DetailFormerName,
	DetailFormerParent,
	DetailFormerExpires,
	DetailDeletedDate,
}

// ThrownInfo is the bookkeeping needed to reverse a throw.
type ThrownInfo struct {
	FormerName     string
	FormerParentID string
	FormerExpires  *time.Time // nil when the node had no expiration
	DeletedAt      time.Time
}

// MarkThrown writes the four trash metadata keys as a group.
func (n *Node) MarkThrown(info ThrownInfo) {
	n.Details.put(DetailFormerName, info.FormerName)
	n.Details.put(DetailFormerParent, info.FormerParentID)
	if info.FormerExpires != nil {
		n.Details.put(DetailFormerExpires, info.FormerExpires.UTC())
	} else {
		n.Details.put(DetailFormerExpires, nil)
	}
	n.Details.put(DetailDeletedDate, info.DeletedAt.UTC())
}

// ClearThrown removes the four trash metadata keys as a group.
func (n *Node) ClearThrown() {
	for _, k := range ThrownDetailKeys {
		n.Details.Delete(k)
	}
}

// Thrown returns the trash metadata of n. ok is false when any of the four
// keys is missing or holds a value of the wrong type.
func (n *Node) Thrown() (info ThrownInfo, ok bool) {
	if n.CheckThrownInvariant() != nil || !n.Details.Has(DetailDeletedDate) {
		return ThrownInfo{}, false
	}
	name, err := n.Details.String(DetailFormerName)
	if err != nil {
		return ThrownInfo{}, false
	}
	parentID, err := n.Details.String(DetailFormerParent)
	if err != nil {
		return ThrownInfo{}, false
	}
	deleted, err := n.Details.Time(DetailDeletedDate)
	if err != nil {
		return ThrownInfo{}, false
	}
	info = ThrownInfo{FormerName: name, FormerParentID: parentID, DeletedAt: deleted}
	if v, _ := n.Details.Get(DetailFormerExpires); v != nil {
		t, isTime := v.(time.Time)
		if !isTime {
			return ThrownInfo{}, false
		}
		info.FormerExpires = &t
	}
	return info, true
}

// DeletedAt returns the deletion date stamped on n, if any.
func (n *Node) DeletedAt() (time.Time, bool) {
	t, err := n.Details.Time(DetailDeletedDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CheckThrownInvariant returns ErrPartialTrashMetadata when some but not all
// of the trash metadata keys are present.
func (n *Node) CheckThrownInvariant() error {
	present := 0
	for _, k := range ThrownDetailKeys {
		if n.Details.Has(k) {
			present++
		}
	}
	if present != 0 && present != len(ThrownDetailKeys) {
		return ErrPartialTrashMetadata
	}
	return nil
}
