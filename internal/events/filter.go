package events

// FilterKind names which of the four targeting modes a ClientFilter uses.
type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterInclude
	FilterExclude
	FilterDirect
)

// ClientFilter narrows an Event's recipients. The zero value (a nil
// *ClientFilter on Event) means the same thing as FilterAll: everyone.
type ClientFilter struct {
	Kind FilterKind
	IDs  []string // Include / Exclude
	ID   string   // Direct
}

func All() *ClientFilter                 { return &ClientFilter{Kind: FilterAll} }
func Include(ids ...string) *ClientFilter { return &ClientFilter{Kind: FilterInclude, IDs: ids} }
func Exclude(ids ...string) *ClientFilter { return &ClientFilter{Kind: FilterExclude, IDs: ids} }
func Direct(id string) *ClientFilter     { return &ClientFilter{Kind: FilterDirect, ID: id} }
