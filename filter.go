package cp3d

// Bitmask is a set of up to 16 collision categories.
type Bitmask uint16

const (
	NO_CATEGORIES  Bitmask = 0
	ALL_CATEGORIES Bitmask = 0xFFFF
)

// Has reports whether every bit of bits is set in m.
func (m Bitmask) Has(bits Bitmask) bool {
	return m&bits == bits
}

// Intersects reports whether m and other share at least one category.
func (m Bitmask) Intersects(other Bitmask) bool {
	return m&other != 0
}

func (m Bitmask) IsEmpty() bool {
	return m == 0
}

// ShapeFilter decides which bodies may touch.
type ShapeFilter struct {
	/// The categories this body belongs to.
	Group Bitmask
	/// The categories this body collides with.
	/// Both bodies' group/mask combinations must agree for a collision to occur.
	Mask Bitmask
}

var (
	SHAPE_FILTER_ALL  = ShapeFilter{ALL_CATEGORIES, ALL_CATEGORIES}
	SHAPE_FILTER_NONE = ShapeFilter{NO_CATEGORIES, NO_CATEGORIES}
)

func NewShapeFilter(group, mask Bitmask) ShapeFilter {
	return ShapeFilter{Group: group, Mask: mask}
}

// Accepts is true when a and b may collide.
func (a ShapeFilter) Accepts(b ShapeFilter) bool {
	return a.Group.Intersects(b.Mask) && b.Group.Intersects(a.Mask)
}

func (a ShapeFilter) Reject(b ShapeFilter) bool {
	return !a.Accepts(b)
}

// Excluded is true when the filter can never accept anything. Such bodies are
// still valid constraint anchors.
func (a ShapeFilter) Excluded() bool {
	return a.Group.IsEmpty() || a.Mask.IsEmpty()
}
