package model

// rebuildHierarchy recomputes subclasses/implementers in a single pass over
// every winning class-def (spec §4.2: "derived by a single pass over all
// class-defs"). Called after each AddDexFile; cheap enough at the scale
// this repo targets (thousands of classes) to just redo it.
func (c *Context) rebuildHierarchy() {
	c.subclasses = make(map[string][]string)
	c.implementers = make(map[string][]string)
	for _, cls := range c.byDescriptor {
		if cls.Super != nil {
			super := cls.Super.Descriptor
			c.subclasses[super] = append(c.subclasses[super], cls.Descriptor())
		}
		for _, iface := range cls.Interfaces {
			c.implementers[iface.Descriptor] = append(c.implementers[iface.Descriptor], cls.Descriptor())
		}
	}
}

// Subclasses returns the direct subclass descriptors of super. Spec
// invariant: subclasses(super) ∋ class ⇔ class.super == super.
func (c *Context) Subclasses(super string) []string {
	return append([]string(nil), c.subclasses[super]...)
}

// Implementers returns the direct implementer descriptors of an interface.
func (c *Context) Implementers(iface string) []string {
	return append([]string(nil), c.implementers[iface]...)
}

// IsSubclassOf walks the Super chain (bounded by context size to tolerate
// cycles from malformed input) to decide whether class is a descendant of
// ancestor, inclusive of class == ancestor.
func (c *Context) IsSubclassOf(classDescriptor, ancestorDescriptor string) bool {
	seen := make(map[string]bool)
	cur := classDescriptor
	for i := 0; i < len(c.byDescriptor)+1; i++ {
		if cur == ancestorDescriptor {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		cls := c.byDescriptor[cur]
		if cls == nil || cls.Super == nil {
			return false
		}
		cur = cls.Super.Descriptor
	}
	return false
}

// Implements reports whether class directly or transitively (via a
// superclass) implements iface.
func (c *Context) Implements(classDescriptor, iface string) bool {
	seen := make(map[string]bool)
	cur := classDescriptor
	for i := 0; i < len(c.byDescriptor)+1; i++ {
		cls := c.byDescriptor[cur]
		if cls == nil {
			return false
		}
		for _, im := range cls.Interfaces {
			if im.Descriptor == iface {
				return true
			}
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		if cls.Super == nil {
			return false
		}
		cur = cls.Super.Descriptor
	}
	return false
}

// ResolveMethod implements instance dispatch's upward lookup: starting at
// startDescriptor, find the first class (walking Super) that declares
// name+protoDesc. Used by invoke-virtual/interface (runtime-class start) and
// invoke-super (declaring class's superclass start).
func (c *Context) ResolveMethod(startDescriptor, name, protoDesc string) *Method {
	seen := make(map[string]bool)
	cur := startDescriptor
	for i := 0; i < len(c.byDescriptor)+1; i++ {
		if cur == "" || seen[cur] {
			return nil
		}
		seen[cur] = true
		cls := c.byDescriptor[cur]
		if cls == nil {
			return nil
		}
		if m := cls.FindMethod(name, protoDesc); m != nil {
			return m
		}
		if cls.Super == nil {
			return nil
		}
		cur = cls.Super.Descriptor
	}
	return nil
}
