package scene

// Matcher selects elements.
type Matcher func(*Element) bool

// OfKind matches elements of kind k.
func OfKind(k Kind) Matcher {
	return func(e *Element) bool { return e.Kind == k }
}

// Class matches elements carrying class c.
func Class(c string) Matcher {
	return func(e *Element) bool { return e.HasClass(c) }
}

// Key matches elements whose category key is k.
func Key(k string) Matcher {
	return func(e *Element) bool { return e.Key == k }
}

// All matches elements satisfying every matcher.
func All(ms ...Matcher) Matcher {
	return func(e *Element) bool {
		for _, m := range ms {
			if !m(e) {
				return false
			}
		}
		return true
	}
}

// Any matches elements satisfying at least one matcher.
func Any(ms ...Matcher) Matcher {
	return func(e *Element) bool {
		for _, m := range ms {
			if m(e) {
				return true
			}
		}
		return false
	}
}

// Not inverts a matcher.
func Not(m Matcher) Matcher {
	return func(e *Element) bool { return !m(e) }
}

// Selection is an ordered set of elements that attribute writes apply to.
type Selection []*Element

// SelectAll returns the descendants of root (excluding root) matching m,
// in document order.
func SelectAll(root *Element, m Matcher) Selection {
	var sel Selection
	for _, c := range root.children {
		c.Walk(func(e *Element) bool {
			if m(e) {
				sel = append(sel, e)
			}
			return true
		})
	}
	return sel
}

// Select returns the first descendant of root matching m, or nil.
func Select(root *Element, m Matcher) *Element {
	if sel := SelectAll(root, m); len(sel) > 0 {
		return sel[0]
	}
	return nil
}

// Filter returns the elements of s matching m.
func (s Selection) Filter(m Matcher) Selection {
	var out Selection
	for _, e := range s {
		if m(e) {
			out = append(out, e)
		}
	}
	return out
}

// Attr sets an attribute on every element.
func (s Selection) Attr(name, value string) Selection {
	for _, e := range s {
		e.SetAttr(name, value)
	}
	return s
}

// Num sets a numeric attribute on every element.
func (s Selection) Num(name string, v float64) Selection {
	for _, e := range s {
		e.SetNum(name, v)
	}
	return s
}

// AttrFunc sets an attribute computed per element.
func (s Selection) AttrFunc(name string, fn func(*Element) string) Selection {
	for _, e := range s {
		e.SetAttr(name, fn(e))
	}
	return s
}

// NumFunc sets a numeric attribute computed per element.
func (s Selection) NumFunc(name string, fn func(*Element) float64) Selection {
	for _, e := range s {
		e.SetNum(name, fn(e))
	}
	return s
}

// Each calls fn for every element.
func (s Selection) Each(fn func(*Element)) Selection {
	for _, e := range s {
		fn(e)
	}
	return s
}
