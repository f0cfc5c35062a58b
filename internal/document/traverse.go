// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package document

// Resolve returns the value that path addresses within doc.
func Resolve(doc Value, path Path) (Value, error) {
	cur := doc
	for depth, seg := range path {
		next, err := step(cur, path, depth, seg)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Assign replaces the value addressed by path with v and returns the new
// document root. A map key segment creates the entry if it is missing; a
// list index segment must address an existing element. An empty path
// replaces the whole document.
//
// Containers along the path are modified in place.
func Assign(doc Value, path Path, v Value) (Value, error) {
	return edit(doc, path, func(container Value, depth int, seg Segment) (Value, error) {
		switch c := container.(type) {
		case Map:
			k, ok := seg.MapKey()
			if !ok {
				return nil, pathError(path, depth, c, ErrSegmentKind)
			}
			c[k] = v
			return c, nil
		case List:
			i, ok := seg.ListIndex()
			if !ok {
				return nil, pathError(path, depth, c, ErrSegmentKind)
			}
			if i < 0 || i >= len(c) {
				return nil, pathError(path, depth, c, ErrIndexOutOfRange)
			}
			c[i] = v
			return c, nil
		}
		return nil, pathError(path, depth, container, ErrNotContainer)
	}, v)
}

// Insert inserts v into the list addressed by all but the last segment of
// path, at the index given by the last segment; later elements shift
// right. The index may equal the list length to append. An empty path
// replaces the whole document.
func Insert(doc Value, path Path, v Value) (Value, error) {
	return edit(doc, path, func(container Value, depth int, seg Segment) (Value, error) {
		c, ok := container.(List)
		if !ok {
			if _, isMap := container.(Map); isMap {
				return nil, pathError(path, depth, container, ErrSegmentKind)
			}
			return nil, pathError(path, depth, container, ErrNotContainer)
		}
		i, ok := seg.ListIndex()
		if !ok {
			return nil, pathError(path, depth, c, ErrSegmentKind)
		}
		if i < 0 || i > len(c) {
			return nil, pathError(path, depth, c, ErrIndexOutOfRange)
		}
		ret := make(List, 0, len(c)+1)
		ret = append(ret, c[:i]...)
		ret = append(ret, v)
		return append(ret, c[i:]...), nil
	}, v)
}

// Remove deletes the map entry or list element addressed by path. Removing
// the empty path resets the document to null.
func Remove(doc Value, path Path) (Value, error) {
	return edit(doc, path, func(container Value, depth int, seg Segment) (Value, error) {
		switch c := container.(type) {
		case Map:
			k, ok := seg.MapKey()
			if !ok {
				return nil, pathError(path, depth, c, ErrSegmentKind)
			}
			if _, exists := c[k]; !exists {
				return nil, pathError(path, depth, c, ErrNoSuchKey)
			}
			delete(c, k)
			return c, nil
		case List:
			i, ok := seg.ListIndex()
			if !ok {
				return nil, pathError(path, depth, c, ErrSegmentKind)
			}
			if i < 0 || i >= len(c) {
				return nil, pathError(path, depth, c, ErrIndexOutOfRange)
			}
			ret := make(List, 0, len(c)-1)
			ret = append(ret, c[:i]...)
			return append(ret, c[i+1:]...), nil
		}
		return nil, pathError(path, depth, container, ErrNotContainer)
	}, Null{})
}

// edit walks all but the last segment of path and hands the container it
// reaches to apply, writing the returned container back into its parent.
// For the empty path the result is root.
func edit(doc Value, path Path, apply func(container Value, depth int, seg Segment) (Value, error), root Value) (Value, error) {
	if len(path) == 0 {
		return root, nil
	}
	return editAt(doc, path, 0, apply)
}

func editAt(cur Value, path Path, depth int, apply func(Value, int, Segment) (Value, error)) (Value, error) {
	seg := path[depth]
	if depth == len(path)-1 {
		return apply(cur, depth, seg)
	}
	child, err := step(cur, path, depth, seg)
	if err != nil {
		return nil, err
	}
	newChild, err := editAt(child, path, depth+1, apply)
	if err != nil {
		return nil, err
	}
	// step already checked that seg fits cur.
	switch c := cur.(type) {
	case Map:
		k, _ := seg.MapKey()
		c[k] = newChild
	case List:
		i, _ := seg.ListIndex()
		c[i] = newChild
	}
	return cur, nil
}

func step(cur Value, path Path, depth int, seg Segment) (Value, error) {
	switch c := cur.(type) {
	case Map:
		k, ok := seg.MapKey()
		if !ok {
			return nil, pathError(path, depth, c, ErrSegmentKind)
		}
		v, exists := c[k]
		if !exists {
			return nil, pathError(path, depth, c, ErrNoSuchKey)
		}
		return v, nil
	case List:
		i, ok := seg.ListIndex()
		if !ok {
			return nil, pathError(path, depth, c, ErrSegmentKind)
		}
		if i < 0 || i >= len(c) {
			return nil, pathError(path, depth, c, ErrIndexOutOfRange)
		}
		return c[i], nil
	}
	return nil, pathError(path, depth, cur, ErrNotContainer)
}

func pathError(path Path, depth int, found Value, err error) *PathError {
	return &PathError{Path: path, Depth: depth, Found: KindOf(found), Err: err}
}
