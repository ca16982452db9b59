package shared

import "strings"

// SplitPath splits slash separated location path into segments, empty segments are skipped
func SplitPath(path string) []string {
	var result []string
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}
		result = append(result, segment)
	}
	return result
}

// JoinPath joins path segments into normalized location path (no leading or trailing slash)
func JoinPath(parts ...string) string {
	var segments []string
	for _, part := range parts {
		segments = append(segments, SplitPath(part)...)
	}
	return strings.Join(segments, "/")
}

// ParentPath returns parent path and last segment, ok is false for the root
func ParentPath(path string) (string, string, bool) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return "", "", false
	}
	return strings.Join(segments[:len(segments)-1], "/"), segments[len(segments)-1], true
}

// GetPath returns value located at path, lists are addressed by index
func GetPath(root Value, path string) Value {
	node := root
	for _, segment := range SplitPath(path) {
		node = childOf(node, segment)
		if node.IsNull() {
			return node
		}
	}
	return node
}

// SetPath returns a copy of root with value placed at path, null removes the location and prunes empty parents
func SetPath(root Value, path string, value Value) Value {
	return setPath(root, SplitPath(path), value)
}

func setPath(node Value, segments []string, value Value) Value {
	if len(segments) == 0 {
		if value.Kind() == KindMap && value.Len() == 0 {
			return Null()
		}
		return value
	}
	fields := map[string]Value{}
	switch node.Kind() {
	case KindMap:
		for k, v := range node.fields {
			fields[k] = v
		}
	case KindList:
		for i, v := range node.list {
			fields[indexKey(i)] = v
		}
	}
	child := setPath(childOf(node, segments[0]), segments[1:], value)
	if child.IsNull() {
		delete(fields, segments[0])
	} else {
		fields[segments[0]] = child
	}
	if len(fields) == 0 {
		return Null()
	}
	return Value{kind: KindMap, fields: fields}
}

func childOf(node Value, segment string) Value {
	switch node.Kind() {
	case KindMap:
		if child, ok := node.fields[segment]; ok {
			return child
		}
	case KindList:
		if index, ok := parseIndex(segment); ok && index < len(node.list) {
			return node.list[index]
		}
	}
	return Null()
}
