package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetPath(t *testing.T) {
	root := Null()
	root = SetPath(root, "users/1/name", NewString("Ann"))
	root = SetPath(root, "users/2/name", NewString("Bob"))
	assert.Equal(t, map[string]interface{}{
		"users": map[string]interface{}{
			"1": map[string]interface{}{"name": "Ann"},
			"2": map[string]interface{}{"name": "Bob"},
		},
	}, root.Interface())
	assert.Equal(t, "Bob", GetPath(root, "/users/2/name/").Text())

	root = SetPath(root, "users/1", Null())
	root = SetPath(root, "users/2/name", Null())
	assert.True(t, root.IsNull())
}

func TestGetPath_List(t *testing.T) {
	root := MustValueOf(map[string]interface{}{"items": []interface{}{"a", "b"}})
	assert.Equal(t, "b", GetPath(root, "items/1").Text())
	assert.True(t, GetPath(root, "items/5").IsNull())
}

func TestParentPath(t *testing.T) {
	parent, key, ok := ParentPath("a/b/c")
	assert.True(t, ok)
	assert.Equal(t, "a/b", parent)
	assert.Equal(t, "c", key)
	_, _, ok = ParentPath("/")
	assert.False(t, ok)
	assert.Equal(t, "a/b/c", JoinPath("/a/", "b//c/"))
}

func TestCompare(t *testing.T) {
	ordered := []Value{Null(), NewBool(false), NewBool(true), NewNumber(-1), NewNumber(10), NewString("a"), NewString("b"), MustValueOf(map[string]interface{}{"a": 1})}
	for i := 1; i < len(ordered); i++ {
		assert.Equal(t, -1, Compare(ordered[i-1], ordered[i]), i)
		assert.Equal(t, 1, Compare(ordered[i], ordered[i-1]), i)
	}
	assert.Equal(t, 0, Compare(NewNumber(2), NewNumber(2)))
}

func TestCompareKeys(t *testing.T) {
	assert.Equal(t, -1, CompareKeys("2", "10"))
	assert.Equal(t, -1, CompareKeys("10", "a"))
	assert.Equal(t, 1, CompareKeys("01", "1"))
	assert.Equal(t, -1, CompareKeys("a", "b"))
}
