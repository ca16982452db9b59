package shared

import (
	"math"
	"strconv"
	"strings"
)

const maxIndexKey = math.MaxInt32

// Compare orders values the way the realtime database does: null, false, true, numbers, strings, then objects
func Compare(a, b Value) int {
	if rank(a) != rank(b) {
		return compareInt(rank(a), rank(b))
	}
	switch a.Kind() {
	case KindBool:
		if a.flag == b.flag {
			return 0
		}
		if !a.flag {
			return -1
		}
		return 1
	case KindNumber:
		switch {
		case a.number < b.number:
			return -1
		case a.number > b.number:
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(a.text, b.text)
	}
	return 0
}

// CompareKeys orders keys: integer keys numerically first, then remaining keys lexicographically
func CompareKeys(a, b string) int {
	aIndex, aOK := parseIndex(a)
	bIndex, bOK := parseIndex(b)
	switch {
	case aOK && bOK:
		return compareInt(aIndex, bIndex)
	case aOK:
		return -1
	case bOK:
		return 1
	}
	return strings.Compare(a, b)
}

func rank(v Value) int {
	switch v.Kind() {
	case KindNull:
		return 0
	case KindBool:
		if !v.flag {
			return 1
		}
		return 2
	case KindNumber:
		return 3
	case KindString:
		return 4
	}
	return 5
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func parseIndex(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	index, err := strconv.ParseInt(key, 10, 32)
	if err != nil || index < 0 || index > maxIndexKey {
		return 0, false
	}
	return int(index), true
}

func indexKey(i int) string {
	return strconv.Itoa(i)
}
