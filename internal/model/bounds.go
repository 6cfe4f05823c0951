package model

import (
	"fmt"
	"regexp"
	"strconv"
)

// Rect is a bounds rectangle in device pixels, as written by uiautomator:
// "[x1,y1][x2,y2]".
type Rect struct {
	X1, Y1, X2, Y2 int
}

var boundsPattern = regexp.MustCompile(`^\[(\d+),(\d+)\]\[(\d+),(\d+)\]$`)

// ParseRect parses a bounds string. The whole string must match; anything
// else, including numbers that overflow int, is rejected.
func ParseRect(s string) (Rect, error) {
	m := boundsPattern.FindStringSubmatch(s)
	if m == nil {
		return Rect{}, fmt.Errorf("invalid bounds %q: expected [x1,y1][x2,y2]", s)
	}
	var vals [4]int
	for i := range vals {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Rect{}, fmt.Errorf("invalid bounds %q: %w", s, err)
		}
		vals[i] = v
	}
	return Rect{X1: vals[0], Y1: vals[1], X2: vals[2], Y2: vals[3]}, nil
}

// Center is the integer midpoint of the rectangle, truncated toward zero.
func (r Rect) Center() Point {
	return Point{X: (r.X1 + r.X2) / 2, Y: (r.Y1 + r.Y2) / 2}
}

func (r Rect) Width() int  { return r.X2 - r.X1 }
func (r Rect) Height() int { return r.Y2 - r.Y1 }

// CenterOf returns the center of a bounds string. It reports false when
// bounds is absent or malformed.
func CenterOf(bounds *string) (Point, bool) {
	if bounds == nil {
		return Point{}, false
	}
	r, err := ParseRect(*bounds)
	if err != nil {
		return Point{}, false
	}
	return r.Center(), true
}
