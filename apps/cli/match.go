package main

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/Frictionalfor/codeFORGE-sub002/core"
	"github.com/Frictionalfor/codeFORGE-sub002/core/classroom"
)

// minClassMatchRatio is the lowest similarity accepted when no class name matches exactly.
const minClassMatchRatio = 0.5

func chars(s string) []string {
	return strings.Split(core.CleanString(s, true /* lower */), "")
}

// matchClass finds the class whose ID or name is closest to name.
func matchClass(name string, classes []classroom.EnrolledClass) (classroom.EnrolledClass, error) {
	want := core.CleanString(name, true /* lower */)
	var best classroom.EnrolledClass
	var bestRatio float64
	for _, c := range classes {
		if c.ID == name || core.CleanString(c.Name, true) == want {
			return c, nil
		}
		if ratio := difflib.NewMatcher(chars(name), chars(c.Name)).Ratio(); ratio > bestRatio {
			best, bestRatio = c, ratio
		}
	}
	if bestRatio < minClassMatchRatio {
		return classroom.EnrolledClass{}, fmt.Errorf("no class matches %q", name)
	}
	return best, nil
}
