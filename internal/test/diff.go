package test

import (
	"strings"

	"github.com/RobLoach/babel/internal/logger"
)

// Diff returns a line-by-line diff where removed lines start with "-", added
// lines start with "+" and unchanged lines start with a space
func Diff(old string, new string, color bool) string {
	d := differ{color: color}
	d.diff(strings.Split(old, "\n"), strings.Split(new, "\n"))
	return strings.Join(d.lines, "\n")
}

type differ struct {
	lines []string
	color bool
}

func (d *differ) emit(prefix string, color string, line string) {
	if d.color {
		d.lines = append(d.lines, color+prefix+line+logger.TerminalColors.Reset)
	} else {
		d.lines = append(d.lines, prefix+line)
	}
}

// Splits around the longest run of common lines and recurses on both sides
func (d *differ) diff(old []string, new []string) {
	o, n, common := longestCommonRun(old, new)

	if common == 0 {
		for _, line := range old {
			d.emit("-", logger.TerminalColors.Red, line)
		}
		for _, line := range new {
			d.emit("+", logger.TerminalColors.Green, line)
		}
		return
	}

	d.diff(old[:o], new[:n])
	for _, line := range old[o : o+common] {
		d.emit(" ", logger.TerminalColors.Dim, line)
	}
	d.diff(old[o+common:], new[n+common:])
}

// From: https://en.wikipedia.org/wiki/Longest_common_substring_problem
func longestCommonRun(a []string, b []string) (int, int, int) {
	prev := make([]int, len(b))
	next := make([]int, len(b))
	best, endA, endB := 0, 0, 0

	for i := range a {
		for j := range b {
			if a[i] != b[j] {
				next[j] = 0
				continue
			}
			if j == 0 {
				next[j] = 1
			} else {
				next[j] = prev[j-1] + 1
			}
			if next[j] > best {
				best = next[j]
				endA = i + 1
				endB = j + 1
			}
		}
		prev, next = next, prev
	}

	return endA - best, endB - best, best
}
