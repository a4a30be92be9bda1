package model

import "golang.org/x/text/unicode/norm"

// isSuperscriptDigit reports whether r is one of the Unicode superscript
// digit code points.
func isSuperscriptDigit(r rune) bool {
	switch {
	case r == '¹', r == '²', r == '³':
		return true
	case r == '⁰', r >= '⁴' && r <= '⁹':
		return true
	}
	return false
}

// SplitSuperscripts moves Unicode superscript digits typed into plain runs
// into their own superscript runs, normalized to ASCII digits. A comma
// between two such digits goes with them, so "Doe¹,²" yields "Doe" and a
// superscript "1,2".
func SplitSuperscripts(runs []Run) []Run {
	out := make([]Run, 0, len(runs))
	for _, run := range runs {
		if run.Superscript || !containsSuperscriptDigit(run.Text) {
			out = appendMerged(out, run)
			continue
		}

		rs := []rune(run.Text)
		sup := make([]bool, len(rs))
		for i, r := range rs {
			sup[i] = isSuperscriptDigit(r)
		}
		for i, r := range rs {
			if r == ',' && i > 0 && i < len(rs)-1 && sup[i-1] && isSuperscriptDigit(rs[i+1]) {
				sup[i] = true
			}
		}

		start := 0
		for i := 1; i <= len(rs); i++ {
			if i < len(rs) && sup[i] == sup[start] {
				continue
			}
			piece := run
			piece.Text = string(rs[start:i])
			if sup[start] {
				piece.Superscript = true
				piece.Subscript = false
				piece.Text = norm.NFKC.String(piece.Text)
			}
			out = appendMerged(out, piece)
			start = i
		}
	}
	return out
}

func containsSuperscriptDigit(s string) bool {
	for _, r := range s {
		if isSuperscriptDigit(r) {
			return true
		}
	}
	return false
}

// appendMerged appends run, joining it to the previous run when the
// formatting matches.
func appendMerged(runs []Run, run Run) []Run {
	if run.Text == "" {
		return runs
	}
	if n := len(runs); n > 0 {
		prev := runs[n-1]
		prev.Text = run.Text
		if prev == run {
			runs[n-1].Text += run.Text
			return runs
		}
	}
	return append(runs, run)
}
