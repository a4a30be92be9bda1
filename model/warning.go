package model

import (
	"fmt"
	"strings"
)

// WarningKind classifies non-fatal conversion events.
type WarningKind int

const (
	WarnUnclassifiedStyle WarningKind = iota
	WarnDroppedEmpty
	WarnDroppedBlock
	WarnEnrichment
)

func (k WarningKind) String() string {
	switch k {
	case WarnUnclassifiedStyle:
		return "unclassified-style"
	case WarnDroppedEmpty:
		return "dropped-empty"
	case WarnDroppedBlock:
		return "dropped-block"
	case WarnEnrichment:
		return "enrichment"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal event collected during conversion. Index is the
// source block index, or -1 when the event is not tied to a block.
type Warning struct {
	Kind    WarningKind
	Index   int
	Message string
}

func (w Warning) String() string {
	if w.Index < 0 {
		return fmt.Sprintf("[%s] %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("[%s] block %d: %s", w.Kind, w.Index, w.Message)
}

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
