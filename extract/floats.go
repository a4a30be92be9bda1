package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/blevesearch/segment"

	"github.com/tsawler/jatskit/model"
)

// captionLabel matches a leading "Table 3:" style label in a caption.
var captionLabel = regexp.MustCompile(`(?i)^\s*table\s+(\d+)\s*[:.\-–—]?\s*`)

// Floats collects table captions and table payloads into float items.
type Floats struct {
	items []*model.FloatItem
}

// NewFloats creates an empty collector.
func NewFloats() *Floats {
	return &Floats{}
}

// AddCaption starts a new float from a TableCaption block.
func (f *Floats) AddCaption(b model.Block) {
	item := f.newItem()
	item.CaptionIndex = b.Index

	text := strings.TrimSpace(b.Text())
	if m := captionLabel.FindStringSubmatchIndex(text); m != nil {
		if n, err := strconv.Atoi(text[m[2]:m[3]]); err == nil {
			item.Number = n
		}
		text = text[m[1]:]
	}
	item.Label = fmt.Sprintf("Table %d", item.Number)
	item.Caption = strings.TrimSpace(text)
}

// AddTable attaches a table payload to the latest float that has none, or
// starts a caption-less float.
func (f *Floats) AddTable(b model.Block) {
	if n := len(f.items); n > 0 && f.items[n-1].Table == nil {
		f.items[n-1].Table = b.Table
		return
	}
	item := f.newItem()
	item.Table = b.Table
	item.Label = fmt.Sprintf("Table %d", item.Number)
}

func (f *Floats) newItem() *model.FloatItem {
	seq := len(f.items) + 1
	item := &model.FloatItem{
		ID:           fmt.Sprintf("T%d", seq),
		Seq:          seq,
		Number:       seq,
		CaptionIndex: -1,
		FirstRef:     -1,
	}
	f.items = append(f.items, item)
	return item
}

// Items returns the collected floats in order.
func (f *Floats) Items() []*model.FloatItem {
	return f.items
}

// Mention is an in-text reference to a numbered table. Start and End are
// byte offsets into the scanned text.
type Mention struct {
	Start  int
	End    int
	Number int
}

// Mentions finds "Table 2" and "Tables 2 and 3" style references in text.
// The first number after the word spans from the word itself; further
// numbers in a list span only their digits.
func Mentions(text string) []Mention {
	type token struct {
		start, end int
		text       string
		typ        int
	}

	var tokens []token
	seg := segment.NewWordSegmenter(strings.NewReader(text))
	offset := 0
	for seg.Segment() {
		b := seg.Bytes()
		tokens = append(tokens, token{start: offset, end: offset + len(b), text: string(b), typ: seg.Type()})
		offset += len(b)
	}
	if seg.Err() != nil {
		return nil
	}

	var out []Mention
	for i := 0; i < len(tokens); i++ {
		word := strings.ToLower(tokens[i].text)
		if tokens[i].typ != segment.Letter || (word != "table" && word != "tables") {
			continue
		}

		start := tokens[i].start
		first := true
		j := i + 1
		for j < len(tokens) {
			// Skip separators between the word and numbers.
			k := j
			for k < len(tokens) && tokens[k].typ == segment.None && isListSeparator(tokens[k].text) {
				k++
			}
			if k < len(tokens) && tokens[k].typ == segment.Letter && strings.EqualFold(tokens[k].text, "and") {
				k++
				for k < len(tokens) && tokens[k].typ == segment.None && isListSeparator(tokens[k].text) {
					k++
				}
			}
			if k >= len(tokens) || tokens[k].typ != segment.Number {
				break
			}
			n, err := strconv.Atoi(tokens[k].text)
			if err != nil {
				break
			}
			m := Mention{Start: tokens[k].start, End: tokens[k].end, Number: n}
			if first {
				m.Start = start
				first = false
			}
			out = append(out, m)
			j = k + 1
			if word == "table" {
				break
			}
		}
		i = j - 1
	}
	return out
}

// isListSeparator reports whether a non-word token can sit between numbers
// in a table list.
func isListSeparator(s string) bool {
	return strings.TrimSpace(strings.Trim(s, ",-–")) == "" && !strings.Contains(s, "\n")
}

// Anchor records, for each float, the block index of the first paragraph
// that mentions it.
func Anchor(items []*model.FloatItem, paragraphs []*model.Paragraph) {
	byNumber := make(map[int]*model.FloatItem, len(items))
	for _, item := range items {
		if _, dup := byNumber[item.Number]; !dup {
			byNumber[item.Number] = item
		}
	}

	for _, p := range paragraphs {
		for _, m := range Mentions(p.Text()) {
			if item, ok := byNumber[m.Number]; ok && item.FirstRef < 0 {
				item.FirstRef = p.Index
			}
		}
	}
}
