package document

import "slices"

func markRank(t MarkType) int {
	if i := slices.Index(MarkOrder, t); i >= 0 {
		return i
	}
	return len(MarkOrder)
}

// SortMarks orders marks canonically and drops duplicate types.
func SortMarks(marks []Mark) []Mark {
	if len(marks) == 0 {
		return nil
	}
	out := slices.Clone(marks)
	slices.SortStableFunc(out, func(a, b Mark) int {
		return markRank(a.Type) - markRank(b.Type)
	})
	return slices.CompactFunc(out, func(a, b Mark) bool {
		return a.Type == b.Type
	})
}

func HasMark(marks []Mark, t MarkType) bool {
	return slices.ContainsFunc(marks, func(m Mark) bool { return m.Type == t })
}

func AddMark(marks []Mark, m Mark) []Mark {
	out := RemoveMark(marks, m.Type)
	return SortMarks(append(out, m))
}

func RemoveMark(marks []Mark, t MarkType) []Mark {
	out := slices.DeleteFunc(slices.Clone(marks), func(m Mark) bool { return m.Type == t })
	if len(out) == 0 {
		return nil
	}
	return out
}

// NormalizeInline sorts marks, drops empty text nodes and merges neighbouring
// text nodes that carry the same marks.
func NormalizeInline(inlines []*Node) []*Node {
	out := make([]*Node, 0, len(inlines))
	for _, n := range inlines {
		if n.Type == Text {
			if n.Text == "" {
				continue
			}
			n.Marks = SortMarks(n.Marks)
			if len(out) > 0 {
				prev := out[len(out)-1]
				if prev.Type == Text && slices.Equal(prev.Marks, n.Marks) {
					prev.Text += n.Text
					continue
				}
			}
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
