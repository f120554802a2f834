package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultSelectedIDs are the seven one-syllable cards (むすめふさほせ).
var DefaultSelectedIDs = []int{87, 18, 57, 22, 70, 81, 77}

// GroupOrder is the traditional grouping by first syllable.
const GroupOrder = "むすめふさほせうつしもゆいちひきはやよかみたこおわなあ"

// OtherGroup collects cards whose first syllable is not in GroupOrder.
const OtherGroup = "他"

var groupIndex = func() map[rune]int {
	m := map[rune]int{}
	i := 0
	for _, r := range GroupOrder {
		m[r] = i
		i++
	}
	return m
}()

type SortMode string

const (
	SortID          SortMode = "id"
	SortKimariji    SortMode = "kimariji"
	SortKimarijiLen SortMode = "kimariji-len"
	SortGroup       SortMode = "group"
)

func ParseSortMode(raw string) (SortMode, error) {
	switch mode := SortMode(strings.TrimSpace(raw)); mode {
	case SortID, SortKimariji, SortKimarijiLen, SortGroup:
		return mode, nil
	case "":
		return SortGroup, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q", raw)
	}
}

// Selection is the set of card ids picked for the next deck.
type Selection struct {
	ids map[int]struct{}
}

func NewSelection(ids ...int) Selection {
	s := Selection{ids: make(map[int]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s Selection) Has(id int) bool {
	_, ok := s.ids[id]
	return ok
}

func (s Selection) Len() int { return len(s.ids) }

// IDs returns the selected ids in ascending order.
func (s Selection) IDs() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (s Selection) Toggle(id int) Selection {
	next := NewSelection(s.IDs()...)
	if next.Has(id) {
		delete(next.ids, id)
	} else {
		next.ids[id] = struct{}{}
	}
	return next
}

// BatchToggle deselects every id when all are already selected and selects
// them all otherwise.
func (s Selection) BatchToggle(ids []int) Selection {
	next := NewSelection(s.IDs()...)
	allOn := true
	for _, id := range ids {
		if !next.Has(id) {
			allOn = false
			break
		}
	}
	for _, id := range ids {
		if allOn {
			delete(next.ids, id)
		} else {
			next.ids[id] = struct{}{}
		}
	}
	return next
}

// MatrixID is the id shown at row (tens) and column (ones) of the 10x10
// picker. Cell (0, 0) stands for card 100.
func MatrixID(row, col int) int {
	if row == 0 && col == 0 {
		return 100
	}
	return row*10 + col
}

// RowIDs lists the ten ids of a matrix row.
func RowIDs(row int) []int {
	ids := make([]int, 0, 10)
	for c := 1; c <= 10; c++ {
		ids = append(ids, MatrixID(row, c%10))
	}
	return ids
}

// ColumnIDs lists the ten ids of a matrix column.
func ColumnIDs(col int) []int {
	ids := make([]int, 0, 10)
	for r := 0; r <= 9; r++ {
		ids = append(ids, MatrixID(r, col))
	}
	return ids
}

// Section is a picker heading with the cards listed under it.
type Section struct {
	Key   string
	Cards []Card
}

func (s Section) IDs() []int {
	ids := make([]int, len(s.Cards))
	for i, c := range s.Cards {
		ids[i] = c.ID
	}
	return ids
}

// Sections groups cards for the kimariji based sort modes. Cards within a
// section are ordered by kimariji.
func Sections(cards []Card, mode SortMode) []Section {
	if mode == SortID {
		return idSections(cards)
	}
	groups := map[string][]Card{}
	for _, card := range cards {
		if card.ID == JokaID {
			continue
		}
		key := sectionKey(card.Kimariji, mode)
		groups[key] = append(groups[key], card)
	}
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j], mode) })

	sections := make([]Section, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Kimariji != group[j].Kimariji {
				return group[i].Kimariji < group[j].Kimariji
			}
			return group[i].ID < group[j].ID
		})
		sections = append(sections, Section{Key: key, Cards: group})
	}
	return sections
}

func idSections(cards []Card) []Section {
	byRow := map[int][]Card{}
	for _, card := range cards {
		if card.ID == JokaID {
			continue
		}
		row := (card.ID / 10) % 10
		byRow[row] = append(byRow[row], card)
	}
	var sections []Section
	for row := 0; row <= 9; row++ {
		group, ok := byRow[row]
		if !ok {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].ID%100 < group[j].ID%100 })
		sections = append(sections, Section{Key: fmt.Sprintf("%d-", row), Cards: group})
	}
	return sections
}

func sectionKey(kimariji string, mode SortMode) string {
	first, _ := utf8.DecodeRuneInString(kimariji)
	switch mode {
	case SortKimarijiLen:
		return fmt.Sprintf("%d字", utf8.RuneCountInString(kimariji))
	case SortGroup:
		if _, ok := groupIndex[first]; ok && kimariji != "" {
			return string(first)
		}
		return OtherGroup
	default:
		if kimariji == "" {
			return OtherGroup
		}
		return string(first)
	}
}

func keyLess(a, b string, mode SortMode) bool {
	switch mode {
	case SortKimarijiLen:
		na, _ := strconv.Atoi(strings.TrimSuffix(a, "字"))
		nb, _ := strconv.Atoi(strings.TrimSuffix(b, "字"))
		return na < nb
	case SortGroup:
		return groupRank(a) < groupRank(b)
	default:
		return a < b
	}
}

func groupRank(key string) int {
	r, _ := utf8.DecodeRuneInString(key)
	if idx, ok := groupIndex[r]; ok && key != OtherGroup {
		return idx
	}
	return len(groupIndex)
}
