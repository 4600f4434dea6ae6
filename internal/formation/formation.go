// Package formation holds the named formations a manager can line up in and
// the slot id scheme derived from them.
package formation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Default is the formation every manager starts with
const Default = "4-3-3 Flat"

var builtin = map[string][]string{
	"3-1-4-2":          {"GK", "CB", "CB", "CB", "CDM", "LM", "CM", "RM", "CAM", "ST", "ST"},
	"3-4-1-2":          {"GK", "CB", "CB", "CB", "LWB", "CDM", "CDM", "RWB", "CAM", "ST", "ST"},
	"3-4-2-1":          {"GK", "CB", "CB", "CB", "LWB", "CDM", "CDM", "RWB", "CAM", "CAM", "ST"},
	"3-4-3":            {"GK", "CB", "CB", "CB", "LWB", "CDM", "CDM", "RWB", "LW", "ST", "RW"},
	"3-5-2":            {"GK", "CB", "CB", "CB", "LWB", "CM", "CM", "CM", "RWB", "ST", "ST"},
	"4-1-2-1-2 Narrow": {"GK", "LB", "CB", "CB", "RB", "CDM", "LCM", "RCM", "CAM", "ST", "ST"},
	"4-1-2-1-2 Wide":   {"GK", "LB", "CB", "CB", "RB", "CDM", "LCM", "RCM", "CAM", "ST", "ST"},
	"4-1-3-2":          {"GK", "LB", "CB", "CB", "RB", "CDM", "CM", "CM", "CAM", "ST", "ST"},
	"4-1-4-1":          {"GK", "LB", "CB", "CB", "RB", "CDM", "LM", "CM", "RM", "CAM", "ST"},
	"4-2-2-2":          {"GK", "LB", "CB", "CB", "RB", "CDM", "CDM", "LAM", "RAM", "ST", "ST"},
	"4-2-3-1 Wide":     {"GK", "LB", "CB", "CB", "RB", "CDM", "CDM", "LM", "CAM", "RM", "ST"},
	"4-2-3-1 Narrow":   {"GK", "LB", "CB", "CB", "RB", "CDM", "CDM", "LM", "CAM", "RM", "ST"},
	"4-2-4":            {"GK", "LB", "CB", "CB", "RB", "LM", "LCM", "RCM", "RM", "ST", "ST"},
	"4-3-1-2":          {"GK", "LB", "CB", "CB", "RB", "LCM", "CM", "RCM", "CAM", "ST", "ST"},
	"4-3-2-1":          {"GK", "LB", "CB", "CB", "RB", "LCM", "CM", "RCM", "CAM", "CAM", "ST"},
	"4-3-3 Flat":       {"GK", "LB", "CB", "CB", "RB", "LCM", "CM", "RCM", "LW", "ST", "RW"},
	"4-3-3 Wide":       {"GK", "LB", "CB", "CB", "RB", "LCM", "CM", "RCM", "LW", "ST", "RW"},
	"4-3-3 Attacking":  {"GK", "LB", "CB", "CB", "RB", "LCM", "CAM", "RCM", "LW", "ST", "RW"},
	"4-3-3 Defending":  {"GK", "LB", "CB", "CB", "RB", "LCM", "CDM", "RCM", "LW", "ST", "RW"},
	"4-3-3 Holding":    {"GK", "LB", "CB", "CB", "RB", "CDM", "LCM", "RCM", "LW", "ST", "RW"},
	"4-3-3 False 9":    {"GK", "LB", "CB", "CB", "RB", "LCM", "CM", "RCM", "LW", "CF", "RW"},
	"4-4-1-1":          {"GK", "LB", "CB", "CB", "RB", "LM", "LCM", "RCM", "RM", "CAM", "ST"},
	"4-4-2":            {"GK", "LB", "CB", "CB", "RB", "LM", "LCM", "RCM", "RM", "ST", "ST"},
	"4-4-2 Holding":    {"GK", "LB", "CB", "CB", "RB", "LM", "LCM", "RCM", "RM", "ST", "ST"},
	"4-5-1":            {"GK", "LB", "CB", "CB", "RB", "LM", "LCM", "CM", "RCM", "RM", "ST"},
	"4-5-1 Flat":       {"GK", "LB", "CB", "CB", "RB", "LM", "LCM", "CM", "RCM", "RM", "ST"},
	"5-2-1-2":          {"GK", "LWB", "CB", "CB", "CB", "RWB", "CDM", "CDM", "CAM", "ST", "ST"},
	"5-2-3":            {"GK", "LWB", "CB", "CB", "CB", "RWB", "CDM", "CDM", "LM", "CAM", "RM"},
	"5-2-2-1":          {"GK", "LWB", "CB", "CB", "CB", "RWB", "CDM", "CDM", "LAM", "RAM", "ST"},
	"5-3-2":            {"GK", "LWB", "CB", "CB", "CB", "RWB", "CM", "CM", "CM", "ST", "ST"},
	"5-4-1":            {"GK", "LWB", "CB", "CB", "CB", "RWB", "LM", "LCM", "RCM", "RM", "ST"},
}

// Point is a cosmetic pitch coordinate in percent of width/height
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var coordinates = map[string]Point{
	"ST": {50, 15}, "CF": {50, 20}, "LW": {15, 20}, "RW": {85, 20},
	"CAM": {50, 35}, "LAM": {35, 35}, "RAM": {65, 35},
	"LM": {15, 45}, "RM": {85, 45},
	"CM": {50, 50}, "LCM": {35, 50}, "RCM": {65, 50},
	"CDM": {50, 60}, "LWB": {15, 65}, "RWB": {85, 65},
	"LB": {20, 75}, "RB": {80, 75}, "CB": {50, 75}, "GK": {50, 90},
}

// Table is a lookup of formation name to ordered position tags
type Table struct {
	formations map[string][]string
}

// NewTable returns the built-in formation table
func NewTable() *Table {
	return &Table{formations: builtin}
}

// NewCustomTable builds a table from caller-supplied formations. Every
// formation must have at least one slot.
func NewCustomTable(formations map[string][]string) (*Table, error) {
	out := make(map[string][]string, len(formations))
	for name, tags := range formations {
		if len(tags) == 0 {
			return nil, fmt.Errorf("formation %q has no slots", name)
		}
		out[name] = append([]string(nil), tags...)
	}
	return &Table{formations: out}, nil
}

// SlotsFor returns the ordered tags of the named formation
func (t *Table) SlotsFor(name string) ([]string, bool) {
	tags, ok := t.formations[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), tags...), true
}

// Names returns every formation name, sorted
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.formations))
	for name := range t.formations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Slot is a resolved slot of a formation
type Slot struct {
	ID    string `json:"id"`
	Tag   string `json:"tag"`
	Label string `json:"label"`
	Point Point  `json:"point"`
}

// Layout describes a formation for presentation
type Layout struct {
	Name  string `json:"name"`
	Slots []Slot `json:"slots"`
}

// Layout resolves slot ids and coordinates for the named formation
func (t *Table) Layout(name string) (Layout, bool) {
	tags, ok := t.SlotsFor(name)
	if !ok {
		return Layout{}, false
	}
	ids := SlotIDs(tags)
	slots := make([]Slot, len(tags))
	for i, tag := range tags {
		slots[i] = Slot{ID: ids[i], Tag: tag, Label: Label(ids[i]), Point: Coordinates(tag)}
	}
	return Layout{Name: name, Slots: slots}, true
}

// SlotIDs derives slot ids from ordered tags. A tag that occurs once becomes
// its lower-cased form; a repeated tag gets a 0-based ordinal suffix.
func SlotIDs(tags []string) []string {
	counts := make(map[string]int, len(tags))
	for _, tag := range tags {
		counts[strings.ToUpper(tag)]++
	}

	seen := make(map[string]int, len(tags))
	ids := make([]string, len(tags))
	for i, tag := range tags {
		upper := strings.ToUpper(tag)
		lower := strings.ToLower(tag)
		if counts[upper] == 1 {
			ids[i] = lower
			continue
		}
		ids[i] = fmt.Sprintf("%s_%d", lower, seen[upper])
		seen[upper]++
	}
	return ids
}

// Ordinals returns, for each tag, how many earlier slots share that tag
func Ordinals(tags []string) []int {
	seen := make(map[string]int, len(tags))
	out := make([]int, len(tags))
	for i, tag := range tags {
		upper := strings.ToUpper(tag)
		out[i] = seen[upper]
		seen[upper]++
	}
	return out
}

var ordinalSuffix = regexp.MustCompile(`_\d+$`)

// Label turns a slot id back into its display tag, e.g. "cb_1" -> "CB"
func Label(slotID string) string {
	return strings.ToUpper(ordinalSuffix.ReplaceAllString(slotID, ""))
}

// Coordinates returns the pitch position of a tag, centre field if unknown
func Coordinates(tag string) Point {
	if p, ok := coordinates[strings.ToUpper(tag)]; ok {
		return p
	}
	return Point{50, 50}
}
