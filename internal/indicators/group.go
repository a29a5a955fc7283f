package indicators

import "sort"

// Item is a named summary.
type Item struct {
	Name    string
	Summary Summary
}

// Section is one titled group of items.
type Section struct {
	Name  string
	Items []Item
}

// Grouped orders economic by section and by catalog position. Names missing
// from the catalog are appended to their section alphabetically; sections
// missing from Sections() come last, alphabetically.
func Grouped(economic map[string]Summary) []Section {
	position := make(map[string]int)
	for i, ind := range Catalog() {
		position[ind.Name] = i
	}

	bySection := make(map[string][]Item)
	for name, summary := range economic {
		bySection[summary.Section] = append(bySection[summary.Section], Item{Name: name, Summary: summary})
	}

	for _, items := range bySection {
		sort.Slice(items, func(i, j int) bool {
			pi, iok := position[items[i].Name]
			pj, jok := position[items[j].Name]
			switch {
			case iok && jok:
				return pi < pj
			case iok != jok:
				return iok
			default:
				return items[i].Name < items[j].Name
			}
		})
	}

	var sections []Section
	for _, name := range Sections() {
		if items, ok := bySection[name]; ok {
			sections = append(sections, Section{Name: name, Items: items})
			delete(bySection, name)
		}
	}

	extra := make([]string, 0, len(bySection))
	for name := range bySection {
		extra = append(extra, name)
	}
	sort.Strings(extra)
	for _, name := range extra {
		sections = append(sections, Section{Name: name, Items: bySection[name]})
	}
	return sections
}
