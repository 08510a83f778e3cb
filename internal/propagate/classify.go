package propagate

// autoMatch classifies a column with an empty description from the parent index.
func autoMatch(idx ParentIndex, entry Entry) Entry {
	matches := idx[entry.ColumnName]

	switch len(matches) {
	case 0:
		entry.Status = StatusNoSource
	case 1:
		m := matches[0]
		entry.Status = StatusInherited
		entry.Description = m.Description
		entry.SourceEntity = m.ParentName
		entry.SourceColumn = entry.ColumnName
		entry.SourceFile = m.FilePath
	default:
		entry.Status = StatusAmbiguous
		entry.Candidates = candidateNames(matches)
	}
	return entry
}

// candidateNames lists contending parents in match order, one per parent ID.
// Parents whose display names collide are listed by ID instead.
func candidateNames(matches []ParentMatch) []string {
	seen := make(map[string]bool, len(matches))
	nameCount := make(map[string]int, len(matches))
	unique := make([]ParentMatch, 0, len(matches))
	for _, m := range matches {
		if seen[m.ParentID] {
			continue
		}
		seen[m.ParentID] = true
		nameCount[m.ParentName]++
		unique = append(unique, m)
	}

	names := make([]string, 0, len(unique))
	for _, m := range unique {
		if nameCount[m.ParentName] > 1 && m.ParentID != "" {
			names = append(names, m.ParentID)
			continue
		}
		names = append(names, m.ParentName)
	}
	return uniqueStrings(names)
}
