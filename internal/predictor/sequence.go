package predictor

// closestSubsequence returns the position of the closest match of pattern
// within text, searching from the end of text backwards. It returns the start
// index and the length of the longest prefix of pattern matching at that
// start. A full match stops the search early. (-1, 0) means nothing matched.
func closestSubsequence(text, pattern []int) (int, int) {
	if len(pattern) == 0 || len(text) == 0 {
		return -1, 0
	}

	bestStart := -1
	bestLen := 0

	for start := len(text) - 1; start >= 0; start-- {
		matchLen := 0
		for start+matchLen < len(text) &&
			matchLen < len(pattern) &&
			text[start+matchLen] == pattern[matchLen] {
			matchLen++
		}

		if matchLen > bestLen {
			bestLen = matchLen
			bestStart = start
		}
		if bestLen == len(pattern) {
			break
		}
	}

	return bestStart, bestLen
}

// validSuccessors enumerates the plan elements that directly follow any
// occurrence of lastID in the plan, wrapping at the end.
func validSuccessors(planIDs []int, lastID int) []int {
	var valid []int
	for i, id := range planIDs {
		if id == lastID {
			valid = append(valid, planIDs[(i+1)%len(planIDs)])
		}
	}
	return valid
}

// nextInSequence predicts the element following the recent pattern when the
// plan is treated as a repeating sequence. The pattern must be oldest first
// and already filtered down to plan members.
func nextInSequence(planIDs, pattern []int) int {
	if len(planIDs) == 0 {
		return 0
	}
	if len(pattern) == 0 {
		return planIDs[0]
	}

	// repeat the plan enough times to cover any wrap-around
	repeats := len(pattern)/len(planIDs) + 2
	if repeats < 2 {
		repeats = 2
	}
	repeated := make([]int, 0, len(planIDs)*repeats)
	for i := 0; i < repeats; i++ {
		repeated = append(repeated, planIDs...)
	}

	// drop the final element so a match can never end without a successor
	searchSpace := repeated[:len(repeated)-1]
	start, matchLen := closestSubsequence(searchSpace, pattern)

	lastID := pattern[len(pattern)-1]
	valid := validSuccessors(planIDs, lastID)

	var next int
	if start < 0 || matchLen == 0 {
		lastPos := -1
		for i, id := range repeated {
			if id == lastID {
				lastPos = i
			}
		}
		if lastPos < 0 {
			return planIDs[0]
		}
		if lastPos+1 < len(repeated) {
			next = repeated[lastPos+1]
		} else {
			next = planIDs[0]
		}
	} else {
		nextPos := start + matchLen
		if nextPos >= len(repeated) {
			nextPos = nextPos % len(planIDs)
		}
		next = repeated[nextPos]
	}

	// only allow elements that directly follow the most recent one in the plan
	if len(valid) > 0 && !containsID(valid, next) {
		next = valid[0]
	}
	return next
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// filterToPlan keeps only the history entries that belong to the plan,
// preserving order.
func filterToPlan(history, planIDs []int) []int {
	planSet := make(map[int]struct{}, len(planIDs))
	for _, id := range planIDs {
		planSet[id] = struct{}{}
	}
	var filtered []int
	for _, id := range history {
		if _, ok := planSet[id]; ok {
			filtered = append(filtered, id)
		}
	}
	return filtered
}
