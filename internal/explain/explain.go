package explain

import (
	"fmt"
	"sort"
)

var topics = map[string]string{
	"needed": `Needed classes is the smallest number of classes you must attend back to back, with no absences, to climb back to the required percentage.

Each attended class adds one to both present and total, so with r = required / 100 the answer is the smallest k where (present + k) / (total + k) >= r, which is ceil((r * total - present) / (1 - r)).
A 100% requirement cannot be climbed back to once any class has been missed; bunk reports that as unreachable instead of a number.`,
	"bunk": `Bunkable classes is the largest number of classes you can miss from now on while staying at or above the required percentage.

Each missed class adds one to total and nothing to present, so with r = required / 100 the answer is the largest b where present / (total + b) >= r, which is floor(present / r) - total, never below zero.
The result also shows the total and percentage you end up with after bunking that many.`,
	"edges": `bunk never fails on odd inputs; it reports them instead.

- No classes held yet (total = 0): attendance is undefined.
- Within 0.000001 of the requirement: counts as meeting it, with zero classes to spare.
- Any missed class under a 100% requirement: unreachable.
- A 0% requirement: every future class can be skipped (unlimited).`,
}

func Topics() []string {
	var keys []string
	for k := range topics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func Topic(name string) (string, error) {
	text, ok := topics[name]
	if !ok {
		return "", fmt.Errorf("unknown explain topic %q (want one of %v)", name, Topics())
	}
	return text, nil
}
