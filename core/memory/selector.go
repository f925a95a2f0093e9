package memory

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

const (
	// minTokenLength filters out stop-word-sized prompt tokens.
	minTokenLength = 4

	// recencyWindow is how long a memory counts as recently accessed.
	recencyWindow = 7 * 24 * time.Hour

	scoreTopicExact    = 3
	scoreTopicPartial  = 2
	scoreBodyHit       = 1
	scoreRecencyBonus  = 1
	truncationEllipsis = "…"
)

// Selection is the result of packing memories into the context budget.
type Selection struct {
	// Memories is the ordered subset that fit the budget. The last entry
	// may be truncated.
	Memories []Memory

	// Topics are the distinct topics of the selected memories, in order of
	// first appearance.
	Topics []string
}

// SelectRelevant scores candidates against the prompt and packs the best
// ones into budgetChars characters of memory text. now anchors the recency
// bonus; the function is otherwise deterministic in its inputs.
func SelectRelevant(candidates []Memory, prompt string, budgetChars int, now time.Time) Selection {
	if len(candidates) == 0 || budgetChars <= 0 {
		return Selection{}
	}

	tokens := promptTokens(prompt)
	if len(tokens) == 0 {
		return Selection{}
	}

	scored := scoreCandidates(candidates, tokens, now)
	if len(scored) == 0 {
		return Selection{}
	}

	groups := groupByTopic(scored)
	return packGroups(groups, budgetChars)
}

// promptTokens lower-cases the prompt and keeps tokens longer than three
// characters. Short tokens are almost always articles and prepositions and
// would match everything.
func promptTokens(prompt string) []string {
	fields := strings.FieldsFunc(strings.ToLower(prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	var tokens []string
	for _, f := range fields {
		if len([]rune(f)) >= minTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

type scoredMemory struct {
	Memory
	score int
	index int // input position, for stable tie-breaks
}

func scoreCandidates(candidates []Memory, tokens []string, now time.Time) []scoredMemory {
	var scored []scoredMemory

	for i, m := range candidates {
		s := scoreMemory(m, tokens, now)
		if s <= 0 {
			continue
		}
		scored = append(scored, scoredMemory{Memory: m, score: s, index: i})
	}
	return scored
}

func scoreMemory(m Memory, tokens []string, now time.Time) int {
	body := strings.ToLower(m.Text)

	topics := make([]string, len(m.Topics))
	for i, topic := range m.Topics {
		topics[i] = strings.ToLower(topic)
	}

	score := 0
	for _, token := range tokens {
		for _, topic := range topics {
			if token == topic {
				score += scoreTopicExact
			} else if strings.Contains(topic, token) {
				score += scoreTopicPartial
			}
		}
		if strings.Contains(body, token) {
			score += scoreBodyHit
		}
	}

	if score > 0 && !m.LastAccessed.IsZero() && now.Sub(m.LastAccessed) <= recencyWindow {
		score += scoreRecencyBonus
	}

	return score
}

type topicGroup struct {
	topic    string
	members  []scoredMemory
	total    int
	firstIdx int
}

// groupByTopic buckets scored memories by their dominant (first) topic.
// Untagged memories share the empty-topic bucket.
func groupByTopic(scored []scoredMemory) []topicGroup {
	byTopic := make(map[string]*topicGroup)
	var order []string

	for _, sm := range scored {
		key := ""
		if len(sm.Topics) > 0 {
			key = strings.ToLower(sm.Topics[0])
		}

		g, ok := byTopic[key]
		if !ok {
			g = &topicGroup{topic: key, firstIdx: sm.index}
			byTopic[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, sm)
		g.total += sm.score
	}

	groups := make([]topicGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *byTopic[key])
	}

	// Rank groups by aggregate score, then by first appearance. Inside a
	// group, rank by score, then by input order.
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].total != groups[j].total {
			return groups[i].total > groups[j].total
		}
		return groups[i].firstIdx < groups[j].firstIdx
	})
	for gi := range groups {
		members := groups[gi].members
		sort.SliceStable(members, func(i, j int) bool {
			if members[i].score != members[j].score {
				return members[i].score > members[j].score
			}
			return members[i].index < members[j].index
		})
	}

	return groups
}

// packGroups fills the budget greedily in group rank order. The first memory
// that does not fit whole is truncated with an ellipsis and ends the packing.
func packGroups(groups []topicGroup, budgetChars int) Selection {
	var sel Selection
	seenTopics := make(map[string]bool)
	remaining := budgetChars

	appendTopics := func(m Memory) {
		for _, topic := range m.Topics {
			key := strings.ToLower(topic)
			if !seenTopics[key] {
				seenTopics[key] = true
				sel.Topics = append(sel.Topics, topic)
			}
		}
	}

	for _, g := range groups {
		for _, sm := range g.members {
			runes := []rune(sm.Text)

			if len(runes) <= remaining {
				sel.Memories = append(sel.Memories, sm.Memory)
				appendTopics(sm.Memory)
				remaining -= len(runes)
				continue
			}

			// Partial fit: keep what the budget allows, mark the cut.
			cut := remaining - len([]rune(truncationEllipsis))
			if cut > 0 {
				truncated := sm.Memory
				truncated.Text = string(runes[:cut]) + truncationEllipsis
				sel.Memories = append(sel.Memories, truncated)
				appendTopics(sm.Memory)
			}
			return sel
		}
	}

	return sel
}
