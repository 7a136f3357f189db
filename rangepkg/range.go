// Package rangepkg parses textual hand ranges ("AA", "AKs-ATs:0.5") into a
// weighted distribution over the 1326 ordered two-card combos, and produces
// the feasible, weighted combo lists the evaluator and CFR engine sample
// from.
package rangepkg

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/lox/hucfr/apperrors"
	"github.com/lox/hucfr/poker"
)

// Combo is an unordered private two-card holding, normalized so Card1 always
// carries the higher rank (ties broken by suit) for stable map keys.
type Combo struct {
	Card1, Card2 poker.Card
}

func newCombo(a, b poker.Card) Combo {
	if less(b, a) {
		a, b = b, a
	}
	return Combo{Card1: a, Card2: b}
}

// less orders cards by rank descending, then suit ascending, so the higher
// card always sorts first.
func less(a, b poker.Card) bool {
	if a.Rank() != b.Rank() {
		return a.Rank() > b.Rank()
	}
	return a.Suit() < b.Suit()
}

// Suited reports whether both cards share a suit.
func (c Combo) Suited() bool {
	return c.Card1.Suit() == c.Card2.Suit()
}

// HandClass returns the canonical class token for this combo: a pair like
// "AA", or a suited/offsuit two-card token like "AKs"/"AKo".
func (c Combo) HandClass() string {
	r1, r2 := rankLetter(c.Card1.Rank()), rankLetter(c.Card2.Rank())
	if c.Card1.Rank() == c.Card2.Rank() {
		return string(r1) + string(r2)
	}
	if c.Suited() {
		return string(r1) + string(r2) + "s"
	}
	return string(r1) + string(r2) + "o"
}

func rankLetter(rank uint8) byte {
	return "23456789TJQKA"[rank]
}

// Range is a mapping from Combo to a weight in [0,1]. The zero value is an
// empty range.
type Range struct {
	weights map[Combo]float64
}

// New returns an empty range.
func New() *Range {
	return &Range{weights: make(map[Combo]float64)}
}

// Parse parses a comma-separated textual range (§4.B): pair tokens ("AA"),
// suited/offsuit tokens ("AKs"/"AKo"), dash ranges ("AA-77", "AKs-ATs"), each
// with an optional ":weight" suffix (default 1.0). Duplicate combos across
// tokens take the maximum specified weight.
func Parse(s string) (*Range, error) {
	r := New()
	pos := 0
	for _, rawToken := range strings.Split(s, ",") {
		token := strings.TrimSpace(rawToken)
		tokenStart := pos
		pos += len(rawToken) + 1 // +1 accounts for the consumed comma
		if token == "" {
			continue
		}

		text, weight, err := splitWeight(token)
		if err != nil {
			return nil, &apperrors.ParseError{Token: token, Position: tokenStart, Reason: err.Error()}
		}

		combos, err := expandToken(text)
		if err != nil {
			return nil, &apperrors.ParseError{Token: token, Position: tokenStart, Reason: err.Error()}
		}

		for _, c := range combos {
			r.setMax(c, weight)
		}
	}
	return r, nil
}

func (r *Range) setMax(c Combo, w float64) {
	if existing, ok := r.weights[c]; !ok || w > existing {
		r.weights[c] = w
	}
}

// splitWeight separates an optional ":weight" suffix from a token.
func splitWeight(token string) (string, float64, error) {
	idx := strings.LastIndex(token, ":")
	if idx < 0 {
		return token, 1.0, nil
	}
	weightStr := token[idx+1:]
	w, err := strconv.ParseFloat(weightStr, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid weight %q", weightStr)
	}
	if w <= 0 || w > 1 {
		return "", 0, fmt.Errorf("weight %v out of range (0,1]", w)
	}
	return token[:idx], w, nil
}

// expandToken expands a single range token (without its weight suffix) into
// the combos it denotes.
func expandToken(text string) ([]Combo, error) {
	if dash := strings.Index(text, "-"); dash >= 0 {
		return expandDashRange(text[:dash], text[dash+1:])
	}
	return expandSingle(text)
}

// expandSingle expands one of "AA", "AKs", "AKo" into its combos.
func expandSingle(text string) ([]Combo, error) {
	r1, r2, suitedTag, err := parseHandToken(text)
	if err != nil {
		return nil, err
	}
	return generateCombos(r1, r2, suitedTag), nil
}

// parseHandToken parses "AA", "AKs", or "AKo" into (rank1, rank2, suitedTag).
// suitedTag is 's', 'o', or 0 for a pair.
func parseHandToken(text string) (uint8, uint8, byte, error) {
	if len(text) == 2 {
		r1, ok1 := rankValue(text[0])
		r2, ok2 := rankValue(text[1])
		if !ok1 || !ok2 {
			return 0, 0, 0, fmt.Errorf("unknown rank token %q", text)
		}
		if r1 != r2 {
			return 0, 0, 0, fmt.Errorf("two-rank token %q must be a pair or carry s/o", text)
		}
		return r1, r2, 0, nil
	}
	if len(text) == 3 {
		r1, ok1 := rankValue(text[0])
		r2, ok2 := rankValue(text[1])
		if !ok1 || !ok2 {
			return 0, 0, 0, fmt.Errorf("unknown rank token %q", text)
		}
		tag := text[2]
		if tag != 's' && tag != 'S' && tag != 'o' && tag != 'O' {
			return 0, 0, 0, fmt.Errorf("unknown suited/offsuit tag in %q", text)
		}
		if r1 == r2 {
			return 0, 0, 0, fmt.Errorf("pairs cannot carry a suited/offsuit tag: %q", text)
		}
		if tag == 'S' {
			tag = 's'
		}
		if tag == 'O' {
			tag = 'o'
		}
		return r1, r2, tag, nil
	}
	return 0, 0, 0, fmt.Errorf("unknown token %q", text)
}

func rankValue(b byte) (uint8, bool) {
	idx := strings.IndexByte("23456789TJQKA", upperByte(b))
	if idx < 0 {
		return 0, false
	}
	return uint8(idx), true
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// generateCombos builds every Combo for a pair (suitedTag==0), the 4 suited
// combos, or the 12 offsuit combos of two distinct ranks.
func generateCombos(r1, r2 uint8, suitedTag byte) []Combo {
	var combos []Combo
	if suitedTag == 0 {
		// Pair: all C(4,2)=6 suit combinations.
		for s1 := uint8(0); s1 < 4; s1++ {
			for s2 := s1 + 1; s2 < 4; s2++ {
				combos = append(combos, newCombo(poker.NewCard(r1, s1), poker.NewCard(r2, s2)))
			}
		}
		return combos
	}
	for s1 := uint8(0); s1 < 4; s1++ {
		for s2 := uint8(0); s2 < 4; s2++ {
			suited := s1 == s2
			if suitedTag == 's' && !suited {
				continue
			}
			if suitedTag == 'o' && suited {
				continue
			}
			combos = append(combos, newCombo(poker.NewCard(r1, s1), poker.NewCard(r2, s2)))
		}
	}
	return combos
}

// expandDashRange expands "AA-77" or "AKs-ATs" style ranges. from/to share
// the same shape (both pairs, or both sharing the same top rank and
// suited/offsuit tag) and the expansion walks every rank in between,
// inclusive.
func expandDashRange(fromText, toText string) ([]Combo, error) {
	fr1, fr2, fTag, err := parseHandToken(fromText)
	if err != nil {
		return nil, err
	}
	tr1, tr2, tTag, err := parseHandToken(toText)
	if err != nil {
		return nil, err
	}
	if fTag != tTag {
		return nil, fmt.Errorf("dash range %q-%q must share a suited/offsuit tag", fromText, toText)
	}

	var combos []Combo
	if fTag == 0 {
		// Pair range: fr1==fr2, tr1==tr2; walk ranks between inclusive.
		if fr1 != fr2 || tr1 != tr2 {
			return nil, fmt.Errorf("dash range %q-%q mixes pair and non-pair tokens", fromText, toText)
		}
		lo, hi := fr1, tr1
		if lo > hi {
			lo, hi = hi, lo
		}
		for r := lo; r <= hi; r++ {
			combos = append(combos, generateCombos(r, r, 0)...)
		}
		return combos, nil
	}

	// Suited/offsuit kicker range: top rank held fixed, second rank walks.
	if fr1 != tr1 {
		return nil, fmt.Errorf("dash range %q-%q must hold the top card fixed", fromText, toText)
	}
	lo, hi := fr2, tr2
	if lo > hi {
		lo, hi = hi, lo
	}
	for r := lo; r <= hi; r++ {
		combos = append(combos, generateCombos(fr1, r, fTag)...)
	}
	return combos, nil
}

// Weight returns the configured weight for a combo, or 0 if absent.
func (r *Range) Weight(c Combo) float64 {
	return r.weights[c]
}

// Combos enumerates every combo with positive weight, in a stable order
// (descending weight, then ascending Card1, then ascending Card2) so output
// is deterministic.
func (r *Range) Combos() []poker.WeightedCombo {
	out := make([]poker.WeightedCombo, 0, len(r.weights))
	for c, w := range r.weights {
		if w <= 0 {
			continue
		}
		out = append(out, poker.WeightedCombo{Card1: c.Card1, Card2: c.Card2, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		if out[i].Card1 != out[j].Card1 {
			return out[i].Card1 < out[j].Card1
		}
		return out[i].Card2 < out[j].Card2
	})
	return out
}

// Feasible returns the combos with positive weight that do not intersect
// dead (board cards, or the opponent's own holding).
func (r *Range) Feasible(dead poker.Hand) []poker.WeightedCombo {
	all := r.Combos()
	out := make([]poker.WeightedCombo, 0, len(all))
	for _, wc := range all {
		if dead.HasCard(wc.Card1) || dead.HasCard(wc.Card2) {
			continue
		}
		out = append(out, wc)
	}
	return out
}

// Normalized returns a probability vector over Feasible(dead): each combo's
// weight divided by the total. Returns nil if no feasible combo remains.
func (r *Range) Normalized(dead poker.Hand) []poker.WeightedCombo {
	feasible := r.Feasible(dead)
	var total float64
	for _, wc := range feasible {
		total += wc.Weight
	}
	if total <= 0 {
		return nil
	}
	out := make([]poker.WeightedCombo, len(feasible))
	for i, wc := range feasible {
		out[i] = poker.WeightedCombo{Card1: wc.Card1, Card2: wc.Card2, Weight: wc.Weight / total}
	}
	return out
}

// maxComboResampleAttempts bounds how many times SampleCombo retries a
// collision before giving up.
const maxComboResampleAttempts = 200

// SampleCombo draws one combo weighted by range probability, excluding any
// that collide with dead (board cards, or the opponent's already-sampled
// holding). Reports false if no feasible combo remains or the resample cap
// is exhausted.
func (r *Range) SampleCombo(rng *rand.Rand, dead poker.Hand) (poker.WeightedCombo, bool) {
	feasible := r.Feasible(dead)
	var total float64
	for _, wc := range feasible {
		total += wc.Weight
	}
	if total <= 0 {
		return poker.WeightedCombo{}, false
	}

	for attempt := 0; attempt < maxComboResampleAttempts; attempt++ {
		target := rng.Float64() * total
		var acc float64
		for _, wc := range feasible {
			acc += wc.Weight
			if acc >= target {
				if dead.HasCard(wc.Card1) || dead.HasCard(wc.Card2) {
					break
				}
				return wc, true
			}
		}
	}
	return poker.WeightedCombo{}, false
}

// String re-serializes the range as canonical class:weight tokens. Combos
// are grouped by hand class; a class whose combos carry non-uniform weights
// emits its highest weight (documented round-trip caveat — the weighted-dash
// grammar in §4.B has no way to express a partial-class weight split).
func (r *Range) String() string {
	type classAgg struct {
		totalWeight float64
		count       int
	}
	classes := make(map[string]*classAgg)
	var order []string
	for c, w := range r.weights {
		if w <= 0 {
			continue
		}
		class := c.HandClass()
		agg, ok := classes[class]
		if !ok {
			agg = &classAgg{}
			classes[class] = agg
			order = append(order, class)
		}
		if w > agg.totalWeight {
			agg.totalWeight = w
		}
		agg.count++
	}
	sort.Strings(order)

	tokens := make([]string, 0, len(order))
	for _, class := range order {
		agg := classes[class]
		if agg.totalWeight == 1.0 {
			tokens = append(tokens, class)
		} else {
			tokens = append(tokens, fmt.Sprintf("%s:%g", class, agg.totalWeight))
		}
	}
	return strings.Join(tokens, ",")
}
