package auction

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultPoints is the prize at stake when a fresh round begins.
const DefaultPoints = 20

// Bid represents one coin pledged toward a posse.
type Bid struct {
	Digest string `json:"digest"`
	Value  int    `json:"value"`
}

// Round represents one auction: every bid placed since the last
// settlement grouped by posse, the prize points at stake and whether the
// round still accepts bids.
//
// Posse ordering matters. The leader tie-break depends on the order in
// which posses received their first bid, so the order is tracked
// explicitly and survives the trip through the wire format.
type Round struct {
	bids   map[string][]Bid
	order  []string
	placed map[string]bool
	active bool
	points int
}

// NewRound constructs a fresh, open round with the default prize.
func NewRound() *Round {
	return NewRoundWithPoints(DefaultPoints)
}

// NewRoundWithPoints constructs a fresh, open round with the specified prize.
func NewRoundWithPoints(points int) *Round {
	return &Round{
		bids:   make(map[string][]Bid),
		placed: make(map[string]bool),
		active: true,
		points: points,
	}
}

// Active reports whether the round still accepts bids.
func (r *Round) Active() bool {
	return r.active
}

// Points returns the prize at stake for this round.
func (r *Round) Points() int {
	return r.points
}

// Posses returns the posses holding bids, in the order they first bid.
func (r *Round) Posses() []string {
	posses := make([]string, len(r.order))
	copy(posses, r.order)
	return posses
}

// PosseBids returns the bids placed toward the specified posse in the
// order they were placed.
func (r *Round) PosseBids(posse string) []Bid {
	bids := make([]Bid, len(r.bids[posse]))
	copy(bids, r.bids[posse])
	return bids
}

// Total sums the values of the bids placed toward the specified posse.
func (r *Round) Total(posse string) int {
	var total int
	for _, bid := range r.bids[posse] {
		total += bid.Value
	}
	return total
}

// placeBid appends a bid toward a posse. A coin may be bid at most once
// per round regardless of which posse it was bid toward, and a closed
// round accepts nothing.
func (r *Round) placeBid(posse string, bid Bid) error {
	if !r.active {
		return ErrRoundClosed
	}
	if r.placed[bid.Digest] {
		return ErrDuplicateBid
	}

	if _, exists := r.bids[posse]; !exists {
		r.order = append(r.order, posse)
	}
	r.bids[posse] = append(r.bids[posse], bid)
	r.placed[bid.Digest] = true

	return nil
}

// leader returns the posse with the highest total. Among posses tied for
// the maximum, the one whose first bid came latest wins.
func (r *Round) leader() (string, error) {
	if len(r.order) == 0 {
		return "", ErrNoBids
	}

	var leader string
	var best int
	for _, posse := range r.order {
		if total := r.Total(posse); total >= best {
			leader = posse
			best = total
		}
	}

	return leader, nil
}

// close terminally stops the round from accepting bids.
func (r *Round) close() {
	r.active = false
}

// =============================================================================
// Wire format. The round is persisted as
// {"bids": {<posse>: [{"digest":..., "value":...}]}, "active":..., "points":...}
// and a decode must yield the same posse order the encode saw, which rules
// out letting the bids field round-trip through a plain Go map.

// MarshalJSON implements the json.Marshaler interface.
func (r *Round) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`{"bids":{`)
	for i, posse := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(posse)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')

		bids, err := json.Marshal(r.bids[posse])
		if err != nil {
			return nil, err
		}
		buf.Write(bids)
	}
	buf.WriteString(`},"active":`)

	buf.WriteString(fmt.Sprintf("%t", r.active))
	buf.WriteString(fmt.Sprintf(`,"points":%d}`, r.points))

	return buf.Bytes(), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (r *Round) UnmarshalJSON(data []byte) error {

	// The flat fields decode conventionally. Pointers distinguish a field
	// that is absent from one that was written with its zero value.
	var doc struct {
		Active *bool `json:"active"`
		Points *int  `json:"points"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	r.bids = make(map[string][]Bid)
	r.placed = make(map[string]bool)
	r.order = nil

	r.active = true
	if doc.Active != nil {
		r.active = *doc.Active
	}
	r.points = DefaultPoints
	if doc.Points != nil {
		r.points = *doc.Points
	}

	// Walk the bids object token by token so the posse order in the
	// document is preserved.
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in round document", keyTok)
		}

		if key != "bids" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return err
			}
			continue
		}

		if _, err := dec.Token(); err != nil {
			return err
		}
		for dec.More() {
			posseTok, err := dec.Token()
			if err != nil {
				return err
			}
			posse, ok := posseTok.(string)
			if !ok {
				return fmt.Errorf("unexpected token %v in bids document", posseTok)
			}

			var bids []Bid
			if err := dec.Decode(&bids); err != nil {
				return err
			}

			r.order = append(r.order, posse)
			r.bids[posse] = bids
			for _, bid := range bids {
				r.placed[bid.Digest] = true
			}
		}
		if _, err := dec.Token(); err != nil {
			return err
		}
	}

	return nil
}
