package model

// ActionKind is the external action a verdict asks for.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionRepost
	ActionQuote
	ActionLike
	ActionGreet
)

func (k ActionKind) String() string {
	switch k {
	case ActionRepost:
		return "repost"
	case ActionQuote:
		return "quote"
	case ActionLike:
		return "like"
	case ActionGreet:
		return "greet"
	default:
		return "none"
	}
}

// Counted reports whether the action consumes hourly quota.
func (k ActionKind) Counted() bool {
	return k == ActionRepost || k == ActionQuote
}

// RejectReason names the stage that turned an item down.
type RejectReason string

const (
	ReasonUserGate    RejectReason = "user"
	ReasonContentGate RejectReason = "content"
	ReasonKeywordGate RejectReason = "keyword"
	ReasonDuplicate   RejectReason = "duplicate"
	ReasonQuota       RejectReason = "quota"
)

// Verdict is either a rejection with a reason or an action on an item.
// Use Reject and Act to build one; the zero value is not meaningful.
type Verdict struct {
	Kind   ActionKind
	Reason RejectReason
	Item   *Item

	// Target is the account the action is attributed to for quota purposes.
	Target string
	// Fingerprints are recorded in the dedup cache once the action succeeds.
	Fingerprints []string
	// Commentary is the text attached to a quote or greeting.
	Commentary string
}

// Reject builds a rejecting verdict.
func Reject(reason RejectReason, item *Item) Verdict {
	return Verdict{Kind: ActionNone, Reason: reason, Item: item}
}

// Act builds an accepting verdict.
func Act(kind ActionKind, item *Item) Verdict {
	v := Verdict{Kind: kind, Item: item}
	if item != nil {
		v.Target = item.Author.Handle
	}
	return v
}

// Accepted reports whether the verdict asks for an action.
func (v Verdict) Accepted() bool { return v.Kind != ActionNone }
