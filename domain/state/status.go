package state

type Status string

const (
	Draft     = Status("draft")
	InReview  = Status("in_review")
	Approved  = Status("approved")
	Rejected  = Status("rejected")
	Published = Status("published")
	Archived  = Status("archived")
)

type SignatoryStatus string

const (
	SignatoryPending  = SignatoryStatus("pending")
	SignatoryApproved = SignatoryStatus("approved")
	SignatoryRejected = SignatoryStatus("rejected")
	SignatoryCanceled = SignatoryStatus("canceled")
)

// IsTerminal reports whether the approval workflow is over for a document
// in this status. Archived documents can still be unarchived, but never
// approved or rejected.
func (s Status) IsTerminal() bool {
	return s == Rejected || s == Published || s == Archived
}

func (s SignatoryStatus) IsResolved() bool {
	return s != SignatoryPending
}
