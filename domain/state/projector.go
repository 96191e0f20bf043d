package state

// Project derives a document status from its signatory chain.
//
// Any rejected slot wins; a fully approved chain yields Approved (the
// workflow engine is responsible for the follow-up publish); an untouched
// chain keeps a draft document in draft; anything else is in review.
// Archived and draft are external entry points and are never produced here
// except for the untouched-chain case.
func Project(current Status, signatories []SignatoryStatus) Status {
	if len(signatories) == 0 {
		return current
	}

	allApproved := true
	anyActed := false
	for _, s := range signatories {
		if s == SignatoryRejected {
			return Rejected
		}
		if s != SignatoryApproved {
			allApproved = false
		}
		if s.IsResolved() {
			anyActed = true
		}
	}

	if allApproved {
		return Approved
	}
	if !anyActed && current == Draft {
		return Draft
	}
	return InReview
}
