package workflow

import (
	"docflow/bizerror"
	"docflow/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// resolveActor finds the signatory slot the given user may act on for a
// document. The user is matched as principal first; only when no principal
// slot exists is the user matched as delegate, and a delegate match is
// limited to pending slots. The second return value reports whether the
// actor stands in as delegate.
func resolveActor(tx *gorm.DB, documentID, userID types.ID) (*domain.Signatory, bool, error) {
	sig, err := signatoryOfPrincipal(tx, documentID, userID)
	if err != nil {
		return nil, false, err
	}
	if sig != nil {
		return sig, false, nil
	}

	sig, err = signatoryOfDelegate(tx, documentID, userID)
	if err != nil {
		return nil, false, err
	}
	if sig != nil {
		return sig, true, nil
	}

	return nil, false, bizerror.ErrNoEligibleSignatory
}
