package workflow

import (
	"docflow/bizerror"
	"docflow/domain"
	"docflow/domain/state"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// nextPendingSignatory returns the pending slot with the lowest order,
// or nil when every slot is resolved.
func nextPendingSignatory(tx *gorm.DB, documentID types.ID) (*domain.Signatory, error) {
	var sig domain.Signatory
	err := tx.Where(&domain.Signatory{DocumentID: documentID, Status: state.SignatoryPending}).
		Order("signatory_order ASC").First(&sig).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sig, nil
}

func signatoryOfPrincipal(tx *gorm.DB, documentID, userID types.ID) (*domain.Signatory, error) {
	var sig domain.Signatory
	err := tx.Where(&domain.Signatory{DocumentID: documentID, UserID: userID}).
		Order("signatory_order ASC").First(&sig).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sig, nil
}

// a delegate only stands in for a slot that is still pending
func signatoryOfDelegate(tx *gorm.DB, documentID, userID types.ID) (*domain.Signatory, error) {
	var sig domain.Signatory
	err := tx.Where(&domain.Signatory{DocumentID: documentID, DelegateUserID: userID, Status: state.SignatoryPending}).
		Order("signatory_order ASC").First(&sig).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sig, nil
}

func listSignatories(tx *gorm.DB, documentID types.ID) ([]domain.Signatory, error) {
	var sigs []domain.Signatory
	if err := tx.Where(&domain.Signatory{DocumentID: documentID}).
		Order("signatory_order ASC").Find(&sigs).Error; err != nil {
		return nil, err
	}
	return sigs, nil
}

func listSignatoryStatuses(tx *gorm.DB, documentID types.ID) ([]state.SignatoryStatus, error) {
	sigs, err := listSignatories(tx, documentID)
	if err != nil {
		return nil, err
	}
	statuses := make([]state.SignatoryStatus, 0, len(sigs))
	for _, sig := range sigs {
		statuses = append(statuses, sig.Status)
	}
	return statuses, nil
}

func pendingSignatoriesExcept(tx *gorm.DB, documentID, excludeID types.ID) ([]domain.Signatory, error) {
	var sigs []domain.Signatory
	if err := tx.Where(&domain.Signatory{DocumentID: documentID, Status: state.SignatoryPending}).
		Where("id != ?", excludeID).Order("signatory_order ASC").Find(&sigs).Error; err != nil {
		return nil, err
	}
	return sigs, nil
}

// mutateSignatory resolves a pending slot. The update is guarded on the
// pending status so a slot can only be resolved once.
func mutateSignatory(tx *gorm.DB, sig *domain.Signatory, newStatus state.SignatoryStatus,
	comment string, now types.Timestamp, asDelegate bool) error {

	changes := map[string]interface{}{
		"status":    newStatus,
		"comment":   comment,
		"signed_at": now,
	}
	if asDelegate {
		changes["signed_by_delegate"] = true
		changes["delegate_signed_at"] = now
	}

	db := tx.Model(&domain.Signatory{}).
		Where(&domain.Signatory{ID: sig.ID, Status: state.SignatoryPending}).
		Update(changes)
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected != 1 {
		return bizerror.ErrSignatoryNotPending
	}

	sig.Status = newStatus
	sig.Comment = comment
	sig.SignedAt = now
	if asDelegate {
		sig.SignedByDelegate = true
		sig.DelegateSignedAt = now
	}
	return nil
}
