package workflow

import (
	"fmt"

	"docflow/bizerror"
	"docflow/domain"
	"docflow/domain/state"
	"docflow/domain/worklog"
	"docflow/event"
	"docflow/persistence"
	"docflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	ApproveDocumentFunc = ApproveDocument
	RejectDocumentFunc  = RejectDocument
)

type ApprovalCreation struct {
	Comment string `json:"comment"`
}

type RejectionCreation struct {
	Reason  string `json:"reason" binding:"required"`
	Comment string `json:"comment"`
}

// ApproveDocument records the approval of the caller's slot and advances the
// document. Approval is only accepted from the pending signatory with the
// lowest order, acting as principal or as the slot's delegate. When the last
// slot approves, the document is marked approved and published in the same
// transaction.
func ApproveDocument(id types.ID, c *ApprovalCreation, sec *session.Session) (*domain.Document, error) {
	doc := domain.Document{}
	var ev *event.EventRecord

	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if doc, err = lockDocument(tx, id); err != nil {
			return err
		}
		if doc.Status != state.InReview {
			return bizerror.ErrStatusInvalid
		}

		slot, asDelegate, err := resolveActor(tx, id, sec.Identity.ID)
		if err != nil {
			return err
		}
		next, err := nextPendingSignatory(tx, id)
		if err != nil {
			return err
		}
		if next == nil || slot.ID != next.ID {
			return bizerror.ErrNotYourTurn
		}

		now := types.CurrentTimestamp()
		if err := mutateSignatory(tx, slot, state.SignatoryApproved, c.Comment, now, asDelegate); err != nil {
			return err
		}

		notes := c.Comment
		if notes == "" {
			notes = fmt.Sprintf("Document approved by %s", signerDesc(slot, asDelegate))
		}
		if _, err := worklog.RecordFunc(tx, id, &sec.Identity, worklog.ActionApproved, "", "", notes); err != nil {
			return err
		}

		statuses, err := listSignatoryStatuses(tx, id)
		if err != nil {
			return err
		}
		projected := state.Project(doc.Status, statuses)
		if projected != state.Approved {
			remaining, err := nextPendingSignatory(tx, id)
			if err != nil {
				return err
			}
			if remaining != nil {
				if _, err := worklog.RecordFunc(tx, id, &sec.Identity, worklog.ActionApprovalCompleted, "", "",
					fmt.Sprintf("Document ready for next signatory (#%d)", remaining.Order)); err != nil {
					return err
				}
			}
			return nil
		}

		if err := applyStatus(tx, &doc, state.Approved); err != nil {
			return err
		}
		if _, err := worklog.RecordFunc(tx, id, &sec.Identity, worklog.ActionStatusChanged, state.InReview, state.Approved,
			"All signatories have approved the document"); err != nil {
			return err
		}
		if err := applyStatus(tx, &doc, state.Published); err != nil {
			return err
		}
		if _, err := worklog.RecordFunc(tx, id, &sec.Identity, worklog.ActionPublished, state.Approved, state.Published,
			"Document published after all approvals received."); err != nil {
			return err
		}

		ev, err = createStatusEvent(tx, &doc, state.InReview, state.Published, &sec.Identity)
		return err
	})
	if err != nil {
		return nil, err
	}

	if ev != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &doc, nil
}

// RejectDocument rejects a document in review. A regular caller must hold
// the next pending slot. A privileged caller may reject out of turn, or with
// no slot at all. Every remaining pending slot is canceled and the workflow
// terminates.
func RejectDocument(id types.ID, c *RejectionCreation, privileged bool, sec *session.Session) (*domain.Document, error) {
	doc := domain.Document{}
	var ev *event.EventRecord

	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if doc, err = lockDocument(tx, id); err != nil {
			return err
		}
		if doc.Status != state.InReview {
			return bizerror.ErrStatusInvalid
		}

		slot, asDelegate, err := resolveActor(tx, id, sec.Identity.ID)
		if err != nil {
			if !privileged || err != bizerror.ErrNoEligibleSignatory {
				return err
			}
			slot, asDelegate = nil, false
		}
		if !privileged {
			next, err := nextPendingSignatory(tx, id)
			if err != nil {
				return err
			}
			if next == nil || slot.ID != next.ID {
				return bizerror.ErrNotYourTurn
			}
		}

		now := types.CurrentTimestamp()
		rejecter := identityDesc(&sec.Identity)
		if slot != nil {
			rejecter = signerDesc(slot, asDelegate)
		}

		from := doc.Status
		if err := applyStatus(tx, &doc, state.Rejected); err != nil {
			return err
		}
		if _, err := worklog.RecordFunc(tx, id, &sec.Identity, worklog.ActionStatusChanged, from, state.Rejected,
			fmt.Sprintf("Rejected by %s: %s", rejecter, c.Reason)); err != nil {
			return err
		}

		var actedSlotID types.ID
		if slot != nil && slot.Status == state.SignatoryPending {
			comment := c.Comment
			if comment == "" {
				comment = c.Reason
			}
			if err := mutateSignatory(tx, slot, state.SignatoryRejected, comment, now, asDelegate); err != nil {
				return err
			}
			actedSlotID = slot.ID
			if _, err := worklog.RecordFunc(tx, id, &sec.Identity, worklog.ActionRejected, "", "",
				fmt.Sprintf("Rejected by %s: %s", rejecter, c.Reason)); err != nil {
				return err
			}
		}

		remaining, err := pendingSignatoriesExcept(tx, id, actedSlotID)
		if err != nil {
			return err
		}
		for _, pending := range remaining {
			pending := pending
			if err := mutateSignatory(tx, &pending, state.SignatoryCanceled, "", now, false); err != nil {
				return err
			}
			if _, err := worklog.RecordFunc(tx, id, &sec.Identity, worklog.ActionSignatoryCanceled, "", "",
				fmt.Sprintf("Signatory #%d approval canceled due to document rejection", pending.Order)); err != nil {
				return err
			}
		}

		if _, err := worklog.RecordFunc(tx, id, &sec.Identity, worklog.ActionWorkflowTerminated, "", "",
			fmt.Sprintf("Document workflow terminated due to rejection: %s", c.Reason)); err != nil {
			return err
		}

		ev, err = createStatusEvent(tx, &doc, from, state.Rejected, &sec.Identity)
		return err
	})
	if err != nil {
		return nil, err
	}

	if ev != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &doc, nil
}

func lockDocument(tx *gorm.DB, id types.ID) (domain.Document, error) {
	doc := domain.Document{}
	err := tx.Set("gorm:query_option", "FOR UPDATE").
		Where(&domain.Document{ID: id}).First(&doc).Error
	if err == gorm.ErrRecordNotFound {
		return doc, bizerror.ErrNotFound
	}
	return doc, err
}

// applyStatus moves a document to the given status, guarded on its current
// status so concurrent transitions cannot both win.
func applyStatus(tx *gorm.DB, doc *domain.Document, to state.Status) error {
	db := tx.Model(&domain.Document{}).
		Where(&domain.Document{ID: doc.ID, Status: doc.Status}).
		Update(&domain.Document{Status: to})
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected != 1 {
		return fmt.Errorf("expected affected row is 1, but actual is %d", db.RowsAffected)
	}
	doc.Status = to
	return nil
}

func createStatusEvent(tx *gorm.DB, doc *domain.Document, from, to state.Status,
	identity *session.Identity) (*event.EventRecord, error) {

	return event.CreateEvent(event.SourceTypeDocument, doc.ID, doc.Title, event.EventCategoryPropertyUpdated,
		[]event.UpdatedProperty{{
			PropertyName: "Status", PropertyDesc: "Status",
			OldValue: string(from), OldValueDesc: string(from),
			NewValue: string(to), NewValueDesc: string(to),
		}}, identity, types.CurrentTimestamp(), tx)
}

func signerDesc(slot *domain.Signatory, asDelegate bool) string {
	if asDelegate {
		return fmt.Sprintf("%s (on behalf of %s)", slot.DelegateName, slot.UserName)
	}
	return slot.UserName
}

func identityDesc(identity *session.Identity) string {
	if identity.Nickname != "" {
		return identity.Nickname
	}
	return identity.Name
}
