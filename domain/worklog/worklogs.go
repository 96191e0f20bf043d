package worklog

import (
	"docflow/domain/state"
	"docflow/idgen"
	"docflow/persistence"
	"docflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	logIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	RecordFunc    = Record
	QueryLogsFunc = QueryLogs
)

// Record appends one workflow log entry within the caller's transaction.
// fromStatus/toStatus are empty when the entry does not record a document
// status change. When notes is empty a deterministic default per action is
// substituted, so every entry is self-describing.
func Record(tx *gorm.DB, documentID types.ID, identity *session.Identity, action string,
	fromStatus, toStatus state.Status, notes string) (*WorkflowLog, error) {

	entry := WorkflowLog{
		ID:         idgen.NextID(logIdWorker),
		DocumentID: documentID,
		UserID:     identity.ID,
		Action:     action,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Notes:      notes,
		CreateTime: types.CurrentTimestamp(),
	}
	if entry.Notes == "" {
		entry.Notes = defaultNotes(action)
	}

	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func QueryLogs(documentID types.ID, sec *session.Session) ([]WorkflowLog, error) {
	var logs []WorkflowLog
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Where(&WorkflowLog{DocumentID: documentID}).Order("create_time ASC, id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// LastStatusBefore returns the document status recorded before the latest
// entry of the given action, falling back to the latest status-bearing
// entry, then draft. Used to restore the pre-archive status.
func LastStatusBefore(tx *gorm.DB, documentID types.ID, action string) (state.Status, error) {
	var entry WorkflowLog
	err := tx.Where(&WorkflowLog{DocumentID: documentID, Action: action}).
		Order("create_time DESC, id DESC").First(&entry).Error
	if err == nil && entry.FromStatus != "" {
		return entry.FromStatus, nil
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return "", err
	}

	err = tx.Where(&WorkflowLog{DocumentID: documentID}).
		Where("action != ? AND to_status != ''", action).
		Order("create_time DESC, id DESC").First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return state.Draft, nil
	}
	if err != nil {
		return "", err
	}
	return entry.ToStatus, nil
}

func defaultNotes(action string) string {
	switch action {
	case ActionCreated:
		return "Document created"
	case ActionSignatoryAdded:
		return "Signatory assigned to document"
	case ActionRecipientAdded:
		return "Recipient added to document"
	case ActionStatusChanged:
		return "Document status changed"
	case ActionApproved:
		return "Document approved"
	case ActionRejected:
		return "Document rejected"
	case ActionPublished:
		return "Document published"
	case ActionArchived:
		return "Document archived"
	case ActionUnarchived:
		return "Document unarchived"
	default:
		return ""
	}
}
