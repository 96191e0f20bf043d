package docs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"docflow/account"
	"docflow/bizerror"
	"docflow/domain"
	"docflow/domain/state"
	"docflow/domain/worklog"
	"docflow/event"
	"docflow/idgen"
	"docflow/persistence"
	"docflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	docIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateDocumentFunc    = CreateDocument
	DetailDocumentFunc    = DetailDocument
	QueryDocumentsFunc    = QueryDocuments
	ArchiveDocumentsFunc  = ArchiveDocuments
	UnarchiveDocumentFunc = UnarchiveDocument
)

// CreateDocument creates a document with its signatory chain and recipients.
// A document with at least one signatory enters review immediately, otherwise
// it stays in draft.
func CreateDocument(c *domain.DocumentCreation, sec *session.Session) (*domain.DocumentDetail, error) {
	detail := domain.DocumentDetail{}
	var ev *event.EventRecord

	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		creator := account.User{ID: sec.Identity.ID}
		if err := tx.Where(&creator).First(&creator).Error; err != nil {
			return err
		}

		code, err := nextDocumentCode(tx, creator.Department, c.TypeCode, time.Now().Year())
		if err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		doc := domain.Document{
			ID:          idgen.NextID(docIdWorker),
			Code:        code,
			Title:       c.Title,
			Description: c.Description,
			TypeCode:    c.TypeCode,
			Version:     "1.0",
			Status:      state.Draft,
			CreatorID:   sec.Identity.ID,
			CreatorName: sec.Identity.Name,
			CreateTime:  now,
		}
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}
		if _, err := worklog.RecordFunc(tx, doc.ID, &sec.Identity, worklog.ActionCreated, "", state.Draft, ""); err != nil {
			return err
		}

		names, err := accountNames(tx, c.Signatories, c.RecipientIDs)
		if err != nil {
			return err
		}

		signatories := make([]domain.Signatory, 0, len(c.Signatories))
		for i, assignment := range c.Signatories {
			sig := domain.Signatory{
				ID:         idgen.NextID(docIdWorker),
				DocumentID: doc.ID,
				Order:      i + 1,
				UserID:     assignment.UserID,
				UserName:   names[assignment.UserID],
				Status:     state.SignatoryPending,
			}
			if assignment.DelegateUserID != 0 {
				sig.DelegateUserID = assignment.DelegateUserID
				sig.DelegateName = names[assignment.DelegateUserID]
			}
			if err := tx.Create(&sig).Error; err != nil {
				return err
			}
			if _, err := worklog.RecordFunc(tx, doc.ID, &sec.Identity, worklog.ActionSignatoryAdded, "", "", ""); err != nil {
				return err
			}
			signatories = append(signatories, sig)
		}

		for _, userID := range c.RecipientIDs {
			recipient := domain.DocumentRecipient{ID: idgen.NextID(docIdWorker), DocumentID: doc.ID, UserID: userID, CreateTime: now}
			if err := tx.Create(&recipient).Error; err != nil {
				return err
			}
			if _, err := worklog.RecordFunc(tx, doc.ID, &sec.Identity, worklog.ActionRecipientAdded, "", "", ""); err != nil {
				return err
			}
		}

		if len(signatories) > 0 {
			db := tx.Model(&domain.Document{}).
				Where(&domain.Document{ID: doc.ID, Status: state.Draft}).
				Update(&domain.Document{Status: state.InReview})
			if db.Error != nil {
				return db.Error
			}
			if db.RowsAffected != 1 {
				return fmt.Errorf("expected affected row is 1, but actual is %d", db.RowsAffected)
			}
			doc.Status = state.InReview
			if _, err := worklog.RecordFunc(tx, doc.ID, &sec.Identity, worklog.ActionStatusChanged,
				state.Draft, state.InReview, "Document submitted for review"); err != nil {
				return err
			}
		}

		detail = domain.DocumentDetail{Document: doc, Signatories: signatories}
		ev, err = event.CreateEvent(event.SourceTypeDocument, doc.ID, doc.Title, event.EventCategoryCreated,
			nil, &sec.Identity, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if ev != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &detail, nil
}

func DetailDocument(id types.ID, sec *session.Session) (*domain.DocumentDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)

	doc := domain.Document{ID: id}
	if err := db.Where(&doc).First(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}

	var signatories []domain.Signatory
	if err := db.Where(&domain.Signatory{DocumentID: id}).
		Order("signatory_order ASC").Find(&signatories).Error; err != nil {
		return nil, err
	}

	return &domain.DocumentDetail{Document: doc, Signatories: signatories}, nil
}

func QueryDocuments(q *domain.DocumentQuery, sec *session.Session) ([]domain.Document, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context).Model(&domain.Document{})

	if q.Title != "" {
		db = db.Where("title LIKE ?", "%"+q.Title+"%")
	}
	if len(q.Statuses) > 0 {
		db = db.Where("status IN (?)", q.Statuses)
	}
	switch q.ArchiveState {
	case domain.ArchiveStateAll:
	case domain.ArchiveStateOn:
		db = db.Where("status = ?", state.Archived)
	default:
		db = db.Where("status != ?", state.Archived)
	}

	var documents []domain.Document
	if err := db.Order("create_time DESC").Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// ArchiveDocuments archives published or rejected documents. Any document in
// another status fails the whole batch.
func ArchiveDocuments(selection *domain.DocumentSelection, sec *session.Session) error {
	events := []*event.EventRecord{}

	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		now := types.CurrentTimestamp()
		for _, id := range selection.DocumentIDList {
			doc := domain.Document{ID: id}
			if err := tx.Where(&doc).First(&doc).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return bizerror.ErrNotFound
				}
				return err
			}
			if !sec.Perms.HasRole(account.SystemAdminPermission.ID) && doc.CreatorID != sec.Identity.ID {
				return bizerror.ErrForbidden
			}
			if doc.Status != state.Published && doc.Status != state.Rejected {
				return bizerror.ErrArchiveStatusInvalid
			}

			d := tx.Model(&domain.Document{}).
				Where(&domain.Document{ID: id, Status: doc.Status}).
				Update(map[string]interface{}{"status": state.Archived, "archive_time": now})
			if d.Error != nil {
				return d.Error
			}
			if d.RowsAffected != 1 {
				return fmt.Errorf("expected affected row is 1, but actual is %d", d.RowsAffected)
			}

			if _, err := worklog.RecordFunc(tx, id, &sec.Identity, worklog.ActionArchived,
				doc.Status, state.Archived, ""); err != nil {
				return err
			}
			ev, err := event.CreateEvent(event.SourceTypeDocument, id, doc.Title, event.EventCategoryPropertyUpdated,
				[]event.UpdatedProperty{{
					PropertyName: "Status", PropertyDesc: "Status",
					OldValue: string(doc.Status), OldValueDesc: string(doc.Status),
					NewValue: string(state.Archived), NewValueDesc: string(state.Archived),
				}}, &sec.Identity, now, tx)
			if err != nil {
				return err
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, ev := range events {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}

// UnarchiveDocument restores an archived document to the status it held
// before it was archived.
func UnarchiveDocument(id types.ID, sec *session.Session) (*domain.Document, error) {
	doc := domain.Document{}
	var ev *event.EventRecord

	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		doc = domain.Document{ID: id}
		if err := tx.Where(&doc).First(&doc).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return bizerror.ErrNotFound
			}
			return err
		}
		if !sec.Perms.HasRole(account.SystemAdminPermission.ID) && doc.CreatorID != sec.Identity.ID {
			return bizerror.ErrForbidden
		}
		if doc.Status != state.Archived {
			return bizerror.ErrArchiveStatusInvalid
		}

		previous, err := worklog.LastStatusBefore(tx, id, worklog.ActionArchived)
		if err != nil {
			return err
		}

		d := tx.Model(&domain.Document{}).
			Where(&domain.Document{ID: id, Status: state.Archived}).
			Update(map[string]interface{}{"status": previous, "archive_time": nil})
		if d.Error != nil {
			return d.Error
		}
		if d.RowsAffected != 1 {
			return fmt.Errorf("expected affected row is 1, but actual is %d", d.RowsAffected)
		}
		doc.Status = previous
		doc.ArchiveTime = types.Timestamp{}

		if _, err := worklog.RecordFunc(tx, id, &sec.Identity, worklog.ActionUnarchived,
			state.Archived, previous, ""); err != nil {
			return err
		}
		ev, err = event.CreateEvent(event.SourceTypeDocument, id, doc.Title, event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{
				PropertyName: "Status", PropertyDesc: "Status",
				OldValue: string(state.Archived), OldValueDesc: string(state.Archived),
				NewValue: string(previous), NewValueDesc: string(previous),
			}}, &sec.Identity, types.CurrentTimestamp(), tx)
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

// nextDocumentCode consumes one value of the per-prefix sequence. The
// sequence row is guarded on its current value, a lost race fails the
// transaction instead of issuing a duplicate code.
func nextDocumentCode(tx *gorm.DB, department, typeCode string, year int) (string, error) {
	prefix := fmt.Sprintf("%s-%d-%s", strings.ToUpper(department), year, strings.ToUpper(typeCode))

	seq := domain.DocumentSequence{Prefix: prefix}
	err := tx.Where(&seq).First(&seq).Error
	if err == gorm.ErrRecordNotFound {
		seq = domain.DocumentSequence{Prefix: prefix, NextSeq: 2}
		if err := tx.Create(&seq).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("%s-%04d", prefix, 1), nil
	}
	if err != nil {
		return "", err
	}

	code := fmt.Sprintf("%s-%04d", prefix, seq.NextSeq)
	db := tx.Model(&domain.DocumentSequence{}).
		Where(&domain.DocumentSequence{Prefix: prefix, NextSeq: seq.NextSeq}).
		Update("next_seq", seq.NextSeq+1)
	if db.Error != nil {
		return "", db.Error
	}
	if db.RowsAffected != 1 {
		return "", errors.New("concurrent modification")
	}
	return code, nil
}

func accountNames(tx *gorm.DB, signatories []domain.SignatoryAssignment, recipientIDs []types.ID) (map[types.ID]string, error) {
	ids := []types.ID{}
	for _, s := range signatories {
		ids = append(ids, s.UserID)
		if s.DelegateUserID != 0 {
			ids = append(ids, s.DelegateUserID)
		}
	}
	ids = append(ids, recipientIDs...)
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}

	var records []account.UserInfo
	if err := tx.Model(&account.User{}).Where("id IN (?)", ids).Scan(&records).Error; err != nil {
		return nil, err
	}
	names := map[types.ID]string{}
	for _, r := range records {
		r := r
		names[r.ID] = r.DisplayName()
	}
	return names, nil
}
