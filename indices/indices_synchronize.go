package indices

import (
	"context"
	"fmt"
	"sync"
	"time"

	"docflow/account"
	"docflow/authority"
	"docflow/bizerror"
	"docflow/client/es"
	"docflow/domain"
	"docflow/domain/docs"
	"docflow/event"
	"docflow/persistence"
	"docflow/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	DocumentIndexEventHandlerName = "documentIndexer"

	indexRobot = &session.Session{
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{account.SystemViewPermission.ID},
		Context:  context.Background(),
	}

	lock    sync.Mutex
	running bool

	// full re-index is expensive, schedule at most one run per interval
	syncRunLimiter = rate.NewLimiter(rate.Every(10*time.Second), 1)

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

func ScheduleNewSyncRun(sec *session.Session) (bool, error) {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return false, bizerror.ErrForbidden
	}
	if !syncRunLimiter.Allow() {
		return false, nil
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize = 500
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	db := persistence.ActiveDataSourceManager.GormDB(indexRobot.Context)

	page := 1
	for {
		var documents []domain.Document
		if err := db.Order("id ASC").Offset((page - 1) * SyncBatchSize).Limit(SyncBatchSize).
			Find(&documents).Error; err != nil {
			logrus.Warnf("indices fully sync: error on retrieve documents(page = %d, pageSize = %d): %v",
				page, SyncBatchSize, err)
			page++
			continue
		}

		if len(documents) == 0 {
			logrus.Infof("indices fully sync: there are no more documents to index")
			return nil
		}

		details := make([]domain.DocumentDetail, 0, len(documents))
		for _, doc := range documents {
			detail, err := docs.DetailDocumentFunc(doc.ID, indexRobot)
			if err != nil {
				logrus.Warnf("indices fully sync: error on detail document %d: %v", doc.ID, err)
				continue
			}
			details = append(details, *detail)
		}
		if err := IndexDocuments(details, indexRobot); err != nil {
			logrus.Warnf("indices fully sync: error on index documents(page = %d, pageSize = %d): %v",
				page, SyncBatchSize, err)
		}
		page++
	}
}

// IndexDocumentEventHandle keeps the search index in step with document
// events. Returns nil for events of other source types.
func IndexDocumentEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeDocument {
		return nil
	}

	if e.EventCategory == event.EventCategoryDeleted {
		if err := es.DeleteDocumentByIdFunc(DocumentIndexName, e.Event.SourceId, indexRobot); err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete document index %d, %v", e.Event.SourceId, err),
				HandlerIdentifier: DocumentIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: DocumentIndexEventHandlerName}
	}

	detail, err := docs.DetailDocumentFunc(e.Event.SourceId, indexRobot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail document when index document %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: DocumentIndexEventHandlerName,
		}
	}
	if err := IndexDocuments([]domain.DocumentDetail{*detail}, indexRobot); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index document %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: DocumentIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: DocumentIndexEventHandlerName}
}
