package worklog_test

import (
	"context"
	"testing"

	"docflow/domain/state"
	"docflow/domain/worklog"
	"docflow/persistence"
	"docflow/session"
	"docflow/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func worklogTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("docflow")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(&worklog.WorkflowLog{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS
}

func worklogTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestRecord(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("entries are appended in order with default notes", func(t *testing.T) {
		defer worklogTestTeardown(t, testDatabase)
		worklogTestSetup(t, &testDatabase)

		db := testDatabase.DS.GormDB(context.Background())
		identity := &session.Identity{ID: 11, Name: "ann"}

		entry, err := worklog.Record(db, 100, identity, worklog.ActionCreated, "", state.Draft, "")
		Expect(err).To(BeNil())
		Expect(entry.Notes).To(Equal("Document created"))
		Expect(entry.ID).ToNot(BeZero())

		_, err = worklog.Record(db, 100, identity, worklog.ActionStatusChanged, state.Draft, state.InReview, "Document submitted for review")
		Expect(err).To(BeNil())

		_, err = worklog.Record(db, 200, identity, worklog.ActionCreated, "", state.Draft, "")
		Expect(err).To(BeNil())

		logs, err := worklog.QueryLogs(100, testinfra.BuildSecCtx(11))
		Expect(err).To(BeNil())
		Expect(len(logs)).To(Equal(2))
		Expect(logs[0].Action).To(Equal(worklog.ActionCreated))
		Expect(logs[0].FromStatus).To(Equal(state.Status("")))
		Expect(logs[0].ToStatus).To(Equal(state.Draft))
		Expect(logs[1].Action).To(Equal(worklog.ActionStatusChanged))
		Expect(logs[1].Notes).To(Equal("Document submitted for review"))
	})
}

func TestLastStatusBefore(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("returns the status recorded by the latest archive entry", func(t *testing.T) {
		defer worklogTestTeardown(t, testDatabase)
		worklogTestSetup(t, &testDatabase)

		db := testDatabase.DS.GormDB(context.Background())
		identity := &session.Identity{ID: 11, Name: "ann"}

		_, err := worklog.Record(db, 100, identity, worklog.ActionStatusChanged, state.InReview, state.Rejected, "")
		Expect(err).To(BeNil())
		_, err = worklog.Record(db, 100, identity, worklog.ActionArchived, state.Rejected, state.Archived, "")
		Expect(err).To(BeNil())

		previous, err := worklog.LastStatusBefore(db, 100, worklog.ActionArchived)
		Expect(err).To(BeNil())
		Expect(previous).To(Equal(state.Rejected))
	})

	t.Run("breaks same-timestamp ties by the newest entry", func(t *testing.T) {
		defer worklogTestTeardown(t, testDatabase)
		worklogTestSetup(t, &testDatabase)

		db := testDatabase.DS.GormDB(context.Background())
		now := types.CurrentTimestamp()
		Expect(db.Create(&worklog.WorkflowLog{ID: 1, DocumentID: 100, UserID: 11, Action: worklog.ActionArchived,
			FromStatus: state.Rejected, ToStatus: state.Archived, Notes: "n", CreateTime: now}).Error).To(BeNil())
		Expect(db.Create(&worklog.WorkflowLog{ID: 2, DocumentID: 100, UserID: 11, Action: worklog.ActionArchived,
			FromStatus: state.Published, ToStatus: state.Archived, Notes: "n", CreateTime: now}).Error).To(BeNil())

		previous, err := worklog.LastStatusBefore(db, 100, worklog.ActionArchived)
		Expect(err).To(BeNil())
		Expect(previous).To(Equal(state.Published))
	})

	t.Run("falls back to draft when no status was ever recorded", func(t *testing.T) {
		defer worklogTestTeardown(t, testDatabase)
		worklogTestSetup(t, &testDatabase)

		db := testDatabase.DS.GormDB(context.Background())
		previous, err := worklog.LastStatusBefore(db, 100, worklog.ActionArchived)
		Expect(err).To(BeNil())
		Expect(previous).To(Equal(state.Draft))
	})
}
