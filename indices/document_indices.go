package indices

import (
	"fmt"

	"docflow/client/es"
	"docflow/domain"
	"docflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	DocumentIndexName = "documents"
)

type DocumentIndexRecord struct {
	domain.DocumentDetail
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexDocuments(details []domain.DocumentDetail, s *session.Session) error {
	records := make([]DocumentIndexRecord, 0, len(details))
	for _, detail := range details {
		records = append(records, DocumentIndexRecord{DocumentDetail: detail})
	}

	errs := BatchActionError{}
	for _, record := range records {
		if err := es.IndexFunc(DocumentIndexName, record.ID, record, s); err != nil {
			errs[record.ID] = err
			logrus.Warnf("index document %d %s %s\n", record.ID, record.Code, err)
		} else {
			logrus.Infof("index document %d %s successfully\n", record.ID, record.Code)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
