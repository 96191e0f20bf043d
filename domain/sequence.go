package domain

// DocumentSequence holds the next sequence number for one document code
// prefix (department-year-type). Consumed with a guarded update.
type DocumentSequence struct {
	Prefix  string `json:"prefix" gorm:"primary_key"`
	NextSeq int    `json:"nextSeq"`
}

func (s *DocumentSequence) TableName() string {
	return "document_sequences"
}
