package models

const (
	AssignmentCount    = 6
	MaxAssignmentScore = 10
	MaxExamScore       = 20
	MaxTotalScore      = AssignmentCount*MaxAssignmentScore + 2*MaxExamScore
)

type OverrideStatus string

const (
	StatusNormal       OverrideStatus = "Normal"
	StatusRetake       OverrideStatus = "Retake"
	StatusNoAssessment OverrideStatus = "NoAssessment"
)

// Labels used by the spreadsheet backend.
const (
	sheetLabelRetake       = "ร"
	sheetLabelNoAssessment = "มส."
)

// ParseOverrideStatus accepts both the API names and the spreadsheet labels.
// An empty value is treated as Normal.
func ParseOverrideStatus(value string) (OverrideStatus, bool) {
	switch value {
	case "", string(StatusNormal):
		return StatusNormal, true
	case string(StatusRetake), sheetLabelRetake:
		return StatusRetake, true
	case string(StatusNoAssessment), sheetLabelNoAssessment:
		return StatusNoAssessment, true
	}
	return "", false
}

func (s OverrideStatus) IsValid() bool {
	switch s {
	case StatusNormal, StatusRetake, StatusNoAssessment:
		return true
	}
	return false
}

func (s OverrideStatus) IsNormal() bool {
	return s == "" || s == StatusNormal
}

// SheetLabel returns the label stored in the spreadsheet Status column.
func (s OverrideStatus) SheetLabel() string {
	switch s {
	case StatusRetake:
		return sheetLabelRetake
	case StatusNoAssessment:
		return sheetLabelNoAssessment
	default:
		return string(StatusNormal)
	}
}

func ClampAssignmentScore(v int) int {
	return clamp(v, 0, MaxAssignmentScore)
}

func ClampExamScore(v int) int {
	return clamp(v, 0, MaxExamScore)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ScoreData holds the raw component scores of one subject.
type ScoreData struct {
	Assignments [AssignmentCount]int `json:"assignments"`
	Midterm     int                  `json:"midterm"`
	Final       int                  `json:"final"`
}

// Clamped returns a copy with every component forced into its allowed range.
func (s ScoreData) Clamped() ScoreData {
	out := s
	for i := range out.Assignments {
		out.Assignments[i] = ClampAssignmentScore(out.Assignments[i])
	}
	out.Midterm = ClampExamScore(out.Midterm)
	out.Final = ClampExamScore(out.Final)
	return out
}

// SubjectRecord is one student's row in one subject. It is a value type:
// the With* methods return modified copies and never touch the receiver.
type SubjectRecord struct {
	Scores        ScoreData      `json:"scores"`
	Status        OverrideStatus `json:"status"`
	RewardRights  int            `json:"rewardRights"`
	RedeemedCount int            `json:"redeemedCount"`
	RowIndex      int            `json:"rowIndex"`
}

func (r SubjectRecord) WithAssignment(index, score int) SubjectRecord {
	if index < 0 || index >= AssignmentCount {
		return r
	}
	r.Scores.Assignments[index] = ClampAssignmentScore(score)
	return r
}

func (r SubjectRecord) WithMidterm(score int) SubjectRecord {
	r.Scores.Midterm = ClampExamScore(score)
	return r
}

func (r SubjectRecord) WithFinal(score int) SubjectRecord {
	r.Scores.Final = ClampExamScore(score)
	return r
}

func (r SubjectRecord) WithStatus(status OverrideStatus) SubjectRecord {
	r.Status = status
	return r
}

func (r SubjectRecord) WithRewardRights(balance int) SubjectRecord {
	if balance < 0 {
		balance = 0
	}
	r.RewardRights = balance
	return r
}

func (r SubjectRecord) WithRedeemedCount(count int) SubjectRecord {
	if count < 0 {
		count = 0
	}
	r.RedeemedCount = count
	return r
}

// Student groups the per-subject records of one student id.
type Student struct {
	ID       string                        `json:"id"`
	Name     string                        `json:"name"`
	Subjects map[SubjectCode]SubjectRecord `json:"subjects"`
}

func (s *Student) Record(subject SubjectCode) (SubjectRecord, bool) {
	if s == nil || s.Subjects == nil {
		return SubjectRecord{}, false
	}
	rec, ok := s.Subjects[subject]
	return rec, ok
}

// Clone returns a deep copy; SubjectRecord values are copied with the map.
func (s Student) Clone() Student {
	subjects := make(map[SubjectCode]SubjectRecord, len(s.Subjects))
	for code, rec := range s.Subjects {
		subjects[code] = rec
	}
	s.Subjects = subjects
	return s
}

// WithRecord returns a copy of the student with one subject record replaced.
func (s Student) WithRecord(subject SubjectCode, rec SubjectRecord) Student {
	out := s.Clone()
	out.Subjects[subject] = rec
	return out
}

// EnrolledSubjects lists the student's subjects in catalogue order.
func (s *Student) EnrolledSubjects() []SubjectCode {
	var out []SubjectCode
	for _, code := range SubjectCodes {
		if _, ok := s.Subjects[code]; ok {
			out = append(out, code)
		}
	}
	return out
}
