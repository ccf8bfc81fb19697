package models

import "strings"

type SubjectCode string

const (
	SubjectM1History SubjectCode = "M1_History"
	SubjectM1Social  SubjectCode = "M1_Social"
	SubjectM5History SubjectCode = "M5_History"
	SubjectM5Social  SubjectCode = "M5_Social"
	SubjectM6Social  SubjectCode = "M6_Social"
)

// SubjectCodes is the catalogue in display order. Stores enumerate subjects
// in this order when assembling students.
var SubjectCodes = []SubjectCode{
	SubjectM1History,
	SubjectM1Social,
	SubjectM5History,
	SubjectM5Social,
	SubjectM6Social,
}

var SubjectNames = map[SubjectCode]string{
	SubjectM1History: "ม.1 ประวัติศาสตร์",
	SubjectM1Social:  "ม.1 สังคมศึกษา",
	SubjectM5History: "ม.5 ประวัติศาสตร์สากล",
	SubjectM5Social:  "ม.5 สังคมศึกษา",
	SubjectM6Social:  "ม.6 สังคมศึกษา",
}

func (s SubjectCode) IsValid() bool {
	_, ok := SubjectNames[s]
	return ok
}

func (s SubjectCode) DisplayName() string {
	if name, ok := SubjectNames[s]; ok {
		return name
	}
	return string(s)
}

func ParseSubjectCode(value string) (SubjectCode, bool) {
	code := SubjectCode(strings.TrimSpace(value))
	return code, code.IsValid()
}
