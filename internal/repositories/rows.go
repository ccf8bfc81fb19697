package repositories

import (
	"sort"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
)

// Row is a flattened store row: one student in one subject.
type Row struct {
	StudentID   string
	StudentName string
	Subject     models.SubjectCode
	Record      models.SubjectRecord
}

// AssembleStudents groups rows into students. Subjects are walked in
// catalogue order and rows by RowIndex, and students keep the order in which
// they were first seen.
func AssembleStudents(rows []Row) []*models.Student {
	bySubject := make(map[models.SubjectCode][]Row)
	for _, row := range rows {
		bySubject[row.Subject] = append(bySubject[row.Subject], row)
	}

	var students []*models.Student
	index := make(map[string]*models.Student)
	for _, subject := range models.SubjectCodes {
		subjectRows := bySubject[subject]
		sort.SliceStable(subjectRows, func(i, j int) bool {
			return subjectRows[i].Record.RowIndex < subjectRows[j].Record.RowIndex
		})
		for _, row := range subjectRows {
			if row.StudentID == "" {
				continue
			}
			student, ok := index[row.StudentID]
			if !ok {
				student = &models.Student{
					ID:       row.StudentID,
					Name:     row.StudentName,
					Subjects: make(map[models.SubjectCode]models.SubjectRecord),
				}
				index[row.StudentID] = student
				students = append(students, student)
			}
			student.Subjects[subject] = row.Record
		}
	}
	return students
}

// FindStudent returns the student with the given id from an assembled list.
func FindStudent(students []*models.Student, studentID string) (*models.Student, error) {
	for _, s := range students {
		if s.ID == studentID {
			return s, nil
		}
	}
	return nil, ErrRecordNotFound
}

// FindRecord returns one subject record from an assembled list.
func FindRecord(students []*models.Student, studentID string, subject models.SubjectCode) (models.SubjectRecord, error) {
	student, err := FindStudent(students, studentID)
	if err != nil {
		return models.SubjectRecord{}, err
	}
	rec, ok := student.Record(subject)
	if !ok {
		return models.SubjectRecord{}, ErrRecordNotFound
	}
	return rec, nil
}
