package repositories

import (
	"testing"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
- id: "65001"
  name: Malee
  subjects:
    M5_History:
      assignments: [10, 10, 12, 10]
      midterm: 15
      final: 25
      reward_rights: 2
    M1_History:
      status: ร
- id: "65002"
  name: Somchai
  subjects:
    M5_History:
      redeemed_count: 1
`

func TestParseSeed(t *testing.T) {
	rows, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	students := AssembleStudents(rows)
	require.Len(t, students, 2)

	malee, err := FindRecord(students, "65001", models.SubjectM5History)
	require.NoError(t, err)
	assert.Equal(t, [6]int{10, 10, 10, 10, 0, 0}, malee.Scores.Assignments)
	assert.Equal(t, 20, malee.Scores.Final)
	assert.Equal(t, 2, malee.RewardRights)
	assert.Equal(t, 0, malee.RowIndex)

	retake, err := FindRecord(students, "65001", models.SubjectM1History)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRetake, retake.Status)

	somchai, err := FindRecord(students, "65002", models.SubjectM5History)
	require.NoError(t, err)
	assert.Equal(t, 1, somchai.RowIndex)
	assert.Equal(t, models.StatusNormal, somchai.Status)
}

func TestParseSeed_Rejects(t *testing.T) {
	bad := []string{
		`- name: nobody`,
		`- id: "1"
  subjects:
    X9: {}`,
		`- id: "1"
  subjects:
    M1_Social:
      status: Expelled`,
		`- id: "1"
  subjects:
    M1_Social:
      assignments: [1, 2, 3, 4, 5, 6, 7]`,
	}
	for _, doc := range bad {
		_, err := ParseSeed([]byte(doc))
		assert.Error(t, err, doc)
	}
}
