package repositories

import (
	"fmt"
	"os"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"gopkg.in/yaml.v3"
)

// seedStudent is one student in a seed file, with a record per subject.
type seedStudent struct {
	ID       string                 `yaml:"id"`
	Name     string                 `yaml:"name"`
	Subjects map[string]seedRecord `yaml:"subjects"`
}

type seedRecord struct {
	Assignments   []int  `yaml:"assignments"`
	Midterm       int    `yaml:"midterm"`
	Final         int    `yaml:"final"`
	Status        string `yaml:"status"`
	RewardRights  int    `yaml:"reward_rights"`
	RedeemedCount int    `yaml:"redeemed_count"`
}

// LoadSeedFile reads a YAML list of students into rows. Row indexes follow
// file order within each subject and scores are clamped.
func LoadSeedFile(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) ([]Row, error) {
	var students []seedStudent
	if err := yaml.Unmarshal(data, &students); err != nil {
		return nil, fmt.Errorf("seed: parse: %w", err)
	}

	var rows []Row
	next := make(map[models.SubjectCode]int)
	for _, s := range students {
		if s.ID == "" {
			return nil, fmt.Errorf("seed: student %q has no id", s.Name)
		}
		for _, code := range models.SubjectCodes {
			rec, ok := s.Subjects[string(code)]
			if !ok {
				continue
			}
			if len(rec.Assignments) > models.AssignmentCount {
				return nil, fmt.Errorf("seed: %s/%s lists %d assignments", s.ID, code, len(rec.Assignments))
			}
			status, ok := models.ParseOverrideStatus(rec.Status)
			if !ok {
				return nil, fmt.Errorf("seed: %s/%s has unknown status %q", s.ID, code, rec.Status)
			}

			var scores models.ScoreData
			copy(scores.Assignments[:], rec.Assignments)
			scores.Midterm, scores.Final = rec.Midterm, rec.Final

			rows = append(rows, Row{
				StudentID:   s.ID,
				StudentName: s.Name,
				Subject:     code,
				Record: models.SubjectRecord{
					Scores:        scores.Clamped(),
					Status:        status,
					RewardRights:  max(rec.RewardRights, 0),
					RedeemedCount: max(rec.RedeemedCount, 0),
					RowIndex:      next[code],
				},
			})
			next[code]++
		}
		for code := range s.Subjects {
			if !models.SubjectCode(code).IsValid() {
				return nil, fmt.Errorf("seed: %s has unknown subject %q", s.ID, code)
			}
		}
	}
	return rows, nil
}
