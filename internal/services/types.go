package services

import (
	"context"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/rewards"
	"github.com/SAP-F-2025/gradequest-service/internal/scoring"
)

// ===== SERVICE INTERFACES =====

type GradebookService interface {
	ListStudents(ctx context.Context) ([]StudentView, error)
	GetStudent(ctx context.Context, studentID string) (*StudentView, error)
	SubjectBoard(ctx context.Context, subject models.SubjectCode, query string) ([]BoardRow, error)

	UpdateScore(ctx context.Context, req *ScoreUpdateRequest, actor string) (*RecordView, error)
	UpdateStatus(ctx context.Context, req *StatusUpdateRequest, actor string) (*RecordView, error)
	OverrideBalance(ctx context.Context, req *BalanceOverrideRequest, actor string) (*RecordView, error)
	Redeem(ctx context.Context, studentID string, subject models.SubjectCode) (*RedemptionView, error)

	Policy() scoring.Policy
}

type MetadataService interface {
	Get(ctx context.Context, subject models.SubjectCode) (*MetadataView, error)
	Update(ctx context.Context, subject models.SubjectCode, meta models.SubjectMetadata, actor string) (*MetadataView, error)
}

type ExportService interface {
	ExportSubjectExcel(ctx context.Context, subject models.SubjectCode, actor string) ([]byte, error)
	ExportSubjectCSV(ctx context.Context, subject models.SubjectCode, actor string) ([]byte, error)
}

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	ParseToken(token string) (*Session, error)
}

// ===== REQUESTS =====

type ScoreUpdateRequest struct {
	StudentID string             `json:"-"`
	Subject   models.SubjectCode `json:"-"`
	Field     models.ScoreField  `json:"field" validate:"required,score_field"`
	Index     *int               `json:"index,omitempty" validate:"omitempty,gte=0,lte=5"`
	Value     int                `json:"value"`
}

type StatusUpdateRequest struct {
	StudentID string             `json:"-"`
	Subject   models.SubjectCode `json:"-"`
	Status    string             `json:"status" validate:"required,override_status"`
}

type BalanceOverrideRequest struct {
	StudentID string             `json:"-"`
	Subject   models.SubjectCode `json:"-"`
	Balance   *int               `json:"balance,omitempty"`
	Delta     *int               `json:"delta,omitempty"`
}

type LoginRequest struct {
	Role      Role   `json:"role" validate:"required,session_role"`
	Secret    string `json:"secret,omitempty"`
	StudentID string `json:"student_id,omitempty"`
}

// ===== VIEWS =====

// RecordView is one subject record with everything derived from it.
type RecordView struct {
	Subject     models.SubjectCode    `json:"subject"`
	SubjectName string                `json:"subject_name"`
	Scores      models.ScoreData      `json:"scores"`
	Status      models.OverrideStatus `json:"status"`
	RowIndex    int                   `json:"row_index"`

	Total      int              `json:"total"`
	Grade      string           `json:"grade"`
	Rank       scoring.Rank     `json:"rank"`
	MaxRewards int              `json:"max_rewards"`
	Next       scoring.NextTier `json:"next"`

	Rewards rewards.Assessment `json:"rewards"`

	// SyncWarning is set when a balance resync could not be written.
	SyncWarning string `json:"sync_warning,omitempty"`
}

type StudentView struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Subjects []RecordView `json:"subjects"`
}

type BoardRow struct {
	StudentID string     `json:"student_id"`
	Name      string     `json:"name"`
	Record    RecordView `json:"record"`
}

type RedemptionView struct {
	Redeemed    bool            `json:"redeemed"`
	Outcome     rewards.Outcome `json:"outcome"`
	Message     string          `json:"message"`
	Corrected   bool            `json:"corrected"`
	CorrectedTo int             `json:"corrected_to,omitempty"`
	Record      RecordView      `json:"record"`
	Trace       []rewards.State `json:"trace"`
}

type MetadataView struct {
	Subject  models.SubjectCode     `json:"subject"`
	Metadata models.SubjectMetadata `json:"metadata"`
	// Source is store, cache or default.
	Source string `json:"source"`
}
