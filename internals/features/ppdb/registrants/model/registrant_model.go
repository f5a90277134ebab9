package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Registrant = biodata calon siswa. Satu user satu registrant.
type Registrant struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_registrants_user,where:deleted_at IS NULL" json:"user_id"`
	RegistrationNumber string     `gorm:"size:40;not null;uniqueIndex:uq_registrants_number" json:"registration_number"`
	JalurID            *uuid.UUID `gorm:"type:uuid;index" json:"jalur_id"`
	JenjangID          *uuid.UUID `gorm:"type:uuid;index" json:"jenjang_id"`
	Status             string     `gorm:"size:20;not null;default:'draft';index" json:"status"`

	FullName       string     `gorm:"size:150;not null;default:''" json:"full_name"`
	Nickname       string     `gorm:"size:60;not null;default:''" json:"nickname"`
	Gender         string     `gorm:"size:1;not null;default:'';index" json:"gender"`
	BirthPlace     string     `gorm:"size:100;not null;default:''" json:"birth_place"`
	BirthDate      *time.Time `gorm:"type:date" json:"birth_date"`
	NIK            string     `gorm:"column:nik;size:16;not null;default:''" json:"nik"`
	NISN           string     `gorm:"column:nisn;size:10;not null;default:''" json:"nisn"`
	Religion       string     `gorm:"size:30;not null;default:''" json:"religion"`
	Address        string     `gorm:"type:text;not null;default:''" json:"address"`
	Phone          string     `gorm:"size:30;not null;default:''" json:"phone"`
	PreviousSchool string     `gorm:"size:150;not null;default:''" json:"previous_school"`

	FatherName       string `gorm:"size:150;not null;default:''" json:"father_name"`
	FatherPhone      string `gorm:"size:30;not null;default:''" json:"father_phone"`
	FatherOccupation string `gorm:"size:100;not null;default:''" json:"father_occupation"`
	MotherName       string `gorm:"size:150;not null;default:''" json:"mother_name"`
	MotherPhone      string `gorm:"size:30;not null;default:''" json:"mother_phone"`
	MotherOccupation string `gorm:"size:100;not null;default:''" json:"mother_occupation"`
	GuardianName     string `gorm:"size:150;not null;default:''" json:"guardian_name"`
	GuardianPhone    string `gorm:"size:30;not null;default:''" json:"guardian_phone"`

	Extra      datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"extra"`
	StatusNote string         `gorm:"type:text;not null;default:''" json:"status_note"`

	SubmittedAt *time.Time     `json:"submitted_at"`
	VerifiedAt  *time.Time     `json:"verified_at"`
	DecidedAt   *time.Time     `json:"decided_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Registrant) TableName() string { return "registrants" }

// ParentName: nama orang tua/wali pertama yang terisi.
func (r Registrant) ParentName() string {
	for _, n := range []string{r.FatherName, r.MotherName, r.GuardianName} {
		if n != "" {
			return n
		}
	}
	return ""
}
