package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type VisitorRegistrationModel struct {
	VisitorRegistrationID             uuid.UUID      `gorm:"column:visitor_registration_id;primaryKey;type:uuid;default:gen_random_uuid()" json:"visitor_registration_id"`
	VisitorRegistrationName           string         `gorm:"column:visitor_registration_name;type:text;not null" json:"visitor_registration_name"`
	VisitorRegistrationPhone          string         `gorm:"column:visitor_registration_phone;type:text" json:"visitor_registration_phone"`
	VisitorRegistrationNumberOfPeople int            `gorm:"column:visitor_registration_number_of_people;not null;default:1" json:"visitor_registration_number_of_people"`
	VisitorRegistrationPeople         datatypes.JSON `gorm:"column:visitor_registration_people;type:jsonb" json:"visitor_registration_people"`
	VisitorRegistrationPurpose        string         `gorm:"column:visitor_registration_purpose;type:text" json:"visitor_registration_purpose"`
	VisitorRegistrationAddress        datatypes.JSON `gorm:"column:visitor_registration_address;type:jsonb" json:"visitor_registration_address"`
	VisitorRegistrationSchoolName     string         `gorm:"column:visitor_registration_school_name;type:text" json:"visitor_registration_school_name"`
	VisitorRegistrationStartTime      string         `gorm:"column:visitor_registration_start_time;type:text" json:"visitor_registration_start_time"` // stored civil string
	VisitorRegistrationEndTime        *string        `gorm:"column:visitor_registration_end_time;type:text" json:"visitor_registration_end_time"`     // null while the visit is active
	VisitorRegistrationPictureURL     *string        `gorm:"column:visitor_registration_picture_url;type:text" json:"visitor_registration_picture_url"`
	VisitorRegistrationSignatureURL   *string        `gorm:"column:visitor_registration_signature_url;type:text" json:"visitor_registration_signature_url"`
	VisitorRegistrationCreatedAt      time.Time      `gorm:"column:visitor_registration_created_at;autoCreateTime" json:"visitor_registration_created_at"`
}

// TableName sets the name of the table
func (VisitorRegistrationModel) TableName() string {
	return "visitor_registrations"
}
