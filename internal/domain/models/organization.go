// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization is a catalog entry for a student organization. Every org in
// the catalog can be searched, saved, and recommended; only orgs with an
// active OrgAccount ("on platform") can be joined or applied to.
type Organization struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"` // lowercase, trimmed

	Bio              string `bson:"bio,omitempty" json:"bio,omitempty"`
	Website          string `bson:"website,omitempty" json:"website,omitempty"`
	MeetingSchedule  string `bson:"meeting_schedule,omitempty" json:"meeting_schedule,omitempty"`
	MeetingLocation  string `bson:"meeting_location,omitempty" json:"meeting_location,omitempty"`
	Dues             string `bson:"dues,omitempty" json:"dues,omitempty"`
	AppRequirements  string `bson:"app_requirements,omitempty" json:"app_requirements,omitempty"`
	MemberCountEst   int    `bson:"member_count_est,omitempty" json:"member_count_est,omitempty"`
	TypicalMajors    string `bson:"typical_majors,omitempty" json:"typical_majors,omitempty"`
	TypicalActivity  string `bson:"typical_activities,omitempty" json:"typical_activities,omitempty"`
	CultureStyle     string `bson:"culture_style,omitempty" json:"culture_style,omitempty"`
	IsApplicationReq bool   `bson:"is_application_based" json:"is_application_based"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// OrgAccount is the administrative account state for an on-platform
// organization. An org without an active account is catalog-only.
type OrgAccount struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	AdminUserID    primitive.ObjectID `bson:"admin_user_id" json:"admin_user_id"`
	Active         bool               `bson:"active" json:"active"`

	AcceptingApplications bool       `bson:"accepting_applications" json:"accepting_applications"`
	ApplicationDeadline   *time.Time `bson:"application_deadline,omitempty" json:"application_deadline,omitempty"`
	ApplicationsReopenAt  *time.Time `bson:"applications_reopen_at,omitempty" json:"applications_reopen_at,omitempty"`
	HasCustomForm         bool       `bson:"has_custom_form" json:"has_custom_form"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
