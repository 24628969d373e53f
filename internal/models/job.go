package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type JobType string

const (
	JobTypeFullTime  JobType = "Full-time"
	JobTypePartTime  JobType = "Part-time"
	JobTypeContract  JobType = "Contract"
	JobTypeFreelance JobType = "Freelance"
)

type ExperienceLevel string

const (
	ExperienceEntry   ExperienceLevel = "Entry"
	ExperienceMid     ExperienceLevel = "Mid"
	ExperienceSenior  ExperienceLevel = "Senior"
	ExperienceLead    ExperienceLevel = "Lead"
	ExperienceManager ExperienceLevel = "Manager"
)

type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
	JobStatusDraft  JobStatus = "draft"
)

type SalaryPeriod string

const (
	SalaryHourly  SalaryPeriod = "hourly"
	SalaryMonthly SalaryPeriod = "monthly"
	SalaryYearly  SalaryPeriod = "yearly"
)

const DefaultCurrency = "USD"

// JobCounter names a counter field that only changes through an atomic
// increment.
type JobCounter string

const (
	CounterViews        JobCounter = "views"
	CounterApplications JobCounter = "applications"
)

type Company struct {
	Name    string `json:"name" bson:"name"`
	Website string `json:"website,omitempty" bson:"website,omitempty"`
	Logo    string `json:"logo,omitempty" bson:"logo,omitempty"`
}

type Salary struct {
	Min      float64      `json:"min" bson:"min"`
	Max      float64      `json:"max" bson:"max"`
	Currency string       `json:"currency" bson:"currency"`
	Period   SalaryPeriod `json:"period" bson:"period"`
}

type Job struct {
	ID                  bson.ObjectID   `json:"_id" bson:"_id"`
	Title               string          `json:"title" bson:"title"`
	Company             Company         `json:"company" bson:"company"`
	Description         string          `json:"description" bson:"description"`
	Requirements        []string        `json:"requirements" bson:"requirements"`
	Responsibilities    []string        `json:"responsibilities" bson:"responsibilities"`
	JobType             JobType         `json:"jobType" bson:"jobType"`
	ExperienceLevel     ExperienceLevel `json:"experienceLevel" bson:"experienceLevel"`
	Location            string          `json:"location" bson:"location"`
	Remote              bool            `json:"remote" bson:"remote"`
	Salary              Salary          `json:"salary" bson:"salary"`
	PrimaryTechnology   string          `json:"primaryTechnology" bson:"primaryTechnology"`
	RequiredSkills      []string        `json:"requiredSkills" bson:"requiredSkills"`
	Benefits            []string        `json:"benefits" bson:"benefits"`
	Status              JobStatus       `json:"status" bson:"status"`
	ApplicationDeadline time.Time       `json:"applicationDeadline" bson:"applicationDeadline"`
	PostedDate          time.Time       `json:"postedDate" bson:"postedDate"`
	UpdatedAt           time.Time       `json:"updatedAt" bson:"updatedAt"`
	Views               int64           `json:"views" bson:"views"`
	Applications        int64           `json:"applications" bson:"applications"`
}

// CreateJobRequest is the decoded body of a job creation request. Pointer
// fields distinguish "absent" from a zero value so defaults can apply.
type CreateJobRequest struct {
	Title               string          `json:"title"`
	Company             Company         `json:"company"`
	Description         string          `json:"description"`
	Requirements        []string        `json:"requirements"`
	Responsibilities    []string        `json:"responsibilities"`
	JobType             JobType         `json:"jobType"`
	ExperienceLevel     ExperienceLevel `json:"experienceLevel"`
	Location            string          `json:"location"`
	Remote              *bool           `json:"remote"`
	Salary              Salary          `json:"salary"`
	PrimaryTechnology   string          `json:"primaryTechnology"`
	RequiredSkills      []string        `json:"requiredSkills"`
	Benefits            []string        `json:"benefits"`
	Status              JobStatus       `json:"status"`
	ApplicationDeadline string          `json:"applicationDeadline"`
}

// NewJob applies server-side defaults. now becomes both postedDate and
// updatedAt.
func NewJob(req *CreateJobRequest, now time.Time) (*Job, error) {
	deadline, err := ParseDate(req.ApplicationDeadline)
	if err != nil {
		return nil, fmt.Errorf("applicationDeadline: %w", err)
	}

	job := &Job{
		ID:                  bson.NewObjectID(),
		Title:               req.Title,
		Company:             req.Company,
		Description:         req.Description,
		Requirements:        nonNil(req.Requirements),
		Responsibilities:    nonNil(req.Responsibilities),
		JobType:             req.JobType,
		ExperienceLevel:     req.ExperienceLevel,
		Location:            req.Location,
		Salary:              req.Salary,
		PrimaryTechnology:   req.PrimaryTechnology,
		RequiredSkills:      nonNil(req.RequiredSkills),
		Benefits:            nonNil(req.Benefits),
		Status:              req.Status,
		ApplicationDeadline: deadline,
		PostedDate:          now,
		UpdatedAt:           now,
	}

	if req.Remote != nil {
		job.Remote = *req.Remote
	}
	if job.Status == "" {
		job.Status = JobStatusDraft
	}
	if job.Salary.Currency == "" {
		job.Salary.Currency = DefaultCurrency
	}
	if job.Salary.Period == "" {
		job.Salary.Period = SalaryYearly
	}
	return job, nil
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected RFC 3339 or YYYY-MM-DD", s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
