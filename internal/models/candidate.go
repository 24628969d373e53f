package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PrathushaR/ithotlist-api/internal/filter"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type CandidateStatus string

const (
	CandidateActive   CandidateStatus = "active"
	CandidateInactive CandidateStatus = "inactive"
	CandidatePending  CandidateStatus = "pending"
)

const (
	DefaultTechnology = "Not Specified"
	DefaultAvatar     = "https://via.placeholder.com/150"
)

// ResumeFile describes the uploaded resume. All fields stay null until an
// upload occurs.
type ResumeFile struct {
	Filename *string `json:"filename" bson:"filename"`
	Path     *string `json:"path" bson:"path"`
	Mimetype *string `json:"mimetype" bson:"mimetype"`
}

func (r ResumeFile) IsEmpty() bool {
	return r.Path == nil
}

type Candidate struct {
	ID         bson.ObjectID   `json:"_id" bson:"_id"`
	Name       string          `json:"name" bson:"name"`
	Email      string          `json:"email" bson:"email"`
	YearsOfExp float64         `json:"yearsOfExp" bson:"yearsOfExp"`
	Technology string          `json:"technology" bson:"technology"`
	Skills     []string        `json:"skills" bson:"skills"`
	Experience float64         `json:"experience" bson:"experience"`
	Avatar     string          `json:"avatar" bson:"avatar"`
	ResumeFile ResumeFile      `json:"resumeFile" bson:"resumeFile"`
	Status     CandidateStatus `json:"status" bson:"status"`
	CreatedAt  time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// AttachResume points the candidate at a stored file.
func (c *Candidate) AttachResume(filename, path, mimetype string) {
	c.ResumeFile = ResumeFile{Filename: &filename, Path: &path, Mimetype: &mimetype}
}

// SkillList decodes either a JSON array of strings or a single comma
// separated string. Both forms are trimmed and empty tokens dropped.
type SkillList []string

func (s *SkillList) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*s = filter.SplitList(raw)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("skills must be a string or an array of strings: %w", err)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
	}
	*s = out
	return nil
}

type CreateCandidateRequest struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	YearsOfExp *float64        `json:"yearsOfExp"`
	Technology string          `json:"technology"`
	Skills     SkillList       `json:"skills"`
	Experience *float64        `json:"experience"`
	Avatar     string          `json:"avatar"`
	Status     CandidateStatus `json:"status"`
}

func NewCandidate(req *CreateCandidateRequest, now time.Time) *Candidate {
	c := &Candidate{
		ID:         bson.NewObjectID(),
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Technology: strings.TrimSpace(req.Technology),
		Skills:     nonNil(req.Skills),
		Avatar:     req.Avatar,
		Status:     req.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.YearsOfExp != nil {
		c.YearsOfExp = *req.YearsOfExp
	}
	if req.Experience != nil {
		c.Experience = *req.Experience
	}
	if c.Technology == "" {
		c.Technology = DefaultTechnology
	}
	if c.Avatar == "" {
		c.Avatar = DefaultAvatar
	}
	if c.Status == "" {
		c.Status = CandidatePending
	}
	return c
}
