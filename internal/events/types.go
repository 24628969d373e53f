package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeJobCreated EventType = "job.created"
	EventTypeJobViewed  EventType = "job.viewed"
	EventTypeJobApplied EventType = "job.applied"

	EventTypeCandidateCreated        EventType = "candidate.created"
	EventTypeCandidateResumeAttached EventType = "candidate.resume_attached"

	EventTypeHotlistCreated EventType = "hotlist.created"
)

const eventVersion = "1.0"

// BaseEvent holds the fields every event carries.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Version   string    `json:"version"`
}

func newBaseEvent(t EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().Unix(),
		Version:   eventVersion,
	}
}

type JobEvent struct {
	BaseEvent
	JobID             string `json:"jobId"`
	Title             string `json:"title,omitempty"`
	Company           string `json:"company,omitempty"`
	PrimaryTechnology string `json:"primaryTechnology,omitempty"`
	Views             int64  `json:"views,omitempty"`
	Applications      int64  `json:"applications,omitempty"`
}

type CandidateEvent struct {
	BaseEvent
	CandidateID string `json:"candidateId"`
	Email       string `json:"email,omitempty"`
	Technology  string `json:"technology,omitempty"`
	ResumePath  string `json:"resumePath,omitempty"`
}

type HotlistEvent struct {
	BaseEvent
	HotlistID      string `json:"hotlistId"`
	Name           string `json:"name"`
	CandidateCount int    `json:"candidateCount"`
}

func NewJobEvent(t EventType, jobID string) *JobEvent {
	return &JobEvent{BaseEvent: newBaseEvent(t), JobID: jobID}
}

func NewCandidateEvent(t EventType, candidateID string) *CandidateEvent {
	return &CandidateEvent{BaseEvent: newBaseEvent(t), CandidateID: candidateID}
}

func NewHotlistEvent(hotlistID, name string, candidateCount int) *HotlistEvent {
	return &HotlistEvent{
		BaseEvent:      newBaseEvent(EventTypeHotlistCreated),
		HotlistID:      hotlistID,
		Name:           name,
		CandidateCount: candidateCount,
	}
}
