package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Hotlist references candidates by id only. It does not own them, so a
// reference may outlive the candidate it points to.
type Hotlist struct {
	ID          bson.ObjectID   `json:"_id" bson:"_id"`
	Name        string          `json:"name" bson:"name"`
	Description string          `json:"description" bson:"description"`
	Candidates  []bson.ObjectID `json:"candidates" bson:"candidates"`
	CreatedAt   time.Time       `json:"createdAt" bson:"createdAt"`
}

// PopulatedHotlist is a hotlist with its references expanded, in reference
// order. References that no longer resolve are left out.
type PopulatedHotlist struct {
	ID          bson.ObjectID `json:"_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Candidates  []*Candidate  `json:"candidates"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Populate expands the references using the resolved candidates.
func (h *Hotlist) Populate(byID map[bson.ObjectID]*Candidate) *PopulatedHotlist {
	out := &PopulatedHotlist{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		Candidates:  make([]*Candidate, 0, len(h.Candidates)),
		CreatedAt:   h.CreatedAt,
	}
	for _, id := range h.Candidates {
		if c, ok := byID[id]; ok {
			out.Candidates = append(out.Candidates, c)
		}
	}
	return out
}

type CreateHotlistRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Candidates  []string `json:"candidates"`
}

func NewHotlist(req *CreateHotlistRequest, now time.Time) (*Hotlist, error) {
	refs := make([]bson.ObjectID, 0, len(req.Candidates))
	for _, raw := range req.Candidates {
		id, err := bson.ObjectIDFromHex(raw)
		if err != nil {
			return nil, fmt.Errorf("candidates: invalid candidate ID %q", raw)
		}
		refs = append(refs, id)
	}

	return &Hotlist{
		ID:          bson.NewObjectID(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Candidates:  refs,
		CreatedAt:   now,
	}, nil
}

// CandidateIDs returns the distinct references across hotlists.
func CandidateIDs(hotlists []*Hotlist) []bson.ObjectID {
	seen := make(map[bson.ObjectID]bool)
	var ids []bson.ObjectID
	for _, h := range hotlists {
		for _, id := range h.Candidates {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
