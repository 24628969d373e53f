package filter

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps Skip well inside int64 for any limit up to MaxLimit.
	MaxPage = math.MaxInt32

	// SearchLimit caps the free-text search endpoints.
	SearchLimit = 10
)

// JobQuery holds the optional listing parameters for jobs.
type JobQuery struct {
	Status            string
	JobType           string
	ExperienceLevel   string
	PrimaryTechnology string
	Remote            string
	Location          string
	Search            string
	RequiredSkills    string
}

func (q JobQuery) Predicate() Predicate {
	return NewBuilder().
		Equal("status", q.Status).
		Equal("jobType", q.JobType).
		Equal("experienceLevel", q.ExperienceLevel).
		Equal("primaryTechnology", q.PrimaryTechnology).
		Bool("remote", q.Remote).
		Contains("location", q.Location).
		AnyFieldContains(q.Search, "title", "description", "company.name").
		AnyToken("requiredSkills", q.RequiredSkills).
		Build()
}

// CandidateQuery holds the optional listing parameters for candidates.
type CandidateQuery struct {
	Status     string
	Technology string
	Skills     string
}

func (q CandidateQuery) Predicate() Predicate {
	return NewBuilder().
		Equal("status", q.Status).
		Equal("technology", q.Technology).
		AnyToken("skills", q.Skills).
		Build()
}

// CandidateSearch matches name, email, technology or any skill.
func CandidateSearch(term string) Predicate {
	return NewBuilder().AnyFieldContains(term, "name", "email", "technology", "skills").Build()
}

// HotlistSearch matches name or description.
func HotlistSearch(term string) Predicate {
	return NewBuilder().AnyFieldContains(term, "name", "description").Build()
}

// Page is an offset/limit window over a sorted result set.
type Page struct {
	Number int
	Limit  int
}

// NewPage normalizes raw values: page below 1 becomes 1 and page above
// MaxPage is capped, limit outside 1..MaxLimit falls back to the default or
// the cap.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = DefaultPage
	}
	if number > MaxPage {
		number = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Limit)
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func (p Page) Paginate(total int64) Pagination {
	return Pagination{
		Total: total,
		Page:  p.Number,
		Limit: p.Limit,
		Pages: int(math.Ceil(float64(total) / float64(p.Limit))),
	}
}
