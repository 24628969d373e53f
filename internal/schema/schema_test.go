package schema

import (
	"testing"

	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/PrathushaR/ithotlist-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestJobDoc() map[string]interface{} {
	return map[string]interface{}{
		"title":               "Backend Engineer",
		"company":             map[string]interface{}{"name": "Acme Corp"},
		"description":         "Build services",
		"jobType":             "Full-time",
		"experienceLevel":     "Senior",
		"location":            "Springfield, IL",
		"salary":              map[string]interface{}{"min": 100000.0, "max": 150000.0},
		"primaryTechnology":   "Go",
		"applicationDeadline": "2025-06-30",
	}
}

func TestValidator_Job(t *testing.T) {
	v := MustNewValidator()

	tests := []struct {
		name    string
		mutate  func(doc map[string]interface{})
		wantErr string
	}{
		{"valid", func(map[string]interface{}) {}, ""},
		{"rfc3339 deadline", func(d map[string]interface{}) { d["applicationDeadline"] = "2025-06-30T17:00:00Z" }, ""},
		{"missing title", func(d map[string]interface{}) { delete(d, "title") }, "title is required"},
		{"bad job type", func(d map[string]interface{}) { d["jobType"] = "Internship" }, "jobType"},
		{"salary max missing", func(d map[string]interface{}) { d["salary"] = map[string]interface{}{"min": 1.0} }, "max is required"},
		{"bad period", func(d map[string]interface{}) {
			d["salary"] = map[string]interface{}{"min": 1.0, "max": 2.0, "period": "weekly"}
		}, "period"},
		{"company without name", func(d map[string]interface{}) { d["company"] = map[string]interface{}{} }, "name is required"},
		{"bad deadline", func(d map[string]interface{}) { d["applicationDeadline"] = "soon" }, "applicationDeadline"},
		{"bad status", func(d map[string]interface{}) { d["status"] = "open" }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := createTestJobDoc()
			tt.mutate(doc)

			err := v.Validate(Job, doc)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidationFailed))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidator_Candidate(t *testing.T) {
	v := MustNewValidator()

	assert.NoError(t, v.Validate(Candidate, map[string]interface{}{"name": "Ada", "email": "ada@example.com", "skills": "Go, Rust"}))
	assert.NoError(t, v.Validate(Candidate, map[string]interface{}{"name": "Ada", "email": "ada@example.com", "skills": []interface{}{"Go"}}))

	err := v.Validate(Candidate, map[string]interface{}{"name": "Ada"})
	assert.ErrorContains(t, err, "email is required")

	err = v.Validate(Candidate, map[string]interface{}{"name": "Ada", "email": "not-an-email"})
	assert.ErrorContains(t, err, "email")

	err = v.Validate(Candidate, map[string]interface{}{"name": "Ada", "email": "ada@example.com", "yearsOfExp": "three"})
	assert.ErrorContains(t, err, "yearsOfExp")

	err = v.Validate(Candidate, nil)
	assert.ErrorContains(t, err, "name is required")
}

func TestValidator_Hotlist(t *testing.T) {
	v := MustNewValidator()

	assert.NoError(t, v.Validate(Hotlist, map[string]interface{}{"name": "Go devs", "candidates": []interface{}{"65f1c0c2a4b5c6d7e8f90123"}}))
	assert.ErrorContains(t, v.Validate(Hotlist, map[string]interface{}{"name": "Go devs", "candidates": []interface{}{"123"}}), "candidates")
	assert.ErrorContains(t, v.Validate(Hotlist, map[string]interface{}{"description": "x"}), "name is required")
}

func TestValidator_Decode(t *testing.T) {
	v := MustNewValidator()

	var req models.CreateCandidateRequest
	err := v.Decode(Candidate, map[string]interface{}{
		"name":       "Ada",
		"email":      "ada@example.com",
		"skills":     "Go, ,Rust",
		"yearsOfExp": 4.0,
	}, &req)
	require.NoError(t, err)
	assert.Equal(t, models.SkillList{"Go", "Rust"}, req.Skills)
	require.NotNil(t, req.YearsOfExp)
	assert.Equal(t, 4.0, *req.YearsOfExp)

	err = v.Decode(Candidate, map[string]interface{}{"name": "Ada"}, &req)
	assert.Error(t, err)
}
