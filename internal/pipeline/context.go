package pipeline

import (
	"referralflow/pkg/domain"
	"strings"
)

// Keys of an application context, referenced by the templates.
const (
	KeyCandidateName     = "candidate_name"
	KeyCandidateEmail    = "candidate_email"
	KeySkills            = "skills"
	KeySkillsText        = "skills_text"
	KeyYearsOfExperience = "years_of_experience"
	KeyPosition          = "position"
	KeyJobTitle          = "job_title"
	KeyCompany           = "company"
	KeyLocation          = "location"
	KeyJobURL            = "job_url"
)

// NewApplicationContext builds the template variables for one job. Every key
// is always present; the templates supply defaults for empty values.
func NewApplicationContext(profile domain.Profile, email string, job domain.JobPosting) domain.ApplicationContext {
	skills := append([]string(nil), profile.TopSkills...)

	return domain.ApplicationContext{
		KeyCandidateName:     strings.TrimSpace(profile.CandidateName),
		KeyCandidateEmail:    email,
		KeySkills:            skills,
		KeySkillsText:        strings.Join(skills, ", "),
		KeyYearsOfExperience: profile.YearsOfExperience,
		KeyPosition:          profile.PrimaryPosition(),
		KeyJobTitle:          job.Title,
		KeyCompany:           job.Company,
		KeyLocation:          job.Location,
		KeyJobURL:            job.URL,
	}
}
