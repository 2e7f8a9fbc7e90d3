package domain

// ProfileSource tells where a Profile came from.
type ProfileSource string

const (
	// ProfileSourceModel marks a profile produced by the remote language model.
	ProfileSourceModel ProfileSource = "model"
	// ProfileSourceFallback marks a profile produced by keyword matching.
	ProfileSourceFallback ProfileSource = "fallback"
)

// Profile is the structured information extracted from a résumé.
type Profile struct {
	CandidateName     string        `json:"candidate_name"`
	TopSkills         []string      `json:"top_skills"`
	YearsOfExperience string        `json:"years_of_experience"`
	Positions         []string      `json:"positions"`
	Source            ProfileSource `json:"-"`
}

// PrimaryPosition returns the first position, or an empty string.
func (p Profile) PrimaryPosition() string {
	if len(p.Positions) == 0 {
		return ""
	}

	return p.Positions[0]
}
