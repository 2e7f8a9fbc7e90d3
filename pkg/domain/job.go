package domain

// Placeholders substituted for job posting fields missing from the page.
const (
	UnknownCompany  = "Unknown Company"
	DefaultLocation = "Remote"
)

// JobPosting is one job card discovered on a listing page. Only Title is
// guaranteed to come from the page; the other fields fall back to placeholders
// or, for URL, to the listing page itself.
type JobPosting struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

// ApplicationContext holds the template variables for one drafted
// application. It is built fresh per job and never mutated afterwards.
type ApplicationContext map[string]any

// DispatchOutcome records what happened to one job during a run.
type DispatchOutcome struct {
	Job   JobPosting `json:"job"`
	Sent  bool       `json:"sent"`
	Error string     `json:"error,omitempty"`
}
