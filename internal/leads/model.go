package leads

import (
	"slices"
	"strings"
	"time"
)

// DefaultStatus is the status label every new submission starts with.
const DefaultStatus = "new"

// TimestampLayout renders times as YYYY-MM-DDTHH:mm:ss-05:00.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// Zone is the fixed UTC-5 civil time used for every lead timestamp,
// independent of the caller's or the host's local zone.
var Zone = time.FixedZone("UTC-5", -5*60*60)

// Now returns the current time in Zone, truncated to whole seconds.
func Now() time.Time {
	return ToZone(time.Now())
}

// ToZone converts t into Zone, truncated to whole seconds.
func ToZone(t time.Time) time.Time {
	return t.Truncate(time.Second).In(Zone)
}

// FormatTimestamp renders t in Zone using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.In(Zone).Format(TimestampLayout)
}

// ProjectType enumerates the kinds of painting work a lead can ask for.
type ProjectType string

const (
	ProjectInterior ProjectType = "interior"
	ProjectExterior ProjectType = "exterior"
	ProjectCabinets ProjectType = "cabinets"
	ProjectCombo    ProjectType = "combo"
	ProjectOther    ProjectType = "other"
)

var projectTypeLabels = map[ProjectType]string{
	ProjectInterior: "Interior Painting",
	ProjectExterior: "Exterior Painting",
	ProjectCabinets: "Cabinet Refinishing",
	ProjectCombo:    "Interior + Exterior Combo",
	ProjectOther:    "Other",
}

// Valid reports whether p is one of the enumerated project types.
func (p ProjectType) Valid() bool {
	_, ok := projectTypeLabels[p]
	return ok
}

// Label returns the human-readable name, falling back to the raw value.
func (p ProjectType) Label() string {
	if label, ok := projectTypeLabels[p]; ok {
		return label
	}
	return string(p)
}

// ServedCities is the sorted list of municipalities the business serves.
var ServedCities = sortedCities(
	"Philadelphia", "Pittsburgh", "Allentown", "Reading", "Erie", "Scranton",
	"Bethlehem", "Lancaster", "Harrisburg", "Altoona", "York", "State College",
	"Wilkes-Barre", "Chester", "Williamsport", "Easton", "Lebanon", "Hazleton",
	"New Castle", "Johnstown", "McKeesport", "Hermitage", "Greensburg", "Pottstown",
	"Bloomsburg", "Washington", "East Stroudsburg", "Carlisle", "Butler", "Chambersburg",
	"Phoenixville", "Monroeville", "Plum", "Murrysville", "West Chester", "King of Prussia",
	"Norristown", "Willow Grove", "Drexel Hill", "Levittown", "Media", "Broomall",
	"Marlton", "Cherry Hill", "Voorhees", "Mount Laurel",
)

func sortedCities(cities ...string) []string {
	slices.Sort(cities)
	return cities
}

// Submission is one lead captured from the quote form.
type Submission struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	City        string      `json:"city"`
	ProjectType ProjectType `json:"project_type"`
	Message     string      `json:"message"`
	Consent     bool        `json:"consent"`
	UTMSource   string      `json:"utm_source"`
	UTMMedium   string      `json:"utm_medium"`
	UTMCampaign string      `json:"utm_campaign"`
	UTMContent  string      `json:"utm_content"`
	UTMTerm     string      `json:"utm_term"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// FirstName returns the portion of Name before the first space.
func (s *Submission) FirstName() string {
	first, _ := splitName(s.Name)
	return first
}

// LastName returns everything after the first space, or the first name
// when the lead gave a single word.
func (s *Submission) LastName() string {
	first, last := splitName(s.Name)
	if last == "" {
		return first
	}
	return last
}

func splitName(name string) (string, string) {
	first, rest, _ := strings.Cut(strings.TrimSpace(name), " ")
	return first, strings.TrimSpace(rest)
}

// RawSubmission is the caller-supplied form before validation.
type RawSubmission struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	ProjectType string `json:"projectType"`
	Message     string `json:"message"`
	Consent     bool   `json:"consent"`
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
	UTMContent  string `json:"utm_content"`
	UTMTerm     string `json:"utm_term"`
}

// ListFilter pages through stored submissions.
type ListFilter struct {
	Limit  int
	Offset int
}
