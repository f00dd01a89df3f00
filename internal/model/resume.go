package model

import (
	"encoding/json"
	"strconv"
)

// Record is the résumé object as returned by the completion service. It is
// carried between requests unchanged, unknown keys included.
type Record map[string]interface{}

// Keys of the résumé record.
const (
	KeyFullName        = "Full Name"
	KeyEmail           = "Email"
	KeyPhone           = "Phone"
	KeyGitHub          = "GitHub Profile"
	KeyLinkedIn        = "LinkedIn Profile"
	KeyEmployment      = "Employment History"
	KeyTechnicalSkills = "Technical Skills"
	KeySoftSkills      = "Soft Skills"
	KeyEducation       = "Education"
	KeyCertifications  = "Certifications"
	KeyAwards          = "Awards"
)

// Keys of employment and education entries.
const (
	KeyJobTitle     = "Job Title"
	KeyCompany      = "Company"
	KeyDates        = "Dates"
	KeyDescription  = "Description"
	KeyDegree       = "Degree"
	KeyInstitution  = "Institution"
	KeyLocation     = "Location"
	KeyAchievements = "Achievements"
)

type Job struct {
	Title       string
	Company     string
	Dates       string
	Description string
}

type Education struct {
	Degree       string
	Institution  string
	Location     string
	Dates        string
	Achievements string
}

// Resume is the typed view of a Record used for rendering. A nil slice
// means the section key was absent; a non-nil slice (possibly empty) means
// it was present.
type Resume struct {
	FullName string
	Email    string
	Phone    string
	GitHub   string
	LinkedIn string

	Employment      []Job
	TechnicalSkills []string
	SoftSkills      []string
	Education       []Education
	Certifications  []string
	Awards          []string
}

// Decode maps a Record onto a Resume, substituting "" and empty lists for
// values of the wrong type and dropping malformed list entries. It never
// fails.
func Decode(r Record) Resume {
	res := Resume{
		FullName: stringField(r, KeyFullName),
		Email:    stringField(r, KeyEmail),
		Phone:    stringField(r, KeyPhone),
		GitHub:   stringField(r, KeyGitHub),
		LinkedIn: stringField(r, KeyLinkedIn),

		TechnicalSkills: stringList(r, KeyTechnicalSkills),
		SoftSkills:      stringList(r, KeySoftSkills),
		Certifications:  stringList(r, KeyCertifications),
		Awards:          stringList(r, KeyAwards),
	}

	for _, entry := range objectList(r, KeyEmployment, &res.Employment) {
		res.Employment = append(res.Employment, Job{
			Title:       entryText(entry, KeyJobTitle),
			Company:     entryText(entry, KeyCompany),
			Dates:       entryText(entry, KeyDates),
			Description: entryText(entry, KeyDescription),
		})
	}
	for _, entry := range objectList(r, KeyEducation, &res.Education) {
		res.Education = append(res.Education, Education{
			Degree:       entryText(entry, KeyDegree),
			Institution:  entryText(entry, KeyInstitution),
			Location:     entryText(entry, KeyLocation),
			Dates:        entryText(entry, KeyDates),
			Achievements: entryText(entry, KeyAchievements),
		})
	}

	return res
}

// Encode serializes the record for carrying in a URL or form field.
func Encode(r Record) (string, error) {
	if r == nil {
		r = Record{}
	}
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func stringField(r Record, key string) string {
	s, _ := r[key].(string)
	return s
}

func stringList(r Record, key string) []string {
	raw, ok := r[key]
	if !ok {
		return nil
	}
	out := []string{}
	arr, ok := raw.([]interface{})
	if !ok {
		return out
	}
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// objectList returns the object entries of a list section. When the key is
// present it initializes *present to a non-nil empty slice so that the
// section is kept even if no entry survives.
func objectList[T any](r Record, key string, present *[]T) []map[string]interface{} {
	raw, ok := r[key]
	if !ok {
		return nil
	}
	*present = []T{}
	arr, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func entryText(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
