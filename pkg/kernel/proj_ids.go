package kernel

type JobID string

func NewJobID(id string) JobID { return JobID(id) }
func (r JobID) String() string { return string(r) }
func (r JobID) IsEmpty() bool  { return string(r) == "" }

// JobIDStrings converts ids for use in IN filters
func JobIDStrings(ids []JobID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// CompanyIDStrings converts ids for use in IN filters
func CompanyIDStrings(ids []CompanyID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
