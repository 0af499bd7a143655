package reconcile

import (
	"encoding/json"
	"time"
)

// FamilyResult is the outcome of loading one family. A family whose fetch
// failed keeps whatever the store already held for it rather than being
// cleared to empty; the store is only replaced on a successful fetch.
type FamilyResult struct {
	Family Family
	Count  int
	Err    error
}

func (r FamilyResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Family Family `json:"family"`
		Count  int    `json:"count"`
		OK     bool   `json:"ok"`
		Error  string `json:"error,omitempty"`
	}{Family: r.Family, Count: r.Count, OK: r.Err == nil}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// LoadReport aggregates one bulk load. Err is set when the load did not run at all.
type LoadReport struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Err        error          `json:"-"`
	Results    []FamilyResult `json:"results"`
}

// Failed lists the families that could not be loaded.
func (r LoadReport) Failed() []Family {
	var out []Family
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res.Family)
		}
	}
	return out
}

// OK reports whether the load ran and every family succeeded.
func (r LoadReport) OK() bool {
	return r.Err == nil && len(r.Failed()) == 0
}

// Result returns the entry for f.
func (r LoadReport) Result(f Family) (FamilyResult, bool) {
	for _, res := range r.Results {
		if res.Family == f {
			return res, true
		}
	}
	return FamilyResult{}, false
}

func (r LoadReport) MarshalJSON() ([]byte, error) {
	type plain LoadReport
	out := struct {
		plain
		OK     bool     `json:"ok"`
		Failed []Family `json:"failed,omitempty"`
		Error  string   `json:"error,omitempty"`
	}{plain: plain(r), OK: r.OK(), Failed: r.Failed()}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}
