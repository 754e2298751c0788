package domain

// Domain contains core models shared by the pipeline stages.

// Candidate is one raw entry scraped from a ranking source, before
// deduplication and title backfill.
type Candidate struct {
	Title string
	URL   string
}

// NewsItem is built incrementally: the ranker sets Rank, Title and URL, the
// enricher fills the media and summary fields, and the timing allocator sets
// the duration and offset.
type NewsItem struct {
	Rank               int      `json:"rank"`
	Title              string   `json:"title"`
	URL                string   `json:"url"`
	PreviewImageURL    string   `json:"preview_image_url,omitempty"`
	LocalImagePath     string   `json:"local_image_path,omitempty"`
	Summary            string   `json:"summary"`
	Gagline            string   `json:"gagline"`
	DurationSeconds    int      `json:"duration_seconds"`
	StartOffsetSeconds int      `json:"start_offset_seconds"`
	Outcomes           Outcomes `json:"outcomes"`
}

// OutcomeState says how a derived field ended up.
type OutcomeState string

const (
	OutcomePending OutcomeState = ""
	OutcomeOK      OutcomeState = "ok"
	OutcomeEmpty   OutcomeState = "empty"
	OutcomeFailed  OutcomeState = "failed"
)

// FieldOutcome records the state of one field and, when it is not OK, why.
type FieldOutcome struct {
	State  OutcomeState `json:"state"`
	Reason string       `json:"reason,omitempty"`
}

// OK reports whether the field was populated.
func (o FieldOutcome) OK() bool { return o.State == OutcomeOK }

// Outcomes groups the per-field results of extraction and enrichment.
type Outcomes struct {
	Title        FieldOutcome `json:"title"`
	PreviewImage FieldOutcome `json:"preview_image"`
	LocalImage   FieldOutcome `json:"local_image"`
	Summary      FieldOutcome `json:"summary"`
}

// Ok builds an OK outcome.
func Ok() FieldOutcome { return FieldOutcome{State: OutcomeOK} }

// Empty builds an outcome for a source that simply had nothing to offer.
func Empty(reason string) FieldOutcome {
	return FieldOutcome{State: OutcomeEmpty, Reason: reason}
}

// Failed builds an outcome for a fetch, parse or write error.
func Failed(err error) FieldOutcome {
	if err == nil {
		return FieldOutcome{State: OutcomeFailed}
	}
	return FieldOutcome{State: OutcomeFailed, Reason: err.Error()}
}
