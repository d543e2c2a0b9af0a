package domain

// Well-known field names in the tabular input. The loader preserves every
// column it finds; only these participate in pipeline logic.
const (
	// FieldText is the sample content and the grouping key.
	FieldText = "text"

	// FieldAnnotatorID identifies the annotator. Carried through, never
	// used in logic.
	FieldAnnotatorID = "annotator_id"

	// FieldLabel is the category value assigned by the annotator.
	FieldLabel = "label"

	// FieldConfidenceScore is the annotator's self-reported confidence.
	// It arrives as a string and must parse as a float to pass QC1.
	FieldConfidenceScore = "confidence_score"
)

// RawRecord is one data row of the input file, keyed by the header's
// column names. Values are unvalidated strings; rows shorter than the
// header carry empty strings for the missing trailing fields.
type RawRecord map[string]string

// Annotation is a single annotator judgment that passed the confidence
// check. ConfidenceScore has been validated as a float at this point.
type Annotation struct {
	// Text is the annotated sample content and the grouping key.
	Text string `json:"text"`

	// AnnotatorID is an opaque identifier for the annotator.
	// It is optional and unused by pipeline logic.
	AnnotatorID string `json:"annotator_id,omitempty"`

	// Label is the category the annotator assigned.
	Label string `json:"label"`

	// ConfidenceScore is the parsed confidence value, always at or above
	// the configured threshold.
	ConfidenceScore float64 `json:"confidence_score"`
}

// AgreedSample is a text whose accepted annotations all carry one label.
// Exactly these two fields are serialized into the clean dataset.
type AgreedSample struct {
	// Text is the sample content.
	Text string `json:"text"`

	// Label is the single label shared by every accepted annotation.
	Label string `json:"label"`
}

// Disagreement is a text whose accepted annotations carry two or more
// distinct labels.
type Disagreement struct {
	// Text is the sample content.
	Text string `json:"text"`

	// Labels holds the distinct conflicting labels, sorted
	// lexicographically so serialized output is reproducible.
	// Cardinality is always >= 2.
	Labels []string `json:"labels"`
}

// GroupedAnnotations partitions accepted annotations by their text key.
// Both the key order and the member order within each group preserve
// first-seen input order, so downstream iteration is deterministic.
//
// Fields are exported so State's copy-on-write machinery can deep copy
// the structure; callers should treat a retrieved value as read-only.
type GroupedAnnotations struct {
	// Texts lists the distinct text keys in first-seen order.
	Texts []string

	// Members maps each text key to its annotations in input order.
	Members map[string][]Annotation
}

// NewGroupedAnnotations returns an empty, ready-to-fill grouping.
func NewGroupedAnnotations() GroupedAnnotations {
	return GroupedAnnotations{
		Texts:   make([]string, 0),
		Members: make(map[string][]Annotation),
	}
}

// Add appends an annotation to its text's group, creating the group on
// first sight of the key.
func (g *GroupedAnnotations) Add(a Annotation) {
	if _, seen := g.Members[a.Text]; !seen {
		g.Texts = append(g.Texts, a.Text)
	}
	g.Members[a.Text] = append(g.Members[a.Text], a)
}

// Group returns the annotations for the given text and whether the text
// has a group at all.
func (g GroupedAnnotations) Group(text string) ([]Annotation, bool) {
	members, ok := g.Members[text]
	return members, ok
}

// Len returns the number of distinct text keys.
func (g GroupedAnnotations) Len() int { return len(g.Texts) }

// FilterStats accounts for every raw record seen by the confidence
// filter. Accepted plus the three drop reasons always equals the raw
// record count, so no record is lost silently.
type FilterStats struct {
	// Accepted counts records that passed QC1.
	Accepted int `json:"accepted"`

	// BelowThreshold counts records whose confidence parsed but fell
	// below the threshold.
	BelowThreshold int `json:"below_threshold"`

	// InvalidConfidence counts records whose confidence field was missing
	// or failed to parse as a float.
	InvalidConfidence int `json:"invalid_confidence"`

	// MissingField counts records dropped because text or label was
	// absent or empty.
	MissingField int `json:"missing_field"`
}

// Dropped returns the total number of records removed by QC1.
func (fs FilterStats) Dropped() int {
	return fs.BelowThreshold + fs.InvalidConfidence + fs.MissingField
}

// Total returns the number of records the filter examined.
func (fs FilterStats) Total() int { return fs.Accepted + fs.Dropped() }

// RunSummary captures the headline counts of one pipeline run.
// It is assembled from the final State after all stages complete.
type RunSummary struct {
	// RunID identifies the run that produced these counts.
	RunID string `json:"run_id"`

	// RawRecords is the number of data rows loaded from the input.
	RawRecords int `json:"raw_records"`

	// Filter is the QC1 accounting.
	Filter FilterStats `json:"filter"`

	// Groups is the number of distinct texts after QC1.
	Groups int `json:"groups"`

	// Agreed is the number of texts with single-label agreement.
	Agreed int `json:"agreed"`

	// Disagreed is the number of texts with conflicting labels.
	Disagreed int `json:"disagreed"`

	// NearDuplicatePairs is the advisory count of distinct text keys
	// within the configured edit distance. Zero when the check is off.
	NearDuplicatePairs int `json:"near_duplicate_pairs,omitempty"`
}
