package model

// Decision is a normalized yes/no judgment. The evaluator only accepts
// the two values below; anything else marks the record invalid.
type Decision string

const (
	DecisionYes Decision = "yes"
	DecisionNo  Decision = "no"
)

// LabeledRecord pairs the model's decision with the human tagger's
// ground truth for one report, plus the categorical attributes used
// for segmentation.
type LabeledRecord struct {
	ReportID    string `json:"report_id"`
	Body        string `json:"content_body,omitempty"`
	Extracted   string `json:"extracted_coordinate,omitempty"`
	ModelSays   string `json:"model_decision"` // raw value, normalized by the evaluator
	TaggerSays  string `json:"tag_decision"`   // raw value, normalized by the evaluator
	TaggedCoord string `json:"tagged_coordinate,omitempty"`
	IsEdgeCase  bool   `json:"is_edge_case,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Urgency     string `json:"urgency,omitempty"`
	Reliability string `json:"reliability,omitempty"`
}

// ConfusionMatrix holds the four predicted-vs-actual counts.
type ConfusionMatrix struct {
	TP int `json:"tp"` // model yes, tagger yes
	FP int `json:"fp"` // model yes, tagger no
	TN int `json:"tn"` // model no, tagger no
	FN int `json:"fn"` // model no, tagger yes
}

// Total is the number of valid records behind the matrix.
func (m ConfusionMatrix) Total() int { return m.TP + m.FP + m.TN + m.FN }

// Errors is the combined misclassification count.
func (m ConfusionMatrix) Errors() int { return m.FP + m.FN }

// Accuracy returns (TP+TN)/total, or 0 when the matrix is empty.
func (m ConfusionMatrix) Accuracy() float64 {
	total := m.Total()
	if total == 0 {
		return 0
	}
	return float64(m.TP+m.TN) / float64(total)
}

// Metrics are the standard classification ratios derived from a
// confusion matrix. All values are in [0,1]; a zero denominator
// yields 0 rather than an error.
type Metrics struct {
	Precision   float64 `json:"precision"`
	Recall      float64 `json:"recall"`
	F1          float64 `json:"f1"`
	Accuracy    float64 `json:"accuracy"`
	Specificity float64 `json:"specificity"`
}

// AsMap returns the metrics keyed by name, for report rendering and
// storage.
func (m Metrics) AsMap() map[string]float64 {
	return map[string]float64{
		"precision":   m.Precision,
		"recall":      m.Recall,
		"f1":          m.F1,
		"accuracy":    m.Accuracy,
		"specificity": m.Specificity,
	}
}

// SegmentStats is the confusion matrix restricted to one value of a
// categorical attribute.
type SegmentStats struct {
	Attribute string          `json:"attribute"` // e.g. "sector"
	Value     string          `json:"value"`     // e.g. a specific sector label
	Matrix    ConfusionMatrix `json:"matrix"`
	Accuracy  float64         `json:"accuracy"`
}

// CrossStats isolates the worst-performing segment along one attribute
// and breaks its errors down by a second attribute.
type CrossStats struct {
	PrimaryAttribute   string           `json:"primary_attribute"`
	WorstSegment       string           `json:"worst_segment"`
	WorstSegmentErrors int              `json:"worst_segment_errors"`
	SecondaryAttribute string           `json:"secondary_attribute"`
	Breakdown          []CrossBreakdown `json:"breakdown"`
}

// CrossBreakdown is the error composition for one secondary value
// inside the worst primary segment.
type CrossBreakdown struct {
	Value   string `json:"value"`
	Errors  int    `json:"errors"`
	FP      int    `json:"fp"`
	FN      int    `json:"fn"`
	Records int    `json:"records"` // all records with this value in the worst segment
}

// Evaluation is the complete output of a performance evaluation run.
type Evaluation struct {
	Matrix         ConfusionMatrix `json:"matrix"`
	Metrics        Metrics         `json:"metrics"`
	ValidRecords   int             `json:"valid_records"`
	InvalidRecords int             `json:"invalid_records"` // excluded, never silently dropped
	Segments       []SegmentStats  `json:"segments,omitempty"`
	FalsePositives []LabeledRecord `json:"false_positives,omitempty"`
	FalseNegatives []LabeledRecord `json:"false_negatives,omitempty"`
}
