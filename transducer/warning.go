package transducer

import "github.com/matrix-org/postguard/classification"

var warnings = map[classification.Label]string{
	classification.Spam:      "this post may contain spam",
	classification.Offensive: "this post may contain offensive language",
	classification.Hate:      "this post may contain hate speech",
	classification.Sex:       "this post may contain sexual content",
	classification.Harass:    "this post may contain harassment",
	classification.SelfHarm:  "this post may contain self-harm",
	classification.Threats:   "this post may contain threats",
	classification.Violence:  "this post may contain violence",
}

// WarningFST - Maps labels to human-readable warnings.
type WarningFST struct {
}

func NewWarningFST() *WarningFST {
	return &WarningFST{}
}

// GenerateWarning - Returns the warning for the label. The lookup is exact and case-sensitive: Safe,
// unknown, and empty labels have no warning.
func (w *WarningFST) GenerateWarning(label classification.Label) (string, bool) {
	warning, ok := warnings[label]
	return warning, ok
}

// GenerateWarnings - Returns the warnings for each label, in order, skipping labels without one.
func (w *WarningFST) GenerateWarnings(labels []classification.Label) []string {
	res := make([]string, 0, len(labels))
	for _, l := range labels {
		if warning, ok := w.GenerateWarning(l); ok {
			res = append(res, warning)
		}
	}
	return res
}
