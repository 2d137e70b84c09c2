package model

// ClassifierModel is the learned state of the category classifier.
type ClassifierModel struct {
	Mappings    map[string]string `json:"mappings"`    // lowercased description -> category
	Frequencies map[string]int    `json:"frequencies"` // category -> times learned
}

// NewClassifierModel returns an empty model, the "no learning yet" state.
func NewClassifierModel() ClassifierModel {
	return ClassifierModel{
		Mappings:    make(map[string]string),
		Frequencies: make(map[string]int),
	}
}

// Prediction is a classifier answer.
type Prediction struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"` // 0..1
}
