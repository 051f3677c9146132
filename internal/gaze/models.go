package gaze

import "fmt"

// MaxGazeSamples is the most gaze sample triples a record can carry.
const MaxGazeSamples = 89

// Sample is one recorded gaze fixation. X/Y or Time may be absent
// independently.
type Sample struct {
	X, Y    float64
	Time    float64
	HasXY   bool
	HasTime bool
}

// Record is one viewing session row: a viewer (identified by timestamp)
// looking at one image from one test set.
type Record struct {
	TestSet       string
	QuestionImage string
	Timestamp     string
	Samples       []Sample
}

// ValidGazes returns the record's samples that carry coordinates, in
// recorded order.
func (r *Record) ValidGazes() []Sample {
	var valid []Sample
	for _, s := range r.Samples {
		if s.HasXY {
			valid = append(valid, s)
		}
	}
	return valid
}

// GroupKey identifies one image within one test set.
type GroupKey struct {
	TestSet       string
	QuestionImage string
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s/%s", k.TestSet, k.QuestionImage)
}

// Dataset holds all loaded gaze records.
type Dataset struct {
	Records []Record

	// SampleColumns is how many gaze sample triples the source file's
	// header actually carried (1..MaxGazeSamples).
	SampleColumns int
}
