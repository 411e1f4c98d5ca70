package workout

type Feedback string

const (
	FeedbackLight Feedback = "light"
	FeedbackGood  Feedback = "good"
	FeedbackHeavy Feedback = "heavy"
)

func (f Feedback) IsValid() bool {
	switch f {
	case FeedbackLight, FeedbackGood, FeedbackHeavy:
		return true
	}
	return false
}

// Adjust returns the next suggested weight: light adds 1 kg, heavy takes
// 1 kg off without going below zero.
func (f Feedback) Adjust(weight float64) float64 {
	switch f {
	case FeedbackLight:
		return weight + 1
	case FeedbackHeavy:
		if weight <= 0 {
			return weight
		}
		return max(weight-1, 0)
	default:
		return weight
	}
}
