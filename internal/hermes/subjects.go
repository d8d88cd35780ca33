package hermes

const ClientName = "creditscoring"

func SubjectPredictionScored(prediction string) string {
	return "scoring.prediction." + prediction + ".scored"
}
