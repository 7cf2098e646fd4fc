package reconcile

// ShouldAutoSelect decides whether the dashboard should switch its active trip
// to bestTripID. With nothing selected any match is taken. Otherwise the match
// must be closer than scoreThresholdKm and beat the runner-up by more than
// marginThresholdKm, so two nearly equidistant trips never flip the selection.
func ShouldAutoSelect(bestTripID string, bestScore, secondBestScore float64, currentID string, scoreThresholdKm, marginThresholdKm float64) bool {
	if bestTripID == "" {
		return false
	}
	if currentID == "" {
		return true
	}
	return bestScore < scoreThresholdKm && secondBestScore-bestScore > marginThresholdKm
}
