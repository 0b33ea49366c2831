package hermes

const (
	SubjectLocalityUpdatedAll  = "zipfit.locality.*.updated"
	SubjectLocalityDeletedAll  = "zipfit.locality.*.deleted"
	SubjectOverrideRecordedAll = "zipfit.override.*.recorded"
	SubjectOverrideClearedAll  = "zipfit.override.*.cleared"

	StreamName     = "ZIPFIT_EVENTS"
	StreamSubjects = "zipfit.>"
	StreamMaxAge   = "720h" // 30 days
)

// Locality lifecycle subjects
func SubjectLocalityUpdated(zip string) string { return "zipfit.locality." + zip + ".updated" }
func SubjectLocalityDeleted(zip string) string { return "zipfit.locality." + zip + ".deleted" }

// Override subjects
func SubjectOverrideRecorded(zip string) string { return "zipfit.override." + zip + ".recorded" }
func SubjectOverrideCleared(zip string) string { return "zipfit.override." + zip + ".cleared" }

func SubjectRankingCompleted(rankingID string) string {
	return "zipfit.ranking." + rankingID + ".completed"
}
