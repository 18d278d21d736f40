package events

const (
	StreamName   = "KRAFT_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectTaskAssigned(taskID string) string   { return "kraft.task." + taskID + ".assigned" }
func SubjectTaskUnassigned(taskID string) string { return "kraft.task." + taskID + ".unassigned" }
func SubjectRunCompleted(runID string) string    { return "kraft.run." + runID + ".completed" }
