package natsadapter

import "strings"

// Subjects and streams used by the service.
const (
	StreamAnalyses = "INSIGHT_ANALYSES"

	subjectCompletedPrefix = "insight.analysis.completed."
	subjectProgressPrefix  = "insight.progress."

	SubjectCompletedAll = subjectCompletedPrefix + ">"
	SubjectProgressAll  = subjectProgressPrefix + ">"
)

// CompletedSubject is the subject an analysis for userID is announced on.
func CompletedSubject(userID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	return subjectCompletedPrefix + token(userID)
}

// ProgressSubject is the subject search progress for sessionID is sent on.
func ProgressSubject(sessionID string) string {
	return subjectProgressPrefix + token(sessionID)
}

var tokenReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_", "\t", "_")

// token makes s safe to use as a single subject token.
func token(s string) string {
	return tokenReplacer.Replace(s)
}
