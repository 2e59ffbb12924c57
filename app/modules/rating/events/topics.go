// Package ratingevents defines the subjects and payloads the rating module
// consumes and produces on the event bus.
package ratingevents

const (
	// Requests. Bots and edge functions drive the workflow with these.
	MatchSubmitRequestedV1   = "rating.match.submit.requested.v1"
	MatchConfirmRequestedV1  = "rating.match.confirm.requested.v1"
	MatchRejectRequestedV1   = "rating.match.reject.requested.v1"
	MatchFinalizeRequestedV1 = "rating.match.finalize.requested.v1"

	// Facts published after commit.
	MatchSubmittedV1           = "rating.match.submitted.v1"
	MatchConfirmationUpdatedV1 = "rating.match.confirmation.updated.v1"
	MatchReadyV1               = "rating.match.ready.v1"
	MatchDisputedV1            = "rating.match.disputed.v1"
	MatchFinalizedV1           = "rating.match.finalized.v1"
	MatchFailedV1              = "rating.match.failed.v1"
)

// StreamName is the JetStream stream that carries every rating subject.
const StreamName = "rating"

// StreamSubjects is the subject filter of StreamName.
var StreamSubjects = []string{"rating.>"}

// StatusSubjects are the facts that change what a match page shows.
var StatusSubjects = []string{
	MatchConfirmationUpdatedV1,
	MatchReadyV1,
	MatchDisputedV1,
	MatchFinalizedV1,
}
