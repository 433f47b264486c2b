package command

import (
	"github.com/google/uuid"

	"github.com/example/lunch-orders/internal/validation"
)

// Outcome is what every handled command produces: acceptance with the
// commit id of the events it wrote, or rejection with every reason that
// applied. Business-rule failures never surface as errors.
type Outcome struct {
	Accepted bool                `json:"accepted"`
	CommitID uuid.UUID           `json:"commit_id,omitempty"`
	Reasons  []validation.Reason `json:"reasons,omitempty"`
}

func accepted(commitID uuid.UUID) Outcome {
	return Outcome{Accepted: true, CommitID: commitID}
}

func rejected(reasons ...validation.Reason) Outcome {
	return Outcome{Accepted: false, Reasons: reasons}
}

func rejectedResult(result validation.Result) Outcome {
	return Outcome{Accepted: false, Reasons: result.Reasons()}
}
