// Package pipeline provides the stage abstraction and the values passed
// between synthesis stages.
package pipeline

import (
	"context"
)

// Stage turns one synthesis input into its result. The synthesizer runs an
// overlay stage and then an encode stage; tests swap either for a fake.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}
