package store

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/moviereview/review"
)

// mapTransactionError maps a cancelled transaction onto a ledger error.
// recordIndex is the index of the record write in the transaction; a
// conditional failure there becomes onConflict and a write conflict with a
// concurrent transaction becomes review.ErrConcurrentModification. Other
// errors pass through.
func mapTransactionError(err error, recordIndex int, onConflict error) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for i, reason := range txErr.CancellationReasons {
			if reason.Code == nil || i != recordIndex {
				continue
			}
			switch *reason.Code {
			case "ConditionalCheckFailed":
				return onConflict
			case "TransactionConflict":
				return review.ErrConcurrentModification
			}
		}
	}

	return err
}
