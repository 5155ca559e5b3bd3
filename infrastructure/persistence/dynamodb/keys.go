// Package dynamodb implements the repository ports on a single DynamoDB
// table. Aggregates are stored as one item each; optimistic locking via
// conditional version writes serializes concurrent read-modify-write
// sequences on the same aggregate.
//
// Key layout:
//
//	idea     PK=IDEA#<id>    SK=METADATA       GSI1PK=IDEA               GSI1SK=<created>#<id>
//	                                           GSI2PK=AUTHOR#<userID>    GSI2SK=<created>#<id>
//	user     PK=USER#<id>    SK=METADATA       GSI1PK=USERNAME#<name>    GSI1SK=METADATA
//	comment  PK=IDEA#<idea>  SK=COMMENT#<id>   GSI1PK=USERCOMMENTS#<uid> GSI1SK=<created>#<id>
//	                                           GSI2PK=COMMENT#<id>       GSI2SK=METADATA
package dynamodb

import (
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	skMetadata = "METADATA"

	entityTypeIdea    = "IDEA"
	entityTypeUser    = "USER"
	entityTypeComment = "COMMENT"

	// marker item claiming a username; see UserRepository.create
	entityTypeUsernameClaim = "USERNAME"
)

// timeFormat is the attribute storage format for timestamps
const timeFormat = time.RFC3339Nano

// sortKeyTimeFormat pads fractional seconds to a fixed width so that
// lexicographic order over sort keys equals chronological order.
// RFC3339Nano drops trailing zeros and would break that property.
const sortKeyTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func ideaPK(id string) string            { return fmt.Sprintf("IDEA#%s", id) }
func userPK(id string) string            { return fmt.Sprintf("USER#%s", id) }
func commentSK(id string) string         { return fmt.Sprintf("COMMENT#%s", id) }
func usernameKey(username string) string { return fmt.Sprintf("USERNAME#%s", username) }
func authorKey(userID string) string     { return fmt.Sprintf("AUTHOR#%s", userID) }
func userCommentsKey(userID string) string {
	return fmt.Sprintf("USERCOMMENTS#%s", userID)
}
func commentKey(id string) string { return fmt.Sprintf("COMMENT#%s", id) }

func createdSortKey(createdAt time.Time, id string) string {
	return fmt.Sprintf("%s#%s", createdAt.UTC().Format(sortKeyTimeFormat), id)
}

func formatTime(t time.Time) string { return t.UTC().Format(timeFormat) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// isConditionalCheckFailed reports whether err is a failed conditional
// write, i.e. a lost optimistic-locking race
func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// isTransactionCanceled reports whether err is a canceled
// TransactWriteItems call, which for our transactions means one of the
// existence conditions failed
func isTransactionCanceled(err error) bool {
	var tc *types.TransactionCanceledException
	return errors.As(err, &tc)
}
