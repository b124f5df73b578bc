// Package stream turns DynamoDB Streams records from the review table into
// structured diagnostic logs.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/moviereview/review"
)

// Change is a decoded stream record.
type Change struct {
	// EventName is INSERT, MODIFY or REMOVE.
	EventName string

	// Key is the review key from the record's partition key.
	Key review.Key

	// Old and New are the decoded images; nil when the image is absent.
	Old *review.Review
	New *review.Review

	// OldCapacity and NewCapacity are the reservations carried by each image.
	OldCapacity int64
	NewCapacity int64
}

// Handler logs review changes received from a DynamoDB stream.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// HandleRecordEvents logs every review change in the batch.
// This function is designed to be used as an AWS Lambda handler.
// Records that cannot be decoded are logged and skipped: retrying would not fix them.
func (h *Handler) HandleRecordEvents(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		change, err := ParseRecord(record)
		if err != nil {
			h.logger.WarnContext(ctx, "skipping undecodable record",
				"eventID", record.EventID,
				"error", err,
			)
			continue
		}
		h.logChange(ctx, record.EventID, change)
	}
	return nil
}

func (h *Handler) logChange(ctx context.Context, eventID string, c *Change) {
	switch c.EventName {
	case "INSERT":
		h.logger.InfoContext(ctx, "movie review account created",
			"eventID", eventID,
			"key", c.Key,
			"author", c.New.Author.String(),
			"title", c.New.Title,
			"description", c.New.Description,
			"rating", c.New.Rating,
			"capacity", c.NewCapacity,
		)
	case "MODIFY":
		h.logger.InfoContext(ctx, "movie review account updated",
			"eventID", eventID,
			"key", c.Key,
			"title", c.New.Title,
			"oldDescription", c.Old.Description,
			"description", c.New.Description,
			"oldRating", c.Old.Rating,
			"rating", c.New.Rating,
			"capacityDelta", c.NewCapacity-c.OldCapacity,
		)
	case "REMOVE":
		h.logger.InfoContext(ctx, "movie review account closed",
			"eventID", eventID,
			"key", c.Key,
			"author", c.Old.Author.String(),
			"title", c.Old.Title,
			"released", c.OldCapacity,
		)
	}
}

// ParseRecord decodes the review images carried by a stream record.
// INSERT needs a new image, REMOVE an old image, MODIFY both.
func ParseRecord(record events.DynamoDBEventRecord) (*Change, error) {
	c := &Change{
		EventName: record.EventName,
		Key:       review.Key(getStringAttr(record.Change.Keys, "pk")),
	}

	var needOld, needNew bool
	switch record.EventName {
	case "INSERT":
		needNew = true
	case "MODIFY":
		needOld, needNew = true, true
	case "REMOVE":
		needOld = true
	default:
		return nil, fmt.Errorf("unsupported event %q", record.EventName)
	}

	var err error
	if needOld {
		if c.Old, err = decodeImage(record.Change.OldImage); err != nil {
			return nil, fmt.Errorf("old image: %w", err)
		}
		c.OldCapacity = getNumberAttr(record.Change.OldImage, "capacity")
	}
	if needNew {
		if c.New, err = decodeImage(record.Change.NewImage); err != nil {
			return nil, fmt.Errorf("new image: %w", err)
		}
		c.NewCapacity = getNumberAttr(record.Change.NewImage, "capacity")
	}
	return c, nil
}

// decodeImage decodes the "data" attribute of a stream image.
func decodeImage(image map[string]events.DynamoDBAttributeValue) (*review.Review, error) {
	data := getBinaryAttr(image, "data")
	if data == nil {
		return nil, fmt.Errorf("%w: image has no data attribute", review.ErrInvalidRecord)
	}
	return review.Decode(data)
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// getNumberAttr extracts a number attribute from a DynamoDB stream image.
func getNumberAttr(image map[string]events.DynamoDBAttributeValue, key string) int64 {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeNumber {
			n, _ := strconv.ParseInt(v.Number(), 10, 64)
			return n
		}
	}
	return 0
}

// getBinaryAttr extracts a binary attribute from a DynamoDB stream image.
func getBinaryAttr(image map[string]events.DynamoDBAttributeValue, key string) []byte {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeBinary {
		return v.Binary()
	}
	return nil
}
