// Command moviereview-stream is a Lambda that logs changes from the
// review table's DynamoDB stream.
package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/moviereview/stream"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	handler := stream.NewHandler(logger)
	lambda.Start(handler.HandleRecordEvents)
}
