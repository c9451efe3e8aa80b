package docsource

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/wmcfinance/echeque-processor/internal/pipeline"
)

// FetchFromGCS downloads the cheque bytes from the given GCS URI.
// It assumes Application Default Credentials are configured.
func FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	// gcsURI example: gs://my-bucket/path/to/cheque.pdf
	if !strings.HasPrefix(gcsURI, "gs://") {
		return nil, fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}

	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}

	bucketName := parts[0]
	objectPath := parts[1]

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: creating storage client: %w", err)
	}
	defer storageClient.Close()

	rc, err := storageClient.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: reading bytes: %w", err)
	}

	return data, nil
}

// FilenameFromGCSURI extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/cheque.pdf" → "cheque.pdf"
func FilenameFromGCSURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}

	return path.Base(parts[1])
}

// FromGCS fetches each URI and packages the bytes as pipeline documents.
// Any single failed download fails the whole fetch so the batch never runs
// against a silently incomplete input set.
func FromGCS(ctx context.Context, uris []string) ([]pipeline.Document, error) {
	docs := make([]pipeline.Document, 0, len(uris))
	for _, uri := range uris {
		data, err := FetchFromGCS(ctx, uri)
		if err != nil {
			return nil, err
		}
		docs = append(docs, pipeline.Document{
			Filename: FilenameFromGCSURI(uri),
			Content:  data,
		})
	}
	return docs, nil
}
