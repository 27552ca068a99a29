package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/revoverflow/walker/pkg/types"
)

// AzureScheme prefixes blob storage targets: azblob://<container>[/<prefix>].
const AzureScheme = "azblob://"

// AzureConnectionStringEnv is read when no connection string is configured.
const AzureConnectionStringEnv = "AZURE_STORAGE_CONNECTION_STRING"

// AzureBlobEnumerator downloads every blob of a container, optionally
// restricted to a name prefix.
type AzureBlobEnumerator struct {
	connStr   string
	container string
	prefix    string
	maxSize   int64
}

// NewAzureBlobEnumerator parses an azblob:// target. An empty connStr falls
// back to AZURE_STORAGE_CONNECTION_STRING.
func NewAzureBlobEnumerator(target, connStr string, maxSize int64) (*AzureBlobEnumerator, error) {
	container, prefix, err := parseBlobTarget(target)
	if err != nil {
		return nil, inputError(target, err)
	}
	if connStr == "" {
		connStr = os.Getenv(AzureConnectionStringEnv)
	}
	if connStr == "" {
		return nil, inputError(target, fmt.Errorf("no connection string: set %s", AzureConnectionStringEnv))
	}
	return &AzureBlobEnumerator{connStr: connStr, container: container, prefix: prefix, maxSize: maxSize}, nil
}

// Enumerate lists the container and downloads each blob in listing order.
func (e *AzureBlobEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	client, err := azblob.NewClientFromConnectionString(e.connStr, nil)
	if err != nil {
		return inputError(e.target(), fmt.Errorf("failed to create client: %w", err))
	}

	var opts *azblob.ListBlobsFlatOptions
	if e.prefix != "" {
		opts = &azblob.ListBlobsFlatOptions{Prefix: &e.prefix}
	}

	pager := client.NewListBlobsFlatPager(e.container, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return inputError(e.target(), fmt.Errorf("failed to list blobs: %w", err))
		}
		if page.Segment == nil {
			continue
		}

		for _, item := range page.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			if e.maxSize > 0 && item.Properties != nil && item.Properties.ContentLength != nil &&
				*item.Properties.ContentLength > e.maxSize {
				continue
			}

			content, err := e.download(ctx, client, *item.Name)
			if err != nil {
				return err
			}
			prov := types.BlobProvenance{Container: e.container, Blob: *item.Name}
			if err := callback(content, types.ComputeBufferID(content), prov); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *AzureBlobEnumerator) download(ctx context.Context, client *azblob.Client, name string) ([]byte, error) {
	resp, err := client.DownloadStream(ctx, e.container, name, nil)
	if err != nil {
		return nil, inputError(AzureScheme+e.container+"/"+name, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, inputError(AzureScheme+e.container+"/"+name, err)
	}
	return content, nil
}

func (e *AzureBlobEnumerator) target() string {
	if e.prefix == "" {
		return AzureScheme + e.container
	}
	return AzureScheme + e.container + "/" + e.prefix
}

// parseBlobTarget splits azblob://container/prefix.
func parseBlobTarget(target string) (container, prefix string, err error) {
	rest, ok := strings.CutPrefix(target, AzureScheme)
	if !ok {
		return "", "", fmt.Errorf("target must start with %s", AzureScheme)
	}
	container, prefix, _ = strings.Cut(rest, "/")
	if container == "" {
		return "", "", errors.New("missing container name")
	}
	return container, prefix, nil
}
