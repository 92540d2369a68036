package hydrate

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	glinterr "github.com/glint-ui/glint/internal/errors"
)

// S3Resolver resolves deferred-module dependencies against an S3 bucket
// holding the built client bundles. A dependency is available when its
// object exists under the configured prefix.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	resolver := hydrate.NewS3Resolver(s3.NewFromConfig(cfg), "my-bucket", "modules/")
//
// Wrap it in a CachingResolver so each module is checked at most once per
// session.
type S3Resolver struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Resolver creates an S3-backed dependency resolver.
//
// Parameters:
//   - client: AWS S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - prefix: key prefix for module objects (e.g., "modules/")
func NewS3Resolver(client *s3.Client, bucket, prefix string) *S3Resolver {
	return &S3Resolver{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Resolve implements DependencyResolver. The module name maps directly to
// an object key under the prefix.
func (r *S3Resolver) Resolve(ctx context.Context, name string) error {
	key := r.prefix + name
	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return glinterr.Wrap(err, "G200", glinterr.CategoryDependency,
			fmt.Sprintf("module %s not available at s3://%s/%s", name, r.bucket, key))
	}
	return nil
}
