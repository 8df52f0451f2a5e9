// utils/proofstore.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var proofClient *s3.Client
var proofBucket string
var proofBaseURL string

// InitProofStore configures the S3/R2 client used to host uploaded proof
// files. Returns false when the store is not configured; proof submissions
// then carry external URLs only.
func InitProofStore() (bool, error) {
	accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("R2_ACCESS_KEY_SECRET")
	proofBucket = os.Getenv("R2_BUCKET_NAME")
	if accountID == "" || accessKeyID == "" || proofBucket == "" {
		return false, nil
	}

	proofBaseURL = os.Getenv("CDN_BASE_URL")
	if proofBaseURL == "" {
		proofBaseURL = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
		config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
				}, nil
			}),
		),
	)
	if err != nil {
		return false, fmt.Errorf("failed to load proof store config: %w", err)
	}

	proofClient = s3.NewFromConfig(cfg)
	return true, nil
}

// ProofStoreEnabled reports whether uploads are configured.
func ProofStoreEnabled() bool {
	return proofClient != nil
}

// UploadProofFile uploads a multipart proof file and returns its public URL.
// key is the object key (e.g. "proofs/<submission>/photo.png").
func UploadProofFile(fileHeader *multipart.FileHeader, key string) (string, error) {
	if proofClient == nil {
		return "", fmt.Errorf("proof store is not configured")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = proofClient.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(proofBucket),
		Key:         aws.String(key),
		Body:        buf,
		ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload proof: %w", err)
	}

	return fmt.Sprintf("%s/%s", proofBaseURL, key), nil
}
