package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"blog-console/cmd/internal/logger"
)

const defaultRegion = "us-east-1"

// S3Options 는 S3 직접 서명 모드의 설정이다.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	KeyPrefix string
	Expires   time.Duration
	AccessKey string
	SecretKey string
}

type putPresigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Presigner 는 API 를 거치지 않고 콘솔이 직접 PUT 업로드 URL 을 서명한다.
type S3Presigner struct {
	presigner putPresigner
	bucket    string
	keyPrefix string
	expires   time.Duration
}

// NewS3Presigner 는 aws-sdk-go-v2 설정을 로드해 presign 클라이언트를 만든다.
// AccessKey/SecretKey 가 모두 있으면 정적 자격 증명을, 아니면 기본 체인을 사용한다.
// Endpoint 가 있으면 path-style 주소를 사용한다. (MinIO 등 S3 호환 스토리지)
func NewS3Presigner(ctx context.Context, opts S3Options) (*S3Presigner, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 presigner: bucket is required")
	}
	region := opts.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.InfoWithFields("s3 presigner ready", logger.Fields{
		"bucket":   opts.Bucket,
		"region":   region,
		"endpoint": opts.Endpoint,
	})
	return newS3Presigner(s3.NewPresignClient(client), opts), nil
}

func newS3Presigner(p putPresigner, opts S3Options) *S3Presigner {
	expires := opts.Expires
	if expires <= 0 {
		expires = time.Hour
	}
	return &S3Presigner{
		presigner: p,
		bucket:    opts.Bucket,
		keyPrefix: opts.KeyPrefix,
		expires:   expires,
	}
}

// ObjectKey 는 prefix 와 파일 이름을 붙여 선행 슬래시 없는 객체 키를 만든다.
func ObjectKey(prefix, fileName string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return strings.TrimPrefix(fileName, "/")
	}
	return path.Join(prefix, fileName)
}

// RequestUploadTarget 은 fileName 에 대한 서명된 PUT URL 을 돌려준다.
// Content-Type 도 서명에 포함되므로 업로드 시 같은 값을 보내야 한다.
func (p *S3Presigner) RequestUploadTarget(ctx context.Context, fileName, contentType string) (string, error) {
	key := ObjectKey(p.keyPrefix, fileName)

	input := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	res, err := p.presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = p.expires
	})
	if err != nil {
		logger.ErrorWithFields("s3 presign failed", logger.Fields{
			"bucket": p.bucket,
			"key":    key,
			"error":  err.Error(),
		})
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}

	logger.DebugWithFields("s3 presigned upload url", logger.Fields{
		"bucket":  p.bucket,
		"key":     key,
		"expires": p.expires.String(),
	})
	return res.URL, nil
}
